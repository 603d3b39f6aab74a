// 终端查看器：盲文点阵 + 鼠标拖拽；日志写文件，避免破坏全屏界面
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dotglobe/internal/config"
	"dotglobe/internal/geo"
	"dotglobe/internal/host"
	"dotglobe/internal/host/tuihost"
	"dotglobe/internal/land"
	"dotglobe/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	cfg, _ := config.Load()

	logFile := flag.String("log", "", "write logs to this file")
	fps := flag.Int("fps", 20, "frames per second")
	file := flag.String("land-file", cfg.Land.File, "GeoJSON file")
	url := flag.String("land-url", cfg.Land.URL, "GeoJSON url")
	spacing := flag.Float64("spacing", cfg.Land.Spacing, "dot spacing in degrees")
	offline := flag.Bool("offline", false, "skip loading land")
	flag.Parse()

	var w io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "log file:", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	logger.SetupWriter(w)

	if *spacing <= 0 {
		*spacing = geo.DefaultSpacing
	}
	opts := host.Options{FPS: *fps, Spacing: *spacing}
	if !*offline {
		opts.Land = land.SourceFor(*file, *url, nil)
	}
	if err := tuihost.Run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
