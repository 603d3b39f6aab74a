// 桌面窗口查看器：-backend 选择 ebiten 或 raylib
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"dotglobe/internal/config"
	"dotglobe/internal/geo"
	"dotglobe/internal/globe"
	"dotglobe/internal/host"
	"dotglobe/internal/host/ebitenhost"
	"dotglobe/internal/host/rayhost"
	"dotglobe/internal/land"
	"dotglobe/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	cfg, _ := config.Load()

	backend := flag.String("backend", "ebiten", "ebiten | raylib")
	width := flag.Int("w", 960, "window width")
	height := flag.Int("h", 720, "window height")
	fps := flag.Int("fps", 60, "frames per second")
	file := flag.String("land-file", cfg.Land.File, "GeoJSON file")
	url := flag.String("land-url", cfg.Land.URL, "GeoJSON url")
	spacing := flag.Float64("spacing", cfg.Land.Spacing, "dot spacing in degrees")
	offline := flag.Bool("offline", false, "skip loading land")
	flag.Parse()

	if *spacing <= 0 {
		*spacing = geo.DefaultSpacing
	}
	opts := host.Options{
		Width:   *width,
		Height:  *height,
		FPS:     *fps,
		Spacing: *spacing,
		Globe:   globe.Options{Width: float64(*width), Height: float64(*height), DPR: 1},
	}
	if !*offline {
		opts.Land = land.SourceFor(*file, *url, nil)
	}

	var err error
	switch *backend {
	case "ebiten":
		err = ebitenhost.Run(opts)
	case "raylib":
		err = rayhost.Run(opts)
	default:
		fmt.Fprintln(os.Stderr, "unknown backend:", *backend)
		os.Exit(2)
	}
	if err != nil {
		l.Error("viewer_error", "backend", *backend, "err", err)
		os.Exit(1)
	}
}
