// 单帧渲染：按参数输出 PNG 或 SVG（离线出图、README 截图）
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dotglobe/internal/config"
	"dotglobe/internal/geo"
	"dotglobe/internal/land"
	"dotglobe/internal/logger"
	"dotglobe/internal/marker"
	"dotglobe/internal/projection"
	"dotglobe/internal/render"
	"dotglobe/internal/render/ggsurface"
	"dotglobe/internal/render/svgsurface"
	"dotglobe/internal/view"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	cfg, _ := config.Load()

	out := flag.String("o", "globe.png", "output file (.png or .svg), - for stdout png")
	format := flag.String("format", "", "png | svg (default from -o extension)")
	width := flag.Float64("w", 800, "width in css pixels")
	height := flag.Float64("h", 800, "height in css pixels")
	dpr := flag.Float64("dpr", 1, "device pixel ratio")
	lng := flag.Float64("lng", view.HomeLng, "view longitude")
	lat := flag.Float64("lat", view.HomeLat, "view latitude")
	scale := flag.Float64("scale", view.HomeScale, "zoom")
	pulse := flag.Float64("pulse", 0, "pulse phase of the featured marker")
	bg := flag.String("bg", "", "background: empty (transparent), paper, or #rrggbb")
	file := flag.String("land-file", cfg.Land.File, "GeoJSON file")
	url := flag.String("land-url", cfg.Land.URL, "GeoJSON url")
	spacing := flag.Float64("spacing", cfg.Land.Spacing, "dot spacing in degrees")
	offline := flag.Bool("offline", false, "skip loading land")
	timeout := flag.Duration("timeout", 30*time.Second, "land load timeout")
	flag.Parse()

	if *format == "" {
		*format = "png"
		if strings.HasSuffix(strings.ToLower(*out), ".svg") {
			*format = "svg"
		}
	}
	if *spacing <= 0 {
		*spacing = geo.DefaultSpacing
	}
	st := render.DefaultStyle()
	switch {
	case *bg == "":
	case *bg == "paper":
		st = st.Opaque(render.Paper)
	default:
		c, err := render.Hex(*bg)
		if err != nil {
			fatal(err)
		}
		st = st.Opaque(c)
	}

	in := render.Input{
		Width:     *width,
		Height:    *height,
		DPR:       *dpr,
		View:      view.State{Lng: *lng, Lat: *lat, Scale: *scale}.Normalize(),
		Mode:      view.AutoRotating,
		Graticule: projection.Graticule(projection.GraticuleStep, projection.GraticuleSample),
		Markers:   marker.Defaults(),
		Pulse:     *pulse,
	}
	in.Index = marker.NewIndex(in.Markers)
	if !*offline {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		ld, err := land.Load(ctx, land.SourceFor(*file, *url, nil), *spacing)
		cancel()
		if err != nil {
			l.Warn("land_load_failed", "err", err)
		} else {
			in.Rings, in.Dots = ld.Rings, ld.Dots
		}
	}
	f := render.Build(in)
	if f == nil {
		fatal(fmt.Errorf("empty viewport %gx%g", *width, *height))
	}

	var w io.Writer = os.Stdout
	if *out != "-" {
		fh, err := os.Create(*out)
		if err != nil {
			fatal(err)
		}
		defer fh.Close()
		w = fh
	}
	var err error
	switch *format {
	case "png":
		err = ggsurface.RenderPNG(w, f, st)
	case "svg":
		err = svgsurface.Render(w, f, st)
	default:
		err = fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		fatal(err)
	}
	l.Info("render_done", "out", *out, "format", *format, "dots", len(f.Dots))
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
