package svgsurface

import (
	"bytes"
	"strings"
	"testing"

	"dotglobe/internal/geo"
	"dotglobe/internal/marker"
	"dotglobe/internal/render"
	"dotglobe/internal/view"
)

func TestRenderDocument(t *testing.T) {
	f := render.Build(render.Input{
		Width:   200,
		Height:  100,
		DPR:     1,
		View:    view.State{Lng: 0, Lat: 0, Scale: 1},
		Dots:    []geo.LonLat{{Lon: 0, Lat: 0}},
		Markers: []marker.Marker{{Name: "A&B", Lon: 1, Lat: 1, Featured: true}},
	})
	var buf bytes.Buffer
	if err := Render(&buf, f, render.DefaultStyle()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`width="200"`, `height="100"`, "scale(0.1)", "<circle", "A&amp;B", "</svg>"} {
		if !strings.Contains(out, want) {
			t.Errorf("svg output missing %q", want)
		}
	}
	// 透明背景不画底色矩形
	if strings.Contains(out, "<rect") {
		t.Error("transparent background should not emit a rect")
	}
}

func TestRenderNilFrame(t *testing.T) {
	if err := Render(&bytes.Buffer{}, nil, render.DefaultStyle()); err == nil {
		t.Error("Render(nil) succeeded")
	}
}
