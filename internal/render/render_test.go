package render

import (
	"math"
	"testing"

	"dotglobe/internal/geo"
	"dotglobe/internal/marker"
	"dotglobe/internal/projection"
	"dotglobe/internal/view"
)

func baseInput() Input {
	return Input{
		Width:     800,
		Height:    440,
		DPR:       1,
		View:      view.State{Lng: 0, Lat: 0, Scale: 1},
		Graticule: projection.Graticule(projection.GraticuleStep, projection.GraticuleSample),
	}
}

func TestBuildZeroViewport(t *testing.T) {
	in := baseInput()
	in.Width = 0
	if f := Build(in); f != nil {
		t.Fatalf("zero width built a frame: %+v", f.Sphere)
	}
}

func TestBuildNonFiniteViewport(t *testing.T) {
	in := baseInput()
	in.Width = math.NaN()
	if Build(in) != nil {
		t.Fatal("NaN width built a frame")
	}
	in = baseInput()
	in.Height = math.Inf(1)
	if Build(in) != nil {
		t.Fatal("infinite height built a frame")
	}
}

func TestBuildSphereAndDotRadius(t *testing.T) {
	in := baseInput()
	in.View.Scale = 2
	f := Build(in)
	if f.Sphere.CX != 400 || f.Sphere.CY != 220 {
		t.Errorf("sphere center = (%v, %v)", f.Sphere.CX, f.Sphere.CY)
	}
	if math.Abs(f.Sphere.R-400) > 1e-9 {
		t.Errorf("sphere radius = %v, want 400", f.Sphere.R)
	}
	if math.Abs(f.DotRadius-2.2) > 1e-12 {
		t.Errorf("dot radius = %v, want 2.2", f.DotRadius)
	}
	if len(f.Graticule) == 0 {
		t.Error("graticule should have visible runs")
	}
}

func TestBuildCullsBackside(t *testing.T) {
	in := baseInput()
	in.Dots = []geo.LonLat{{Lon: 0, Lat: 0}, {Lon: 10, Lat: 10}, {Lon: 180, Lat: 0}, {Lon: -150, Lat: 20}}
	in.Markers = []marker.Marker{{Name: "front", Lon: 5, Lat: 5}, {Name: "back", Lon: 170, Lat: 0}}
	f := Build(in)
	if len(f.Dots) != 2 {
		t.Errorf("got %d visible dots, want 2", len(f.Dots))
	}
	if len(f.Markers) != 1 || f.Markers[0].Name != "front" {
		t.Errorf("markers = %+v, want only front", f.Markers)
	}
}

func TestBuildFacing(t *testing.T) {
	in := baseInput()
	in.View = view.State{Lng: 352, Lat: 40, Scale: 1}
	in.Index = marker.NewIndex(marker.Defaults())
	if f := Build(in); f.Facing != marker.Porto.Name {
		t.Errorf("facing = %q, want %q", f.Facing, marker.Porto.Name)
	}
	in.View = view.State{Lng: 210, Lat: -60, Scale: 1}
	if f := Build(in); f.Facing != "" {
		t.Errorf("facing over the ocean = %q, want empty", f.Facing)
	}
}

func TestBuildNormalizesView(t *testing.T) {
	in := baseInput()
	in.View = view.State{Lng: -10, Lat: 200, Scale: 0}
	f := Build(in)
	if f.View.Lng != 350 || f.View.Lat != view.MaxLat || f.View.Scale != view.MinScale {
		t.Errorf("view = %+v", f.View)
	}
}

func TestDrawOrderAndFeaturedMarker(t *testing.T) {
	in := baseInput()
	in.Rings = []geo.Ring{{{Lon: -10, Lat: -10}, {Lon: 10, Lat: -10}, {Lon: 10, Lat: 10}, {Lon: -10, Lat: 10}, {Lon: -10, Lat: -10}}}
	in.Dots = []geo.LonLat{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1}}
	in.Markers = []marker.Marker{{Name: "Porto, PT", Lon: 0, Lat: 0, Featured: true}, {Name: "plain", Lon: 2, Lat: 2}}
	in.Pulse = math.Pi / 2
	f := Build(in)

	var rec Recorder
	st := DefaultStyle()
	Draw(f, &rec, st)

	if rec.Ops[0].Kind != "clear" {
		t.Fatalf("first op = %v, want clear", rec.Ops[0])
	}
	sphere := rec.Ops[1]
	if sphere.Kind != "stroke_circle" || sphere.R != f.Sphere.R || sphere.Width != 1 {
		t.Errorf("second op = %v, want sphere outline", sphere)
	}
	if got := rec.Count("text"); got != 2 {
		t.Errorf("labels = %d, want 2", got)
	}
	// 2 点阵 + 高亮(实心 + 亮核) + 普通(实心)
	if got := rec.Count("fill_circle"); got != 5 {
		t.Errorf("fill circles = %d, want 5", got)
	}
	// 球轮廓 + 脉冲环
	if got := rec.Count("stroke_circle"); got != 2 {
		t.Fatalf("stroke circles = %d, want 2", got)
	}
	var ring Op
	for _, o := range rec.Ops[2:] {
		if o.Kind == "stroke_circle" {
			ring = o
		}
	}
	// sin(π/2)=1：r = 3 + 1.5 + 4，alpha = 0.25
	if math.Abs(ring.R-8.5) > 1e-9 {
		t.Errorf("pulse ring r = %v, want 8.5", ring.R)
	}
	if math.Abs(ring.Color.A-0.25) > 1e-9 {
		t.Errorf("pulse ring alpha = %v, want 0.25", ring.Color.A)
	}
	last := rec.Ops[len(rec.Ops)-1]
	if last.Kind != "text" || last.Text != "plain" {
		t.Errorf("last op = %v, want plain label", last)
	}
	var label Op
	for _, o := range rec.Ops {
		if o.Kind == "text" && o.Text == "Porto, PT" {
			label = o
		}
	}
	if label.X != 400+8 || label.Y != 220+4 || label.R != 10 {
		t.Errorf("label = %v", label)
	}
}

func TestDrawAppliesDPR(t *testing.T) {
	in := baseInput()
	in.DPR = 2
	in.Graticule = nil
	f := Build(in)
	var rec Recorder
	Draw(f, &rec, DefaultStyle())
	c := rec.Ops[1]
	if c.X != 800 || c.Y != 440 || math.Abs(c.R-2*f.Sphere.R) > 1e-9 || c.Width != 2 {
		t.Errorf("dpr circle = %v", c)
	}
}

func TestDrawNilIsNoop(t *testing.T) {
	var rec Recorder
	Draw(nil, &rec, DefaultStyle())
	Draw(Build(baseInput()), nil, DefaultStyle())
	if len(rec.Ops) != 0 {
		t.Errorf("ops recorded for nil frame: %d", len(rec.Ops))
	}
}

func TestHex(t *testing.T) {
	c, err := Hex("#EBE9E4")
	if err != nil || c.R != 0xEB || c.G != 0xE9 || c.B != 0xE4 || c.A != 1 {
		t.Errorf("Hex = %+v, %v", c, err)
	}
	if _, err := Hex("#12345"); err == nil {
		t.Error("short hex accepted")
	}
	if _, err := Hex("zzzzzz"); err == nil {
		t.Error("non-hex accepted")
	}
	if got := RGBA(1, 2, 3, 0.5).CSS(); got != "rgba(1,2,3,0.5)" {
		t.Errorf("CSS() = %q", got)
	}
	if got := RGBA(0, 0, 0, 1).NRGBA().A; got != 255 {
		t.Errorf("NRGBA alpha = %d", got)
	}
}

func TestBackdrop(t *testing.T) {
	if got := DefaultStyle().Backdrop(); got != Paper {
		t.Errorf("transparent style backdrop = %+v, want paper", got)
	}
	dark := RGBA(10, 10, 10, 1)
	if got := DefaultStyle().Opaque(dark).Backdrop(); got != dark {
		t.Errorf("opaque style backdrop = %+v", got)
	}
}
