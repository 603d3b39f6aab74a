package projection

import (
	"math"
	"math/rand"
	"testing"

	"dotglobe/internal/geo"

	"github.com/golang/geo/s2"
)

func TestProjectCenter(t *testing.T) {
	o := New(-8, 25, 1, 200, 400, 300)
	x, y, ok := o.Project(-8, 25)
	if !ok {
		t.Fatal("view center must be visible")
	}
	if math.Abs(x-400) > 1e-9 || math.Abs(y-300) > 1e-9 {
		t.Errorf("center projected to (%v, %v), want (400, 300)", x, y)
	}
}

func TestProjectKnownPoints(t *testing.T) {
	o := New(0, 0, 1, 100, 0, 0)
	tests := []struct {
		name     string
		lng, lat float64
		wantX    float64
		wantY    float64
		wantOK   bool
		epsilon  float64
	}{
		{"north pole on limb", 0, 90, 0, -100, true, 1e-9},
		{"east limb", 90, 0, 100, 0, true, 1e-9},
		{"45E on equator", 45, 0, 100 * math.Sqrt2 / 2, 0, true, 1e-9},
		{"antipode hidden", 180, 0, 0, 0, false, 0},
		{"back side hidden", 120, 10, 0, 0, false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y, ok := o.Project(tc.lng, tc.lat)
			if ok != tc.wantOK {
				t.Fatalf("visible = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if math.Abs(x-tc.wantX) > tc.epsilon || math.Abs(y-tc.wantY) > tc.epsilon {
				t.Errorf("got (%v, %v), want (%v, %v)", x, y, tc.wantX, tc.wantY)
			}
		})
	}
}

func TestProjectScaleMultipliesRadius(t *testing.T) {
	a := New(10, 20, 1, 100, 0, 0)
	b := New(10, 20, 2.5, 100, 0, 0)
	xa, ya, _ := a.Project(30, 35)
	xb, yb, _ := b.Project(30, 35)
	if math.Abs(xb-2.5*xa) > 1e-9 || math.Abs(yb-2.5*ya) > 1e-9 {
		t.Errorf("scale 2.5 gave (%v, %v), want (%v, %v)", xb, yb, 2.5*xa, 2.5*ya)
	}
}

// 对跖视角下可见性互补（切点附近除外）
func TestVisibilityAntipodalSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		lng0 := rng.Float64() * 360
		lat0 := rng.Float64()*160 - 80
		lng := rng.Float64()*360 - 180
		lat := rng.Float64()*180 - 90

		o := New(lng0, lat0, 1, 1, 0, 0)
		anti := New(geo.WrapLon360(lng0+180), -lat0, 1, 1, 0, 0)
		if math.Abs(o.CosC(lng, lat)) < 1e-9 {
			continue
		}
		_, _, v1 := o.Project(lng, lat)
		_, _, v2 := anti.Project(lng, lat)
		if v1 == v2 {
			t.Fatalf("center (%v,%v) point (%v,%v): visible=%v at both center and antipode", lng0, lat0, lng, lat, v1)
		}
	}
}

func TestVisibilityMatchesGreatCircleDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		lng0 := rng.Float64()*360 - 180
		lat0 := rng.Float64()*160 - 80
		lng := rng.Float64()*360 - 180
		lat := rng.Float64()*180 - 90
		d := s2.LatLngFromDegrees(lat0, lng0).Distance(s2.LatLngFromDegrees(lat, lng)).Degrees()
		if math.Abs(d-90) < 1e-6 {
			continue
		}
		_, _, ok := New(lng0, lat0, 1, 1, 0, 0).Project(lng, lat)
		if ok != (d < 90) {
			t.Fatalf("center (%v,%v) point (%v,%v): visible=%v but distance %.4f°", lng0, lat0, lng, lat, ok, d)
		}
	}
}

func TestProjectedPointsStayInsideDisc(t *testing.T) {
	o := New(33, -12, 1.7, 150, 320, 240)
	for lat := -90.0; lat <= 90; lat += 5 {
		for lng := -180.0; lng <= 180; lng += 5 {
			x, y, ok := o.Project(lng, lat)
			if !ok {
				continue
			}
			if r := math.Hypot(x-320, y-240); r > 150*1.7+1e-9 {
				t.Fatalf("(%v,%v) projected %.3f px from center, radius %.3f", lng, lat, r, 150*1.7)
			}
		}
	}
}

func TestProjectRingSplitsOnHiddenVertices(t *testing.T) {
	o := New(0, 0, 1, 100, 0, 0)
	ring := geo.Ring{{Lon: -10, Lat: 0}, {Lon: 10, Lat: 0}, {Lon: 170, Lat: 0}, {Lon: 30, Lat: 0}, {Lon: 40, Lat: 0}}
	runs := o.ProjectRing(ring)
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if len(runs[0]) != 2 || len(runs[1]) != 2 {
		t.Errorf("run lengths = %d, %d, want 2, 2", len(runs[0]), len(runs[1]))
	}
}

func TestGraticuleLines(t *testing.T) {
	lines := Graticule(GraticuleStep, GraticuleSample)
	// 13 条经线（-180..180）+ 5 条纬线（-60..60）
	if len(lines) != 18 {
		t.Fatalf("got %d graticule lines, want 18", len(lines))
	}
	if n := len(lines[0]); n != 91 {
		t.Errorf("meridian has %d samples, want 91", n)
	}
	if n := len(lines[13]); n != 181 {
		t.Errorf("parallel has %d samples, want 181", n)
	}
	if lat := lines[13][0].Lat; lat != -60 {
		t.Errorf("first parallel at %v, want -60", lat)
	}
	if Graticule(0, 2) != nil {
		t.Error("zero step should yield no lines")
	}
}

func TestRadius(t *testing.T) {
	if got := Radius(800, 440); math.Abs(got-200) > 1e-9 {
		t.Errorf("Radius(800, 440) = %v, want 200", got)
	}
}
