package view

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const frame = time.Second / 60

func TestModeString(t *testing.T) {
	tests := map[Mode]string{
		AutoRotating:  "auto_rotating",
		Dragging:      "dragging",
		ReturningHome: "returning_home",
		Mode(42):      "unknown",
	}
	for m, want := range tests {
		if got := m.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", int(m), got, want)
		}
	}
}

func TestLatitudeClampUnderRandomDrags(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	c := NewController()
	now := t0
	for i := 0; i < 500; i++ {
		c.Press(rng.Float64()*800, rng.Float64()*600, now)
		for k := 0; k < 20; k++ {
			c.Move(rng.Float64()*4000-2000, rng.Float64()*4000-2000)
			s := c.State()
			if s.Lat < MinLat || s.Lat > MaxLat {
				t.Fatalf("lat %v escaped [%v, %v]", s.Lat, MinLat, MaxLat)
			}
			if s.Lng < 0 || s.Lng >= 360 {
				t.Fatalf("lng %v escaped [0, 360)", s.Lng)
			}
		}
		c.Release(now)
		now = now.Add(frame)
		c.Tick(now)
	}
}

func TestDragUpdatesFromPressOrigin(t *testing.T) {
	c := NewController()
	c.Press(100, 100, t0)
	if c.Mode() != Dragging {
		t.Fatalf("mode = %v, want dragging", c.Mode())
	}
	c.Move(110, 90)
	s := c.State()
	wantLng := HomeLng - 10*DragSensitivity
	wantLat := HomeLat - 10*DragSensitivity
	if math.Abs(s.Lng-wantLng) > 1e-9 || math.Abs(s.Lat-wantLat) > 1e-9 {
		t.Errorf("after drag got (%v, %v), want (%v, %v)", s.Lng, s.Lat, wantLng, wantLat)
	}
	// 拖拽中不自转
	c.Tick(t0.Add(frame))
	if c.State() != s {
		t.Errorf("state changed during drag tick: %+v -> %+v", s, c.State())
	}
}

func TestMoveIgnoredWhenNotDragging(t *testing.T) {
	c := NewController()
	before := c.State()
	if c.Move(500, 500) {
		t.Error("Move reported a change without a press")
	}
	if c.State() != before {
		t.Error("state changed without a press")
	}
}

func TestAutoRotationWraps(t *testing.T) {
	c := NewController()
	now := t0
	prev := c.State().Lng
	wraps := 0
	for i := 0; i < 10000; i++ {
		now = now.Add(frame)
		c.Tick(now)
		lng := c.State().Lng
		if lng < 0 || lng >= 360 {
			t.Fatalf("tick %d: lng %v outside [0, 360)", i, lng)
		}
		if lng < prev {
			wraps++
			if math.Abs(lng+360-prev-RotateStep) > 1e-9 {
				t.Fatalf("tick %d: wrapped from %v to %v", i, prev, lng)
			}
		} else if math.Abs(lng-prev-RotateStep) > 1e-9 {
			t.Fatalf("tick %d: advanced from %v to %v", i, prev, lng)
		}
		prev = lng
	}
	if wraps == 0 {
		t.Error("expected at least one wrap in 10000 ticks")
	}
}

func TestReleaseDelaysReturnHome(t *testing.T) {
	c := NewController()
	c.Press(0, 0, t0)
	c.Move(0, 200)
	c.Release(t0)
	if c.Mode() != AutoRotating {
		t.Fatalf("mode after release = %v, want auto_rotating", c.Mode())
	}
	if !c.ReturnPending() {
		t.Fatal("release should arm the return timer")
	}
	lat := c.State().Lat
	c.Tick(t0.Add(ReturnDelay - time.Millisecond))
	if c.Mode() != AutoRotating || c.State().Lat != lat {
		t.Fatalf("return started before delay: mode=%v lat=%v", c.Mode(), c.State().Lat)
	}
	c.Tick(t0.Add(ReturnDelay))
	if c.Mode() != ReturningHome {
		t.Fatalf("mode after delay = %v, want returning_home", c.Mode())
	}
}

func TestPressCancelsPendingReturn(t *testing.T) {
	c := NewController()
	c.Press(0, 0, t0)
	c.Release(t0)
	c.Press(5, 5, t0.Add(time.Second))
	if c.ReturnPending() {
		t.Fatal("press should cancel the pending return")
	}
	c.Tick(t0.Add(10 * time.Second))
	if c.Mode() != Dragging {
		t.Fatalf("mode = %v, want dragging", c.Mode())
	}
}

func TestPressInterruptsReturningHome(t *testing.T) {
	c := NewController()
	c.Press(0, 0, t0)
	c.Move(0, 100)
	c.Release(t0)
	c.Tick(t0.Add(ReturnDelay))
	if c.Mode() != ReturningHome {
		t.Fatalf("mode = %v, want returning_home", c.Mode())
	}
	c.Press(1, 1, t0.Add(ReturnDelay+frame))
	if c.Mode() != Dragging {
		t.Fatalf("mode = %v, want dragging", c.Mode())
	}
}

func TestReturnHomeConverges(t *testing.T) {
	c := NewController()
	c.st.Scale = MaxScale
	c.st.Lat = MaxLat
	c.Press(0, 0, t0)
	c.Release(t0)
	now := t0.Add(ReturnDelay)
	c.Tick(now)
	if c.Mode() != ReturningHome {
		t.Fatalf("mode = %v, want returning_home", c.Mode())
	}
	for i := 0; i < 1000 && c.Mode() == ReturningHome; i++ {
		lngBefore := c.State().Lng
		now = now.Add(frame)
		c.Tick(now)
		if c.State().Lng == lngBefore {
			t.Fatal("longitude must keep rotating while returning home")
		}
	}
	s := c.State()
	if c.Mode() != AutoRotating {
		t.Fatalf("did not converge: mode=%v state=%+v", c.Mode(), s)
	}
	if s.Scale != HomeScale {
		t.Errorf("scale = %v, want exactly %v", s.Scale, HomeScale)
	}
	if math.Abs(s.Lat-HomeLat) > LatEpsilon {
		t.Errorf("lat = %v, want %v±%v", s.Lat, HomeLat, LatEpsilon)
	}
}

func TestWheelAndPinchClamp(t *testing.T) {
	c := NewController()
	for i := 0; i < 200; i++ {
		c.Wheel(-1)
	}
	if got := c.State().Scale; got != MaxScale {
		t.Errorf("scale after zooming in = %v, want %v", got, MaxScale)
	}
	for i := 0; i < 200; i++ {
		c.Pinch(0.5)
	}
	if got := c.State().Scale; got != MinScale {
		t.Errorf("scale after pinching out = %v, want %v", got, MinScale)
	}
	c.Wheel(0)
	c.Pinch(1)
	c.Pinch(-3)
	if got := c.State().Scale; got != MinScale {
		t.Errorf("neutral input changed scale to %v", got)
	}
	c.Wheel(-120)
	if got := c.State().Scale; math.Abs(got-MinScale*ZoomIn) > 1e-12 {
		t.Errorf("one wheel step = %v, want %v", got, MinScale*ZoomIn)
	}
}

func TestSetHomeClampsAndResets(t *testing.T) {
	c := NewController()
	c.SetHome(-100, 89)
	s := c.State()
	if s.Lng != 260 || s.Lat != MaxLat || s.Scale != HomeScale {
		t.Errorf("home state = %+v", s)
	}
	if c.Mode() != AutoRotating {
		t.Errorf("mode = %v, want auto_rotating", c.Mode())
	}
}

func TestNormalize(t *testing.T) {
	s := State{Lng: -30, Lat: 95, Scale: 9}.Normalize()
	if s.Lng != 330 || s.Lat != MaxLat || s.Scale != MaxScale {
		t.Errorf("Normalize = %+v", s)
	}
	nan := math.NaN()
	tests := []struct {
		name string
		in   State
		want State
	}{
		{"all NaN", State{Lng: nan, Lat: nan, Scale: nan}, Home()},
		{"NaN lat only", State{Lng: 10, Lat: nan, Scale: 2}, State{Lng: 10, Lat: HomeLat, Scale: 2}},
		{"infinities", State{Lng: math.Inf(1), Lat: math.Inf(-1), Scale: math.Inf(1)}, Home()},
	}
	for _, tc := range tests {
		if got := tc.in.Normalize(); got != tc.want {
			t.Errorf("%s: Normalize = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}
