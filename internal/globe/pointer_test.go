package globe

import "testing"

func kinds(evs []Event) []Kind {
	out := make([]Kind, len(evs))
	for i, e := range evs {
		out[i] = e.Kind
	}
	return out
}

func equalKinds(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPointerMouseSequence(t *testing.T) {
	var p Pointer
	steps := []struct {
		in   Input
		want []Kind
	}{
		{Input{X: 10, Y: 10}, nil},
		{Input{X: 10, Y: 10, Down: true}, []Kind{Down}},
		{Input{X: 10, Y: 10, Down: true}, nil},
		{Input{X: 30, Y: 12, Down: true}, []Kind{Move}},
		{Input{X: 30, Y: 12}, []Kind{Up}},
		{Input{X: 30, Y: 12, WheelY: -1}, []Kind{Wheel}},
	}
	for i, s := range steps {
		if got := kinds(p.Update(s.in)); !equalKinds(got, s.want) {
			t.Errorf("step %d: got %v, want %v", i, got, s.want)
		}
	}
}

func TestPointerTouchPinch(t *testing.T) {
	var p Pointer
	one := []Point{{X: 0, Y: 0}}
	two := []Point{{X: 0, Y: 0}, {X: 100, Y: 0}}
	wide := []Point{{X: 0, Y: 0}, {X: 200, Y: 0}}

	if got := kinds(p.Update(Input{Touches: one})); !equalKinds(got, []Kind{Down}) {
		t.Fatalf("first touch = %v", got)
	}
	if got := kinds(p.Update(Input{Touches: two})); !equalKinds(got, []Kind{Up}) {
		t.Fatalf("second finger = %v", got)
	}
	evs := p.Update(Input{Touches: wide})
	if len(evs) != 1 || evs[0].Kind != Pinch || evs[0].Ratio != 2 {
		t.Fatalf("spread = %+v", evs)
	}
	if got := p.Update(Input{Touches: one}); len(got) != 0 {
		t.Fatalf("lifting to one finger = %v", kinds(got))
	}
	if got := p.Update(Input{}); len(got) != 0 {
		t.Fatalf("lifting all after pinch = %v", kinds(got))
	}
	// 触摸期间的鼠标状态被忽略
	if got := p.Update(Input{Down: true, Touches: one}); !equalKinds(kinds(got), []Kind{Down}) {
		t.Fatalf("new touch = %v", kinds(got))
	}
}
