package tuihost

import (
	"strings"
	"testing"
	"time"

	"dotglobe/internal/host"
	"dotglobe/internal/render"
	"dotglobe/internal/view"

	tea "github.com/charmbracelet/bubbletea"
)

var ink = render.RGBA(51, 51, 51, 1)

func TestBrailleDotBits(t *testing.T) {
	c := NewCanvas(1, 1)
	c.set(0, 0, ink)
	c.set(1, 3, ink)
	if got := c.Lines()[0]; got != string(rune(0x2800+0x01+0x80)) {
		t.Errorf("cell = %U", []rune(got)[0])
	}
	c.set(5, 5, ink) // 越界忽略
	c.set(-1, 0, ink)
	if c.mask[0] != 0x81 {
		t.Errorf("mask = %#x", c.mask[0])
	}
}

func TestBrailleLineAndClear(t *testing.T) {
	c := NewCanvas(4, 1)
	c.StrokePolyline([]render.Vec{{X: 0, Y: 0}, {X: 7, Y: 0}}, 1, ink)
	full := string(rune(0x2800 + 0x01 + 0x08))
	if got := c.Lines()[0]; got != strings.Repeat(full, 4) {
		t.Errorf("line = %q", got)
	}
	c.Clear(render.Color{})
	if got := c.Lines()[0]; got != "    " {
		t.Errorf("after clear = %q", got)
	}
}

func TestBrailleCircleAndText(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillCircle(10, 10, 0.2, ink)
	if c.mask[(10/cellH)*10+10/cellW] == 0 {
		t.Error("tiny fill left no mark")
	}
	c.StrokeCircle(10, 10, 6, 1, ink)
	c.Text("Porto", 8, 9, 10, ink)
	line := c.Lines()[2]
	if !strings.Contains(line, "Porto") {
		t.Errorf("row 2 = %q", line)
	}
	if w, h := c.PixelSize(); w != 20 || h != 20 {
		t.Errorf("PixelSize = %dx%d", w, h)
	}
}

func TestBlendAndHex(t *testing.T) {
	got := blend(render.RGBA(0, 0, 0, 1), render.Paper)
	if hex(got) != "#000000" {
		t.Errorf("opaque blend = %s", hex(got))
	}
	faint := blend(render.RGBA(0, 0, 0, 0.1), render.RGBA(255, 255, 255, 1))
	if faint.R > 150 {
		t.Errorf("faint ink too light: %+v", faint)
	}
	if hex(render.Paper) != "#ebe9e4" {
		t.Errorf("hex = %s", hex(render.Paper))
	}
}

func TestModelRendersAfterResize(t *testing.T) {
	m := New(host.Options{})
	m.app.Start(nil, 0)
	defer m.app.Close()
	var tm tea.Model = m
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 60, Height: 21})
	tm, _ = tm.Update(tickMsg(time.Now()))
	out := tm.View()
	if !strings.Contains(out, "lat") || !hasBraille(out) {
		t.Errorf("view missing braille or status:\n%s", out)
	}
	mm := tm.(Model)
	if f := mm.app.Frame(); f == nil || f.Width != 120 || f.Height != 80 {
		t.Fatalf("frame = %+v", f)
	}

	tm, _ = tm.Update(tea.MouseMsg{X: 30, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	tm, _ = tm.Update(tickMsg(time.Now().Add(time.Second / 30)))
	if got := tm.(Model).app.Frame().Mode; got != view.Dragging.String() {
		t.Errorf("mode after press = %q", got)
	}
	if _, cmd := tm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
}

func hasBraille(s string) bool {
	for _, r := range s {
		if r > 0x2800 && r <= 0x28FF {
			return true
		}
	}
	return false
}
