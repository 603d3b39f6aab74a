package globe

import "math"

// Point 触点（CSS 像素）
type Point struct {
	X, Y float64
}

// 文档注释：触摸手势到指针事件的转换
// 背景：单指拖拽等同鼠标拖拽；双指按距离变化缩放，缩放期间不旋转。
// 约束：每次回调传入当前全部触点；从双指降到单指时不重新开始拖拽，需全部抬起后再按下。
type TouchTracker struct {
	dragging bool
	pinching bool
	lastDist float64
}

// Start 触点开始
func (t *TouchTracker) Start(pts []Point) []Event {
	switch len(pts) {
	case 1:
		if t.pinching {
			return nil
		}
		t.dragging = true
		return []Event{{Kind: Down, X: pts[0].X, Y: pts[0].Y}}
	case 2:
		var out []Event
		if t.dragging {
			t.dragging = false
			out = append(out, Event{Kind: Up})
		}
		t.pinching = true
		t.lastDist = dist(pts[0], pts[1])
		return out
	}
	return nil
}

// Move 触点移动
func (t *TouchTracker) Move(pts []Point) []Event {
	switch {
	case t.dragging && len(pts) == 1:
		return []Event{{Kind: Move, X: pts[0].X, Y: pts[0].Y}}
	case t.pinching && len(pts) == 2:
		d := dist(pts[0], pts[1])
		if t.lastDist <= 0 || d <= 0 || d == t.lastDist {
			return nil
		}
		r := d / t.lastDist
		t.lastDist = d
		return []Event{{Kind: Pinch, Ratio: r}}
	}
	return nil
}

// End 触点结束；remaining 为仍在屏幕上的触点
func (t *TouchTracker) End(remaining []Point) []Event {
	if len(remaining) > 0 {
		if t.pinching && len(remaining) < 2 {
			t.lastDist = 0
		}
		return nil
	}
	var out []Event
	if t.dragging {
		out = append(out, Event{Kind: Up})
	}
	t.dragging, t.pinching, t.lastDist = false, false, 0
	return out
}

func dist(a, b Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }
