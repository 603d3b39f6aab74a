package globe

// Input 窗口宿主每帧轮询得到的输入快照
type Input struct {
	X, Y float64
	Down bool
	// WheelY 沿用浏览器约定：>0 缩小，<0 放大
	WheelY  float64
	Touches []Point
}

// 文档注释：轮询式输入到事件的转换
// 背景：窗口库（ebiten/raylib）只提供“当前是否按下、当前位置”，这里按帧差分还原成按下/移动/抬起事件；触摸交给 TouchTracker。
// 约束：有触点时忽略鼠标状态；位置不变的按住不产生 Move。
type Pointer struct {
	down         bool
	lastX, lastY float64
	touches      int
	touch        TouchTracker
}

// Update 与上一帧比较并返回本帧事件
func (p *Pointer) Update(in Input) []Event {
	var out []Event
	n := len(in.Touches)
	switch {
	case n > p.touches:
		out = append(out, p.touch.Start(in.Touches)...)
	case n < p.touches:
		out = append(out, p.touch.End(in.Touches)...)
	case n > 0:
		out = append(out, p.touch.Move(in.Touches)...)
	}
	p.touches = n
	if n == 0 {
		switch {
		case in.Down && !p.down:
			out = append(out, Event{Kind: Down, X: in.X, Y: in.Y})
		case in.Down && (in.X != p.lastX || in.Y != p.lastY):
			out = append(out, Event{Kind: Move, X: in.X, Y: in.Y})
		case !in.Down && p.down:
			out = append(out, Event{Kind: Up})
		}
		p.down = in.Down
		p.lastX, p.lastY = in.X, in.Y
	}
	if in.WheelY != 0 {
		out = append(out, Event{Kind: Wheel, DeltaY: in.WheelY})
	}
	return out
}
