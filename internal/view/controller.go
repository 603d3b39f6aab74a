package view

import (
	"math"
	"time"

	"dotglobe/internal/geo"
)

// 文档注释：视图控制器（显式状态机）
// 背景：替代 dragging/autoRotate/returningHome 三个独立布尔量，所有转换集中在此处穷举处理，避免组合态缺陷。
// 约束：非并发安全；只允许渲染循环一个写者（输入事件在同一 tick 线程内投递）。
// 转换：
//   - 任意状态 --Press--> Dragging（取消待定的回归计时）
//   - Dragging --Release--> AutoRotating（经度立即恢复自转），并在 ReturnDelay 后进入 ReturningHome
//   - ReturningHome --纬度与缩放收敛--> AutoRotating
type Controller struct {
	st   State
	mode Mode
	home State

	dragX, dragY     float64
	dragLng, dragLat float64

	returnArmed bool
	returnAt    time.Time
}

// NewController 以默认朝向创建控制器
func NewController() *Controller {
	return &Controller{st: Home(), mode: AutoRotating, home: Home()}
}

// State 当前视图状态（值拷贝）
func (c *Controller) State() State { return c.st }

// Mode 当前交互状态
func (c *Controller) Mode() Mode { return c.mode }

// ReturnPending 是否有待触发的回归计时
func (c *Controller) ReturnPending() bool { return c.returnArmed }

// SetHome 设置回归目标（经度仅用于 Reset，纬度为回归目标），并立即复位
func (c *Controller) SetHome(lng, lat float64) {
	c.home = State{Lng: geo.WrapLon360(lng), Lat: geo.Clamp(lat, MinLat, MaxLat), Scale: HomeScale}
	c.Reset()
}

// Reset 回到初始朝向与自转状态
func (c *Controller) Reset() {
	c.st = c.home
	c.mode = AutoRotating
	c.returnArmed = false
}

// Press 指针/触摸按下：进入拖拽并记录起点
func (c *Controller) Press(x, y float64, now time.Time) {
	c.mode = Dragging
	c.returnArmed = false
	c.dragX, c.dragY = x, y
	c.dragLng, c.dragLat = c.st.Lng, c.st.Lat
}

// Move 拖拽中按位移更新朝向；非拖拽状态忽略并返回 false
func (c *Controller) Move(x, y float64) bool {
	if c.mode != Dragging {
		return false
	}
	c.st.Lng = geo.WrapLon360(c.dragLng - (x-c.dragX)*DragSensitivity)
	c.st.Lat = geo.Clamp(c.dragLat+(y-c.dragY)*DragSensitivity, MinLat, MaxLat)
	return true
}

// Release 指针/触摸抬起：经度自转立即恢复，回归计时在 now+ReturnDelay 触发
func (c *Controller) Release(now time.Time) {
	if c.mode != Dragging {
		return
	}
	c.mode = AutoRotating
	c.returnArmed = true
	c.returnAt = now.Add(ReturnDelay)
}

// Wheel 滚轮缩放：deltaY>0 缩小，<0 放大，0 忽略
func (c *Controller) Wheel(deltaY float64) {
	switch {
	case deltaY > 0:
		c.zoom(ZoomOut)
	case deltaY < 0:
		c.zoom(ZoomIn)
	}
}

// Pinch 双指缩放：ratio 为当前/上次两指距离
func (c *Controller) Pinch(ratio float64) {
	switch {
	case ratio > 1:
		c.zoom(ZoomIn)
	case ratio > 0 && ratio < 1:
		c.zoom(ZoomOut)
	}
}

func (c *Controller) zoom(f float64) {
	c.st.Scale = geo.Clamp(c.st.Scale*f, MinScale, MaxScale)
}

// Tick 每帧推进：自转、回归计时、回归缓动
func (c *Controller) Tick(now time.Time) {
	switch c.mode {
	case Dragging:
		return
	case AutoRotating:
		c.rotate()
		if c.returnArmed && !now.Before(c.returnAt) {
			c.returnArmed = false
			c.mode = ReturningHome
		}
	case ReturningHome:
		c.rotate()
		c.st.Lat = ease(c.st.Lat, c.home.Lat, LatEpsilon)
		c.st.Scale = ease(c.st.Scale, HomeScale, ScaleEpsilon)
		if c.st.Lat == c.home.Lat && c.st.Scale == HomeScale {
			c.mode = AutoRotating
		}
	}
}

func (c *Controller) rotate() {
	c.st.Lng += RotateStep
	if c.st.Lng >= 360 {
		c.st.Lng -= 360
	}
}

// ease 指数缓动；剩余差值低于 eps 时直接吸附到目标，保证有限步终止
func ease(v, target, eps float64) float64 {
	d := target - v
	if math.Abs(d) < eps {
		return target
	}
	return v + d*EaseFactor
}
