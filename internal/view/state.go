// 包 view：视图状态（旋转/缩放）与交互状态机（自转、拖拽、回归）
package view

import (
	"math"
	"time"

	"dotglobe/internal/geo"
)

// 交互参数（编译期常量）
const (
	HomeLng   = 352.0 // -8°：启动时朝向波尔图/欧洲
	HomeLat   = 25.0
	HomeScale = 1.0

	RotateStep      = 0.15 // 度/帧
	DragSensitivity = 0.3  // 度/像素

	MinLat   = -80.0
	MaxLat   = 80.0
	MinScale = 0.5
	MaxScale = 2.5

	ZoomIn  = 1.05
	ZoomOut = 0.95

	ReturnDelay = 2000 * time.Millisecond
	EaseFactor  = 0.08

	LatEpsilon   = 0.01
	ScaleEpsilon = 0.001
)

// State：单帧视图朝向；Lng ∈ [0,360)，Lat ∈ [-80,80]，Scale ∈ [0.5,2.5]
type State struct {
	Lng   float64 `json:"lng"`
	Lat   float64 `json:"lat"`
	Scale float64 `json:"scale"`
}

// Home 默认朝向
func Home() State {
	return State{Lng: HomeLng, Lat: HomeLat, Scale: HomeScale}
}

// Normalize 把任意输入折叠回不变量范围内；非有限分量（NaN/Inf）取默认朝向的对应值
func (s State) Normalize() State {
	home := Home()
	if !finite(s.Lng) {
		s.Lng = home.Lng
	}
	if !finite(s.Lat) {
		s.Lat = home.Lat
	}
	if !finite(s.Scale) {
		s.Scale = home.Scale
	}
	s.Lng = geo.WrapLon360(s.Lng)
	s.Lat = geo.Clamp(s.Lat, MinLat, MaxLat)
	s.Scale = geo.Clamp(s.Scale, MinScale, MaxScale)
	return s
}

// Mode：交互状态（标签枚举）
type Mode int

const (
	AutoRotating Mode = iota
	Dragging
	ReturningHome
)

func (m Mode) String() string {
	switch m {
	case AutoRotating:
		return "auto_rotating"
	case Dragging:
		return "dragging"
	case ReturningHome:
		return "returning_home"
	default:
		return "unknown"
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
