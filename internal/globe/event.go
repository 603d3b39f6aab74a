package globe

import "fmt"

// Kind 输入事件类型
type Kind int

const (
	Down Kind = iota + 1
	Move
	Up
	Wheel
	Pinch
	Visible
	Resize
	Reset
)

var kindNames = map[Kind]string{
	Down:    "down",
	Move:    "move",
	Up:      "up",
	Wheel:   "wheel",
	Pinch:   "pinch",
	Visible: "visible",
	Resize:  "resize",
	Reset:   "reset",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind 由线上协议的 type 字段解析
func ParseKind(s string) (Kind, error) {
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event type %q", s)
}

// 文档注释：输入事件
// 约束：X/Y 为 CSS 像素（相对画布左上角）；DeltaY 仅 Wheel 使用；Ratio 仅 Pinch 使用；On 仅 Visible 使用；W/H/DPR 仅 Resize 使用。
type Event struct {
	Kind   Kind
	X, Y   float64
	DeltaY float64
	Ratio  float64
	On     bool
	W, H   float64
	DPR    float64
}
