// 包 tuihost：bubbletea 终端宿主（盲文点阵渲染，鼠标拖拽与滚轮缩放）
package tuihost

import (
	"fmt"
	"time"

	"dotglobe/internal/globe"
	"dotglobe/internal/host"
	"dotglobe/internal/logger"
	"dotglobe/internal/render"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#333333")).Bold(true)
)

type tickMsg time.Time

// Model 终端地球
type Model struct {
	app    *host.App
	canvas *Canvas
	frame  time.Duration

	width, height int
	// 鼠标状态由消息累积，每个 tick 作为一次输入快照提交
	in globe.Input
}

// New 创建模型；opts.Globe 的尺寸被忽略，按终端窗口计算
func New(opts host.Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	opts.Globe.Width, opts.Globe.Height = 0, 0
	return Model{
		app:    host.NewApp(opts),
		canvas: NewCanvas(0, 0),
		frame:  time.Second / time.Duration(opts.FPS),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// 微像素坐标：字符格中心
func cellToPixel(x, y int) (float64, float64) {
	return float64(x*cellW + cellW/2), float64(y*cellH + cellH/2)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		rows := msg.Height - 1
		if rows < 1 {
			rows = 1
		}
		m.canvas.Resize(msg.Width, rows)
		w, h := m.canvas.PixelSize()
		m.app.Resize(float64(w), float64(h), 1)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.app.Send(globe.Event{Kind: globe.Reset})
		case "+", "=":
			m.in.WheelY = -1
		case "-", "_":
			m.in.WheelY = 1
		}
	case tea.MouseMsg:
		x, y := cellToPixel(msg.X, msg.Y)
		switch {
		case msg.Button == tea.MouseButtonWheelUp:
			m.in.WheelY = -1
		case msg.Button == tea.MouseButtonWheelDown:
			m.in.WheelY = 1
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			m.in.Down, m.in.X, m.in.Y = true, x, y
		case msg.Action == tea.MouseActionMotion:
			m.in.X, m.in.Y = x, y
		case msg.Action == tea.MouseActionRelease:
			m.in.Down = false
		}
	case tickMsg:
		m.app.Step(m.in, time.Time(msg))
		m.in.WheelY = 0
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	f := m.app.Frame()
	if f == nil {
		return statusStyle.Render("loading…")
	}
	st := m.app.Style()
	// 终端字符格已是最小单位，线宽与 DPR 不再起作用
	m.canvas.Clear(st.Background)
	render.Draw(f, m.canvas, st)
	status := fmt.Sprintf("lng %6.1f  lat %5.1f  ×%.2f  %s", f.View.Lng, f.View.Lat, f.View.Scale, f.Mode)
	if f.Facing != "" {
		status += "  " + accentStyle.Render("▸ "+f.Facing)
	}
	status += statusStyle.Render("   drag · wheel/+/- zoom · r reset · q quit")
	return m.canvas.View(st.Backdrop()) + "\n" + status
}

// Run 进入全屏终端界面并阻塞到退出
func Run(opts host.Options) error {
	m := New(opts)
	m.app.Start(opts.Land, opts.Spacing)
	defer m.app.Close()
	logger.L().Info("tui_open", "fps", opts.FPS)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
