package globe

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"dotglobe/internal/land"
	"dotglobe/internal/logger"
	"dotglobe/internal/render"
	"dotglobe/internal/ticker"
)

// EventBuffer 事件队列容量；满时丢弃新事件
const EventBuffer = 256

// 文档注释：单写者运行器
// 背景：输入来自宿主/网络 goroutine，陆地加载在后台 goroutine；二者都只投递到队列，由 tick 回调在同一 goroutine 上排空后推进地球。
// 约束：Close 之后不再接受事件，tick 订阅被取消，未完成的加载被取消且结果丢弃。
type Runner struct {
	g       *Globe
	src     ticker.Source
	onFrame func(*render.Frame)

	events chan Event
	lands  chan *land.Land

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	unsub  func()
	closed atomic.Bool
	loads  sync.WaitGroup
}

// NewRunner onFrame 可为 nil；每个产出的帧在 tick goroutine 上回调
func NewRunner(g *Globe, src ticker.Source, onFrame func(*render.Frame)) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		g:       g,
		src:     src,
		onFrame: onFrame,
		events:  make(chan Event, EventBuffer),
		lands:   make(chan *land.Land, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Globe 被驱动的地球；只允许在 tick 回调内访问
func (r *Runner) Globe() *Globe { return r.g }

// Start 订阅时钟；重复调用无效
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unsub != nil || r.closed.Load() {
		return
	}
	r.unsub = r.src.Subscribe(r.tick)
}

// Send 投递输入事件；已关闭或队列满时返回 false
func (r *Runner) Send(ev Event) bool {
	if r.closed.Load() {
		return false
	}
	select {
	case r.events <- ev:
		return true
	default:
		logger.L().Debug("globe_event_dropped", "kind", ev.Kind.String())
		return false
	}
}

// 文档注释：后台加载陆地数据
// 背景：加载期间照常出帧（只有经纬网与标注），完成后在下一个 tick 安装。
// 约束：失败记录 warn（land_load_failed）后放弃，不重试。
func (r *Runner) LoadLand(src land.Source, spacing float64) {
	if r.closed.Load() {
		return
	}
	r.loads.Add(1)
	go func() {
		defer r.loads.Done()
		l, err := land.Load(r.ctx, src, spacing)
		if err != nil {
			logger.L().Warn("land_load_failed", "source", src.Name(), "err", err)
			return
		}
		r.InstallLand(l)
	}()
}

// InstallLand 投递一个已加载的数据集；较新的结果覆盖尚未安装的旧结果
func (r *Runner) InstallLand(l *land.Land) {
	if r.closed.Load() {
		return
	}
	for {
		select {
		case r.lands <- l:
			return
		case <-r.ctx.Done():
			return
		default:
		}
		select {
		case <-r.lands:
		default:
		}
	}
}

// Wait 等待后台加载结束（测试与优雅退出）
func (r *Runner) Wait() { r.loads.Wait() }

func (r *Runner) tick(now time.Time) {
	if r.closed.Load() {
		return
	}
	r.drain(now)
	f := r.g.Tick(now)
	if f != nil && r.onFrame != nil {
		r.onFrame(f)
	}
}

func (r *Runner) drain(now time.Time) {
	for {
		select {
		case ev := <-r.events:
			r.g.Handle(ev, now)
		case l := <-r.lands:
			r.g.SetLand(l)
		default:
			return
		}
	}
}

// Close 取消订阅与后台加载；可重复调用
func (r *Runner) Close() {
	if r.closed.Swap(true) {
		return
	}
	r.mu.Lock()
	unsub := r.unsub
	r.unsub = nil
	r.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	r.cancel()
}
