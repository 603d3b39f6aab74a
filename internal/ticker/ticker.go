// 包 ticker：帧时钟抽象（手动时钟用于测试，定时器用于服务端会话；窗口宿主自身即时钟）
package ticker

import (
	"sort"
	"sync"
	"time"
)

// Source：帧回调来源；cancel 之后不再回调，重复调用 cancel 安全
type Source interface {
	Subscribe(fn func(now time.Time)) (cancel func())
}

// DefaultFrame 默认帧间隔（60 FPS）
const DefaultFrame = time.Second / 60

// Manual：同步假时钟，Advance/Step 在调用方 goroutine 上依次回调订阅者
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	frame time.Duration
	next  int
	subs  map[int]func(time.Time)
}

// NewManual 以给定起点与帧间隔创建手动时钟；frame<=0 时用 DefaultFrame
func NewManual(start time.Time, frame time.Duration) *Manual {
	if frame <= 0 {
		frame = DefaultFrame
	}
	return &Manual{now: start, frame: frame, subs: make(map[int]func(time.Time))}
}

func (m *Manual) Subscribe(fn func(now time.Time)) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = fn
	m.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// Now 当前假时间
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Subscribers 当前订阅数
func (m *Manual) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Step 推进一帧
func (m *Manual) Step() { m.Advance(m.frame) }

// Advance 推进 d 并回调一次（按订阅顺序）
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.fire(m.now.Add(d))
}

// Fire 把时钟设为 now 并回调一次；窗口宿主在自己的帧循环里用墙钟驱动
func (m *Manual) Fire(now time.Time) {
	m.mu.Lock()
	m.fire(now)
}

// fire 调用时必须持有 m.mu，返回前释放
func (m *Manual) fire(now time.Time) {
	m.now = now
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	fns := make([]func(time.Time), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.mu.Unlock()
	// 回调期间不持锁：回调里允许 cancel
	for _, fn := range fns {
		fn(now)
	}
}

// Interval：time.Ticker 驱动；每个订阅一个 goroutine，回调串行执行
type Interval struct {
	d time.Duration
}

// NewInterval d<=0 时用 DefaultFrame
func NewInterval(d time.Duration) *Interval {
	if d <= 0 {
		d = DefaultFrame
	}
	return &Interval{d: d}
}

// FromFPS 由帧率构造；fps<=0 时用 60
func FromFPS(fps int) *Interval {
	if fps <= 0 {
		return NewInterval(DefaultFrame)
	}
	return NewInterval(time.Second / time.Duration(fps))
}

// Period 帧间隔
func (iv *Interval) Period() time.Duration { return iv.d }

func (iv *Interval) Subscribe(fn func(now time.Time)) func() {
	t := time.NewTicker(iv.d)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			case now := <-t.C:
				select {
				case <-stop:
					return
				default:
				}
				fn(now)
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			t.Stop()
			close(stop)
		})
	}
}
