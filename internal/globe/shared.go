package globe

import (
	"sync"
	"time"

	"dotglobe/internal/land"
	"dotglobe/internal/marker"
)

// LocatorCache 陆地命中缓存容量与过期
const (
	LocatorCache = 4096
	LocatorTTL   = 10 * time.Minute
)

// 文档注释：进程级共享数据（陆地数据集 + 标注）
// 背景：服务端一次加载陆地，所有会话与渲染接口共享同一份只读数据；加载完成后通知已存在的会话安装。
// 约束：并发安全；Land/Markers 返回的数据只读，调用方不得修改。Version 在每次替换后递增，用作渲染缓存键的一部分。
type Shared struct {
	mu      sync.RWMutex
	land    *land.Land
	locator *land.Locator
	markers []marker.Marker
	version uint64
	subs    map[int]func(*land.Land)
	nextID  int
}

// NewShared markers 为 nil 时使用内置标注
func NewShared(ms []marker.Marker) *Shared {
	if ms == nil {
		ms = marker.Defaults()
	}
	return &Shared{markers: ms, subs: make(map[int]func(*land.Land))}
}

// SetLand 替换数据集并通知订阅者（在调用方 goroutine 上回调）
func (s *Shared) SetLand(l *land.Land) {
	s.mu.Lock()
	s.land = l
	s.locator = land.NewLocator(l, LocatorCache, LocatorTTL)
	s.version++
	fns := make([]func(*land.Land), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(l)
	}
}

func (s *Shared) Land() *land.Land {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.land
}

// Locator 陆地命中查询；未加载时返回 nil（At 对 nil 安全）
func (s *Shared) Locator() *land.Locator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locator
}

func (s *Shared) SetMarkers(ms []marker.Marker) {
	s.mu.Lock()
	s.markers = append([]marker.Marker(nil), ms...)
	s.version++
	s.mu.Unlock()
}

func (s *Shared) Markers() []marker.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.markers
}

func (s *Shared) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// OnLand 订阅数据集替换；返回取消函数
func (s *Shared) OnLand(fn func(*land.Land)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
