// 包 session：websocket 地球会话（每个连接一个 Globe + Runner，服务端推帧）
package session

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"dotglobe/internal/globe"
	"dotglobe/internal/land"
	"dotglobe/internal/logger"
	"dotglobe/internal/marker"
	"dotglobe/internal/metrics"
	"dotglobe/internal/render"
	"dotglobe/internal/ticker"
	"dotglobe/internal/view"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// 连接参数
const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4096
	// outBuffer 待发送帧队列；客户端跟不上时丢帧而不是堆积
	outBuffer = 2
)

// Home 访客朝向；ok=false 时使用默认朝向
type Home struct {
	View   view.State
	Marker *marker.Marker
}

// Config 会话参数
type Config struct {
	Shared *globe.Shared
	FPS    int
	// Ticker 每个会话的时钟；nil 时按 FPS 创建
	Ticker func() ticker.Source
	// Locate 解析访客朝向；nil 或返回 false 时使用默认朝向
	Locate func(r *http.Request) (Home, bool)
	// OnConnect 新会话建立后回调（统计）
	OnConnect func(r *http.Request, id string)
}

// 服务端 → 客户端
type helloMsg struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Home    view.State      `json:"home"`
	Markers []marker.Marker `json:"markers"`
}

type frameMsg struct {
	Type  string        `json:"type"`
	Seq   uint64        `json:"seq"`
	Frame *render.Frame `json:"frame"`
}

// 客户端 → 服务端：{"type":"down|move|up|wheel|pinch|visible|resize|reset", ...}
type clientMsg struct {
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	DY    float64 `json:"dy"`
	Ratio float64 `json:"ratio"`
	On    bool    `json:"on"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	DPR   float64 `json:"dpr"`
}

// toEvent 线上消息 → 输入事件
func (m clientMsg) toEvent() (globe.Event, error) {
	k, err := globe.ParseKind(m.Type)
	if err != nil {
		return globe.Event{}, err
	}
	return globe.Event{Kind: k, X: m.X, Y: m.Y, DeltaY: m.DY, Ratio: m.Ratio, On: m.On, W: m.W, H: m.H, DPR: m.DPR}, nil
}

// 文档注释：websocket 会话处理器
// 背景：每个连接独占一个地球实例与时钟，输入从读循环投递到 Runner，帧在 tick goroutine 上序列化后交给写循环。
// 约束：写循环是连接唯一的写者；帧队列满时丢弃新帧。Close 断开所有会话。
type Handler struct {
	cfg      Config
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewHandler(cfg Config) *Handler {
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	if cfg.Shared == nil {
		cfg.Shared = globe.NewShared(nil)
	}
	return &Handler{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]*Session),
	}
}

// Active 当前会话数
func (h *Handler) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close 断开所有会话
func (h *Handler) Close() {
	h.mu.Lock()
	ss := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		ss = append(ss, s)
	}
	h.mu.Unlock()
	for _, s := range ss {
		s.close()
	}
}

// Session 单个连接
type Session struct {
	ID     string
	conn   *websocket.Conn
	runner *globe.Runner
	out    chan []byte
	done   chan struct{}
	once   sync.Once
	seq    atomic.Uint64
}

func (s *Session) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L().Warn("ws_upgrade_error", "err", err)
		return
	}
	q := r.URL.Query()
	opts := globe.Options{
		Width:   queryFloat(q.Get("w")),
		Height:  queryFloat(q.Get("h")),
		DPR:     queryFloat(q.Get("dpr")),
		Markers: h.cfg.Shared.Markers(),
	}
	if h.cfg.Locate != nil {
		if home, ok := h.cfg.Locate(r); ok {
			st := home.View
			opts.Home = &st
			if home.Marker != nil {
				opts.Markers = marker.Merge(opts.Markers, *home.Marker)
			}
		}
	}
	g := globe.New(opts)
	s := &Session{
		ID:   uuid.NewString(),
		conn: conn,
		out:  make(chan []byte, outBuffer),
		done: make(chan struct{}),
	}
	var src ticker.Source
	if h.cfg.Ticker != nil {
		src = h.cfg.Ticker()
	} else {
		src = ticker.FromFPS(h.cfg.FPS)
	}
	s.runner = globe.NewRunner(g, src, s.push)

	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
	metrics.SessionsActive.Inc()
	logger.L().Info("session_open", "id", s.ID, "home_lng", g.Controller().State().Lng, "markers", len(g.Markers()))
	if h.cfg.OnConnect != nil {
		h.cfg.OnConnect(r, s.ID)
	}
	defer func() {
		s.runner.Close()
		s.close()
		h.mu.Lock()
		delete(h.sessions, s.ID)
		h.mu.Unlock()
		metrics.SessionsActive.Dec()
		logger.L().Info("session_close", "id", s.ID, "frames", s.seq.Load())
	}()

	hello, _ := json.Marshal(helloMsg{Type: "hello", ID: s.ID, Home: g.Controller().State(), Markers: g.Markers()})
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		logger.L().Warn("ws_hello_error", "id", s.ID, "err", err)
		return
	}

	if l := h.cfg.Shared.Land(); l != nil {
		s.runner.InstallLand(l)
	}
	unsub := h.cfg.Shared.OnLand(func(l *land.Land) { s.runner.InstallLand(l) })
	defer unsub()

	go s.writeLoop()
	s.runner.Start()
	s.readLoop()
}

// push 在 tick goroutine 上调用
func (s *Session) push(f *render.Frame) {
	b, err := json.Marshal(frameMsg{Type: "frame", Seq: s.seq.Add(1), Frame: f})
	if err != nil {
		logger.L().Error("frame_encode_error", "id", s.ID, "err", err)
		return
	}
	select {
	case s.out <- b:
	case <-s.done:
	default:
		metrics.FramesSkippedTotal.Inc()
	}
}

func (s *Session) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-s.done:
			return
		case b := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				logger.L().Debug("ws_write_error", "id", s.ID, "err", err)
				s.close()
				return
			}
		case <-ping.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}
		}
	}
}

func (s *Session) readLoop() {
	s.conn.SetReadLimit(maxMessage)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var m clientMsg
		if err := s.conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.L().Debug("ws_read_error", "id", s.ID, "err", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		ev, err := m.toEvent()
		if err != nil {
			logger.L().Debug("ws_bad_message", "id", s.ID, "type", m.Type)
			metrics.SessionEventsTotal.WithLabelValues("invalid").Inc()
			continue
		}
		metrics.SessionEventsTotal.WithLabelValues(ev.Kind.String()).Inc()
		s.runner.Send(ev)
	}
}

// queryFloat 无法解析或非有限值时返回 0（视为未提供）
func queryFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
