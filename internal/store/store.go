// 包 store: 提供与 PostgreSQL 的数据访问层，包含标注读写与访问统计
package store

import (
	"context"
	"database/sql"
	"errors"

	"dotglobe/internal/logger"
	"dotglobe/internal/marker"

	_ "github.com/lib/pq"
)

var ErrNotFound = errors.New("store: not found")

// Store: 数据库访问入口，持有连接池并提供查询/统计接口
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open: 使用 DSN 打开数据库连接并配置连接池参数
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// ListMarkers: 全部标注，高亮优先，其次按名称
func (s *Store) ListMarkers(ctx context.Context) ([]marker.Marker, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, lon, lat, featured FROM _globe_markers ORDER BY featured DESC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []marker.Marker
	for rows.Next() {
		var m marker.Marker
		if err := rows.Scan(&m.Name, &m.Lon, &m.Lat, &m.Featured); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	logger.L().Debug("db_markers_list", "count", len(out))
	return out, rows.Err()
}

// GetMarker: 按名称读取
func (s *Store) GetMarker(ctx context.Context, name string) (*marker.Marker, error) {
	m := marker.Marker{Name: name}
	err := s.db.QueryRowContext(ctx, `SELECT lon, lat, featured FROM _globe_markers WHERE name=$1`, name).Scan(&m.Lon, &m.Lat, &m.Featured)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpsertMarker: 按名称插入或更新
func (s *Store) UpsertMarker(ctx context.Context, m marker.Marker) error {
	if err := m.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO _globe_markers(name, lon, lat, featured, updated_at)
        VALUES($1,$2,$3,$4,now())
        ON CONFLICT (name) DO UPDATE SET lon=EXCLUDED.lon, lat=EXCLUDED.lat, featured=EXCLUDED.featured, updated_at=now()`,
		m.Name, m.Lon, m.Lat, m.Featured)
	if err == nil {
		logger.L().Debug("db_marker_upsert", "name", m.Name)
	}
	return err
}

// DeleteMarker: 删除；不存在时返回 ErrNotFound
func (s *Store) DeleteMarker(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM _globe_markers WHERE name=$1`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// StatKind 统计类别
type StatKind string

const (
	StatSession StatKind = "sessions"
	StatRender  StatKind = "renders"
	StatVisitor StatKind = "visitors"
)

// IncrStats: 递增总计与当日计数；错误只记录日志，不影响主流程
func (s *Store) IncrStats(ctx context.Context, kind StatKind) {
	var total, daily string
	switch kind {
	case StatSession:
		total = "UPDATE _globe_stats_total SET total_sessions=total_sessions+1 WHERE id=1"
		daily = "INSERT INTO _globe_stats_daily(day, sessions) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET sessions=_globe_stats_daily.sessions+1"
	case StatRender:
		total = "UPDATE _globe_stats_total SET total_renders=total_renders+1 WHERE id=1"
		daily = "INSERT INTO _globe_stats_daily(day, renders) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET renders=_globe_stats_daily.renders+1"
	case StatVisitor:
		total = "UPDATE _globe_stats_total SET total_visitors=total_visitors+1 WHERE id=1"
		daily = "INSERT INTO _globe_stats_daily(day, visitors) VALUES(current_date, 1) ON CONFLICT (day) DO UPDATE SET visitors=_globe_stats_daily.visitors+1"
	default:
		return
	}
	if _, err := s.db.ExecContext(ctx, total); err != nil {
		logger.L().Error("stats_incr_error", "kind", string(kind), "err", err)
		return
	}
	if _, err := s.db.ExecContext(ctx, daily); err != nil {
		logger.L().Error("stats_incr_error", "kind", string(kind), "err", err)
	}
}

// Totals 总计与当日计数
type Totals struct {
	Sessions      int64 `json:"sessions"`
	Renders       int64 `json:"renders"`
	Visitors      int64 `json:"visitors"`
	TodaySessions int64 `json:"today_sessions"`
	TodayRenders  int64 `json:"today_renders"`
	TodayVisitors int64 `json:"today_visitors"`
}

func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	var t Totals
	if err := s.db.QueryRowContext(ctx, `SELECT total_sessions, total_renders, total_visitors FROM _globe_stats_total WHERE id=1`).
		Scan(&t.Sessions, &t.Renders, &t.Visitors); err != nil {
		return nil, err
	}
	err := s.db.QueryRowContext(ctx, `SELECT sessions, renders, visitors FROM _globe_stats_daily WHERE day=current_date`).
		Scan(&t.TodaySessions, &t.TodayRenders, &t.TodayVisitors)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	logger.L().Debug("stats_totals", "sessions", t.Sessions, "renders", t.Renders)
	return &t, nil
}
