// 包 migrate：启动时确保标注与统计表存在
package migrate

import (
	"context"
	"database/sql"

	"dotglobe/internal/logger"
	"dotglobe/internal/marker"
)

// 背景：首次运行自动创建所需表与索引
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
var stmts = []string{
	`CREATE TABLE IF NOT EXISTS _globe_markers (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL UNIQUE,
            lon DOUBLE PRECISION NOT NULL CHECK (lon BETWEEN -180 AND 180),
            lat DOUBLE PRECISION NOT NULL CHECK (lat BETWEEN -90 AND 90),
            featured BOOLEAN NOT NULL DEFAULT FALSE,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
	`CREATE INDEX IF NOT EXISTS idx_globe_markers_featured ON _globe_markers(featured)`,
	`CREATE TABLE IF NOT EXISTS _globe_stats_total (
            id INT PRIMARY KEY,
            total_sessions BIGINT NOT NULL DEFAULT 0,
            total_renders BIGINT NOT NULL DEFAULT 0,
            total_visitors BIGINT NOT NULL DEFAULT 0
        )`,
	`CREATE TABLE IF NOT EXISTS _globe_stats_daily (
            day DATE PRIMARY KEY,
            sessions BIGINT NOT NULL DEFAULT 0,
            renders BIGINT NOT NULL DEFAULT 0,
            visitors BIGINT NOT NULL DEFAULT 0
        )`,
	`INSERT INTO _globe_stats_total(id, total_sessions, total_renders, total_visitors)
         VALUES(1, 0, 0, 0)
         ON CONFLICT (id) DO NOTHING`,
}

// Statements 按执行顺序返回建表语句
func Statements() []string { return append([]string(nil), stmts...) }

func EnsureSchema(db *sql.DB) error {
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}

// SeedMarkers 标注表为空时写入内置标注
func SeedMarkers(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM _globe_markers`).Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	seeded := 0
	for _, m := range marker.Defaults() {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO _globe_markers(name, lon, lat, featured) VALUES($1,$2,$3,$4) ON CONFLICT (name) DO NOTHING`,
			m.Name, m.Lon, m.Lat, m.Featured); err != nil {
			return seeded, err
		}
		seeded++
	}
	logger.L().Info("markers_seeded", "count", seeded)
	return seeded, nil
}
