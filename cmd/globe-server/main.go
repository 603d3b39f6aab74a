// 程序入口：读取配置、初始化可选依赖（PostgreSQL/Redis/GeoIP）、后台加载陆地并启动 HTTP/WebSocket 服务
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"dotglobe/internal/api"
	"dotglobe/internal/config"
	"dotglobe/internal/geoloc"
	"dotglobe/internal/globe"
	"dotglobe/internal/land"
	"dotglobe/internal/logger"
	"dotglobe/internal/metrics"
	"dotglobe/internal/middleware"
	"dotglobe/internal/migrate"
	"dotglobe/internal/refresh"
	"dotglobe/internal/store"
	"dotglobe/internal/utils"
	"dotglobe/internal/version"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok", "version", version.Short())

	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_api_base", "base", cfg.Server.APIBase)
	l.Debug("config_ui_dir", "dir", cfg.Server.UIDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, st := openStore(ctx)
	if db != nil {
		defer db.Close()
	}
	rc := utils.PingRedis(ctx, utils.OpenRedisFromEnv())
	if rc != nil {
		defer rc.Close()
	}
	gl := geoloc.OpenOptional(cfg.GeoIP.Path)
	defer gl.Close()

	shared := globe.NewShared(nil)
	if cfg.Markers.FromDB && st != nil {
		if ms, err := st.ListMarkers(ctx); err != nil {
			l.Error("markers_load_error", "err", err)
		} else if len(ms) > 0 {
			shared.SetMarkers(ms)
			l.Info("markers_loaded", "count", len(ms))
		}
	}

	// 背景：陆地加载失败不影响服务，只是帧里没有点阵
	go func() { _ = loadLand(ctx, landSource(cfg, rc), cfg.Land.Spacing, shared) }()
	// 定时刷新：陆地直连上游（绕过 Redis 缓存）；标注仅在从数据库读取时刷新
	refresh.Daily(ctx, cfg.Refresh.LandHour, "land", func(ctx context.Context) error {
		return loadLand(ctx, land.SourceFor(cfg.Land.File, cfg.Land.URL, nil), cfg.Land.Spacing, shared)
	})
	if cfg.Markers.FromDB && st != nil {
		refresh.Every(ctx, cfg.Refresh.MarkersEvery, "markers", func(ctx context.Context) error {
			ms, err := st.ListMarkers(ctx)
			if err != nil {
				return err
			}
			if len(ms) > 0 {
				shared.SetMarkers(ms)
			}
			return nil
		})
	}

	deps := &api.Deps{
		Shared: shared,
		Store:  st,
		Redis:  rc,
		GeoIP:  gl,
		FPS:    cfg.Frame.FPS,
	}
	apiMux := api.BuildRoutes(deps)

	mux := http.NewServeMux()
	apiBase := cfg.Server.APIBase
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", middleware.NewAllowlist(l, cfg.Metrics).Wrap(metrics.Handler()))
	mux.Handle("/", http.FileServer(http.Dir(cfg.Server.UIDir)))
	// NOTE: 向前端暴露 API 基础路径，避免硬编码
	mux.HandleFunc("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + apiBase + "'"))
		_, _ = w.Write([]byte("\n"))
		_, _ = w.Write([]byte("window.__FRAME_FPS__=" + strconv.Itoa(cfg.Frame.FPS)))
		_, _ = w.Write([]byte("\n"))
		_, _ = w.Write([]byte("window.__COMMIT_SHA__='" + version.Commit + "'"))
	})

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler, cfg.RateLimit)
	s := &http.Server{Addr: cfg.Server.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		l.Info("shutdown_begin")
		deps.Close()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(sctx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
	}()

	if cfg.TLS.Enabled {
		if err := utils.EnsureSelfSignedCert(cfg.TLS.CertPath, cfg.TLS.KeyPath, "dotglobe.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		// 可选：启动HTTP重定向到HTTPS（不改变HTTPS运行端口）
		if os.Getenv("TLS_REDIRECT_ENABLE") == "true" {
			redirAddr := os.Getenv("TLS_REDIRECT_ADDR")
			if redirAddr == "" {
				redirAddr = ":80"
			}
			go serveRedirect(l, redirAddr, cfg.Server.Addr)
		}
		l.Info("listening_tls", "addr", cfg.Server.Addr, "cert", cfg.TLS.CertPath)
		serveResult(l, s.ListenAndServeTLS(cfg.TLS.CertPath, cfg.TLS.KeyPath))
		return
	}
	l.Info("listening", "addr", cfg.Server.Addr)
	serveResult(l, s.ListenAndServe())
}

// openStore 未配置 PG_HOST 时不连接；任何一步失败都降级为无数据库运行
func openStore(ctx context.Context) (*sql.DB, *store.Store) {
	l := logger.L()
	if os.Getenv("PG_HOST") == "" {
		l.Info("db_disabled")
		return nil, nil
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		return nil, nil
	}
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		l.Error("db_ping_error", "err", err)
		_ = db.Close()
		return nil, nil
	}
	l.Info("db_ping_ok")
	if err := migrate.EnsureSchema(db); err != nil {
		l.Error("schema_error", "err", err)
		_ = db.Close()
		return nil, nil
	}
	if _, err := migrate.SeedMarkers(ctx, db); err != nil {
		l.Warn("markers_seed_error", "err", err)
	}
	return db, store.AttachDB(db)
}

func landSource(cfg *config.Config, rc *redis.Client) land.Source {
	var cache *land.CachedSource
	if rc != nil {
		cache = &land.CachedSource{RC: rc, TTL: cfg.Land.CacheTTL}
	}
	return land.SourceFor(cfg.Land.File, cfg.Land.URL, cache)
}

// loadLand 失败只记录 warn（land_load_failed），已安装的数据集保持不变
func loadLand(ctx context.Context, src land.Source, spacing float64, shared *globe.Shared) error {
	ld, err := land.Load(ctx, src, spacing)
	if err != nil {
		logger.L().Warn("land_load_failed", "source", src.Name(), "err", err)
		return err
	}
	shared.SetLand(ld)
	logger.L().Info("land_ready", "source", src.Name(), "dots", len(ld.Dots))
	return nil
}

func serveRedirect(l *slog.Logger, redirAddr, addr string) {
	httpRedir := http.NewServeMux()
	httpsPort := strings.TrimPrefix(addr, ":")
	httpRedir.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		baseHost := r.Host
		if i := strings.LastIndex(baseHost, ":"); i != -1 {
			baseHost = baseHost[:i]
		}
		targetHost := baseHost
		if httpsPort != "" {
			targetHost = baseHost + ":" + httpsPort
		}
		target := "https://" + targetHost + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		l.Debug("http_redirect", "from", r.Host, "to", target)
	})
	l.Info("http_redirect_listening", "addr", redirAddr, "to", "https"+addr)
	_ = http.ListenAndServe(redirAddr, logger.AccessMiddleware(l)(httpRedir))
}

func serveResult(l *slog.Logger, err error) {
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("serve_error", "err", err)
		os.Exit(1)
	}
}
