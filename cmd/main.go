package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"crash-map/internal/api"
	"crash-map/internal/config"
	"crash-map/internal/crash"
	"crash-map/internal/ingest"
	"crash-map/internal/logger"
	"crash-map/internal/metrics"
	"crash-map/internal/middleware"
	"crash-map/internal/migrate"
	"crash-map/internal/selection"
	"crash-map/internal/store"
	"crash-map/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")

	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_api_base", "base", cfg.APIBase)
	l.Debug("config_ui_dir", "dir", cfg.UIDist)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		l.Error("dataset_load_error", "source", cfg.DataSource, "err", err)
		os.Exit(1)
	}
	metrics.DatasetRecords.Set(float64(ds.Len()))
	l.Info("dataset_ready", "source", cfg.DataSource, "records", ds.Len(), "years", len(ds.Years()), "severities", len(ds.Severities()))

	var sel selection.Store
	rc := utils.OpenRedisFromConfig(cfg.Redis)
	if rc == nil {
		l.Info("redis_disabled")
	} else if err := rc.Ping(ctx).Err(); err != nil {
		l.Error("redis_ping_error", "err", err)
		_ = rc.Close()
	} else {
		l.Info("redis_ping_ok")
		defer rc.Close()
		sel = selection.NewRedisStore(rc, cfg.Selection.TTL)
	}
	if sel == nil {
		sel = selection.NewMemoryStore(cfg.Selection.CacheSize, cfg.Selection.TTL)
		l.Info("selection_store_memory", "capacity", cfg.Selection.CacheSize)
	}

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(api.NewServer(ds, sel, cfg.Filter, cfg.Selection.TTL))
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiMux))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())

	fs := http.FileServer(http.Dir(cfg.UIDist))
	mux.Handle("/", fs)

	// 前端运行时配置
	mux.HandleFunc("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + cfg.APIBase + "'"))
		_, _ = w.Write([]byte("\n"))
		_, _ = w.Write([]byte("window.__DATA_SOURCE__='" + cfg.DataSource + "'"))
	})

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler, cfg.RateLimit)
	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		l.Info("shutdown_begin")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
	}()

	if cfg.TLS.Enabled {
		if err := utils.EnsureSelfSignedCert(cfg.TLS.CertPath, cfg.TLS.KeyPath, cfg.TLS.Host); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLS.CertPath)
		err = s.ListenAndServeTLS(cfg.TLS.CertPath, cfg.TLS.KeyPath)
	} else {
		l.Info("listening", "addr", cfg.Addr)
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("shutdown_done")
}

// loadDataset：按 DATA_SOURCE 在启动时一次性加载数据集
// 背景：postgres 模式下首次运行自动建表，表为空且 CSV 存在时先导入一次
func loadDataset(ctx context.Context, cfg config.Config) (*crash.Dataset, error) {
	if cfg.DataSource == config.SourceCSV {
		return crash.LoadCSV(cfg.CSVPath)
	}
	l := logger.L()
	db, err := utils.OpenPostgres(cfg.Postgres)
	if err != nil {
		return nil, err
	}
	st := store.AttachDB(db)
	defer st.Close()
	l.Info("db_open_ok")
	if err := st.DB().PingContext(ctx); err != nil {
		return nil, err
	}
	l.Info("db_ping_ok")
	if err := migrate.EnsureSchema(ctx, st.DB()); err != nil {
		return nil, err
	}
	seed(ctx, st.DB(), cfg.CSVPath)
	return st.LoadDataset(ctx)
}

func seed(ctx context.Context, db *sql.DB, path string) {
	if _, err := os.Stat(path); err != nil {
		logger.L().Debug("ingest_skipped", "reason", "csv_not_found", "path", path)
		return
	}
	if err := ingest.EnsureInitialized(ctx, db, path); err != nil {
		logger.L().Error("ingest_error", "err", err)
	}
}
