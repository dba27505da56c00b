// 数据导入工具：读取事故 CSV 并批量写入 PostgreSQL
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"crash-map/internal/config"
	"crash-map/internal/ingest"
	"crash-map/internal/logger"
	"crash-map/internal/migrate"
	"crash-map/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()

	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	path := flag.String("csv", cfg.CSVPath, "crash CSV to import")
	flag.Parse()

	ctx := context.Background()
	db, err := utils.OpenPostgres(cfg.Postgres)
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
		os.Exit(1)
	}
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	res, err := ingest.ImportFile(ctx, db, *path)
	if err != nil {
		l.Error("ingest_error", "err", err, "imported", res.Imported)
		os.Exit(1)
	}
	l.Info("ingest_summary", "path", *path, "rows", res.Rows, "imported", res.Imported, "dropped", res.Dropped, "skipped", res.Skipped)
}
