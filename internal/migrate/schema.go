// 包 migrate：数据库结构初始化
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"crash-map/internal/logger"
)

// 背景：首次运行自动创建事故表与索引，保障后续导入与加载
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS crash_records (
            crash_id TEXT PRIMARY KEY,
            lat DOUBLE PRECISION NOT NULL,
            lon DOUBLE PRECISION NOT NULL,
            year INT NOT NULL DEFAULT 0,
            severity TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            attrs JSONB NOT NULL DEFAULT '{}'::jsonb,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_crash_records_year ON crash_records(year)`,
		`CREATE INDEX IF NOT EXISTS idx_crash_records_severity ON crash_records(severity)`,
		`CREATE INDEX IF NOT EXISTS idx_crash_records_lat_lon ON crash_records(lat, lon)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: statement %d: %w", i, err)
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
