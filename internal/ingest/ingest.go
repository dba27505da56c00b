// 包 ingest：事故 CSV 批量导入 Postgres，作为离线数据通道
package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"crash-map/internal/crash"
	"crash-map/internal/logger"
)

const (
	batchSize = 5000

	upsertRecord = `INSERT INTO crash_records(crash_id, lat, lon, year, severity, description, attrs, updated_at)
        VALUES($1,$2,$3,$4,$5,$6,$7,now())
        ON CONFLICT (crash_id) DO UPDATE SET lat=EXCLUDED.lat, lon=EXCLUDED.lon, year=EXCLUDED.year,
        severity=EXCLUDED.severity, description=EXCLUDED.description, attrs=EXCLUDED.attrs, updated_at=now()`
)

// Result：一次导入的统计
type Result struct {
	Rows     int
	Dropped  int
	Skipped  int
	Imported int
}

// ImportFile：读取 CSV 文件并导入
// 背景：坐标非法的行在读取阶段已丢弃；缺少 Crash ID 的行无法作为主键，跳过计数
func ImportFile(ctx context.Context, db *sql.DB, path string) (Result, error) {
	logger.L().Info("ingest_start", "src", path)
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("ingest: open: %w", err)
	}
	defer f.Close()
	recs, st, err := crash.ReadCSV(f)
	if err != nil {
		return Result{}, err
	}
	res, err := ImportRecords(ctx, db, recs)
	res.Rows = st.Rows
	res.Dropped = st.Dropped
	if err != nil {
		return res, err
	}
	logger.L().Info("ingest_done", "rows", res.Rows, "imported", res.Imported, "dropped", res.Dropped, "skipped", res.Skipped)
	return res, nil
}

// ImportRecords：按 crash_id 幂等写入
// 背景：5000 行为一批提交，降低锁持有与 WAL 压力
// 异常：数据库错误直接返回，已提交的批次保留；重跑导入是安全的
func ImportRecords(ctx context.Context, db *sql.DB, recs []crash.Record) (Result, error) {
	return importBatched(ctx, db, recs, batchSize)
}

func importBatched(ctx context.Context, db *sql.DB, recs []crash.Record, size int) (Result, error) {
	var res Result
	batch := make([]crash.Record, 0, size)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := writeBatch(ctx, db, batch); err != nil {
			return err
		}
		res.Imported += len(batch)
		logger.L().Info("ingest_progress", "count", res.Imported)
		batch = batch[:0]
		return nil
	}
	for _, r := range recs {
		if r.ID == "" {
			res.Skipped++
			continue
		}
		batch = append(batch, r)
		if len(batch) == size {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	return res, flush()
}

func writeBatch(ctx context.Context, db *sql.DB, batch []crash.Record) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ingest: begin: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, upsertRecord)
	if err != nil {
		return fmt.Errorf("ingest: prepare: %w", err)
	}
	defer stmt.Close()
	for _, r := range batch {
		attrs, err := encodeAttrs(r.Attrs)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.Lat, r.Lon, r.Year, r.Severity, r.Description, attrs); err != nil {
			return fmt.Errorf("ingest: write %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ingest: commit: %w", err)
	}
	return nil
}

func encodeAttrs(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("ingest: encode attrs: %w", err)
	}
	return string(b), nil
}

// EnsureInitialized：检查事故表是否为空；为空则执行一次初始化导入
// 为什么：简化部署流程，避免独立手动导入步骤
func EnsureInitialized(ctx context.Context, db *sql.DB, path string) error {
	var c int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(1) FROM crash_records").Scan(&c); err != nil {
		return fmt.Errorf("ingest: count: %w", err)
	}
	if c > 0 {
		return nil
	}
	_, err := ImportFile(ctx, db, path)
	return err
}
