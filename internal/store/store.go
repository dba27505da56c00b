// 包 store: 提供与 PostgreSQL 的数据访问层，加载事故记录供区域过滤使用
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"crash-map/internal/crash"
	"crash-map/internal/logger"

	_ "github.com/lib/pq"
)

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Count: 返回事故表行数
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM crash_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// 文档注释：全量加载事故记录
// 背景：数据集在进程启动时一次性读入内存，之后所有区域过滤都在内存中完成。
// 约束：坐标越界的行跳过并计数，与 CSV 读取的丢弃规则一致；attrs 解析失败视为空。
func (s *Store) LoadRecords(ctx context.Context) ([]crash.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT crash_id, lat, lon, year, severity, description, attrs
        FROM crash_records ORDER BY crash_id`)
	if err != nil {
		return nil, fmt.Errorf("store: load records: %w", err)
	}
	defer rows.Close()
	var out []crash.Record
	dropped := 0
	for rows.Next() {
		var r crash.Record
		var attrs []byte
		if err := rows.Scan(&r.ID, &r.Lat, &r.Lon, &r.Year, &r.Severity, &r.Description, &attrs); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		if !crash.ValidCoord(r.Lat, r.Lon) {
			dropped++
			continue
		}
		if len(attrs) > 0 {
			var m map[string]string
			if json.Unmarshal(attrs, &m) == nil && len(m) > 0 {
				r.Attrs = m
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate records: %w", err)
	}
	logger.L().Info("dataset_db_read", "rows", len(out), "dropped", dropped)
	return out, nil
}

// LoadDataset: LoadRecords 的便捷封装
func (s *Store) LoadDataset(ctx context.Context) (*crash.Dataset, error) {
	recs, err := s.LoadRecords(ctx)
	if err != nil {
		return nil, err
	}
	return crash.NewDataset(recs), nil
}
