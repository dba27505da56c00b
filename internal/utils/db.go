package utils

import (
	"database/sql"

	"crash-map/internal/config"

	_ "github.com/lib/pq"
)

// OpenPostgres：按配置打开连接池，不做连通性检查
func OpenPostgres(pc config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", pc.DSN())
	if err != nil {
		return nil, err
	}
	maxOpen := pc.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 20
	}
	maxIdle := pc.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	return db, nil
}
