// 包 config：集中读取环境变量配置，入口加载 .env 后调用 Load
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config：进程配置
type Config struct {
	Addr    string
	APIBase string
	UIDist  string

	DataSource string
	CSVPath    string

	Postgres  PostgresConfig
	Redis     RedisConfig
	Selection SelectionConfig
	Filter    FilterConfig
	RateLimit RateLimitConfig
	TLS       TLSConfig
}

type PostgresConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DB           string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled bool
	Host    string
	Port    string
	Pass    string
	DB      int
}

type SelectionConfig struct {
	TTL       time.Duration
	CacheSize int
}

type FilterConfig struct {
	PreviewLimit int
	Workers      int
	ParallelMin  int
}

type RateLimitConfig struct {
	Enabled bool
	QPS     int
}

// TLSConfig：证书缺失时自动生成自签证书
type TLSConfig struct {
	Enabled  bool
	CertPath string
	KeyPath  string
	Host     string
}

// DSN 拼接 lib/pq 连接串
func (p PostgresConfig) DSN() string {
	dsn := "postgres://" + p.User
	if p.Password != "" {
		dsn += ":" + p.Password
	}
	dsn += "@" + p.Host + ":" + p.Port + "/" + p.DB + "?sslmode=" + p.SSLMode
	return dsn
}

func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

// Load 从环境变量读取配置并校验
func Load() (Config, error) {
	cfg := Config{
		Addr:       getEnv("ADDR", ":8080"),
		APIBase:    getEnv("API_BASE", "/api"),
		UIDist:     getEnv("UI_DIST", filepath.Join("ui", "dist")),
		DataSource: strings.ToLower(getEnv("DATA_SOURCE", SourceCSV)),
		CSVPath:    getEnv("CRASH_CSV_PATH", filepath.Join("data", "2019_2023_crash_simple.csv")),
		Postgres: PostgresConfig{
			Host:         getEnv("PG_HOST", "localhost"),
			Port:         getEnv("PG_PORT", "5432"),
			User:         getEnv("PG_USER", "postgres"),
			Password:     os.Getenv("PG_PASSWORD"),
			DB:           getEnv("PG_DB", "crashmap"),
			SSLMode:      getEnv("PG_SSLMODE", "disable"),
			MaxOpenConns: getEnvAsInt("PG_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvAsInt("PG_MAX_IDLE_CONNS", 10),
		},
		Redis: RedisConfig{
			Enabled: getEnvAsBool("REDIS_ENABLED", false),
			Host:    getEnv("REDIS_HOST", "127.0.0.1"),
			Port:    getEnv("REDIS_PORT", "6379"),
			Pass:    os.Getenv("REDIS_PASS"),
			DB:      getEnvAsInt("REDIS_DB", 0),
		},
		Selection: SelectionConfig{
			TTL:       getEnvAsDuration("SELECTION_TTL", 24*time.Hour),
			CacheSize: getEnvAsInt("SELECTION_CACHE_SIZE", 4096),
		},
		Filter: FilterConfig{
			PreviewLimit: getEnvAsInt("PREVIEW_LIMIT", 1000),
			Workers:      getEnvAsInt("FILTER_WORKERS", 4),
			ParallelMin:  getEnvAsInt("FILTER_PARALLEL_MIN", 20000),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvAsBool("RATE_LIMIT_ENABLED", false),
			QPS:     getEnvAsInt("RATE_LIMIT_QPS", 200),
		},
		TLS: TLSConfig{
			Enabled:  getEnvAsBool("TLS_ENABLE", false),
			CertPath: getEnv("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt")),
			KeyPath:  getEnv("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key")),
			Host:     getEnv("TLS_HOST", "crashmap.local"),
		},
	}
	cfg.APIBase = "/" + strings.Trim(cfg.APIBase, "/")
	return cfg, cfg.Validate()
}

// Validate 检查取值范围
func (c Config) Validate() error {
	var errs []error
	if c.DataSource != SourceCSV && c.DataSource != SourcePostgres {
		errs = append(errs, fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", SourceCSV, SourcePostgres, c.DataSource))
	}
	if c.DataSource == SourceCSV && c.CSVPath == "" {
		errs = append(errs, errors.New("CRASH_CSV_PATH is required for csv data source"))
	}
	if c.Filter.PreviewLimit <= 0 {
		errs = append(errs, errors.New("PREVIEW_LIMIT must be positive"))
	}
	if c.Filter.Workers <= 0 {
		errs = append(errs, errors.New("FILTER_WORKERS must be positive"))
	}
	if c.Selection.TTL <= 0 {
		errs = append(errs, errors.New("SELECTION_TTL must be positive"))
	}
	if c.Selection.CacheSize <= 0 {
		errs = append(errs, errors.New("SELECTION_CACHE_SIZE must be positive"))
	}
	if c.RateLimit.Enabled && c.RateLimit.QPS <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_QPS must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// 解析失败时忽略并回退默认值
func getEnvAsInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
