// 包 utils：Postgres 与 Redis 连接工具，统一从 config 取参数
package utils

import (
	"crash-map/internal/config"
	"crash-map/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedisFromConfig：按配置打开 Redis 客户端
// 约束：未启用时返回 nil，调用方回退到进程内缓存
func OpenRedisFromConfig(rc config.RedisConfig) *redis.Client {
	if !rc.Enabled {
		return nil
	}
	db := rc.DB
	if db < 0 {
		db = 0
	}
	logger.L().Debug("redis_config", "addr", rc.Addr(), "db", db)
	return redis.NewClient(&redis.Options{Addr: rc.Addr(), Password: rc.Pass, DB: db})
}
