// 包 utils：外部依赖连接工具（Redis/PostgreSQL/TLS 证书），统一环境变量读取
package utils

import (
	"context"
	"os"
	"strconv"
	"time"

	"dotglobe/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis：使用地址与密码打开 Redis 客户端；地址为空返回 nil
func OpenRedis(addr, pass string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass})
}

// OpenRedisFromEnv：从环境变量打开 Redis 客户端，支持 REDIS_DB 选择
// 约束：未配置 REDIS_HOST 时返回 nil（缓存关闭）；REDIS_DB 解析失败时回退到 0
func OpenRedisFromEnv() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return nil
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	addr := host + ":" + port
	db := 0
	if n, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil && n >= 0 {
		db = n
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}

// PingRedis：连通性自检；失败时关闭客户端并返回 nil，调用方按“缓存关闭”处理
func PingRedis(ctx context.Context, rc *redis.Client) *redis.Client {
	if rc == nil {
		logger.L().Info("redis_disabled")
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		logger.L().Error("redis_ping_error", "err", err)
		_ = rc.Close()
		return nil
	}
	logger.L().Info("redis_ping_ok")
	return rc
}
