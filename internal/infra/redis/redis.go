package redis

import (
	"sync"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/example/smartblinds/internal/config"
)

var (
	client radix.Client
	once   sync.Once
)

// Init builds the Redis pool. Redis is optional here: when it is not
// configured or unreachable, Init returns nil and the callers
// (rate limiting, confirmation fast-path guard) simply skip it.
func Init(cfg *config.RedisConfig) radix.Client {
	once.Do(func() {
		if !cfg.Enabled() {
			zap.L().Info("redis not configured, related features disabled")
			return
		}
		pool, err := radix.NewPool("tcp", cfg.Addr, 10)
		if err != nil {
			zap.L().Warn("failed to connect redis, related features disabled", zap.Error(err))
			return
		}
		client = pool
	})
	return client
}

// Client returns the shared pool, nil when disabled.
func Client() radix.Client {
	return client
}
