package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedisWithRetry pings addr up to maxRetries times, waiting backoff
// between attempts, and gives up early when ctx is done.
func ConnectRedisWithRetry(
	ctx context.Context,
	addr string,
	maxRetries int,
	backoff time.Duration,
	logger ...*zap.Logger,
) (*redis.Client, error) {
	l := zap.L().Named("connection.redis")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("connection.redis")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		lastErr = rdb.Ping(pingCtx).Err()
		cancel()
		if lastErr == nil {
			l.Info("connected to redis", zap.String("addr", addr))
			return rdb, nil
		}

		l.Warn("redis ping failed",
			zap.Int("attempt", i),
			zap.Int("max_retries", maxRetries),
			zap.Error(lastErr),
		)
		if i == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("redis connection failed after %d retries: %w", maxRetries, lastErr)
}
