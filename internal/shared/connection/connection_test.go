package connection_test

import (
	"context"
	"testing"
	"time"

	"leave-portal/internal/shared/connection"

	"github.com/stretchr/testify/assert"
)

func TestConnectRedisWithRetry(t *testing.T) {
	t.Run("negative unreachable gives up after retries", func(t *testing.T) {
		rdb, err := connection.ConnectRedisWithRetry(context.Background(), "127.0.0.1:1", 2, time.Millisecond)

		assert.Nil(t, rdb)
		assert.ErrorContains(t, err, "after 2 retries")
	})

	t.Run("negative cancelled context stops waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := connection.ConnectRedisWithRetry(ctx, "127.0.0.1:1", 5, time.Hour)

		assert.Error(t, err)
	})
}
