package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishTripsBreakerWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	broker := NewRedisBroker(client, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := broker.Publish(ctx, "hms.events.test", []byte("{}"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	err := broker.Publish(ctx, "hms.events.test", []byte("{}"))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
