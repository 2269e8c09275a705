package publisher

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// This test requires a running Redis instance and is skipped otherwise
func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	const stream = "test_deals_stream"
	client.Del(ctx, stream)

	pub := NewRedisPublisher(ctx, "localhost:6379", 0, stream, 10)
	defer pub.Close()

	err := pub.Publish("zuzu", []byte(`{"title":"Widget"}`))
	assert.NoError(t, err)

	deadline := time.Now().Add(time.Second)
	var messages []redis.XMessage
	for time.Now().Before(deadline) {
		messages, err = client.XRange(ctx, stream, "-", "+").Result()
		assert.NoError(t, err)
		if len(messages) > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	assert.Len(t, messages, 1)
	encoded, ok := messages[0].Values["zuzu"].(string)
	assert.True(t, ok)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"title":"Widget"}`, string(decoded))
}

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = Noop{}
	assert.NoError(t, pub.Publish("zuzu", []byte("x")))
	assert.NoError(t, pub.Close())
}
