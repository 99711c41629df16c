package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"clipbot/types"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBloom answers BF.ADD and BF.EXISTS from an in-memory set.
type fakeBloom struct {
	items   map[string]bool
	expires map[string]time.Duration
	err     error
}

func newFakeBloom() *fakeBloom {
	return &fakeBloom{items: map[string]bool{}, expires: map[string]time.Duration{}}
}

func (f *fakeBloom) Do(_ context.Context, args ...interface{}) *redis.Cmd {
	if f.err != nil {
		return redis.NewCmdResult(nil, f.err)
	}
	cmd, key, item := args[0].(string), args[1].(string), args[2].(string)
	id := key + "/" + item
	switch cmd {
	case "BF.ADD":
		added := !f.items[id]
		f.items[id] = true
		return redis.NewCmdResult(boolInt(added), nil)
	case "BF.EXISTS":
		return redis.NewCmdResult(boolInt(f.items[id]), nil)
	}
	return redis.NewCmdResult(nil, fmt.Errorf("unknown command %s", cmd))
}

func (f *fakeBloom) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func TestRedisBloomSeenAndAdd(t *testing.T) {
	ctx := context.Background()
	client := newFakeBloom()
	rb := newRedisBloom(client, BloomConfig{Key: "clipbot:test", TTL: time.Hour})

	topic := &types.Topic{Title: "Vulcões ativos", URL: "https://news.example.com/vulcoes?utm_source=rss"}

	seen, err := rb.Seen(ctx, topic)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, rb.Add(ctx, topic))
	assert.Equal(t, time.Hour, client.expires["clipbot:test"])

	seen, err = rb.Seen(ctx, &types.Topic{Title: "vulcões  ATIVOS", URL: "https://NEWS.example.com/vulcoes"})
	require.NoError(t, err)
	assert.True(t, seen)

	assert.NoError(t, rb.Close())
}

func TestRedisBloomNoTTL(t *testing.T) {
	client := newFakeBloom()
	rb := newRedisBloom(client, BloomConfig{Key: "k"})

	require.NoError(t, rb.Add(context.Background(), &types.Topic{Title: "Oceanos"}))
	assert.Empty(t, client.expires)
}

func TestRedisBloomErrors(t *testing.T) {
	client := newFakeBloom()
	client.err = errors.New("connection refused")
	rb := newRedisBloom(client, BloomConfig{Key: "k"})

	_, err := rb.Seen(context.Background(), &types.Topic{Title: "x"})
	assert.Error(t, err)
	assert.Error(t, rb.Add(context.Background(), &types.Topic{Title: "x"}))

	_, err = rb.Seen(context.Background(), nil)
	assert.Error(t, err)
}

func TestBloomConfigFromEnv(t *testing.T) {
	t.Setenv("BLOOM_ERROR_RATE", "0.01")
	t.Setenv("BLOOM_KEY", "custom:bloom")
	cfg := BloomConfigFromEnv()
	assert.Equal(t, 0.01, cfg.ErrorRate)
	assert.Equal(t, "custom:bloom", cfg.Key)

	t.Setenv("BLOOM_ERROR_RATE", "2")
	assert.Equal(t, 0.001, BloomConfigFromEnv().ErrorRate)
}
