package history

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"clipbot/config"
	"clipbot/types"

	"github.com/redis/go-redis/v9"
)

// BloomConfig configures RedisBloom connection and key
type BloomConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Key      string // redis key for bloom filter
	TTL      time.Duration
	// Capacity sets the initial BF.RESERVE capacity (number of items)
	Capacity int
	// ErrorRate sets the desired false positive probability (e.g. 0.001)
	ErrorRate float64
	// If true, BF.RESERVE NONSCALING flag will be used
	NonScaling bool
}

// bloomClient is the part of *redis.Client the filter uses.
type bloomClient interface {
	Do(ctx context.Context, args ...interface{}) *redis.Cmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisBloom remembers used topics in a RedisBloom filter.
type RedisBloom struct {
	client bloomClient
	closer func() error
	key    string
	ttl    time.Duration
}

// BloomConfigFromEnv reads REDIS_ADDR, REDIS_PASS, REDIS_DB, BLOOM_KEY, BLOOM_TTL,
// BLOOM_CAPACITY, BLOOM_ERROR_RATE and BLOOM_NONSCALING.
func BloomConfigFromEnv() BloomConfig {
	return BloomConfig{
		Addr:       config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		Password:   config.GetEnvOrDefault("REDIS_PASS", ""),
		DB:         config.GetEnvInt("REDIS_DB", 0),
		Key:        config.GetEnvOrDefault("BLOOM_KEY", "clipbot:topics:bloom"),
		TTL:        config.GetEnvDuration("BLOOM_TTL", 30*24*time.Hour),
		Capacity:   config.GetEnvInt("BLOOM_CAPACITY", 100000),
		ErrorRate:  errorRateFromEnv(0.001),
		NonScaling: config.GetEnvBool("BLOOM_NONSCALING", false),
	}
}

// NewRedisBloom connects to Redis and reserves the filter if it does not exist yet.
func NewRedisBloom(ctx context.Context, cfg BloomConfig) (*RedisBloom, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	rb := newRedisBloom(client, cfg)
	rb.closer = client.Close

	// BF.RESERVE failure is ignored: BF.ADD auto-creates the filter with module defaults.
	exists, err := client.Exists(pingCtx, cfg.Key).Result()
	if err == nil && exists == 0 {
		args := []interface{}{"BF.RESERVE", cfg.Key, fmt.Sprintf("%f", cfg.ErrorRate), cfg.Capacity}
		if cfg.NonScaling {
			args = append(args, "NONSCALING")
		}
		_ = client.Do(pingCtx, args...).Err()
	}

	return rb, nil
}

func newRedisBloom(client bloomClient, cfg BloomConfig) *RedisBloom {
	return &RedisBloom{client: client, key: cfg.Key, ttl: cfg.TTL}
}

func errorRateFromEnv(defaultVal float64) float64 {
	if e := os.Getenv("BLOOM_ERROR_RATE"); e != "" {
		if v, err := strconv.ParseFloat(e, 64); err == nil && v > 0 && v < 1 {
			return v
		}
	}
	return defaultVal
}

// Close closes the underlying Redis client
func (r *RedisBloom) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// Seen implements History using BF.EXISTS.
func (r *RedisBloom) Seen(ctx context.Context, t *types.Topic) (bool, error) {
	hash, err := NormalizeAndHash(t)
	if err != nil {
		return false, err
	}

	res, err := r.client.Do(ctx, "BF.EXISTS", r.key, hash).Result()
	if err != nil {
		return false, err
	}

	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case bool:
		return v, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// Add implements History using BF.ADD and refreshes the key TTL.
func (r *RedisBloom) Add(ctx context.Context, t *types.Topic) error {
	hash, err := NormalizeAndHash(t)
	if err != nil {
		return err
	}

	if err := r.client.Do(ctx, "BF.ADD", r.key, hash).Err(); err != nil {
		return err
	}

	// Sliding window: the filter stays alive for ttl after the latest insertion.
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, r.key, r.ttl).Err(); err != nil {
			return err
		}
	}
	return nil
}
