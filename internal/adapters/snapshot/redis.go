// Package snapshot pushes committed configuration snapshots to Redis so
// reconciler instances can pick up changes without polling the API.
package snapshot

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/poyrazK/cfddns/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultKey is the Redis key holding the latest configuration JSON.
	DefaultKey = "cfddns:config"
	// DefaultChannel is the pub/sub channel announcing new versions.
	DefaultChannel = "cfddns:commits"
)

// RedisPublisher implements ports.SnapshotPublisher. Each publish stores the
// serialized configuration under a fixed key and announces the new version on
// a pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	key     string
	channel string
}

// NewRedisPublisher connects to the given Redis instance. Empty key or
// channel fall back to the defaults.
func NewRedisPublisher(addr, password string, db int, key, channel string) *RedisPublisher {
	if key == "" {
		key = DefaultKey
	}
	if channel == "" {
		channel = DefaultChannel
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisPublisher{client: rdb, key: key, channel: channel}
}

// Publish stores cfg and announces its version. The key has no TTL: the
// latest committed configuration stays available until the next commit.
func (p *RedisPublisher) Publish(ctx context.Context, cfg *domain.Config) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := p.client.Set(ctx, p.key, payload, 0).Err(); err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, strconv.FormatUint(cfg.Version, 10)).Err()
}

// Latest fetches the most recently published configuration, if any.
func (p *RedisPublisher) Latest(ctx context.Context) (*domain.Config, bool, error) {
	payload, err := p.client.Get(ctx, p.key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cfg domain.Config
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, false, err
	}
	return &cfg, true, nil
}

// Subscribe returns a channel delivering the version of each new commit.
func (p *RedisPublisher) Subscribe(ctx context.Context) <-chan *redis.Message {
	pubsub := p.client.Subscribe(ctx, p.channel)
	return pubsub.Channel()
}

// Ping checks connectivity to Redis.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
