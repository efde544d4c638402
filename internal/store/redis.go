package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores the balance and statistics under two prefixed keys.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to the server at url (redis://host:port/db).
func OpenRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) key(name string) string { return r.prefix + name }

func (r *Redis) Load(ctx context.Context) (Snapshot, error) {
	vals, err := r.client.MGet(ctx, r.key(keyBalance), r.key(keyStatistics), r.key("updated_at")).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	balance, ok := vals[0].(string)
	if !ok {
		return Snapshot{}, ErrNotFound
	}

	var snap Snapshot
	if snap.Balance, err = strconv.Atoi(balance); err != nil {
		return Snapshot{}, fmt.Errorf("invalid stored balance %q: %w", balance, err)
	}
	if stats, ok := vals[1].(string); ok {
		if err := json.Unmarshal([]byte(stats), &snap.Stats); err != nil {
			return Snapshot{}, fmt.Errorf("invalid stored statistics: %w", err)
		}
	}
	if ts, ok := vals[2].(string); ok {
		snap.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts)
	}
	return snap, nil
}

func (r *Redis) Save(ctx context.Context, snap Snapshot) error {
	stats, err := json.Marshal(snap.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode statistics: %w", err)
	}
	updated := snap.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(keyBalance), snap.Balance, 0)
		pipe.Set(ctx, r.key(keyStatistics), stats, 0)
		pipe.Set(ctx, r.key("updated_at"), updated.UTC().Format(time.RFC3339Nano), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Clear removes the stored keys.
func (r *Redis) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key(keyBalance), r.key(keyStatistics), r.key("updated_at")).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
