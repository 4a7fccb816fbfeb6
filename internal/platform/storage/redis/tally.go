package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

// Tally provides prefixed increment-and-read counters for the live results
// display. Cleared together with the vote log, since it is derived from it.
type Tally struct {
	client *redis.Client
	prefix string
}

func NewTally(client *redis.Client, prefix string) *Tally {
	if prefix == "" {
		prefix = "tally"
	}
	return &Tally{client: client, prefix: prefix}
}

func (t *Tally) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	return t.client.IncrBy(ctx, t.key(key), delta).Result()
}

func (t *Tally) GetAll(ctx context.Context, keys []string) (map[string]int64, error) {
	if len(keys) == 0 {
		return map[string]int64{}, nil
	}

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = t.key(k)
	}

	// One MGET keeps the 3s poll from the kiosk display cheap.
	values, err := t.client.MGet(ctx, prefixed...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis tally: mget: %w", err)
	}

	result := make(map[string]int64, len(keys))
	for i, raw := range values {
		if raw == nil {
			result[keys[i]] = 0
			continue
		}

		switch v := raw.(type) {
		case string:
			num, convErr := strconv.ParseInt(v, 10, 64)
			if convErr != nil {
				return nil, fmt.Errorf("redis tally: bad value for %s: %w", keys[i], convErr)
			}
			result[keys[i]] = num
		case int64:
			result[keys[i]] = v
		default:
			return nil, fmt.Errorf("redis tally: unexpected type %T", raw)
		}
	}

	return result, nil
}

// Clear drops every counter under the prefix. Runs alongside the vote-log
// wipe so the live display never shows counts for deleted votes.
func (t *Tally) Clear(ctx context.Context) error {
	iter := t.client.Scan(ctx, 0, t.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := t.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis tally: clear: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis tally: scan: %w", err)
	}
	return nil
}

func (t *Tally) key(k string) string {
	return fmt.Sprintf("%s:%s", t.prefix, k)
}

var _ domain.Tally = (*Tally)(nil)
