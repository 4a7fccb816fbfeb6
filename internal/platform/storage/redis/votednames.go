package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

// VotedNames is the "already voted" set backing the name grid. It is the UI
// convenience cache described by the data model: reset independently of the
// vote log, it may drift from it. Duplicate enforcement lives in the votes
// unique index, never here.
type VotedNames struct {
	client *redis.Client
	key    string
}

func NewVotedNames(client *redis.Client, key string) *VotedNames {
	if key == "" {
		key = "voted_names"
	}
	return &VotedNames{client: client, key: key}
}

func (v *VotedNames) Add(ctx context.Context, name string) error {
	if err := v.client.SAdd(ctx, v.key, name).Err(); err != nil {
		return fmt.Errorf("redis voted-names: add: %w", err)
	}
	return nil
}

func (v *VotedNames) List(ctx context.Context) ([]string, error) {
	names, err := v.client.SMembers(ctx, v.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis voted-names: list: %w", err)
	}
	return names, nil
}

func (v *VotedNames) Clear(ctx context.Context) error {
	if err := v.client.Del(ctx, v.key).Err(); err != nil {
		return fmt.Errorf("redis voted-names: clear: %w", err)
	}
	return nil
}

var _ domain.VotedNames = (*VotedNames)(nil)
