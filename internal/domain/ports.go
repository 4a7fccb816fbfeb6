package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when a requested record does not
// exist. ErrDuplicateVote is returned by VoteRepository.Append when the
// (name, day) unique constraint rejects the insert.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateVote = errors.New("vote already recorded for name and day")
)

type VoteRepository interface {
	// Append inserts the vote as-is; validation happens in the service.
	Append(ctx context.Context, vote Vote) error
	ListByDay(ctx context.Context, day string) ([]Vote, error)
	ListAll(ctx context.Context) ([]Vote, error)
	// DistinctDays returns every day with at least one vote, most recent first.
	DistinctDays(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

type GuestRepository interface {
	Add(ctx context.Context, guest Guest) error
	// List preserves insertion order and does not deduplicate.
	List(ctx context.Context) ([]Guest, error)
	Clear(ctx context.Context) error
}

type DishRepository interface {
	Get(ctx context.Context) (Dish, error)
	Put(ctx context.Context, dish Dish) error
}

// VotedNames is the mutable "already voted today" set shown on the name grid.
// It is a convenience cache of the vote log and is reset independently, so it
// can drift from the log; the unique index on votes stays the authority.
type VotedNames interface {
	Add(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// Tally keeps cheap live per-day counters so the frequently polled displays
// do not hit the relational store. Approximate by design.
type Tally interface {
	Increment(ctx context.Context, key string, delta int64) (int64, error)
	GetAll(ctx context.Context, keys []string) (map[string]int64, error)
	Clear(ctx context.Context) error
}

type Clock interface {
	Now() time.Time
	// Today is Now rendered as a DayFormat string in the server's timezone.
	Today() string
}

// RateGuard throttles vote submissions per client. Implementations decide the
// keying; a nil or noop guard admits everything.
type RateGuard interface {
	Allow(ctx context.Context, clientIP, userAgent string) error
}
