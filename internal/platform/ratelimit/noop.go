package ratelimit

import (
	"context"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

// Noop admits every submission. Used when rate limiting is disabled.
type Noop struct{}

func NewNoop() Noop {
	return Noop{}
}

func (Noop) Allow(ctx context.Context, clientIP, userAgent string) error {
	return nil
}

var _ domain.RateGuard = Noop{}
