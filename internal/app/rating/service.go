// Package rating implements the voting rules: intake validation, the one-vote-
// per-name-per-day constraint, aggregation and the admin resets.
package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/ids"
)

var (
	ErrNameRequired      = errors.New("name is required")
	ErrInvalidRole       = errors.New("unknown role")
	ErrInvalidRating     = errors.New("rating outside 0..3")
	ErrUnknownAdjustment = errors.New("adjustment not in the vocabulary")
	ErrDayRequired       = errors.New("date is required")
)

// SubmitRequest is one vote as it arrives from the intake endpoint.
type SubmitRequest struct {
	Name        string
	Role        domain.Role
	Rating      domain.Rating
	Adjustments []string

	// Client identity, only used by the rate guard.
	ClientIP  string
	UserAgent string
}

// Service wires the repositories, the voted-names cache and the live tally
// behind the voting rules.
type Service struct {
	votes      domain.VoteRepository
	guests     domain.GuestRepository
	dish       domain.DishRepository
	votedNames domain.VotedNames
	tally      domain.Tally
	guard      domain.RateGuard
	clock      domain.Clock
	ids        *ids.Generator
	logger     *slog.Logger

	// storeTimeout bounds every storage round-trip so a stuck store surfaces
	// as an error instead of hanging the request.
	storeTimeout time.Duration
}

func NewService(
	votes domain.VoteRepository,
	guests domain.GuestRepository,
	dish domain.DishRepository,
	votedNames domain.VotedNames,
	tally domain.Tally,
	guard domain.RateGuard,
	clock domain.Clock,
	idsGen *ids.Generator,
	logger *slog.Logger,
	storeTimeout time.Duration,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &Service{
		votes:        votes,
		guests:       guests,
		dish:         dish,
		votedNames:   votedNames,
		tally:        tally,
		guard:        guard,
		clock:        clock,
		ids:          idsGen,
		logger:       logger,
		storeTimeout: storeTimeout,
	}
}

// SubmitVote validates the request, stamps today's day and appends the vote.
// The (name, day) unique index in the store decides duplicate submissions, so
// two concurrent votes for the same name cannot both win.
func (s *Service) SubmitVote(ctx context.Context, req SubmitRequest) (domain.Vote, error) {
	if req.Name == "" {
		return domain.Vote{}, ErrNameRequired
	}
	if !req.Role.Valid() {
		return domain.Vote{}, fmt.Errorf("%w: %q", ErrInvalidRole, req.Role)
	}
	if !req.Rating.Valid() {
		return domain.Vote{}, fmt.Errorf("%w: %d", ErrInvalidRating, req.Rating)
	}
	for _, tag := range req.Adjustments {
		if !domain.KnownAdjustment(tag) {
			return domain.Vote{}, fmt.Errorf("%w: %q", ErrUnknownAdjustment, tag)
		}
	}

	if s.guard != nil {
		if err := s.guard.Allow(ctx, req.ClientIP, req.UserAgent); err != nil {
			return domain.Vote{}, err
		}
	}

	vote := domain.Vote{
		ID:          domain.VoteID(s.ids.New()),
		Name:        req.Name,
		Role:        req.Role,
		Rating:      req.Rating,
		Adjustments: dedupe(req.Adjustments),
		Day:         s.clock.Today(),
		CreatedAt:   s.clock.Now(),
	}

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.votes.Append(opCtx, vote); err != nil {
		return domain.Vote{}, err
	}

	// The vote is durable from here on. The voted-names cache and the live
	// tally are conveniences; their failures are logged, not turned into a
	// rejection of an already-accepted vote.
	if err := s.votedNames.Add(opCtx, vote.Name); err != nil {
		s.logger.Error("voted-names update failed after accepted vote", "err", err, "name", vote.Name)
	}
	if s.tally != nil {
		if _, err := s.tally.Increment(opCtx, TallyKeyDayRating(vote.Day, vote.Rating), 1); err != nil {
			s.logger.Error("tally update failed after accepted vote", "err", err, "day", vote.Day)
		}
	}

	return vote, nil
}

// Votes lists the log, optionally restricted to one day.
func (s *Service) Votes(ctx context.Context, day string) ([]domain.Vote, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	if day == "" {
		return s.votes.ListAll(opCtx)
	}
	return s.votes.ListByDay(opCtx, day)
}

// Results aggregates one day's votes from the store.
func (s *Service) Results(ctx context.Context, day string) (domain.DaySummary, error) {
	if day == "" {
		return domain.DaySummary{}, ErrDayRequired
	}

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	votes, err := s.votes.ListByDay(opCtx, day)
	if err != nil {
		return domain.DaySummary{}, err
	}
	return Aggregate(day, votes), nil
}

// LiveResults reads today's counts from the redis tally. Approximate: the
// tally can lag the log after failures, the authoritative numbers come from
// Results.
func (s *Service) LiveResults(ctx context.Context) (domain.DaySummary, error) {
	day := s.clock.Today()

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	raw, err := s.tally.GetAll(opCtx, tallyKeysForDay(day))
	if err != nil {
		return domain.DaySummary{}, err
	}

	counts := make(map[domain.Rating]int64, len(domain.Ratings()))
	for _, r := range domain.Ratings() {
		counts[r] = raw[TallyKeyDayRating(day, r)]
	}
	return summaryFromCounts(day, counts), nil
}

func (s *Service) VoteDates(ctx context.Context) ([]string, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.votes.DistinctDays(opCtx)
}

// ClearVotes wipes the vote log and the derived tally. The voted-names set is
// deliberately untouched: the two resets are independent admin operations and
// may leave the set out of sync with the log.
func (s *Service) ClearVotes(ctx context.Context) error {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.votes.Clear(opCtx); err != nil {
		return err
	}
	if s.tally != nil {
		if err := s.tally.Clear(opCtx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) VotedNames(ctx context.Context) ([]string, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.votedNames.List(opCtx)
}

func (s *Service) ResetVotedNames(ctx context.Context) error {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.votedNames.Clear(opCtx)
}

func (s *Service) Guests(ctx context.Context) ([]domain.Guest, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.guests.List(opCtx)
}

func (s *Service) AddGuest(ctx context.Context, name string) (domain.Guest, error) {
	if name == "" {
		return domain.Guest{}, ErrNameRequired
	}

	guest := domain.Guest{
		ID:        domain.GuestID(s.ids.New()),
		Name:      name,
		CreatedAt: s.clock.Now(),
	}

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.guests.Add(opCtx, guest); err != nil {
		return domain.Guest{}, err
	}
	return guest, nil
}

func (s *Service) ResetGuests(ctx context.Context) error {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.guests.Clear(opCtx)
}

// Dish returns the current dish, or the zero dish when none was set yet.
func (s *Service) Dish(ctx context.Context) (domain.Dish, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	dish, err := s.dish.Get(opCtx)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Dish{}, nil
	}
	return dish, err
}

func (s *Service) SetDish(ctx context.Context, dish domain.Dish) error {
	if dish.Name == "" {
		return ErrNameRequired
	}

	opCtx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.dish.Put(opCtx, dish)
}

func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

// dedupe drops repeated tags while keeping first-seen order.
func dedupe(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
