package sqldb

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

// VoteRepository is the append-only vote log plus its read queries.
type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

func (r *VoteRepository) Append(ctx context.Context, vote domain.Vote) error {
	model, err := fromDomainVote(vote)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateVote
		}
		return fmt.Errorf("gorm votes: insert: %w", err)
	}
	return nil
}

func (r *VoteRepository) ListByDay(ctx context.Context, day string) ([]domain.Vote, error) {
	var models []voteModel
	if err := r.db.WithContext(ctx).
		Where("day = ?", day).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm votes: list by day: %w", err)
	}
	return toDomainVotes(models), nil
}

func (r *VoteRepository) ListAll(ctx context.Context) ([]domain.Vote, error) {
	var models []voteModel
	if err := r.db.WithContext(ctx).
		Order("day ASC, id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm votes: list all: %w", err)
	}
	return toDomainVotes(models), nil
}

func (r *VoteRepository) DistinctDays(ctx context.Context) ([]string, error) {
	var days []string
	if err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Distinct("day").
		Order("day DESC").
		Pluck("day", &days).Error; err != nil {
		return nil, fmt.Errorf("gorm votes: distinct days: %w", err)
	}
	return days, nil
}

func (r *VoteRepository) Clear(ctx context.Context) error {
	// Idempotent wipe of the whole log.
	if err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&voteModel{}).Error; err != nil {
		return fmt.Errorf("gorm votes: clear: %w", err)
	}
	return nil
}

func toDomainVotes(models []voteModel) []domain.Vote {
	votes := make([]domain.Vote, len(models))
	for i, m := range models {
		votes[i] = m.toDomain()
	}
	return votes
}

var _ domain.VoteRepository = (*VoteRepository)(nil)
