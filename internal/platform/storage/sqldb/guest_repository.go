package sqldb

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

// GuestRepository keeps the guest roster in insertion order. Duplicate names
// are allowed; the roster is whatever the admin typed.
type GuestRepository struct {
	db *gorm.DB
}

func NewGuestRepository(db *gorm.DB) *GuestRepository {
	return &GuestRepository{db: db}
}

func (r *GuestRepository) Add(ctx context.Context, guest domain.Guest) error {
	model := guestModel{
		ID:        string(guest.ID),
		Name:      guest.Name,
		CreatedAt: guest.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("gorm guests: insert: %w", err)
	}
	return nil
}

func (r *GuestRepository) List(ctx context.Context) ([]domain.Guest, error) {
	var models []guestModel
	// ULIDs are monotonic, so id order is insertion order.
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm guests: list: %w", err)
	}

	guests := make([]domain.Guest, len(models))
	for i, m := range models {
		guests[i] = domain.Guest{
			ID:        domain.GuestID(m.ID),
			Name:      m.Name,
			CreatedAt: m.CreatedAt,
		}
	}
	return guests, nil
}

func (r *GuestRepository) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&guestModel{}).Error; err != nil {
		return fmt.Errorf("gorm guests: clear: %w", err)
	}
	return nil
}

var _ domain.GuestRepository = (*GuestRepository)(nil)
