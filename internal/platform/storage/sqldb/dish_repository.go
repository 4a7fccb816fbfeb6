package sqldb

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

// dishRowID pins the singleton row; every Put upserts the same primary key.
const dishRowID = 1

type DishRepository struct {
	db *gorm.DB
}

func NewDishRepository(db *gorm.DB) *DishRepository {
	return &DishRepository{db: db}
}

func (r *DishRepository) Get(ctx context.Context) (domain.Dish, error) {
	var model dishModel
	if err := r.db.WithContext(ctx).First(&model, dishRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Dish{}, domain.ErrNotFound
		}
		return domain.Dish{}, fmt.Errorf("gorm food: get: %w", err)
	}
	return domain.Dish{Name: model.Name, Image: model.Image}, nil
}

func (r *DishRepository) Put(ctx context.Context, dish domain.Dish) error {
	model := dishModel{
		ID:    dishRowID,
		Name:  dish.Name,
		Image: dish.Image,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "image"}),
		}).
		Create(&model).Error; err != nil {
		return fmt.Errorf("gorm food: upsert: %w", err)
	}
	return nil
}

var _ domain.DishRepository = (*DishRepository)(nil)
