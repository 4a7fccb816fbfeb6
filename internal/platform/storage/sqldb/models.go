package sqldb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

type voteModel struct {
	ID          string    `gorm:"column:id;type:char(26);primaryKey"`
	Name        string    `gorm:"column:name;type:text;not null;uniqueIndex:idx_votes_name_day"`
	Role        string    `gorm:"column:role;type:text;not null"`
	Rating      int       `gorm:"column:rating;not null"`
	Adjustments string    `gorm:"column:adjustments;type:text"`
	Day         string    `gorm:"column:day;type:text;not null;uniqueIndex:idx_votes_name_day;index:idx_votes_day"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

type guestModel struct {
	ID        string    `gorm:"column:id;type:char(26);primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (guestModel) TableName() string {
	return "guests"
}

// dishModel is a singleton; every write upserts the same row.
type dishModel struct {
	ID    int    `gorm:"column:id;primaryKey"`
	Name  string `gorm:"column:name;type:text"`
	Image string `gorm:"column:image;type:text"`
}

func (dishModel) TableName() string {
	return "food"
}

// Models lists every table for the migration layer.
func Models() []any {
	return []any{&voteModel{}, &guestModel{}, &dishModel{}}
}

// Tables lists table names in drop-safe order for migration rollbacks.
func Tables() []string {
	return []string{"votes", "guests", "food"}
}

func fromDomainVote(v domain.Vote) (voteModel, error) {
	// Adjustments persist as a JSON array in a text column; free text by
	// design so vocabulary changes never break old rows.
	payload, err := json.Marshal(v.Adjustments)
	if err != nil {
		return voteModel{}, fmt.Errorf("gorm votes: encode adjustments: %w", err)
	}
	return voteModel{
		ID:          string(v.ID),
		Name:        v.Name,
		Role:        string(v.Role),
		Rating:      int(v.Rating),
		Adjustments: string(payload),
		Day:         v.Day,
		CreatedAt:   v.CreatedAt,
	}, nil
}

func (m voteModel) toDomain() domain.Vote {
	var adjustments []string
	if m.Adjustments != "" {
		// Rows written by hand or by older versions may hold junk; an
		// unreadable list degrades to empty instead of failing the read.
		_ = json.Unmarshal([]byte(m.Adjustments), &adjustments)
	}
	return domain.Vote{
		ID:          domain.VoteID(m.ID),
		Name:        m.Name,
		Role:        domain.Role(m.Role),
		Rating:      domain.Rating(m.Rating),
		Adjustments: adjustments,
		Day:         m.Day,
		CreatedAt:   m.CreatedAt,
	}
}
