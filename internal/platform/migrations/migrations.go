// Package migrations holds the gormigrate versions applied at startup.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/MichelFaust/MCW-Food-Voting/internal/platform/storage/sqldb"
)

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: nil db")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			// Creates votes (with the (name, day) unique index), guests and
			// the singleton food table.
			ID: "202503140001_init_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(sqldb.Models()...)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(toAny(sqldb.Tables())...)
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: apply: %w", err)
	}

	return nil
}

func toAny(tables []string) []any {
	out := make([]any, len(tables))
	for i, t := range tables {
		out[i] = t
	}
	return out
}
