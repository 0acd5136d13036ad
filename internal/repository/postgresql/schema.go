package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/database"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the tables if missing and seeds the weekday catalog.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	return WithTransaction(ctx, db, func(ctx context.Context) error {
		q := GetQuerier(ctx, db)
		if _, err := q.Exec(ctx, schemaSQL); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
		for _, d := range schedule.DayCatalog {
			_, err := q.Exec(ctx,
				`INSERT INTO weekdays (id, name, letter) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
				int16(d.ID), d.Name, d.Letter,
			)
			if err != nil {
				return fmt.Errorf("failed to seed weekdays: %w", err)
			}
		}
		return nil
	})
}
