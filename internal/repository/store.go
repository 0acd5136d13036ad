// Package repository opens the configured schedule and employee store.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-recon/internal/config"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-recon/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-recon/internal/repository/sqlite"
)

type Stores struct {
	Schedules schedule.ScheduleRepository
	Employees employee.EmployeeRepository
	close     func()
}

func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the store named by STORE_DRIVER and makes sure its schema exists.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.DefaultPoolOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		slog.Info("Store opened", "driver", config.StorePostgres, "host", cfg.Database.Host, "database", cfg.Database.Name)
		return &Stores{
			Schedules: postgresql.NewScheduleRepository(db),
			Employees: postgresql.NewEmployeeRepository(db),
			close:     db.Close,
		}, nil

	case config.StoreSQLite:
		store, err := sqlite.New(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("Store opened", "driver", config.StoreSQLite, "path", cfg.Store.SQLitePath)
		return &Stores{
			Schedules: sqlite.NewScheduleRepository(store),
			Employees: sqlite.NewEmployeeRepository(store),
			close:     func() { _ = store.Close() },
		}, nil
	}
	return nil, fmt.Errorf("%w, got %q", config.ErrInvalidStoreDriver, cfg.Store.Driver)
}
