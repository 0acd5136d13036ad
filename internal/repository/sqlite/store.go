// Package sqlite is the embedded store for schedule rules, the weekday
// catalog and the employee directory. It mirrors the PostgreSQL repositories
// for single-host deployments and tests; the schema is created on New.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
)

type Store struct {
	db *sql.DB
}

// New opens the database at path. Use ":memory:" for a private in-memory database.
func New(path string) (*Store, error) {
	memory := path == ":memory:" || strings.HasPrefix(path, "file::memory:")

	dsn := path + "?_foreign_keys=on&_journal_mode=WAL"
	if memory {
		dsn = path + "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS weekdays (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		letter TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS employees (
		code TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		branch TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS schedule_rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_code TEXT NOT NULL,
		branch_name TEXT NOT NULL DEFAULT '',
		days TEXT NOT NULL,
		quincena INTEGER NOT NULL DEFAULT 0 CHECK (quincena IN (0, 1, 2)),
		entry_time TEXT NOT NULL,
		exit_time TEXT NOT NULL,
		crosses_midnight INTEGER NOT NULL DEFAULT 0,
		UNIQUE (employee_code, branch_name, days, quincena)
	);

	CREATE INDEX IF NOT EXISTS idx_schedule_rules_employee
		ON schedule_rules(employee_code);
	CREATE INDEX IF NOT EXISTS idx_employees_branch
		ON employees(branch) WHERE active = 1;
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	for _, d := range schedule.DayCatalog {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO weekdays (id, name, letter) VALUES (?, ?, ?)`,
			int(d.ID), d.Name, d.Letter,
		); err != nil {
			return fmt.Errorf("failed to seed weekdays: %w", err)
		}
	}
	return nil
}
