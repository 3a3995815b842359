package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitDB creates the catalog and registration tables.
// PRE: db is a valid database connection
// POST: All tables exist, foreign keys enforced
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS student (
		banner_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS term (
		code TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		is_current INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS activity (
		code TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS student_club (
		id TEXT PRIMARY KEY,
		banner_id TEXT NOT NULL,
		activity_code TEXT NOT NULL,
		term_code TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT '',
		fees TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		FOREIGN KEY (banner_id) REFERENCES student(banner_id),
		FOREIGN KEY (activity_code) REFERENCES activity(code),
		FOREIGN KEY (term_code) REFERENCES term(code)
	);

	CREATE INDEX IF NOT EXISTS idx_student_club_banner ON student_club(banner_id, created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SeedDevelopment loads a demo student, terms and activities. Safe to run on every start.
// PRE: InitDB has run
// POST: bannerID exists as a student with one registration in the current term
func SeedDevelopment(ctx context.Context, db SQLDB, bannerID string) error {
	stmts := []struct {
		query string
		args  []any
	}{
		{"INSERT OR IGNORE INTO student (banner_id, name, email) VALUES (?, ?, ?)", []any{bannerID, "Demo Student", "demo.student@example.edu"}},
		{"INSERT OR IGNORE INTO term (code, description, is_current) VALUES (?, ?, ?)", []any{"202410", "Fall 2024", 1}},
		{"INSERT OR IGNORE INTO term (code, description, is_current) VALUES (?, ?, ?)", []any{"202420", "Spring 2025", 0}},
		{"INSERT OR IGNORE INTO activity (code, description, category) VALUES (?, ?, ?)", []any{"CHESS", "Chess Club", "CLUB"}},
		{"INSERT OR IGNORE INTO activity (code, description, category) VALUES (?, ?, ?)", []any{"ROBO", "Robotics Society", "CLUB"}},
		{"INSERT OR IGNORE INTO activity (code, description, category) VALUES (?, ?, ?)", []any{"DEBATE", "Debate Team", "CLUB"}},
		{"INSERT OR IGNORE INTO activity (code, description, category) VALUES (?, ?, ?)", []any{"SOCCER", "Intramural Soccer", "SPORT"}},
		{"INSERT OR IGNORE INTO student_club (id, banner_id, activity_code, term_code, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			[]any{"seed-" + bannerID + "-chess", bannerID, "CHESS", "202410", "Registered", "2024-08-26T09:00:00Z"}},
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s.query, s.args...); err != nil {
			return fmt.Errorf("seed development data: %w", err)
		}
	}
	return tx.Commit()
}
