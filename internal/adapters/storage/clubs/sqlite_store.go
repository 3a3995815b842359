package clubs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studentclubs/internal/adapters/storage"
	"studentclubs/internal/domain/club"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new clubs store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Catalog assembles the student's clubs, the terms and the activities of category.
// PRE: bannerID is non-empty
// POST: Returns a catalog with IDs assigned, or ErrStudentNotFound
func (s *SQLiteStore) Catalog(ctx context.Context, bannerID, category string) (club.Catalog, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM student WHERE banner_id = ?", bannerID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return club.Catalog{}, fmt.Errorf("banner id %s: %w", bannerID, ErrStudentNotFound)
	}
	if err != nil {
		return club.Catalog{}, err
	}

	cat := club.Catalog{BannerID: bannerID}
	if cat.StudentClubs, err = s.studentClubs(ctx, bannerID); err != nil {
		return club.Catalog{}, err
	}
	if cat.Terms, err = s.options(ctx, "SELECT code, description FROM term ORDER BY code"); err != nil {
		return club.Catalog{}, err
	}
	if cat.ActivityList, err = s.options(ctx, "SELECT code, description FROM activity WHERE category = ? ORDER BY description", category); err != nil {
		return club.Catalog{}, err
	}
	err = s.db.QueryRowContext(ctx, "SELECT code FROM term WHERE is_current = 1 ORDER BY code DESC LIMIT 1").Scan(&cat.CurrentTerm)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return club.Catalog{}, err
	}

	cat.AssignIDs()
	return cat, nil
}

func (s *SQLiteStore) studentClubs(ctx context.Context, bannerID string) ([]club.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.description, sc.status FROM student_club sc
		 JOIN activity a ON a.code = sc.activity_code
		 WHERE sc.banner_id = ? ORDER BY sc.created_at, sc.id`, bannerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []club.Record{}
	for rows.Next() {
		var r club.Record
		if err := rows.Scan(&r.Description, &r.Status); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) options(ctx context.Context, query string, args ...any) ([]club.Option, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []club.Option{}
	for rows.Next() {
		var o club.Option
		if err := rows.Scan(&o.Code, &o.Description); err != nil {
			return nil, err
		}
		results = append(results, o)
	}
	return results, rows.Err()
}

// SaveRegistration inserts a registration into the ledger.
// PRE: r.Request has been validated
// POST: the registration shows up in the next Catalog call
func (s *SQLiteStore) SaveRegistration(ctx context.Context, r Registration) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO student_club (id, banner_id, activity_code, term_code, status, fees, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.Request.BannerID, r.Request.Name, r.Request.Term, r.Status, r.Request.ClubFees, r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save registration: %w", err)
	}
	return nil
}
