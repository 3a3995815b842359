package catalog

import (
	"context"
	"errors"
	"net/http"
	"time"

	"studentclubs/internal/adapters/http/perf"
	clubStore "studentclubs/internal/adapters/storage/clubs"
	"studentclubs/internal/domain/club"
)

// SQLiteSource reads the catalog from the local development database.
type SQLiteSource struct {
	Store     clubStore.Store
	Collector *perf.Collector
}

// Fetch loads q.BannerID's catalog. An unknown student is reported as a 404.
func (s *SQLiteSource) Fetch(ctx context.Context, q Query) (cat club.Catalog, err error) {
	if q.BannerID == "" {
		return club.Catalog{}, ErrNoStudent
	}
	start := time.Now()
	defer func() {
		s.Collector.Since(perf.KindCall, "catalog.sqlite", start, 0, err != nil)
	}()

	cat, err = s.Store.Catalog(ctx, q.BannerID, q.Category)
	if errors.Is(err, clubStore.ErrStudentNotFound) {
		return club.Catalog{}, &StatusError{Code: http.StatusNotFound, Body: err.Error()}
	}
	return cat, err
}
