// Package catalog fetches the student's club catalog from the configured data source.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"studentclubs/internal/domain/club"
)

// ErrNoStudent is returned when a query names no student.
var ErrNoStudent = errors.New("query has neither a user token nor a banner id")

// Query identifies whose catalog to fetch.
type Query struct {
	UserToken string // forwarded opaquely to the pipeline
	BannerID  string // used by sources that resolve the student locally
	Category  string // activity category the club list is filtered to
}

// Source fetches one catalog per call.
type Source interface {
	Fetch(ctx context.Context, q Query) (club.Catalog, error)
}

// StatusError is a fetch failure carrying the HTTP status the source reported.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("catalog fetch failed: status %d", e.Code)
	}
	return fmt.Sprintf("catalog fetch failed: status %d: %s", e.Code, e.Body)
}

// StatusCode extracts the status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// NotFound reports whether err is a 404 from the source.
func NotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
