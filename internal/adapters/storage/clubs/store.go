package clubs

import (
	"context"
	"errors"
	"time"

	"studentclubs/internal/domain/club"
	"studentclubs/internal/domain/enrollment"
)

// ErrStudentNotFound is returned when the banner id has no student row.
var ErrStudentNotFound = errors.New("student not found")

// Registration is one row of the local enrollment ledger.
type Registration struct {
	ID        string
	Request   enrollment.Request
	Status    string
	CreatedAt time.Time
}

// Store reads the club catalog and records registrations.
type Store interface {
	Catalog(ctx context.Context, bannerID, category string) (club.Catalog, error)
	SaveRegistration(ctx context.Context, r Registration) error
}
