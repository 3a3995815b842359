package enrollment

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"studentclubs/internal/adapters/http/perf"
	clubStore "studentclubs/internal/adapters/storage/clubs"
	domain "studentclubs/internal/domain/enrollment"
)

// SQLiteSubmitter records registrations in the local development ledger.
type SQLiteSubmitter struct {
	Store     clubStore.Store
	Collector *perf.Collector
	Now       func() time.Time
	NewID     func() string
}

// Submit validates req and inserts it; the next catalog fetch shows the club.
// PRE: none
// POST: At most one ledger row inserted
func (s *SQLiteSubmitter) Submit(ctx context.Context, _ string, req domain.Request) (result domain.Result) {
	start := time.Now()
	defer func() {
		s.Collector.Since(perf.KindCall, "enrollment.sqlite", start, 0, !result.OK())
	}()

	if err := req.Validate(); err != nil {
		return domain.Failure(err.Error())
	}
	now, newID := time.Now, uuid.NewString
	if s.Now != nil {
		now = s.Now
	}
	if s.NewID != nil {
		newID = s.NewID
	}
	reg := clubStore.Registration{ID: newID(), Request: req, CreatedAt: now()}
	if err := s.Store.SaveRegistration(ctx, reg); err != nil {
		slog.Error("club_registration_save_failed", "club", req.Name, "term", req.Term, "error", err.Error())
		return domain.Failure(err.Error())
	}
	return domain.Success(reg.ID)
}
