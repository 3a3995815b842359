package orchestrators

import (
	"context"
	"sync"
	"time"

	"studentclubs/internal/adapters/catalog"
	"studentclubs/internal/domain/club"
	domain "studentclubs/internal/domain/enrollment"
)

var cardClock = time.Date(2024, 9, 3, 9, 30, 0, 0, time.UTC)

func cardNow() time.Time { return cardClock }

// stubCatalog builds a catalog holding the named clubs.
func stubCatalog(clubs ...string) club.Catalog {
	c := club.Catalog{
		BannerID:     "B00123",
		CurrentTerm:  "202410",
		Terms:        []club.Option{{Code: "202410", Description: "Fall 2024"}, {Code: "202420", Description: "Spring 2025"}},
		ActivityList: []club.Option{{Code: "CHESS", Description: "Chess Club"}, {Code: "ROBO", Description: "Robotics Society"}},
	}
	for _, name := range clubs {
		c.StudentClubs = append(c.StudentClubs, club.Record{Description: name})
	}
	c.AssignIDs()
	return c
}

type fetchReply struct {
	catalog club.Catalog
	err     error
}

// stubSource replays queued replies; the last reply repeats once the queue drains.
// When gate is set every fetch blocks until it receives.
type stubSource struct {
	mu      sync.Mutex
	replies []fetchReply
	calls   int
	queries []catalog.Query
	gate    chan struct{}
}

func (s *stubSource) Fetch(ctx context.Context, q catalog.Query) (club.Catalog, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return club.Catalog{}, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.queries = append(s.queries, q)
	if len(s.replies) == 0 {
		return club.Catalog{}, nil
	}
	r := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return r.catalog, r.err
}

func (s *stubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubSubmitter records every submission and answers with result.
type stubSubmitter struct {
	mu     sync.Mutex
	result domain.Result
	tokens []string
	reqs   []domain.Request
}

func (s *stubSubmitter) Submit(_ context.Context, userToken string, req domain.Request) domain.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, userToken)
	s.reqs = append(s.reqs, req)
	return s.result
}

func (s *stubSubmitter) Requests() []domain.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Request(nil), s.reqs...)
}
