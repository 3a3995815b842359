package orchestrators

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"studentclubs/internal/adapters/catalog"
	"studentclubs/internal/domain/card"
	"studentclubs/internal/domain/club"
)

// DataQueryDeps configures the catalog fetches of one card session.
type DataQueryDeps struct {
	Source      catalog.Source
	Query       catalog.Query
	PreviewMode bool
	Timeout     time.Duration // per fetch; zero means no timeout
}

// DataQuery fetches the catalog in the background and tracks the fetch status
// the card renders from. At most one fetch runs at a time; a refresh requested
// during a fetch runs once that fetch completes.
type DataQuery struct {
	deps DataQueryDeps

	mu         sync.Mutex
	catalog    *club.Catalog
	inFlight   bool
	rerun      bool
	fetched    bool
	isError    bool
	errStatus  int
	onSettled  func()
	inFlightWG sync.WaitGroup
}

// NewDataQuery creates a query with nothing fetched yet.
func NewDataQuery(deps DataQueryDeps) *DataQuery {
	return &DataQuery{deps: deps}
}

// OnSettled registers fn to run after every fetch completes, outside the query lock.
func (q *DataQuery) OnSettled(fn func()) {
	q.mu.Lock()
	q.onSettled = fn
	q.mu.Unlock()
}

// Status reports the fetch status. IsLoading covers fetches before the first
// result; later fetches report IsRefreshing.
// INVARIANT: the returned catalog is a copy
func (q *DataQuery) Status() card.LoadStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := card.LoadStatus{
		IsLoading:     q.inFlight && !q.fetched,
		IsRefreshing:  q.inFlight && q.fetched,
		IsError:       q.isError,
		InPreviewMode: q.deps.PreviewMode,
		ErrorStatus:   q.errStatus,
	}
	if q.catalog != nil {
		c := *q.catalog
		s.Catalog = &c
	}
	return s
}

// Refresh requests a fetch. It returns immediately.
// POST: a fetch is in flight
func (q *DataQuery) Refresh(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.inFlight {
		q.rerun = true
		return
	}
	q.inFlight = true
	q.inFlightWG.Add(1)
	go q.run(context.WithoutCancel(ctx))
}

// Wait blocks until no fetch is in flight.
func (q *DataQuery) Wait() {
	q.inFlightWG.Wait()
}

func (q *DataQuery) run(ctx context.Context) {
	defer q.inFlightWG.Done()
	for {
		cat, err := q.fetch(ctx)

		q.mu.Lock()
		q.fetched = true
		if err != nil {
			q.isError = true
			q.errStatus = catalog.StatusCode(err)
		} else {
			q.isError = false
			q.errStatus = 0
			q.catalog = &cat
		}
		again := q.rerun
		q.rerun = false
		q.inFlight = again
		settled := q.onSettled
		q.mu.Unlock()

		if settled != nil {
			settled()
		}
		if !again {
			return
		}
	}
}

func (q *DataQuery) fetch(ctx context.Context) (club.Catalog, error) {
	if q.deps.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.deps.Timeout)
		defer cancel()
	}
	start := time.Now()
	cat, err := q.deps.Source.Fetch(ctx, q.deps.Query)
	if err != nil {
		slog.Warn("catalog_fetch_error", "error", err.Error(), "status", catalog.StatusCode(err), "preview", q.deps.PreviewMode)
		return club.Catalog{}, err
	}
	slog.Debug("catalog_fetch_complete", "clubs", len(cat.StudentClubs), "duration_ms", time.Since(start).Milliseconds())
	return cat, nil
}
