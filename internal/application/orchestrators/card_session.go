package orchestrators

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"studentclubs/internal/adapters/catalog"
	"studentclubs/internal/adapters/email"
	"studentclubs/internal/adapters/enrollment"
	"studentclubs/internal/domain/card"
	"studentclubs/internal/domain/club"
	"studentclubs/internal/domain/settings"
)

// CardSessionDeps wires one student's card to its collaborators.
type CardSessionDeps struct {
	Source        catalog.Source
	Submitter     enrollment.Submitter
	Sender        email.Sender
	NotifyTo      string
	Settings      settings.Card
	UserToken     string
	BannerID      string
	PreviewMode   bool
	FetchTimeout  time.Duration
	SubmitTimeout time.Duration
	Now           func() time.Time
}

// CardSession is one student's card: the workflow state plus its fetch and
// submit goroutines. Every state transition happens under mu.
type CardSession struct {
	deps  CardSessionDeps
	query *DataQuery

	mu          sync.Mutex
	card        *card.Card
	lastSeen    time.Time
	submissions sync.WaitGroup
}

// NewCardSession creates a session. Call Load to start the first fetch.
func NewCardSession(deps CardSessionDeps) *CardSession {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &CardSession{
		deps: deps,
		card: card.New(),
		query: NewDataQuery(DataQueryDeps{
			Source: deps.Source,
			Query: catalog.Query{
				UserToken: deps.UserToken,
				BannerID:  deps.BannerID,
				Category:  deps.Settings.ClubCategory,
			},
			PreviewMode: deps.PreviewMode,
			Timeout:     deps.FetchTimeout,
		}),
		lastSeen: deps.Now(),
	}
	s.query.OnSettled(s.fetchSettled)
	return s
}

// fetchSettled reseeds the card from a completed fetch and clears the busy
// overlay when nothing else holds it.
func (s *CardSession) fetchSettled() {
	status := s.query.Status()
	s.mu.Lock()
	defer s.mu.Unlock()
	if status.Catalog != nil && !status.IsError {
		s.card.ApplyCatalog(*status.Catalog)
	}
	s.card.SettleBusy(status.IsRefreshing)
}

// Load starts the first fetch.
func (s *CardSession) Load(ctx context.Context) {
	s.query.Refresh(ctx)
}

// Refresh requests a new fetch.
func (s *CardSession) Refresh(ctx context.Context) {
	s.query.Refresh(ctx)
}

// Touch marks the session as used at the current time.
func (s *CardSession) Touch() {
	s.mu.Lock()
	s.lastSeen = s.deps.Now()
	s.mu.Unlock()
}

// IdleSince reports when the session was last used.
func (s *CardSession) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// OpenAddDialog opens the add-club dialog over the current catalog.
// PRE: the catalog has loaded
func (s *CardSession) OpenAddDialog() error {
	status := s.query.Status()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.card.OpenAddDialog(status.Catalog, s.deps.Settings)
}

// CloseAddDialog closes the dialog without submitting.
func (s *CardSession) CloseAddDialog() {
	s.mu.Lock()
	s.card.CloseAddDialog()
	s.mu.Unlock()
}

// SaveAddDialog closes the dialog and submits the registration in the background.
// The returned error is a validation failure; submission failures surface in the snackbar.
// POST: on success the dialog is closed and the busy overlay raised
func (s *CardSession) SaveAddDialog(ctx context.Context, term, clubCode string) error {
	s.mu.Lock()
	var clubLabel, termLabel string
	if open, ok := s.card.Dialog().(card.DialogOpen); ok {
		clubLabel = optionLabel(open.Catalog.ActivityList, clubCode)
		termLabel = optionLabel(open.Catalog.Terms, term)
	}
	req, err := s.card.SaveAddDialog(term, clubCode)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.card.BeginSubmission()
	s.submissions.Add(1)
	s.mu.Unlock()

	input := SubmitRegistrationInput{UserToken: s.deps.UserToken, Request: req, ClubLabel: clubLabel, TermLabel: termLabel}
	go s.submit(context.WithoutCancel(ctx), input)
	return nil
}

func (s *CardSession) submit(ctx context.Context, input SubmitRegistrationInput) {
	defer s.submissions.Done()
	if s.deps.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.SubmitTimeout)
		defer cancel()
	}

	_, msg := ExecuteSubmitRegistration(ctx, input, SubmitRegistrationDeps{
		Submitter: s.deps.Submitter,
		Sender:    s.deps.Sender,
		NotifyTo:  s.deps.NotifyTo,
		Now:       s.deps.Now,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.card.Notify(msg)
	s.query.Refresh(ctx)
	s.card.FinishSubmission(s.query.Status().IsRefreshing)
}

// SelectClub opens the detail dialog for a listed club.
func (s *CardSession) SelectClub(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.card.SelectClub(id)
}

// CloseDetail closes the detail dialog.
func (s *CardSession) CloseDetail() {
	s.mu.Lock()
	s.card.CloseDetail()
	s.mu.Unlock()
}

// RequestUnregister opens the unregister confirmation.
func (s *CardSession) RequestUnregister() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.card.RequestUnregister()
}

// CancelUnregister returns to the detail dialog.
func (s *CardSession) CancelUnregister() {
	s.mu.Lock()
	s.card.CancelUnregister()
	s.mu.Unlock()
}

// ConfirmUnregister removes the open club from the displayed list only.
// Nothing is sent downstream; the next refresh restores the club.
func (s *CardSession) ConfirmUnregister() (club.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed, err := s.card.ConfirmUnregister()
	if err != nil {
		return club.Record{}, err
	}
	slog.Info("club_dismissed_locally", "club", removed.Description)
	return removed, nil
}

// DismissSnackbar hides the notification.
func (s *CardSession) DismissSnackbar() {
	s.mu.Lock()
	s.card.DismissSnackbar()
	s.mu.Unlock()
}

// Snapshot returns the card state for rendering.
func (s *CardSession) Snapshot() card.Snapshot {
	status := s.query.Status()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.card.Snapshot(status)
}

// Wait blocks until every pending submission and fetch has settled.
func (s *CardSession) Wait() {
	s.submissions.Wait()
	s.query.Wait()
}

func optionLabel(options []club.Option, code string) string {
	for _, o := range options {
		if o.Code == code && o.Description != "" {
			return o.Description
		}
	}
	return code
}
