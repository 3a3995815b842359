package card

import (
	"errors"

	"studentclubs/internal/domain/club"
	"studentclubs/internal/domain/enrollment"
	"studentclubs/internal/domain/settings"
)

// Detail flow errors
var (
	ErrClubNotFound  = errors.New("club not found")
	ErrNoClubOpen    = errors.New("no club is open")
	ErrNotConfirming = errors.New("unregister has not been requested")
)

// ClubList is the student's club list as shown by the card.
// It is seeded from every fetched catalog and diverges from it only through RemoveUnsynced.
type ClubList struct {
	records []club.Record
}

// Seed replaces the list with a copy of records.
func (l *ClubList) Seed(records []club.Record) {
	l.records = append([]club.Record(nil), records...)
}

// Len returns the number of clubs shown.
func (l ClubList) Len() int {
	return len(l.records)
}

// Records returns a copy of the list in display order.
func (l ClubList) Records() []club.Record {
	return append([]club.Record(nil), l.records...)
}

// Find returns the record with the given ID.
func (l ClubList) Find(id string) (club.Record, bool) {
	for _, r := range l.records {
		if r.ID == id {
			return r, true
		}
	}
	return club.Record{}, false
}

// RemoveUnsynced drops exactly one record matching target from the local list.
// Nothing is sent to the enrollment API: the next catalog refresh brings the
// club back unless it was removed server-side. Matching prefers the record ID
// and falls back to the first record with the same description.
// POST: At most one record removed
func (l *ClubList) RemoveUnsynced(target club.Record) (club.Record, bool) {
	idx := -1
	for i, r := range l.records {
		if target.ID != "" && r.ID == target.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, r := range l.records {
			if r.Description == target.Description {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return club.Record{}, false
	}
	removed := l.records[idx]
	l.records = append(l.records[:idx:idx], l.records[idx+1:]...)
	return removed, true
}

// Detail is the club detail dialog and its nested unregister confirmation.
// INVARIANT: Confirming is never true while Club is nil
type Detail struct {
	Club       *club.Record
	Confirming bool
}

// Open reports whether a club is shown.
func (d Detail) Open() bool {
	return d.Club != nil
}

// Card is the workflow state of one student's clubs card.
// It holds no I/O; callers serialize access.
type Card struct {
	clubs    ClubList
	dialog   AddDialog
	detail   Detail
	busy     Busy
	snackbar Snackbar
}

// New returns a card with nothing loaded and every dialog closed.
func New() *Card {
	return &Card{dialog: DialogClosed{}}
}

// ApplyCatalog seeds the club list from a freshly fetched catalog.
// An open add dialog picks up the new catalog so the limit gate sees the current count.
// POST: club list equals catalog.StudentClubs
func (c *Card) ApplyCatalog(catalog club.Catalog) {
	c.clubs.Seed(catalog.StudentClubs)
	if open, ok := c.dialog.(DialogOpen); ok {
		open.Catalog = catalog
		c.dialog = open
	}
}

// OpenAddDialog opens the add-club dialog with the catalog and card settings.
// PRE: catalog is loaded
// POST: dialog is DialogOpen in ModeAdd
func (c *Card) OpenAddDialog(catalog *club.Catalog, cfg settings.Card) error {
	if catalog == nil {
		return ErrCatalogNotLoaded
	}
	open, err := NewDialogOpen(ModeAdd, *catalog, cfg.ClubLimit, cfg.ClubFees)
	if err != nil {
		return err
	}
	c.dialog = open
	return nil
}

// CloseAddDialog closes the dialog and discards any selection.
func (c *Card) CloseAddDialog() {
	c.dialog = DialogClosed{}
}

// Dialog returns the add-club dialog state.
func (c *Card) Dialog() AddDialog {
	return c.dialog
}

// SaveAddDialog validates the selection, closes the dialog and returns the
// request to submit. The dialog closes without waiting for the submission.
// An invalid selection leaves the dialog open.
// PRE: dialog is open
// POST: on success the dialog is closed
func (c *Card) SaveAddDialog(term, clubCode string) (enrollment.Request, error) {
	open, ok := c.dialog.(DialogOpen)
	if !ok {
		return enrollment.Request{}, ErrDialogClosed
	}
	req, err := open.Request(term, clubCode)
	if err != nil {
		return enrollment.Request{}, err
	}
	c.dialog = DialogClosed{}
	return req, nil
}

// SelectClub opens the detail dialog for the club with the given ID.
// POST: Detail shows the club, confirmation closed
func (c *Card) SelectClub(id string) error {
	r, ok := c.clubs.Find(id)
	if !ok {
		return ErrClubNotFound
	}
	c.detail = Detail{Club: &r}
	return nil
}

// CloseDetail closes the detail dialog and any confirmation on top of it.
func (c *Card) CloseDetail() {
	c.detail = Detail{}
}

// RequestUnregister opens the confirmation over the detail dialog.
// PRE: a club is open
func (c *Card) RequestUnregister() error {
	if c.detail.Club == nil {
		return ErrNoClubOpen
	}
	c.detail.Confirming = true
	return nil
}

// CancelUnregister closes the confirmation and keeps the detail dialog open.
func (c *Card) CancelUnregister() {
	c.detail.Confirming = false
}

// ConfirmUnregister removes the open club from the local list and closes both dialogs.
// PRE: confirmation is open
// POST: detail closed; at most one record removed
func (c *Card) ConfirmUnregister() (club.Record, error) {
	if c.detail.Club == nil || !c.detail.Confirming {
		return club.Record{}, ErrNotConfirming
	}
	target := *c.detail.Club
	c.detail = Detail{}
	removed, ok := c.clubs.RemoveUnsynced(target)
	if !ok {
		return club.Record{}, ErrClubNotFound
	}
	return removed, nil
}

// Detail returns the detail dialog state.
func (c *Card) Detail() Detail {
	return c.detail
}

// BeginSubmission raises the busy overlay for a new submission.
func (c *Card) BeginSubmission() {
	c.busy.Begin()
}

// FinishSubmission records that a submission has requested its refresh.
func (c *Card) FinishSubmission(isRefreshing bool) {
	c.busy.ReleaseHold()
	c.busy.Settle(isRefreshing)
}

// SettleBusy clears the overlay when a refresh completes and nothing pins it.
func (c *Card) SettleBusy(isRefreshing bool) {
	c.busy.Settle(isRefreshing)
}

// Busy returns the overlay state.
func (c *Card) Busy() Busy {
	return c.busy
}

// Notify shows m in the snackbar.
func (c *Card) Notify(m Message) {
	c.snackbar.Push(m)
}

// DismissSnackbar hides the snackbar.
func (c *Card) DismissSnackbar() {
	c.snackbar.Dismiss()
}

// Snackbar returns the snackbar state.
func (c *Card) Snackbar() Snackbar {
	return c.snackbar
}

// Snapshot is an immutable copy of the card for rendering.
type Snapshot struct {
	Status   LoadStatus
	View     View
	Clubs    []club.Record
	Dialog   AddDialog
	Detail   Detail
	Busy     Busy
	Snackbar Snackbar
}

// Snapshot copies the card state together with the catalog status.
// INVARIANT: the card is not mutated
func (c *Card) Snapshot(status LoadStatus) Snapshot {
	detail := c.detail
	if detail.Club != nil {
		r := *detail.Club
		detail.Club = &r
	}
	snackbar := c.snackbar
	snackbar.Message.Args = append([]any(nil), c.snackbar.Message.Args...)
	return Snapshot{
		Status:   status,
		View:     SelectView(status),
		Clubs:    c.clubs.Records(),
		Dialog:   c.dialog,
		Detail:   detail,
		Busy:     c.busy,
		Snackbar: snackbar,
	}
}
