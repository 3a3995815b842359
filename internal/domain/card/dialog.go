package card

import (
	"errors"
	"strings"

	"studentclubs/internal/domain/club"
	"studentclubs/internal/domain/enrollment"
)

// Mode is the purpose an add-club dialog was opened for.
type Mode string

// ModeAdd is the only mode the card opens the dialog in.
const ModeAdd Mode = "add"

// Dialog errors
var (
	ErrEmptyMode        = errors.New("dialog mode cannot be empty")
	ErrCatalogNotLoaded = errors.New("club catalog is not loaded")
	ErrDialogClosed     = errors.New("add club dialog is not open")
	ErrLimitReached     = errors.New("club limit reached")
	ErrTermRequired     = errors.New("term is required")
	ErrClubRequired     = errors.New("club is required")
	ErrUnknownTerm      = errors.New("term is not offered")
	ErrUnknownClub      = errors.New("club is not offered")
)

// AddDialog is either DialogClosed or DialogOpen.
type AddDialog interface {
	isAddDialog()
}

// DialogClosed is the add-club dialog when it is not shown.
type DialogClosed struct{}

func (DialogClosed) isAddDialog() {}

// DialogOpen is the add-club dialog with the context it was opened with.
type DialogOpen struct {
	Mode      Mode
	Catalog   club.Catalog
	ClubLimit int
	ClubFees  string
}

func (DialogOpen) isAddDialog() {}

// NewDialogOpen builds an open dialog.
// PRE: mode is non-empty
// POST: Returns an open dialog or ErrEmptyMode
func NewDialogOpen(mode Mode, catalog club.Catalog, clubLimit int, clubFees string) (DialogOpen, error) {
	if mode == "" {
		return DialogOpen{}, ErrEmptyMode
	}
	return DialogOpen{Mode: mode, Catalog: catalog, ClubLimit: clubLimit, ClubFees: clubFees}, nil
}

// LimitReached reports whether the student is over the configured club limit.
// The comparison is strict: a student holding exactly ClubLimit clubs may still add one.
func (d DialogOpen) LimitReached() bool {
	return len(d.Catalog.StudentClubs) > d.ClubLimit
}

// Form describes what the open dialog renders.
type Form struct {
	Editable bool
	Terms    []club.Option
	Clubs    []club.Option
}

// Form returns the dialog body: the limit notice (not editable) or the selectors.
func (d DialogOpen) Form() Form {
	if d.LimitReached() {
		return Form{}
	}
	return Form{
		Editable: true,
		Terms:    append([]club.Option(nil), d.Catalog.Terms...),
		Clubs:    append([]club.Option(nil), d.Catalog.ActivityList...),
	}
}

// CanSave reports whether save is enabled for the given selection.
func (d DialogOpen) CanSave(term, clubCode string) bool {
	return !d.LimitReached() && strings.TrimSpace(term) != "" && strings.TrimSpace(clubCode) != ""
}

// Request validates a selection and builds the registration request.
// PRE: d is open
// POST: Returns a request for the catalog's student or the first failing rule
func (d DialogOpen) Request(term, clubCode string) (enrollment.Request, error) {
	if d.LimitReached() {
		return enrollment.Request{}, ErrLimitReached
	}
	term = strings.TrimSpace(term)
	clubCode = strings.TrimSpace(clubCode)
	if term == "" {
		return enrollment.Request{}, ErrTermRequired
	}
	if clubCode == "" {
		return enrollment.Request{}, ErrClubRequired
	}
	if !d.Catalog.HasTerm(term) {
		return enrollment.Request{}, ErrUnknownTerm
	}
	if !d.Catalog.HasActivity(clubCode) {
		return enrollment.Request{}, ErrUnknownClub
	}
	req := enrollment.Request{
		Name:     clubCode,
		Term:     term,
		BannerID: d.Catalog.BannerID,
		ClubFees: d.ClubFees,
	}
	if err := req.Validate(); err != nil {
		return enrollment.Request{}, err
	}
	return req, nil
}
