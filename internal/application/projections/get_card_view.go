package projections

import (
	"studentclubs/internal/domain/card"
	"studentclubs/internal/domain/club"
	"studentclubs/internal/platform/i18n"
)

// Message ids rendered by the card.
const (
	keyTitle               = "StudentClubs.title"
	keyNotConfigured       = "StudentClubs.notConfigured"
	keyNoClubs             = "StudentClubs.noClubs"
	keyAddClub             = "StudentClubs.addClub"
	keyExploreClubs        = "StudentClubs.exploreClubs"
	keyContactAdmin        = "StudentClubs.contactAdministrator"
	keyDataError           = "StudentClubs.dataError"
	keyRegisteredIn        = "StudentClubs.registeredIn"
	keyCancel              = "StudentClubs.cancel"
	keySave                = "StudentClubs.save"
	keyClose               = "StudentClubs.close"
	keyDismiss             = "StudentClubs.dismiss"
	keyBusy                = "StudentClubs.busy"
	keyLoading             = "StudentClubs.loading"
	keyDialogAddTitle      = "StudentClubs.editClub.addTitle"
	keyDialogEditTitle     = "StudentClubs.editClub.editTitle"
	keyDialogLimit         = "StudentClubs.editClub.limit"
	keyDialogInstructions  = "StudentClubs.editClub.instructions"
	keyDialogFees          = "StudentClubs.editClub.fees"
	keyDialogTerm          = "StudentClubs.editClub.term"
	keyDialogClub          = "StudentClubs.editClub.club"
	keyDialogChoose        = "StudentClubs.editClub.choose"
	keyDetailTitle         = "StudentClubs.detail.title"
	keyDetailClubName      = "StudentClubs.detail.clubName"
	keyDetailStatus        = "StudentClubs.detail.status"
	keyDetailUnregister    = "StudentClubs.detail.unregister"
	keyConfirmTitle        = "StudentClubs.confirmDelete.title"
	keyConfirmInstructions = "StudentClubs.confirmDelete.instructions"
	keyConfirmThisClub     = "StudentClubs.confirmDelete.thisClub"
	keyConfirmDelete       = "StudentClubs.confirmDelete.delete"
)

// ErrorBannerIcon is the icon shown with the catalog error banner.
const ErrorBannerIcon = "warning"

// CardMeta is the manifest information shown around the card.
type CardMeta struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
}

// GetCardViewQuery carries input for the card view projection.
type GetCardViewQuery struct {
	Snapshot  card.Snapshot
	Localizer i18n.Localizer
	Meta      CardMeta
	Selection Selection
}

// Selection is the term and club a host has chosen in the open dialog so far.
type Selection struct {
	Term string
	Club string
}

// ErrorBanner is the persistent notification shown after a failed fetch.
type ErrorBanner struct {
	Icon   string `json:"icon"`
	Header string `json:"header"`
	Text   string `json:"text"`
}

// ClubRow is one line of the club list.
type ClubRow struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

// Choice is one selector option.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DialogView is the open add-club dialog.
type DialogView struct {
	Title        string   `json:"title"`
	Editable     bool     `json:"editable"`
	LimitNotice  string   `json:"limitNotice,omitempty"`
	Instructions string   `json:"instructions,omitempty"` // markdown
	Fees         string   `json:"fees,omitempty"`
	TermLabel    string   `json:"termLabel,omitempty"`
	ClubLabel    string   `json:"clubLabel,omitempty"`
	Placeholder  string   `json:"placeholder,omitempty"`
	Terms        []Choice `json:"terms,omitempty"`
	Clubs        []Choice `json:"clubs,omitempty"`
	Term         string   `json:"term,omitempty"`
	Club         string   `json:"club,omitempty"`
	CanSave      bool     `json:"canSave"`
	SaveLabel    string   `json:"saveLabel,omitempty"`
	CancelLabel  string   `json:"cancelLabel"`
}

// DetailView is the club detail dialog with its optional confirmation.
type DetailView struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	ClubNameLabel   string       `json:"clubNameLabel"`
	ClubName        string       `json:"clubName"`
	StatusLabel     string       `json:"statusLabel"`
	Status          string       `json:"status"`
	UnregisterLabel string       `json:"unregisterLabel"`
	CloseLabel      string       `json:"closeLabel"`
	Confirm         *ConfirmView `json:"confirm,omitempty"`
}

// ConfirmView is the unregister confirmation.
type ConfirmView struct {
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	DeleteLabel  string `json:"deleteLabel"`
	CancelLabel  string `json:"cancelLabel"`
}

// SnackbarView is the visible notification.
type SnackbarView struct {
	Text         string `json:"text"`
	DismissLabel string `json:"dismissLabel"`
}

// CardView is the localized card, ready for templates and JSON.
type CardView struct {
	Meta          CardMeta      `json:"meta"`
	Title         string        `json:"title"`
	View          string        `json:"view"`
	Banner        *ErrorBanner  `json:"banner,omitempty"`
	NotConfigured string        `json:"notConfigured,omitempty"`
	LoadingText   string        `json:"loadingText,omitempty"`
	EmptyText     string        `json:"emptyText,omitempty"`
	TermHeader    string        `json:"termHeader,omitempty"`
	Clubs         []ClubRow     `json:"clubs,omitempty"`
	AddLabel      string        `json:"addLabel,omitempty"`
	ExploreLabel  string        `json:"exploreLabel,omitempty"`
	Dialog        *DialogView   `json:"dialog,omitempty"`
	Detail        *DetailView   `json:"detail,omitempty"`
	Snackbar      *SnackbarView `json:"snackbar,omitempty"`
	Busy          bool          `json:"busy"`
	BusyText      string        `json:"busyText,omitempty"`
}

// QueryGetCardView localizes a card snapshot.
// PRE: query.Localizer is non-nil
// POST: exactly one body section is filled, matching Snapshot.View
func QueryGetCardView(query GetCardViewQuery) CardView {
	l := query.Localizer
	snap := query.Snapshot

	v := CardView{
		Meta:  query.Meta,
		Title: l.Sprintf(keyTitle),
		View:  snap.View.String(),
		Busy:  snap.Busy.Busy,
	}
	if v.Busy {
		v.BusyText = l.Sprintf(keyBusy)
	}
	if card.ShowErrorBanner(snap.Status) {
		v.Banner = &ErrorBanner{Icon: ErrorBannerIcon, Header: l.Sprintf(keyContactAdmin), Text: l.Sprintf(keyDataError)}
	}

	switch snap.View {
	case card.ViewNotConfigured:
		v.NotConfigured = l.Sprintf(keyNotConfigured)
	case card.ViewLoading:
		v.LoadingText = l.Sprintf(keyLoading)
	case card.ViewEmpty:
		v.EmptyText = l.Sprintf(keyNoClubs)
		v.AddLabel = l.Sprintf(keyAddClub)
		v.Dialog = dialogView(snap.Dialog, query.Selection, l)
	case card.ViewPopulated:
		v.TermHeader = l.Sprintf(keyRegisteredIn, snap.Status.Catalog.TermLabel())
		v.Clubs = clubRows(snap.Clubs)
		v.ExploreLabel = l.Sprintf(keyExploreClubs)
		v.Dialog = dialogView(snap.Dialog, query.Selection, l)
		v.Detail = detailView(snap.Detail, l)
	}

	if snap.Snackbar.Show {
		v.Snackbar = &SnackbarView{
			Text:         l.Sprintf(snap.Snackbar.Message.Key, snap.Snackbar.Message.Args...),
			DismissLabel: l.Sprintf(keyDismiss),
		}
	}
	return v
}

func clubRows(records []club.Record) []ClubRow {
	rows := make([]ClubRow, 0, len(records))
	for i, r := range records {
		rows = append(rows, ClubRow{ID: r.ID, Position: i, Name: r.Description, Status: r.StatusLabel()})
	}
	return rows
}

// dialogView renders the open dialog. Both selectors start blank; CanSave turns
// true only once sel names a term and a club.
func dialogView(d card.AddDialog, sel Selection, l i18n.Localizer) *DialogView {
	open, ok := d.(card.DialogOpen)
	if !ok {
		return nil
	}
	title := l.Sprintf(keyDialogAddTitle)
	if open.Mode != card.ModeAdd {
		title = l.Sprintf(keyDialogEditTitle)
	}
	view := &DialogView{Title: title, CancelLabel: l.Sprintf(keyCancel)}

	form := open.Form()
	if !form.Editable {
		view.LimitNotice = l.Sprintf(keyDialogLimit, open.ClubLimit)
		view.CancelLabel = l.Sprintf(keyClose)
		return view
	}
	view.Editable = true
	view.Instructions = l.Sprintf(keyDialogInstructions)
	if open.ClubFees != "" {
		view.Fees = l.Sprintf(keyDialogFees, open.ClubFees)
	}
	view.TermLabel = l.Sprintf(keyDialogTerm)
	view.ClubLabel = l.Sprintf(keyDialogClub)
	view.Placeholder = l.Sprintf(keyDialogChoose)
	view.Terms = choices(form.Terms)
	view.Clubs = choices(form.Clubs)
	if open.Catalog.HasTerm(sel.Term) {
		view.Term = sel.Term
	}
	if open.Catalog.HasActivity(sel.Club) {
		view.Club = sel.Club
	}
	view.CanSave = open.CanSave(view.Term, view.Club)
	view.SaveLabel = l.Sprintf(keySave)
	return view
}

func choices(options []club.Option) []Choice {
	out := make([]Choice, 0, len(options))
	for _, o := range options {
		label := o.Description
		if label == "" {
			label = o.Code
		}
		out = append(out, Choice{Value: o.Code, Label: label})
	}
	return out
}

func detailView(d card.Detail, l i18n.Localizer) *DetailView {
	if !d.Open() {
		return nil
	}
	r := *d.Club
	view := &DetailView{
		ID:              r.ID,
		Title:           l.Sprintf(keyDetailTitle, r.Description),
		ClubNameLabel:   l.Sprintf(keyDetailClubName),
		ClubName:        r.Description,
		StatusLabel:     l.Sprintf(keyDetailStatus),
		Status:          r.StatusLabel(),
		UnregisterLabel: l.Sprintf(keyDetailUnregister),
		CloseLabel:      l.Sprintf(keyClose),
	}
	if d.Confirming {
		name := r.Description
		if name == "" {
			name = l.Sprintf(keyConfirmThisClub)
		}
		view.Confirm = &ConfirmView{
			Title:        l.Sprintf(keyConfirmTitle),
			Instructions: l.Sprintf(keyConfirmInstructions, name),
			DeleteLabel:  l.Sprintf(keyConfirmDelete),
			CancelLabel:  l.Sprintf(keyCancel),
		}
	}
	return view
}
