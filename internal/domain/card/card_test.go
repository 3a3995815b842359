package card_test

import (
	"errors"
	"testing"

	"studentclubs/internal/domain/card"
	"studentclubs/internal/domain/club"
	"studentclubs/internal/domain/settings"
)

var testSettings = settings.Card{ClubLimit: 2, ClubCategory: "CLUB", ClubFees: "25.00", EthosAPIKey: "key"}

func loadedCard(cat *club.Catalog) *card.Card {
	c := card.New()
	c.ApplyCatalog(*cat)
	return c
}

// shownClubs returns the club list the card currently renders.
func shownClubs(c *card.Card) []club.Record {
	return c.Snapshot(card.LoadStatus{}).Clubs
}

// TestCard_OpenAddDialog tests the limit gate at and over the boundary.
func TestCard_OpenAddDialog(t *testing.T) {
	tests := []struct {
		name         string
		clubs        []string
		limit        int
		wantEditable bool
	}{
		{"under limit", []string{"Chess Club"}, 2, true},
		{"at limit is still editable", []string{"Chess Club", "Robotics"}, 2, true},
		{"over limit", []string{"Chess Club", "Robotics", "Debate"}, 2, false},
		{"zero limit with no clubs", nil, 0, true},
		{"zero limit with one club", []string{"Chess Club"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := catalogWith(tt.clubs...)
			c := loadedCard(cat)
			cfg := testSettings
			cfg.ClubLimit = tt.limit

			if err := c.OpenAddDialog(cat, cfg); err != nil {
				t.Fatalf("OpenAddDialog() error = %v", err)
			}
			open, ok := c.Dialog().(card.DialogOpen)
			if !ok {
				t.Fatalf("Dialog() = %T, want DialogOpen", c.Dialog())
			}
			if open.Mode != card.ModeAdd {
				t.Errorf("Mode = %q, want %q", open.Mode, card.ModeAdd)
			}
			form := open.Form()
			if form.Editable != tt.wantEditable {
				t.Errorf("Form().Editable = %v, want %v", form.Editable, tt.wantEditable)
			}
			if tt.wantEditable && len(form.Terms) != 2 {
				t.Errorf("Form().Terms = %d entries, want 2", len(form.Terms))
			}
			if !tt.wantEditable && open.CanSave("202410", "CHESS") {
				t.Error("CanSave() = true over the limit")
			}
		})
	}
}

// TestCard_OpenAddDialog_NotLoaded tests that the dialog needs a catalog.
func TestCard_OpenAddDialog_NotLoaded(t *testing.T) {
	c := card.New()
	if err := c.OpenAddDialog(nil, testSettings); !errors.Is(err, card.ErrCatalogNotLoaded) {
		t.Errorf("OpenAddDialog() error = %v, want %v", err, card.ErrCatalogNotLoaded)
	}
	if _, ok := c.Dialog().(card.DialogClosed); !ok {
		t.Errorf("Dialog() = %T, want DialogClosed", c.Dialog())
	}
}

// TestCard_SaveAddDialog tests that a valid save closes the dialog and builds the request.
func TestCard_SaveAddDialog(t *testing.T) {
	cat := catalogWith("Chess Club")
	c := loadedCard(cat)
	if err := c.OpenAddDialog(cat, testSettings); err != nil {
		t.Fatalf("OpenAddDialog() error = %v", err)
	}

	req, err := c.SaveAddDialog("202420", "ROBO")
	if err != nil {
		t.Fatalf("SaveAddDialog() error = %v", err)
	}
	if req.Name != "ROBO" || req.Term != "202420" || req.BannerID != "B00123" || req.ClubFees != "25.00" {
		t.Errorf("SaveAddDialog() request = %+v", req)
	}
	if _, ok := c.Dialog().(card.DialogClosed); !ok {
		t.Errorf("Dialog() = %T after save, want DialogClosed", c.Dialog())
	}
}

// TestCard_SaveAddDialog_Invalid tests that a rejected selection keeps the dialog open.
func TestCard_SaveAddDialog_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		term    string
		club    string
		wantErr error
	}{
		{"missing term", "", "CHESS", card.ErrTermRequired},
		{"missing club", "202410", " ", card.ErrClubRequired},
		{"unknown term", "199910", "CHESS", card.ErrUnknownTerm},
		{"unknown club", "202410", "POLO", card.ErrUnknownClub},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := catalogWith()
			c := loadedCard(cat)
			if err := c.OpenAddDialog(cat, testSettings); err != nil {
				t.Fatalf("OpenAddDialog() error = %v", err)
			}
			if _, err := c.SaveAddDialog(tt.term, tt.club); !errors.Is(err, tt.wantErr) {
				t.Errorf("SaveAddDialog() error = %v, want %v", err, tt.wantErr)
			}
			if _, ok := c.Dialog().(card.DialogOpen); !ok {
				t.Errorf("Dialog() = %T, want DialogOpen", c.Dialog())
			}
		})
	}
}

// TestCard_SaveAddDialog_Closed tests saving without an open dialog.
func TestCard_SaveAddDialog_Closed(t *testing.T) {
	c := loadedCard(catalogWith())
	if _, err := c.SaveAddDialog("202410", "CHESS"); !errors.Is(err, card.ErrDialogClosed) {
		t.Errorf("SaveAddDialog() error = %v, want %v", err, card.ErrDialogClosed)
	}
}

// TestCard_ApplyCatalog_UpdatesOpenDialog tests that a refresh re-evaluates the limit gate.
func TestCard_ApplyCatalog_UpdatesOpenDialog(t *testing.T) {
	cat := catalogWith("Chess Club", "Robotics")
	c := loadedCard(cat)
	if err := c.OpenAddDialog(cat, testSettings); err != nil {
		t.Fatalf("OpenAddDialog() error = %v", err)
	}

	c.ApplyCatalog(*catalogWith("Chess Club", "Robotics", "Debate"))

	open := c.Dialog().(card.DialogOpen)
	if !open.LimitReached() {
		t.Error("LimitReached() = false after refresh over the limit")
	}
	if _, err := c.SaveAddDialog("202410", "CHESS"); !errors.Is(err, card.ErrLimitReached) {
		t.Errorf("SaveAddDialog() error = %v, want %v", err, card.ErrLimitReached)
	}
}

// TestCard_CloseAddDialog tests cancel discards the dialog.
func TestCard_CloseAddDialog(t *testing.T) {
	cat := catalogWith()
	c := loadedCard(cat)
	_ = c.OpenAddDialog(cat, testSettings)
	c.CloseAddDialog()
	if _, ok := c.Dialog().(card.DialogClosed); !ok {
		t.Errorf("Dialog() = %T, want DialogClosed", c.Dialog())
	}
}

// TestCard_UnregisterFlow tests detail, confirmation and local removal.
func TestCard_UnregisterFlow(t *testing.T) {
	cat := catalogWith("Chess Club", "Robotics", "Chess Club")
	c := loadedCard(cat)
	target := cat.StudentClubs[2]

	if err := c.SelectClub(target.ID); err != nil {
		t.Fatalf("SelectClub() error = %v", err)
	}
	if d := c.Detail(); !d.Open() || d.Confirming {
		t.Fatalf("Detail() = %+v, want open and not confirming", d)
	}

	if err := c.RequestUnregister(); err != nil {
		t.Fatalf("RequestUnregister() error = %v", err)
	}
	c.CancelUnregister()
	if d := c.Detail(); !d.Open() || d.Confirming {
		t.Errorf("Detail() after cancel = %+v, want detail still open", d)
	}

	if err := c.RequestUnregister(); err != nil {
		t.Fatalf("RequestUnregister() error = %v", err)
	}
	removed, err := c.ConfirmUnregister()
	if err != nil {
		t.Fatalf("ConfirmUnregister() error = %v", err)
	}
	if removed.ID != target.ID {
		t.Errorf("removed ID = %s, want %s", removed.ID, target.ID)
	}
	if c.Detail().Open() {
		t.Error("Detail().Open() = true after confirm")
	}

	records := shownClubs(c)
	if len(records) != 2 {
		t.Fatalf("clubs shown = %d, want 2", len(records))
	}
	if records[0].ID != cat.StudentClubs[0].ID || records[1].Description != "Robotics" {
		t.Errorf("clubs shown = %+v, want the first Chess Club and Robotics kept", records)
	}
}

// TestCard_ConfirmUnregister_NotRequested tests confirm without the confirmation dialog.
func TestCard_ConfirmUnregister_NotRequested(t *testing.T) {
	cat := catalogWith("Chess Club")
	c := loadedCard(cat)
	_ = c.SelectClub(cat.StudentClubs[0].ID)

	if _, err := c.ConfirmUnregister(); !errors.Is(err, card.ErrNotConfirming) {
		t.Errorf("ConfirmUnregister() error = %v, want %v", err, card.ErrNotConfirming)
	}
	if len(shownClubs(c)) != 1 {
		t.Errorf("clubs shown = %d, want 1", len(shownClubs(c)))
	}
}

// TestCard_SelectClub_Unknown tests selecting an ID that is not listed.
func TestCard_SelectClub_Unknown(t *testing.T) {
	c := loadedCard(catalogWith("Chess Club"))
	if err := c.SelectClub("missing"); !errors.Is(err, card.ErrClubNotFound) {
		t.Errorf("SelectClub() error = %v, want %v", err, card.ErrClubNotFound)
	}
	if err := c.RequestUnregister(); !errors.Is(err, card.ErrNoClubOpen) {
		t.Errorf("RequestUnregister() error = %v, want %v", err, card.ErrNoClubOpen)
	}
}

// TestCard_RefreshReseedsRemovedClub tests that a local removal is undone by the next fetch.
func TestCard_RefreshReseedsRemovedClub(t *testing.T) {
	cat := catalogWith("Chess Club")
	c := loadedCard(cat)
	_ = c.SelectClub(cat.StudentClubs[0].ID)
	_ = c.RequestUnregister()
	if _, err := c.ConfirmUnregister(); err != nil {
		t.Fatalf("ConfirmUnregister() error = %v", err)
	}
	if len(shownClubs(c)) != 0 {
		t.Fatalf("clubs shown = %d, want 0", len(shownClubs(c)))
	}

	c.ApplyCatalog(*cat)
	if len(shownClubs(c)) != 1 {
		t.Errorf("clubs shown after refresh = %d, want 1", len(shownClubs(c)))
	}
}

// TestClubList_RemoveUnsynced_FallsBackToDescription tests removal of a record without an ID.
func TestClubList_RemoveUnsynced_FallsBackToDescription(t *testing.T) {
	var l card.ClubList
	l.Seed([]club.Record{{Description: "Chess Club"}, {Description: "Robotics"}, {Description: "Chess Club"}})

	if _, ok := l.RemoveUnsynced(club.Record{Description: "Chess Club"}); !ok {
		t.Fatal("RemoveUnsynced() = false, want true")
	}
	got := l.Records()
	if len(got) != 2 || got[0].Description != "Robotics" || got[1].Description != "Chess Club" {
		t.Errorf("Records() = %+v", got)
	}
	if _, ok := l.RemoveUnsynced(club.Record{Description: "Debate"}); ok {
		t.Error("RemoveUnsynced() = true for a missing club")
	}
}

// TestCard_BusyLifecycle tests the overlay across submission and refresh.
func TestCard_BusyLifecycle(t *testing.T) {
	c := loadedCard(catalogWith())

	c.BeginSubmission()
	if b := c.Busy(); !b.Busy || !b.UntilRefresh() {
		t.Fatalf("Busy() = %+v, want busy until refresh", b)
	}

	c.SettleBusy(false)
	if !c.Busy().Busy {
		t.Error("overlay cleared while a submission still holds it")
	}

	c.FinishSubmission(true)
	if b := c.Busy(); !b.Busy || b.UntilRefresh() {
		t.Errorf("Busy() = %+v, want busy with no hold while refreshing", b)
	}

	c.SettleBusy(false)
	if c.Busy().Busy {
		t.Error("overlay still shown after refresh completed")
	}
}

// TestCard_BusyOverlappingSubmissions tests that the first finisher does not clear the overlay.
func TestCard_BusyOverlappingSubmissions(t *testing.T) {
	c := loadedCard(catalogWith())
	c.BeginSubmission()
	c.BeginSubmission()

	c.FinishSubmission(false)
	if !c.Busy().Busy {
		t.Error("overlay cleared while the second submission is pending")
	}
	c.FinishSubmission(false)
	if c.Busy().Busy {
		t.Error("overlay still shown after both submissions finished")
	}
}

// TestCard_Snackbar tests the single message slot.
func TestCard_Snackbar(t *testing.T) {
	c := card.New()
	c.Notify(card.Message{Key: card.MsgClubAdded})
	c.Notify(card.Message{Key: card.MsgClubNotAdded, Args: []any{"timeout"}})

	s := c.Snackbar()
	if !s.Show || s.Message.Key != card.MsgClubNotAdded {
		t.Errorf("Snackbar() = %+v, want the latest message shown", s)
	}

	c.DismissSnackbar()
	if c.Snackbar().Show {
		t.Error("Snackbar().Show = true after dismiss")
	}
}

// TestCard_Snapshot tests that a snapshot is detached from the card.
func TestCard_Snapshot(t *testing.T) {
	cat := catalogWith("Chess Club")
	c := loadedCard(cat)
	_ = c.SelectClub(cat.StudentClubs[0].ID)

	snap := c.Snapshot(card.LoadStatus{Catalog: cat})
	if snap.View != card.ViewPopulated {
		t.Errorf("View = %v, want populated", snap.View)
	}
	snap.Clubs[0].Description = "changed"
	snap.Detail.Club.Description = "changed"

	if shownClubs(c)[0].Description != "Chess Club" {
		t.Error("snapshot clubs alias the card")
	}
	if c.Detail().Club.Description != "Chess Club" {
		t.Error("snapshot detail aliases the card")
	}
}
