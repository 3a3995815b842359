package projections

import (
	"fmt"
	"strings"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"studentclubs/internal/domain/card"
	"studentclubs/internal/domain/club"
	"studentclubs/internal/domain/settings"
	"studentclubs/internal/platform/i18n"
)

// keyLocalizer renders "key(arg,arg)" so tests can assert on ids and arguments.
type keyLocalizer struct{}

func (keyLocalizer) Sprintf(key message.Reference, a ...interface{}) string {
	if len(a) == 0 {
		return fmt.Sprint(key)
	}
	args := make([]string, len(a))
	for i, v := range a {
		args[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("%v(%s)", key, strings.Join(args, ","))
}

func viewCatalog(clubs ...club.Record) *club.Catalog {
	c := &club.Catalog{
		BannerID:     "B1",
		CurrentTerm:  "FA24",
		Terms:        []club.Option{{Code: "FA24", Description: "Fall 2024"}},
		ActivityList: []club.Option{{Code: "CHESS", Description: "Chess Club"}, {Code: "GO"}},
		StudentClubs: clubs,
	}
	c.AssignIDs()
	return c
}

func testSettings(limit int) settings.Card {
	return settings.Card{ClubLimit: limit, ClubCategory: "CLUB", ClubFees: "25.00", EthosAPIKey: "key"}
}

func snapshotOf(c *card.Card, status card.LoadStatus) card.Snapshot {
	if status.Catalog != nil {
		c.ApplyCatalog(*status.Catalog)
	}
	return c.Snapshot(status)
}

// TestQueryGetCardView_Empty tests the empty view with the add affordance.
func TestQueryGetCardView_Empty(t *testing.T) {
	c := card.New()
	v := QueryGetCardView(GetCardViewQuery{
		Snapshot:  snapshotOf(c, card.LoadStatus{Catalog: viewCatalog()}),
		Localizer: keyLocalizer{},
		Meta:      CardMeta{Title: "Student Clubs"},
	})

	if v.View != "empty" {
		t.Errorf("expected empty view, got %s", v.View)
	}
	if v.EmptyText != keyNoClubs || v.AddLabel != keyAddClub {
		t.Errorf("unexpected empty body %q / %q", v.EmptyText, v.AddLabel)
	}
	if v.TermHeader != "" || len(v.Clubs) != 0 {
		t.Error("empty view must not render the populated body")
	}
	if v.Banner != nil || v.Busy || v.Snackbar != nil {
		t.Errorf("unexpected extras: %+v", v)
	}
}

// TestQueryGetCardView_Populated tests the term header and rows.
func TestQueryGetCardView_Populated(t *testing.T) {
	cat := viewCatalog(club.Record{Description: "Chess Club"}, club.Record{Description: "Debate Union", Status: "Pending"})
	v := QueryGetCardView(GetCardViewQuery{
		Snapshot:  snapshotOf(card.New(), card.LoadStatus{Catalog: cat}),
		Localizer: keyLocalizer{},
	})

	if v.TermHeader != keyRegisteredIn+"(Fall 2024)" {
		t.Errorf("unexpected term header %q", v.TermHeader)
	}
	if len(v.Clubs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(v.Clubs))
	}
	if v.Clubs[0].Status != club.DefaultStatus || v.Clubs[1].Status != "Pending" {
		t.Errorf("unexpected statuses %+v", v.Clubs)
	}
	if v.Clubs[1].Position != 1 || v.Clubs[1].ID == "" {
		t.Errorf("row should carry position and id: %+v", v.Clubs[1])
	}
	if v.ExploreLabel != keyExploreClubs {
		t.Errorf("expected explore label, got %q", v.ExploreLabel)
	}
}

// TestQueryGetCardView_StatusBodies tests the bodies that carry no catalog.
func TestQueryGetCardView_StatusBodies(t *testing.T) {
	tests := []struct {
		name       string
		status     card.LoadStatus
		wantView   string
		wantBanner bool
	}{
		{"loading", card.LoadStatus{IsLoading: true}, "loading", false},
		{"not configured", card.LoadStatus{InPreviewMode: true, IsError: true, ErrorStatus: 404}, "not_configured", false},
		{"error without data", card.LoadStatus{IsError: true, ErrorStatus: 500}, "none", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := QueryGetCardView(GetCardViewQuery{Snapshot: snapshotOf(card.New(), tt.status), Localizer: keyLocalizer{}})
			if v.View != tt.wantView {
				t.Errorf("view = %s, want %s", v.View, tt.wantView)
			}
			if (v.Banner != nil) != tt.wantBanner {
				t.Errorf("banner = %v, want %v", v.Banner != nil, tt.wantBanner)
			}
			if v.Banner != nil && (v.Banner.Icon != ErrorBannerIcon || v.Banner.Header != keyContactAdmin || v.Banner.Text != keyDataError) {
				t.Errorf("unexpected banner %+v", v.Banner)
			}
		})
	}
}

// TestQueryGetCardView_Dialog tests the editable dialog and the limit notice.
func TestQueryGetCardView_Dialog(t *testing.T) {
	t.Run("editable", func(t *testing.T) {
		c := card.New()
		cat := viewCatalog(club.Record{Description: "Chess Club"})
		c.ApplyCatalog(*cat)
		if err := c.OpenAddDialog(cat, testSettings(5)); err != nil {
			t.Fatal(err)
		}
		v := QueryGetCardView(GetCardViewQuery{Snapshot: c.Snapshot(card.LoadStatus{Catalog: cat}), Localizer: keyLocalizer{}})
		if v.Dialog == nil || !v.Dialog.Editable {
			t.Fatalf("expected editable dialog, got %+v", v.Dialog)
		}
		if len(v.Dialog.Clubs) != 2 || v.Dialog.Clubs[1].Label != "GO" {
			t.Errorf("clubs should fall back to the code label: %+v", v.Dialog.Clubs)
		}
		if v.Dialog.Term != "" || v.Dialog.Club != "" || v.Dialog.CanSave {
			t.Errorf("selectors should start blank with save disabled: %+v", v.Dialog)
		}
		if v.Dialog.Fees != keyDialogFees+"(25.00)" {
			t.Errorf("unexpected fees %q", v.Dialog.Fees)
		}
	})

	t.Run("selection enables save", func(t *testing.T) {
		c := card.New()
		cat := viewCatalog()
		c.ApplyCatalog(*cat)
		if err := c.OpenAddDialog(cat, testSettings(5)); err != nil {
			t.Fatal(err)
		}
		tests := []struct {
			name    string
			sel     Selection
			canSave bool
		}{
			{"term only", Selection{Term: "FA24"}, false},
			{"club only", Selection{Club: "GO"}, false},
			{"unknown term", Selection{Term: "SP99", Club: "GO"}, false},
			{"both chosen", Selection{Term: "FA24", Club: "GO"}, true},
		}
		for _, tt := range tests {
			v := QueryGetCardView(GetCardViewQuery{Snapshot: c.Snapshot(card.LoadStatus{Catalog: cat}), Localizer: keyLocalizer{}, Selection: tt.sel})
			if v.Dialog.CanSave != tt.canSave {
				t.Errorf("%s: CanSave = %v, want %v", tt.name, v.Dialog.CanSave, tt.canSave)
			}
		}
	})

	t.Run("over limit", func(t *testing.T) {
		c := card.New()
		cat := viewCatalog(club.Record{Description: "Chess Club"}, club.Record{Description: "Debate"})
		c.ApplyCatalog(*cat)
		if err := c.OpenAddDialog(cat, testSettings(1)); err != nil {
			t.Fatal(err)
		}
		v := QueryGetCardView(GetCardViewQuery{
			Snapshot:  c.Snapshot(card.LoadStatus{Catalog: cat}),
			Localizer: keyLocalizer{},
			Selection: Selection{Term: "FA24", Club: "CHESS"},
		})
		if v.Dialog == nil || v.Dialog.Editable || v.Dialog.CanSave {
			t.Fatalf("expected limit notice, got %+v", v.Dialog)
		}
		if v.Dialog.LimitNotice != keyDialogLimit+"(1)" || v.Dialog.SaveLabel != "" || len(v.Dialog.Terms) != 0 {
			t.Errorf("limit notice must have no fields or save: %+v", v.Dialog)
		}
	})
}

// TestQueryGetCardView_DetailAndConfirm tests the detail dialog and the confirmation over it.
func TestQueryGetCardView_DetailAndConfirm(t *testing.T) {
	c := card.New()
	cat := viewCatalog(club.Record{Description: "Chess Club"})
	c.ApplyCatalog(*cat)
	if err := c.SelectClub(cat.StudentClubs[0].ID); err != nil {
		t.Fatal(err)
	}

	v := QueryGetCardView(GetCardViewQuery{Snapshot: c.Snapshot(card.LoadStatus{Catalog: cat}), Localizer: keyLocalizer{}})
	if v.Detail == nil || v.Detail.ClubName != "Chess Club" || v.Detail.Confirm != nil {
		t.Fatalf("unexpected detail %+v", v.Detail)
	}

	if err := c.RequestUnregister(); err != nil {
		t.Fatal(err)
	}
	v = QueryGetCardView(GetCardViewQuery{Snapshot: c.Snapshot(card.LoadStatus{Catalog: cat}), Localizer: keyLocalizer{}})
	if v.Detail.Confirm == nil || v.Detail.Confirm.Instructions != keyConfirmInstructions+"(Chess Club)" {
		t.Errorf("unexpected confirm %+v", v.Detail.Confirm)
	}
}

// TestQueryGetCardView_SnackbarAndBusy tests feedback rendering.
func TestQueryGetCardView_SnackbarAndBusy(t *testing.T) {
	c := card.New()
	cat := viewCatalog(club.Record{Description: "Chess Club"})
	c.ApplyCatalog(*cat)
	c.BeginSubmission()
	c.Notify(card.Message{Key: card.MsgClubNotAdded, Args: []any{"Chess Club", "status 500"}})

	v := QueryGetCardView(GetCardViewQuery{Snapshot: c.Snapshot(card.LoadStatus{Catalog: cat, IsRefreshing: true}), Localizer: keyLocalizer{}})
	if !v.Busy || v.BusyText != keyBusy {
		t.Errorf("expected busy overlay, got %v %q", v.Busy, v.BusyText)
	}
	if v.Snackbar == nil || v.Snackbar.Text != card.MsgClubNotAdded+"(Chess Club,status 500)" {
		t.Errorf("unexpected snackbar %+v", v.Snackbar)
	}
}

// TestQueryGetCardView_EnglishCatalog tests rendering through the embedded message catalog.
func TestQueryGetCardView_EnglishCatalog(t *testing.T) {
	b, err := i18n.LoadEmbedded()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Register(); err != nil {
		t.Fatal(err)
	}
	c := card.New()
	cat := viewCatalog(club.Record{Description: "Chess Club"})
	c.ApplyCatalog(*cat)
	c.Notify(card.Message{Key: card.MsgClubAdded, Args: []any{"Chess Club"}})

	v := QueryGetCardView(GetCardViewQuery{Snapshot: c.Snapshot(card.LoadStatus{Catalog: cat}), Localizer: i18n.Printer(language.AmericanEnglish)})
	if v.TermHeader != "Registered Clubs in Fall 2024" {
		t.Errorf("unexpected header %q", v.TermHeader)
	}
	if v.Snackbar.Text != "Chess Club was added to your clubs." {
		t.Errorf("unexpected snackbar %q", v.Snackbar.Text)
	}
}

// TestQueryGetCardView_EnglishLimitNotice tests the notice names the student as over the limit.
func TestQueryGetCardView_EnglishLimitNotice(t *testing.T) {
	b, err := i18n.LoadEmbedded()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Register(); err != nil {
		t.Fatal(err)
	}
	c := card.New()
	cat := viewCatalog(club.Record{Description: "Chess Club"}, club.Record{Description: "Debate"})
	c.ApplyCatalog(*cat)
	if err := c.OpenAddDialog(cat, testSettings(1)); err != nil {
		t.Fatal(err)
	}

	v := QueryGetCardView(GetCardViewQuery{Snapshot: c.Snapshot(card.LoadStatus{Catalog: cat}), Localizer: i18n.Printer(language.AmericanEnglish)})
	want := "You are registered for more than the 1 clubs allowed. Unregister from a club before adding another."
	if v.Dialog == nil || v.Dialog.LimitNotice != want {
		t.Errorf("LimitNotice = %+v, want %q", v.Dialog, want)
	}
}
