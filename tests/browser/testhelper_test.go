package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	_ "modernc.org/sqlite"

	"studentclubs/internal/adapters/catalog"
	"studentclubs/internal/adapters/enrollment"
	web "studentclubs/internal/adapters/http"
	"studentclubs/internal/adapters/http/middleware"
	"studentclubs/internal/adapters/http/perf"
	"studentclubs/internal/adapters/storage"
	clubStore "studentclubs/internal/adapters/storage/clubs"
	"studentclubs/internal/application/orchestrators"
	"studentclubs/internal/application/projections"
	"studentclubs/internal/domain/settings"
	"studentclubs/internal/platform/i18n"
)

const testBannerID = "B00999"

// testApp holds a running card server on a seeded database and a browser.
type testApp struct {
	BaseURL  string
	DB       *sql.DB
	Server   *http.Server
	Registry *orchestrators.CardRegistry
	PW       *playwright.Playwright
	Browser  playwright.Browser
}

// newTestApp creates a fresh database seeded with the demo student, serves
// the card on a free port and launches a headless Chromium.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	if err := storage.SeedDevelopment(context.Background(), db, testBannerID); err != nil {
		t.Fatalf("failed to seed db: %v", err)
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		t.Fatalf("failed to load messages: %v", err)
	}
	if err := bundle.Register(); err != nil {
		t.Fatalf("failed to register messages: %v", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	store := clubStore.NewSQLiteStore(db)
	registry := orchestrators.NewCardRegistry(orchestrators.CardRegistryDeps{
		Template: orchestrators.CardSessionDeps{
			Source:    &catalog.SQLiteSource{Store: store, Collector: collector},
			Submitter: &enrollment.SQLiteSubmitter{Store: store, Collector: collector},
			Settings:  settings.Card{ClubLimit: 3, ClubCategory: "CLUB", ClubFees: "25.00", EthosAPIKey: "key"},
		},
		GenerateID: uuid.NewString,
	})

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	mux := web.NewMux(web.Deps{
		Registry:  registry,
		Resolver:  i18n.NewResolver(bundle),
		Meta:      projections.CardMeta{Title: "Student Clubs", Description: "Register for student clubs"},
		Collector: collector,
		Identify:  middleware.BearerIdentity(testBannerID),
		CSRFKey:   []byte("0123456789abcdef0123456789abcdef"),
		TrustedOrigins: []string{
			fmt.Sprintf("127.0.0.1:%d", port),
			fmt.Sprintf("localhost:%d", port),
		},
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL:  baseURL,
		DB:       db,
		Server:   srv,
		Registry: registry,
		PW:       pw,
		Browser:  browser,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		registry.Wait()
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// openCard navigates to the card and waits until the first fetch has rendered the club list.
func (a *testApp) openCard(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/card"); err != nil {
		t.Fatalf("failed to navigate to card: %v", err)
	}
	waitVisible(t, page, "main[data-view=populated]", 10000)
}

// waitVisible fails the test unless selector becomes visible within timeoutMS.
func waitVisible(t *testing.T, page playwright.Page, selector string, timeoutMS float64) {
	t.Helper()
	err := page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(timeoutMS),
	})
	if err != nil {
		t.Fatalf("%s not visible: %v", selector, err)
	}
}

// click presses the submit button of the form posting to action.
func click(t *testing.T, page playwright.Page, action string) {
	t.Helper()
	if err := page.Locator(fmt.Sprintf("form[action='%s'] button", action)).First().Click(); err != nil {
		t.Fatalf("failed to click %s: %v", action, err)
	}
}
