package web

import (
	"crypto/rand"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"studentclubs/internal/adapters/http/middleware"
	"studentclubs/internal/adapters/http/perf"
	"studentclubs/internal/application/orchestrators"
	"studentclubs/internal/application/projections"
	"studentclubs/internal/platform/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Deps holds everything the card handlers need.
type Deps struct {
	Registry       *orchestrators.CardRegistry
	Resolver       *i18n.Resolver
	Meta           projections.CardMeta
	Collector      *perf.Collector
	Identify       middleware.Identify
	CSRFKey        []byte // 32 bytes; generated when empty
	Production     bool
	TrustedOrigins []string
	FrameAncestors string
	SlowRequest    time.Duration
}

// Global card registry (set by NewMux)
var registry *orchestrators.CardRegistry

// Global manifest metadata (set by NewMux)
var cardMeta projections.CardMeta

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// RateLimitPerSecond controls the per-IP limit on card actions. Tests can increase this.
var RateLimitPerSecond = 10

// randomCSRFKey generates a per-process key for development.
func randomCSRFKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("csrf key: " + err.Error())
	}
	return key
}

// NewMux wires HTTP handlers for the card.
func NewMux(deps Deps) http.Handler {
	registry = deps.Registry
	cardMeta = deps.Meta
	perfCollector = deps.Collector
	middleware.SecureCookies = deps.Production

	mux := http.NewServeMux()
	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	registerRoutes(mux)

	csrfKey := deps.CSRFKey
	if len(csrfKey) == 0 {
		csrfKey = randomCSRFKey()
	}
	identify := deps.Identify
	if identify == nil {
		identify = middleware.BearerIdentity("")
	}
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Outermost first: SecurityHeaders -> RateLimit -> CSRF -> CardSession -> Language -> Timing -> Mux
	return middleware.Chain(mux,
		middleware.Timing(deps.Collector, deps.SlowRequest),
		middleware.Language(deps.Resolver),
		middleware.CardSession(deps.Registry, identify),
		middleware.CSRF(csrfKey, deps.Production, deps.TrustedOrigins),
		middleware.RateLimit(limiter),
		middleware.SecurityHeaders(deps.FrameAncestors),
	)
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/card", http.StatusSeeOther)
	})
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /api/perf", handlePerf)

	mux.HandleFunc("GET /card", handleCardPage)
	mux.HandleFunc("GET /api/card", handleCardJSON)
	mux.HandleFunc("POST /card/refresh", cardAction(actionRefresh))

	mux.HandleFunc("POST /card/add/open", cardAction(actionOpenAdd))
	mux.HandleFunc("POST /card/add/close", cardAction(actionCloseAdd))
	mux.HandleFunc("POST /card/add/save", cardAction(actionSaveAdd))

	mux.HandleFunc("POST /card/clubs/select", cardAction(actionSelectClub))
	mux.HandleFunc("POST /card/detail/close", cardAction(actionCloseDetail))
	mux.HandleFunc("POST /card/detail/unregister", cardAction(actionRequestUnregister))
	mux.HandleFunc("POST /card/confirm/cancel", cardAction(actionCancelUnregister))
	mux.HandleFunc("POST /card/confirm/delete", cardAction(actionConfirmUnregister))
	mux.HandleFunc("POST /card/snackbar/dismiss", cardAction(actionDismissSnackbar))
}
