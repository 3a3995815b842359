package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"studentclubs/internal/adapters/http/middleware"
	"studentclubs/internal/application/orchestrators"
	"studentclubs/internal/application/projections"
	"studentclubs/internal/domain/card"
)

// timeNow is a variable for testability.
var timeNow = time.Now

var startedAt = time.Now()

// mdRenderer renders the localized dialog instructions.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// pollInterval is how often the page reloads while a fetch or submission is pending.
const pollInterval = 2

var cardTemplate = template.Must(template.New("card.html").Funcs(template.FuncMap{
	"renderMarkdown": renderMarkdown,
}).ParseFS(templateFS, "templates/*.html"))

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err.Error())
	}
}

// sessionFrom fetches the card session set by middleware.CardSession.
func sessionFrom(w http.ResponseWriter, r *http.Request) (*orchestrators.CardSession, bool) {
	s, ok := middleware.GetCardSession(r.Context())
	if !ok {
		http.Error(w, "card session required", http.StatusUnauthorized)
		return nil, false
	}
	return s, true
}

// buildView projects the session; ?term= and ?club= carry a host's in-progress dialog selection.
func buildView(r *http.Request, s *orchestrators.CardSession) projections.CardView {
	return projections.QueryGetCardView(projections.GetCardViewQuery{
		Snapshot:  s.Snapshot(),
		Localizer: middleware.GetLocalizer(r.Context()),
		Meta:      cardMeta,
		Selection: projections.Selection{
			Term: r.URL.Query().Get("term"),
			Club: r.URL.Query().Get("club"),
		},
	})
}

// cardPage is the template data for the card page.
type cardPage struct {
	projections.CardView
	Lang      string
	Poll      int
	CSRFField template.HTML
}

// handleCardPage handles GET /card.
func handleCardPage(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	view := buildView(r, s)
	page := cardPage{CardView: view, CSRFField: csrf.TemplateField(r)}
	if tag, ok := middleware.GetLanguage(r.Context()); ok {
		page.Lang = tag.String()
	}
	if view.Busy || view.View == card.ViewLoading.String() {
		page.Poll = pollInterval
	}

	var buf bytes.Buffer
	if err := cardTemplate.ExecuteTemplate(&buf, "card.html", page); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// handleCardJSON handles GET /api/card for hosts that render the card themselves.
func handleCardJSON(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, buildView(r, s))
}

// cardActionFunc applies one user event to the session.
type cardActionFunc func(r *http.Request, s *orchestrators.CardSession) error

// cardAction adapts an event to a POST handler. Form posts are redirected
// back to the card (303); JSON clients get the updated view.
// Validation failures answer 422 for JSON and leave the state unchanged.
func cardAction(fn cardActionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFrom(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form", http.StatusBadRequest)
			return
		}

		err := fn(r, s)
		status := http.StatusOK
		if err != nil {
			status = actionStatus(err)
			slog.Debug("card_action_rejected", "path", r.URL.Path, "error", err.Error())
		}

		if wantsJSON(r) {
			writeJSON(w, status, buildView(r, s))
			return
		}
		http.Redirect(w, r, "/card", http.StatusSeeOther)
	}
}

func actionStatus(err error) int {
	switch {
	case errors.Is(err, card.ErrClubNotFound):
		return http.StatusNotFound
	case errors.Is(err, card.ErrCatalogNotLoaded):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func actionRefresh(r *http.Request, s *orchestrators.CardSession) error {
	s.Refresh(r.Context())
	return nil
}

func actionOpenAdd(_ *http.Request, s *orchestrators.CardSession) error {
	return s.OpenAddDialog()
}

func actionCloseAdd(_ *http.Request, s *orchestrators.CardSession) error {
	s.CloseAddDialog()
	return nil
}

func actionSaveAdd(r *http.Request, s *orchestrators.CardSession) error {
	return s.SaveAddDialog(r.Context(), r.FormValue("term"), r.FormValue("club"))
}

func actionSelectClub(r *http.Request, s *orchestrators.CardSession) error {
	return s.SelectClub(r.FormValue("id"))
}

func actionCloseDetail(_ *http.Request, s *orchestrators.CardSession) error {
	s.CloseDetail()
	return nil
}

func actionRequestUnregister(_ *http.Request, s *orchestrators.CardSession) error {
	return s.RequestUnregister()
}

func actionCancelUnregister(_ *http.Request, s *orchestrators.CardSession) error {
	s.CancelUnregister()
	return nil
}

func actionConfirmUnregister(_ *http.Request, s *orchestrators.CardSession) error {
	_, err := s.ConfirmUnregister()
	return err
}

func actionDismissSnackbar(_ *http.Request, s *orchestrators.CardSession) error {
	s.DismissSnackbar()
	return nil
}

// handleHealthz handles GET /healthz.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	sessions := 0
	if registry != nil {
		sessions = registry.Len()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": sessions,
		"uptime_s": int(timeNow().Sub(startedAt).Seconds()),
	})
}

// handlePerf handles GET /api/perf. The window defaults to the last 15 minutes.
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		http.Error(w, "perf collection disabled", http.StatusNotFound)
		return
	}
	window := 15 * time.Minute
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			http.Error(w, "invalid window", http.StatusBadRequest)
			return
		}
		window = d
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-window), 10))
}
