package middleware

import (
	"context"
	"net/http"
	"strings"

	"studentclubs/internal/application/orchestrators"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const (
	cardSessionContextKey contextKey = "card_session"
	localizerContextKey   contextKey = "localizer"
	languageContextKey    contextKey = "language"
)

// CardCookieName holds the card session token.
const CardCookieName = "clubs_card"

// TokenParam carries the user token on the first page load when the host cannot set a header.
const TokenParam = "token"

// SecureCookies marks cookies Secure. Set in production.
var SecureCookies = false

// Identity is who a new card session fetches and submits for.
type Identity struct {
	UserToken string
	BannerID  string
}

// Identify derives the identity of a request that has no card session yet.
type Identify func(r *http.Request) Identity

// BearerIdentity forwards the Authorization bearer token (or the token query
// parameter) opaquely and uses bannerID for sources that resolve the student locally.
func BearerIdentity(bannerID string) Identify {
	return func(r *http.Request) Identity {
		token := ""
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
		if token == "" {
			token = r.URL.Query().Get(TokenParam)
		}
		return Identity{UserToken: token, BannerID: bannerID}
	}
}

// CardSession attaches the caller's card session to the request context.
// A GET without a live session opens one and sets the cookie; other methods
// are redirected to the card so a stale form never acts on a fresh session.
func CardSession(registry *orchestrators.CardRegistry, identify Identify) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/card") && !strings.HasPrefix(r.URL.Path, "/api/card") {
				next.ServeHTTP(w, r)
				return
			}
			if cookie, err := r.Cookie(CardCookieName); err == nil && cookie.Value != "" {
				if s, err := registry.Get(cookie.Value); err == nil {
					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), cardSessionContextKey, s)))
					return
				}
			}
			if r.Method != http.MethodGet {
				ClearCardCookie(w)
				http.Redirect(w, r, "/card", http.StatusSeeOther)
				return
			}
			id := identify(r)
			token, s := registry.Open(r.Context(), id.UserToken, id.BannerID)
			SetCardCookie(w, token)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), cardSessionContextKey, s)))
		})
	}
}

// GetCardSession extracts the card session from the request context.
func GetCardSession(ctx context.Context) (*orchestrators.CardSession, bool) {
	s, ok := ctx.Value(cardSessionContextKey).(*orchestrators.CardSession)
	return s, ok
}

// SetCardCookie sets the card session cookie on the response.
func SetCardCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CardCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}

// ClearCardCookie removes the card session cookie.
func ClearCardCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CardCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
