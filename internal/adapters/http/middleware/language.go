package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"studentclubs/internal/platform/i18n"
)

// Language resolves the request language and stores a printer for it in the context.
// An explicit ?lang choice is persisted in a cookie.
func Language(resolver *i18n.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag, persist := resolver.ResolveTag(r)
			if persist {
				i18n.SetLanguageCookie(w, tag)
			}
			w.Header().Set("Content-Language", tag.String())
			ctx := context.WithValue(r.Context(), languageContextKey, tag)
			ctx = context.WithValue(ctx, localizerContextKey, i18n.Localizer(i18n.Printer(tag)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLocalizer returns the request's localizer, or a printer for the base locale.
func GetLocalizer(ctx context.Context) i18n.Localizer {
	if l, ok := ctx.Value(localizerContextKey).(i18n.Localizer); ok {
		return l
	}
	return i18n.Printer(language.MustParse(i18n.BaseLocale))
}

// GetLanguage returns the request language.
func GetLanguage(ctx context.Context) (language.Tag, bool) {
	tag, ok := ctx.Value(languageContextKey).(language.Tag)
	return tag, ok
}
