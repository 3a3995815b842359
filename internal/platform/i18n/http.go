package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the user's language preference.
	LangCookieName = "clubs_lang"
)

// Localizer formats a message id with arguments. *message.Printer satisfies it.
type Localizer interface {
	Sprintf(key message.Reference, a ...interface{}) string
}

// Resolver picks the best supported language for a request.
type Resolver struct {
	supported []language.Tag
	matcher   language.Matcher
}

// NewResolver builds a resolver over the bundle's locales.
func NewResolver(b *Bundle) *Resolver {
	tags := b.Tags()
	return &Resolver{supported: tags, matcher: language.NewMatcher(tags)}
}

// Default returns the fallback language.
func (r *Resolver) Default() language.Tag {
	return r.supported[0]
}

// Supported returns the supported tags, default first.
func (r *Resolver) Supported() []language.Tag {
	return append([]language.Tag(nil), r.supported...)
}

// ResolveTag determines the language from ?lang, the language cookie, then Accept-Language.
// The bool reports whether the query param should be persisted as a cookie.
func (r *Resolver) ResolveTag(req *http.Request) (language.Tag, bool) {
	if req == nil {
		return r.Default(), false
	}
	if v := strings.TrimSpace(req.URL.Query().Get(LangParam)); v != "" {
		if tag, ok := r.parse(v); ok {
			return tag, true
		}
	}
	if c, err := req.Cookie(LangCookieName); err == nil {
		if tag, ok := r.parse(c.Value); ok {
			return tag, false
		}
	}
	if accept := strings.TrimSpace(req.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return r.match(tags...), false
		}
	}
	return r.Default(), false
}

func (r *Resolver) parse(v string) (language.Tag, bool) {
	tag, err := language.Parse(v)
	if err != nil {
		return language.Tag{}, false
	}
	_, _, conf := r.matcher.Match(tag)
	if conf == language.No {
		return language.Tag{}, false
	}
	return r.match(tag), true
}

func (r *Resolver) match(tags ...language.Tag) language.Tag {
	_, idx, _ := r.matcher.Match(tags...)
	return r.supported[idx]
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}
