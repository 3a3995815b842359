package email

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ErrNoRecipient is returned when a notice has nowhere to go.
var ErrNoRecipient = errors.New("notice has no recipient")

var noticeMarkdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// RegistrationNotice describes one accepted club registration.
type RegistrationNotice struct {
	To        string
	BannerID  string
	Club      string // display name, falls back to the code
	Term      string // display name, falls back to the code
	Fees      string
	Reference string
	At        time.Time
}

// Markdown renders the notice body as markdown.
func (n RegistrationNotice) Markdown() string {
	var sb strings.Builder
	sb.WriteString("## New club registration\n\n")
	fmt.Fprintf(&sb, "Student **%s** registered for **%s** in %s.\n\n", n.BannerID, n.Club, n.Term)
	sb.WriteString("| Field | Value |\n|-------|-------|\n")
	fmt.Fprintf(&sb, "| Club | %s |\n", n.Club)
	fmt.Fprintf(&sb, "| Term | %s |\n", n.Term)
	fmt.Fprintf(&sb, "| Fee | %s |\n", n.Fees)
	if n.Reference != "" {
		fmt.Fprintf(&sb, "| Reference | `%s` |\n", n.Reference)
	}
	fmt.Fprintf(&sb, "| Submitted | %s |\n", n.At.UTC().Format(time.RFC3339))
	return sb.String()
}

// Request builds the message for n with an HTML body.
// PRE: n.To is non-empty
func (n RegistrationNotice) Request() (SendRequest, error) {
	if strings.TrimSpace(n.To) == "" {
		return SendRequest{}, ErrNoRecipient
	}
	var buf bytes.Buffer
	if err := noticeMarkdown.Convert([]byte(n.Markdown()), &buf); err != nil {
		return SendRequest{}, fmt.Errorf("render notice: %w", err)
	}
	return SendRequest{
		To:      []string{n.To},
		Subject: fmt.Sprintf("Club registration: %s (%s)", n.Club, n.Term),
		HTML:    buf.String(),
	}, nil
}
