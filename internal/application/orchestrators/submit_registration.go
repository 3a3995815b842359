package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"studentclubs/internal/adapters/email"
	"studentclubs/internal/adapters/enrollment"
	"studentclubs/internal/domain/card"
	domain "studentclubs/internal/domain/enrollment"
)

// SubmitRegistrationInput is one validated "add club" request.
type SubmitRegistrationInput struct {
	UserToken string
	Request   domain.Request
	ClubLabel string // shown in the notification, falls back to Request.Name
	TermLabel string
}

// SubmitRegistrationDeps are the collaborators of a submission.
// Sender and NotifyTo are optional; without both no notice is sent.
type SubmitRegistrationDeps struct {
	Submitter enrollment.Submitter
	Sender    email.Sender
	NotifyTo  string
	Now       func() time.Time
}

// ExecuteSubmitRegistration submits once and returns the result with the
// notification the card shows for it. The caller requests the refresh.
// PRE: input.Request has been validated against the catalog
// POST: exactly one submit attempted; a notice is sent only on success
func ExecuteSubmitRegistration(ctx context.Context, input SubmitRegistrationInput, deps SubmitRegistrationDeps) (domain.Result, card.Message) {
	label := input.ClubLabel
	if label == "" {
		label = input.Request.Name
	}

	res := deps.Submitter.Submit(ctx, input.UserToken, input.Request)
	if !res.OK() {
		slog.Warn("club_registration_failed", "club", input.Request.Name, "term", input.Request.Term, "diagnostic", res.Diagnostic)
		return res, card.Message{Key: card.MsgClubNotAdded, Args: []any{label, res.Diagnostic}}
	}

	slog.Info("club_registration_submitted", "club", input.Request.Name, "term", input.Request.Term, "reference", res.Reference)
	if deps.Sender != nil && deps.NotifyTo != "" {
		sendRegistrationNotice(ctx, input, label, res, deps)
	}
	return res, card.Message{Key: card.MsgClubAdded, Args: []any{label}}
}

// sendRegistrationNotice mails the club office. Failures are logged only.
func sendRegistrationNotice(ctx context.Context, input SubmitRegistrationInput, label string, res domain.Result, deps SubmitRegistrationDeps) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	term := input.TermLabel
	if term == "" {
		term = input.Request.Term
	}
	notice := email.RegistrationNotice{
		To:        deps.NotifyTo,
		BannerID:  input.Request.BannerID,
		Club:      label,
		Term:      term,
		Fees:      input.Request.ClubFees,
		Reference: res.Reference,
		At:        now(),
	}
	req, err := notice.Request()
	if err != nil {
		slog.Error("registration_notice_build_failed", "error", err.Error())
		return
	}
	if _, err := deps.Sender.Send(ctx, req); err != nil {
		slog.Error("registration_notice_send_failed", "club", input.Request.Name, "error", err.Error())
	}
}
