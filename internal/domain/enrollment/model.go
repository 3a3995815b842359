package enrollment

import (
	"errors"
	"strings"
)

// Status constants for a submission result.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Domain errors
var (
	ErrEmptyName     = errors.New("club code cannot be empty")
	ErrEmptyTerm     = errors.New("term code cannot be empty")
	ErrEmptyBannerID = errors.New("banner id cannot be empty")
)

// Request is one "add club" registration, as posted to the enrollment API.
// Name carries the activity code selected from the catalog's activity list.
type Request struct {
	Name     string `json:"name"`
	Term     string `json:"term"`
	BannerID string `json:"bannerId"`
	ClubFees string `json:"clubFees"`
}

// Validate checks the request carries the selected codes.
// Membership in the catalog is checked by the caller before submitting.
// PRE: Request struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(r.Term) == "" {
		return ErrEmptyTerm
	}
	if strings.TrimSpace(r.BannerID) == "" {
		return ErrEmptyBannerID
	}
	return nil
}

// Result is the status-tagged outcome of one submission.
type Result struct {
	Status     string
	Diagnostic string // opaque failure detail, empty on success
	Reference  string // downstream registration id when the API returns one
}

// Success returns a successful result.
func Success(reference string) Result {
	return Result{Status: StatusSuccess, Reference: reference}
}

// Failure returns a failed result. A blank diagnostic is replaced so the
// failure notification always has something to show.
// POST: Result.Diagnostic is non-empty
func Failure(diagnostic string) Result {
	if strings.TrimSpace(diagnostic) == "" {
		diagnostic = "unknown error"
	}
	return Result{Status: StatusFailure, Diagnostic: diagnostic}
}

// OK reports whether the submission succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}
