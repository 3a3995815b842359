// Package enrollment posts club registrations to the enrollment API.
package enrollment

import (
	"context"

	domain "studentclubs/internal/domain/enrollment"
)

// Submitter performs exactly one registration attempt per call. It never
// retries and reports every failure through the result, not an error.
type Submitter interface {
	Submit(ctx context.Context, userToken string, req domain.Request) domain.Result
}
