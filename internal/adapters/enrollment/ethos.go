package enrollment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"studentclubs/internal/adapters/http/perf"
	domain "studentclubs/internal/domain/enrollment"
)

const maxDiagnosticBody = 512

// EthosSubmitter posts registrations to the card's server-side Ethos endpoint.
type EthosSubmitter struct {
	BaseURL    string
	CardPrefix string
	CardID     string
	APIKey     string
	Client     *http.Client
	Collector  *perf.Collector
}

// Endpoint returns the registration URL: {BaseURL}/{CardPrefix}post-student-club?cardId={CardID}.
func (s *EthosSubmitter) Endpoint() string {
	q := url.Values{"cardId": {s.CardID}}
	return strings.TrimRight(s.BaseURL, "/") + "/" + s.CardPrefix + "post-student-club?" + q.Encode()
}

// Submit posts req once. 2xx is success; anything else, including transport
// errors, is a failure whose diagnostic names the cause.
// PRE: req has been validated
// POST: Exactly one HTTP request attempted
func (s *EthosSubmitter) Submit(ctx context.Context, userToken string, req domain.Request) (result domain.Result) {
	start := time.Now()
	status := 0
	defer func() {
		s.Collector.Since(perf.KindCall, "enrollment.ethos", start, status, !result.OK())
	}()

	data, err := json.Marshal(req)
	if err != nil {
		return domain.Failure(fmt.Sprintf("marshal request: %v", err))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint(), bytes.NewReader(data))
	if err != nil {
		return domain.Failure(fmt.Sprintf("build request: %v", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+userToken)
	httpReq.Header.Set("x-api-key", s.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		slog.Error("club_registration_transport_failed", "club", req.Name, "term", req.Term, "error", err.Error())
		return domain.Failure(err.Error())
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBody))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("club_registration_rejected", "club", req.Name, "term", req.Term, "status", resp.StatusCode)
		return domain.Failure(fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var ack struct {
		ID string `json:"id"`
	}
	// The acknowledgement body is optional; an unparseable body is still a success.
	_ = json.Unmarshal(body, &ack)
	return domain.Success(ack.ID)
}
