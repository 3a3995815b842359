package catalog

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
	"studentclubs/internal/domain/club"
)

const maxErrorBody = 512

// PipelineSource runs the card's data-connect pipeline over HTTP.
type PipelineSource struct {
	BaseURL   string
	Pipeline  string
	CardID    string
	Client    *http.Client
	Collector *perf.Collector
}

type pipelineRequest struct {
	CardID       string `json:"cardId"`
	ClubCategory string `json:"clubCategory"`
}

// Fetch posts the pipeline request with the user's bearer token and decodes the catalog.
// PRE: q.UserToken is non-empty
// POST: Returns a validated catalog with record IDs assigned, or a *StatusError for non-2xx replies
func (s *PipelineSource) Fetch(ctx context.Context, q Query) (cat club.Catalog, err error) {
	if q.UserToken == "" {
		return club.Catalog{}, ErrNoStudent
	}
	start := time.Now()
	status := 0
	defer func() {
		s.Collector.Since(perf.KindCall, "catalog.pipeline", start, status, err != nil)
	}()

	data, err := json.Marshal(pipelineRequest{CardID: s.CardID, ClubCategory: q.Category})
	if err != nil {
		return club.Catalog{}, fmt.Errorf("marshal pipeline request: %w", err)
	}
	endpoint := strings.TrimRight(s.BaseURL, "/") + "/pipelines/" + url.PathEscape(s.Pipeline)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return club.Catalog{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+q.UserToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return club.Catalog{}, fmt.Errorf("pipeline request: %w", err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.Warn("catalog_fetch_failed", "pipeline", s.Pipeline, "status", resp.StatusCode)
		return club.Catalog{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(&cat); err != nil {
		return club.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return club.Catalog{}, fmt.Errorf("invalid catalog: %w", err)
	}
	if missing := cat.IncompleteRecords(); len(missing) > 0 {
		slog.Warn("catalog_record_incomplete", "pipeline", s.Pipeline, "positions", missing)
	}
	if strings.TrimSpace(cat.BannerID) == "" {
		slog.Warn("catalog_banner_id_missing", "pipeline", s.Pipeline)
	}
	cat.AssignIDs()
	slog.Debug("catalog_fetched", "pipeline", s.Pipeline, "clubs", len(cat.StudentClubs))
	return cat, nil
}
