// Package platform fetches reference data from the host platform's admin API.
package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/source"
)

const (
	requestTimeout = 15 * time.Second
	maxBodySize    = 8 << 20 // 8 MB
)

var (
	// ErrUnauthorized indicates the API token is missing, expired or lacks admin scope.
	ErrUnauthorized = errors.New("platform: unauthorized (token expired or invalid)")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("platform: rate limited")
)

// Client reads reference data from the admin API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the given base URL and bearer token.
// Returns nil if the base URL is empty.
func NewClient(baseURL, token string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(token),
		http:    &http.Client{},
	}
}

// FetchModules returns every module with its owning course.
func (c *Client) FetchModules(ctx context.Context) ([]model.ModuleRef, error) {
	return fetchList[model.ModuleRef](ctx, c, "/modules", "modules")
}

// FetchCourses returns every course with its owning university.
func (c *Client) FetchCourses(ctx context.Context) ([]model.CourseRef, error) {
	return fetchList[model.CourseRef](ctx, c, "/courses", "courses")
}

// FetchProfessorCourses returns all professor course assignments.
func (c *Client) FetchProfessorCourses(ctx context.Context) ([]model.ProfessorAssignment, error) {
	return fetchList[model.ProfessorAssignment](ctx, c, "/professor-courses", "professor courses")
}

// FetchActiveModels returns the active model pricing rows.
func (c *Client) FetchActiveModels(ctx context.Context) ([]model.ModelPricing, error) {
	return fetchList[model.ModelPricing](ctx, c, "/models?active=true", "models")
}

// FetchCompletedTranscriptions returns completed transcriptions since the given time.
// A zero since fetches all of them.
func (c *Client) FetchCompletedTranscriptions(ctx context.Context, since time.Time) ([]model.TranscriptionCost, error) {
	q := url.Values{"status": {"completed"}}
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}
	return fetchList[model.TranscriptionCost](ctx, c, "/transcriptions?"+q.Encode(), "transcriptions")
}

// FetchAll pulls every reference table. The hierarchy is required; pricing,
// assignments and transcriptions are best effort and their first error is
// returned alongside the partial data.
func (c *Client) FetchAll(ctx context.Context, transcriptionsSince time.Time) (*source.ReferenceData, error) {
	ref := &source.ReferenceData{}

	var err error
	if ref.Courses, err = c.FetchCourses(ctx); err != nil {
		return nil, err
	}
	if ref.Modules, err = c.FetchModules(ctx); err != nil {
		return nil, err
	}

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	profs, err := c.FetchProfessorCourses(ctx)
	keep(err)
	ref.Professors = profs

	models, err := c.FetchActiveModels(ctx)
	keep(err)
	ref.Models = models

	trs, err := c.FetchCompletedTranscriptions(ctx, transcriptionsSince)
	keep(err)
	ref.Transcriptions = trs

	return ref, firstErr
}

// fetchList GETs path and decodes either a bare JSON array or {"data": [...]}.
func fetchList[T any](ctx context.Context, c *Client, path, what string) ([]T, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}

	var page struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("platform: parsing %s: %w", what, err)
	}
	return page.Data, nil
}

// get performs an authenticated GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("platform: creating request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "edumetrics/1.0")

	//nolint:gosec // URL is the operator-configured platform base URL
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("platform: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("platform: unexpected status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("platform: reading response: %w", err)
	}
	return body, nil
}
