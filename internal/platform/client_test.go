package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, routes map[string]string, status map[string]int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if code, ok := status[r.URL.Path]; ok {
			w.WriteHeader(code)
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

var fullRoutes = map[string]string{
	"/courses":           `[{"id":1,"universityId":100,"name":"Calculus"}]`,
	"/modules":           `{"data":[{"id":10,"courseId":1},{"id":11,"courseId":1}]}`,
	"/professor-courses": `[{"professorId":7,"courseId":1}]`,
	"/models":            `[{"modelName":"gpt-4o","provider":"openai","inputCostPerMillionTokens":2.5,"outputCostPerMillionTokens":10}]`,
	"/transcriptions":    `[{"moduleId":10,"costUSD":0.4,"durationSeconds":120,"completedAt":"2024-06-01T10:00:00Z"}]`,
}

func TestNewClient(t *testing.T) {
	assert.Nil(t, NewClient("  ", "x"))
	c := NewClient("https://admin.example.edu/api/", "t")
	require.NotNil(t, c)
	assert.Equal(t, "https://admin.example.edu/api", c.baseURL)
}

func TestFetchAll(t *testing.T) {
	srv := newServer(t, fullRoutes, nil)
	c := NewClient(srv.URL, "secret")

	ref, err := c.FetchAll(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Len(t, ref.Courses, 1)
	assert.Len(t, ref.Modules, 2, "wrapped data arrays are accepted")
	assert.Equal(t, int64(7), ref.Professors[0].ProfessorID)
	assert.InDelta(t, 10, ref.Models[0].OutputCostPerMillionTokens, 1e-9)
	assert.Equal(t, 2024, ref.Transcriptions[0].CompletedAt.Year())
}

func TestFetchAll_PartialPricingFailure(t *testing.T) {
	srv := newServer(t, fullRoutes, map[string]int{"/models": http.StatusTooManyRequests})
	c := NewClient(srv.URL, "secret")

	ref, err := c.FetchAll(context.Background(), time.Time{})
	assert.True(t, errors.Is(err, ErrRateLimited))
	require.NotNil(t, ref)
	assert.Len(t, ref.Modules, 2)
	assert.Empty(t, ref.Models)
}

func TestFetchAll_HierarchyRequired(t *testing.T) {
	srv := newServer(t, fullRoutes, map[string]int{"/modules": http.StatusInternalServerError})
	c := NewClient(srv.URL, "secret")

	ref, err := c.FetchAll(context.Background(), time.Time{})
	assert.Nil(t, ref)
	assert.ErrorContains(t, err, "unexpected status 500")
}

func TestGet_Unauthorized(t *testing.T) {
	srv := newServer(t, fullRoutes, nil)
	c := NewClient(srv.URL, "wrong")

	_, err := c.FetchCourses(context.Background())
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestFetchCompletedTranscriptions_Since(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewClient(srv.URL, "").FetchCompletedTranscriptions(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, "since=2024-06-01T00%3A00%3A00Z&status=completed", gotQuery)
}

func TestFetchList_BadJSON(t *testing.T) {
	srv := newServer(t, map[string]string{"/courses": `{"data": "nope"}`}, nil)
	_, err := NewClient(srv.URL, "secret").FetchCourses(context.Background())
	assert.ErrorContains(t, err, "parsing courses")
}
