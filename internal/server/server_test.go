package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/insights/internal/insight"
)

func fixedProvider(text string, err error) insight.Provider {
	return insight.ProviderFunc(func(ctx context.Context) (insight.Insight, error) {
		if err != nil {
			return insight.Insight{}, err
		}
		return insight.Insight{Insight: text}, nil
	})
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func do(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := New(fixedProvider("x", nil), Config{Token: "secret"}, nil)

	rec := do(t, s.Handler(), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAnalytics(t *testing.T) {
	tests := []struct {
		name       string
		config     Config
		token      string
		provider   insight.Provider
		wantStatus int
		wantBody   string
		wantLabel  string
	}{
		{
			name:       "open server",
			provider:   fixedProvider("Sales up 12%", nil),
			wantStatus: http.StatusOK,
			wantBody:   `{"insight":"Sales up 12%"}`,
			wantLabel:  OutcomeSuccess,
		},
		{
			name:       "valid token",
			config:     Config{Token: "secret"},
			token:      "secret",
			provider:   fixedProvider("ok", nil),
			wantStatus: http.StatusOK,
			wantBody:   `{"insight":"ok"}`,
			wantLabel:  OutcomeSuccess,
		},
		{
			name:       "missing token",
			config:     Config{Token: "secret"},
			provider:   fixedProvider("ok", nil),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"detail":"User not authenticated"}`,
			wantLabel:  OutcomeUnauthorized,
		},
		{
			name:       "wrong token",
			config:     Config{Token: "secret"},
			token:      "guess",
			provider:   fixedProvider("ok", nil),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"detail":"User not authenticated"}`,
			wantLabel:  OutcomeUnauthorized,
		},
		{
			name:       "provider failure",
			provider:   fixedProvider("", errors.New("boom")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"detail":"Failed to generate insights"}`,
			wantLabel:  OutcomeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.provider, tt.config, nil)

			rec := do(t, s.Handler(), http.MethodPost, "/api/analytics/", tt.token)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, float64(1), counterValue(t, s.Metrics().Requests.WithLabelValues(tt.wantLabel)))
		})
	}
}

func TestAnalytics_MethodNotAllowed(t *testing.T) {
	s := New(fixedProvider("x", nil), Config{}, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/api/analytics/", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	s := New(fixedProvider("x", nil), Config{Metrics: true}, nil)
	do(t, s.Handler(), http.MethodPost, "/api/analytics/", "")
	s.Metrics().TasksTotal.Set(3)

	rec := do(t, s.Handler(), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`insights_requests_total{outcome="success"} 1`,
		"insights_generation_duration_seconds_count 1",
		"insights_tasks_loaded 3",
	} {
		assert.True(t, strings.Contains(string(body), want), "metrics output missing %q", want)
	}

	disabled := New(fixedProvider("x", nil), Config{}, nil)
	assert.Equal(t, http.StatusNotFound, do(t, disabled.Handler(), http.MethodGet, "/metrics", "").Code)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s := New(fixedProvider("x", nil), Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	require.NoError(t, <-done)
}
