package insight

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

func TestClient_FetchInsight(t *testing.T) {
	var gotAuth, gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"insight":"Sales up 12%"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithToken("secret"))
	got, err := c.FetchInsight(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Sales up 12%", got.Insight)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, AnalyticsPath, gotPath)
	assert.Equal(t, srv.URL+AnalyticsPath, c.URL())
}

func TestClient_NoTokenOmitsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"insight":"ok"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchInsight(context.Background())
	require.NoError(t, err)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
		wantErr    error
	}{
		{
			name:       "detail string",
			status:     http.StatusUnauthorized,
			body:       `{"detail":"User not authenticated"}`,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "User not authenticated",
		},
		{
			name:       "validation detail list",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail":[{"msg":"field required"},{"msg":"too short"}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "field required; too short",
		},
		{
			name:       "no detail",
			status:     http.StatusServiceUnavailable,
			body:       `oops`,
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "analytics request failed: 503 Service Unavailable",
		},
		{
			name:    "empty insight",
			status:  http.StatusOK,
			body:    `{"insight":"  "}`,
			wantErr: ErrEmptyInsight,
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    `<html>`,
			wantMsg: "malformed insight payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).FetchInsight(context.Background())
			require.Error(t, err)

			if tt.wantStatus != 0 {
				var httpErr *HTTPError
				require.True(t, errors.As(err, &httpErr), "expected *HTTPError, got %T", err)
				assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
				assert.Equal(t, tt.wantMsg, err.Error())
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantStatus == 0 && tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.FetchInsight(context.Background())
	require.Error(t, err)
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"insight":"late"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL).FetchInsight(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
