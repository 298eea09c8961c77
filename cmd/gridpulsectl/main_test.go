package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	oldURL, oldToken := serverURL, authToken
	serverURL, authToken = srv.URL, ""
	t.Cleanup(func() { serverURL, authToken = oldURL, oldToken })
}

func TestRunHealth(t *testing.T) {
	t.Run("healthy server", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/health", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		require.NoError(t, runHealth(nil, nil))
	})

	t.Run("unhealthy status is an error", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		assert.Error(t, runHealth(nil, nil))
	})
}

func TestRunSeed(t *testing.T) {
	t.Run("refuses without --yes", func(t *testing.T) {
		seedYes = false
		err := runSeed(nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--yes")
	})

	t.Run("passes confirm and token through", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/energy/seed", r.URL.Path)
			assert.Equal(t, "true", r.URL.Query().Get("confirm"))
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"inserted":42}`))
		})
		authToken = "tok"
		seedYes = true
		t.Cleanup(func() { seedYes = false })

		require.NoError(t, runSeed(nil, nil))
	})

	t.Run("unauthorized points at login", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		seedYes = true
		t.Cleanup(func() { seedYes = false })

		err := runSeed(nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "token")
	})
}

func TestRunPredictions(t *testing.T) {
	t.Run("reports generated groups", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/generate-predictions", r.URL.Path)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"groups":7}`))
		})
		require.NoError(t, runPredictions(nil, nil))
	})

	t.Run("missing source is an error", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		assert.Error(t, runPredictions(nil, nil))
	})
}
