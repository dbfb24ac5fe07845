package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	w := serve(New("test", "memory"), "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Run("no checks is ready", func(t *testing.T) {
		w := serve(New("test", "memory"), "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("failing check is not ready", func(t *testing.T) {
		h := New("test", "postgres")
		h.RegisterCheck("database", func(context.Context) error { return errors.New("connection refused") })
		h.RegisterCheck("audit", func(context.Context) error { return nil })

		w := serve(h, "/health/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var body ReadinessResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "not_ready", body.Status)
		assert.Equal(t, "down: connection refused", body.Checks["database"])
		assert.Equal(t, "up", body.Checks["audit"])
	})

	t.Run("checks receive a deadline", func(t *testing.T) {
		h := New("test", "postgres")
		h.RegisterCheck("database", func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("no deadline")
			}
			return nil
		})
		assert.Equal(t, http.StatusOK, serve(h, "/health/ready").Code)
	})
}

func TestStatus(t *testing.T) {
	w := serve(New("staging", "postgres"), "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	var body StatusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "staging", body.Environment)
	assert.Equal(t, "postgres", body.Storage)
}
