package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinnesia/domainform-backend/config"
	"github.com/vinnesia/domainform-backend/internal/relay"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serveHealth(t *testing.T, h *HealthHandler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true
	h.RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestHealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	fwd := relay.NewForwarder(config.RelayConfig{AdminAPIURL: "http://admin", AdminAPIKey: "k"})
	h := NewHealthHandler("domainform", "1.0.0", HealthDeps{
		DB:    pingFunc(func(context.Context) error { return nil }),
		Redis: client,
		Relay: fwd,
	})

	for _, path := range []string{"/health", "/healthz"} {
		rr := serveHealth(t, h, http.MethodGet, path)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "domainform", resp.Service)
		assert.Equal(t, "1.0.0", resp.Version)
		assert.Equal(t, "up", resp.DB)
		assert.Equal(t, "up", resp.Redis)
		require.NotNil(t, resp.Relay)
		assert.True(t, resp.Relay.Configured)
		assert.Zero(t, resp.Relay.Stats.Forwards)
	}
}

func TestHealthCheck_Degraded(t *testing.T) {
	h := NewHealthHandler("domainform", "1.0.0", HealthDeps{
		DB: pingFunc(func(context.Context) error { return errors.New("refused") }),
	})

	rr := serveHealth(t, h, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "down", resp.DB)
	assert.Equal(t, "disabled", resp.Redis)
	assert.Nil(t, resp.Relay)
}

func TestHealthCheckMethodNotAllowed(t *testing.T) {
	h := NewHealthHandler("domainform", "1.0.0", HealthDeps{})
	rr := serveHealth(t, h, http.MethodPost, "/health")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
