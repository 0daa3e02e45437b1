package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/vinnesia/domainform-backend/internal/relay"
)

// Pinger is satisfied by *pgxpool.Pool and *sql.DB wrappers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Service   string       `json:"service"`
	Version   string       `json:"version"`
	DB        string       `json:"db,omitempty"`
	Redis     string       `json:"redis,omitempty"`
	Relay     *RelayHealth `json:"relay,omitempty"`
}

type RelayHealth struct {
	Configured bool        `json:"configured"`
	Stats      relay.Stats `json:"stats"`
	ErrorRate  float64     `json:"error_rate"`
}

type HealthDeps struct {
	DB    Pinger
	Redis *redis.Client
	Relay *relay.Forwarder
}

type HealthHandler struct {
	serviceName string
	version     string
	deps        HealthDeps
}

func NewHealthHandler(serviceName, version string, deps HealthDeps) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		deps:        deps,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	dbStatus := "disabled"
	if h.deps.DB != nil {
		dbStatus = probe(ctx, h.deps.DB.Ping)
	}

	redisStatus := "disabled"
	if h.deps.Redis != nil {
		redisStatus = probe(ctx, func(ctx context.Context) error {
			return h.deps.Redis.Ping(ctx).Err()
		})
	}

	status := "healthy"
	if dbStatus == "down" || redisStatus == "down" {
		status = "degraded"
	}

	resp := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        dbStatus,
		Redis:     redisStatus,
	}
	if h.deps.Relay != nil {
		stats := h.deps.Relay.Metrics().Snapshot()
		resp.Relay = &RelayHealth{
			Configured: h.deps.Relay.Configured(),
			Stats:      stats,
			ErrorRate:  stats.ErrorRate(),
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}

func probe(ctx context.Context, ping func(context.Context) error) string {
	pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := ping(pingCtx); err != nil {
		return "down"
	}
	return "up"
}
