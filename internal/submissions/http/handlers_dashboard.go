package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vinnesia/domainform-backend/internal/auth"
	"github.com/vinnesia/domainform-backend/internal/auth/session"
	"github.com/vinnesia/domainform-backend/internal/logging"
	"github.com/vinnesia/domainform-backend/internal/submissions/domain"
)

// GetDashboard returns the applicant's dashboard view.
func (h *Handler) GetDashboard(c *gin.Context) {
	id := auth.CurrentIdentity(c)
	view, err := h.dashboard.Load(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": MsgLoginRequired})
			return
		}
		logging.New(c.Request.Context()).LogError("dashboard.load", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": MsgLoadFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}

// StreamDashboard pushes the dashboard over Server-Sent Events: an initial
// view, a full replacement on every refresh tick, and signed_out when the
// applicant logs out elsewhere.
func (h *Handler) StreamDashboard(c *gin.Context) {
	logger := logging.New(c.Request.Context())
	id := auth.CurrentIdentity(c)
	if id.UID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": MsgLoginRequired})
		return
	}

	ctx := c.Request.Context()

	view, err := h.dashboard.Load(ctx, id)
	if err != nil {
		logger.LogError("dashboard.stream", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": MsgLoadFailed})
		return
	}

	events, unsubscribe, err := h.broker.Subscribe(ctx, id.UID)
	if err != nil {
		logger.LogError("dashboard.stream", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to subscribe to session events"})
		return
	}
	defer unsubscribe()

	ticks, stopTicks, err := h.ticker.Subscribe()
	if err != nil {
		logger.LogError("dashboard.stream", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to schedule refresh"})
		return
	}
	defer stopTicks()

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	writeEvent(c, flusher, "initial", view)

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return

		case <-keepAlive.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type == session.SignedOut {
				writeEvent(c, flusher, "signed_out", gin.H{"uid": ev.UID, "redirect": "/"})
				logger.LogInfof("dashboard.stream", "closing stream for %s after sign-out", id.UID)
				return
			}

		case <-ticks:
			updated, err := h.dashboard.Load(ctx, id)
			if err != nil {
				logger.LogWarn("dashboard.stream", "refresh failed", "error", err.Error())
				continue
			}
			writeEvent(c, flusher, "update", updated)
		}
	}
}

func writeEvent(c *gin.Context, flusher http.Flusher, event string, payload any) {
	data, _ := json.Marshal(payload)
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(data))
	flusher.Flush()
}
