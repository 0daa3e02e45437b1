package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vinnesia/domainform-backend/internal/logging"
)

// Path is where the relay endpoint is mounted.
const Path = "/api/send"

// Sender forwards a normalized record upstream.
type Sender interface {
	Configured() bool
	Presence() (hasURL, hasKey bool)
	Forward(ctx context.Context, rec Record) (any, error)
}

// SuccessData is the data block of a successful relay response.
type SuccessData struct {
	SubmittedAt   string `json:"submitted_at"`
	AdminResponse any    `json:"admin_response"`
}

// Response is the single envelope every relay answer uses.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    *SuccessData `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Details string       `json:"details,omitempty"`
}

type Handler struct {
	sender     Sender
	production bool
	now        func() time.Time
}

// NewHandler creates the relay handler. When production is true upstream
// bodies and error strings are never attached to responses.
func NewHandler(sender Sender, production bool) *Handler {
	return &Handler{
		sender:     sender,
		production: production,
		now:        time.Now,
	}
}

func (h *Handler) Register(r gin.IRouter) {
	r.Any(Path, h.Send)
}

// Send validates, normalizes and forwards one submission.
func (h *Handler) Send(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusOK)
		return
	}
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, Response{Error: MsgMethodNotAllowed})
		return
	}

	ctx := c.Request.Context()
	logger := logging.New(ctx)

	if hasURL, hasKey := h.sender.Presence(); !hasURL || !hasKey {
		logger.LogError("relay.config", ErrNotConfigured, "has_admin_api_url", hasURL, "has_admin_api_key", hasKey)
		c.JSON(http.StatusInternalServerError, Response{Error: MsgConfigError})
		return
	}

	var in Input
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, Response{Error: MsgInvalidBody})
		return
	}

	if err := Validate(in); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}

	rec := Normalize(in, h.now())
	logger.LogInfo("relay.receive", "processing domain application",
		"name", rec.Name,
		"email", rec.Email,
		"purpose", rec.Purpose,
		"timestamp", rec.SubmittedAt,
	)

	ack, err := h.sender.Forward(ctx, rec)
	if err != nil {
		h.fail(c, logger, err)
		return
	}

	logger.LogInfo("relay.forward", "successfully submitted to admin panel",
		"name", rec.Name,
		"email", rec.Email,
	)

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: MsgSuccess,
		Data: &SuccessData{
			SubmittedAt:   rec.SubmittedAt,
			AdminResponse: ack,
		},
	})
}

func (h *Handler) fail(c *gin.Context, logger *logging.Logger, err error) {
	status, msg := Classify(err)
	resp := Response{Error: msg}

	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		logger.LogWarn("relay.forward", "admin api error",
			"status", upErr.StatusCode,
			"status_text", upErr.StatusText,
			"response", truncate(upErr.Body, 512),
		)
		if !h.production {
			resp.Details = upErr.Body
		}
	} else {
		logger.LogError("relay.forward", err, "mapped_status", status)
		if !h.production {
			resp.Details = err.Error()
		}
	}

	c.JSON(status, resp)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
