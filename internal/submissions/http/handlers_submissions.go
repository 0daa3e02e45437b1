package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vinnesia/domainform-backend/internal/auth"
	"github.com/vinnesia/domainform-backend/internal/logging"
	"github.com/vinnesia/domainform-backend/internal/submissions/domain"
)

// CreateSubmission stores the form for the signed-in applicant and relays it.
func (h *Handler) CreateSubmission(c *gin.Context) {
	logger := logging.New(c.Request.Context())
	id := auth.CurrentIdentity(c)
	if id.UID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": MsgLoginRequired})
		return
	}

	var in domain.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": MsgInvalidBody})
		return
	}

	res, err := h.submissions.Submit(c.Request.Context(), id, in)
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": MsgLoginRequired})
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": vErr.Message, "field": vErr.Field})
		default:
			logger.LogError("submissions.create", err)
			msg := MsgSubmitFailed + ": " + err.Error()
			if h.production {
				msg = MsgSubmitFailed + ". Please try again."
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": msg})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  MsgSubmitted,
		"data":     res,
		"redirect": DashboardRedirect,
	})
}

// ListSubmissions returns the applicant's raw rows, newest first.
func (h *Handler) ListSubmissions(c *gin.Context) {
	id := auth.CurrentIdentity(c)
	subs, err := h.submissions.List(c.Request.Context(), id, h.matchEmail)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": MsgLoginRequired})
			return
		}
		logging.New(c.Request.Context()).LogError("submissions.list", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": MsgLoadFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": subs})
}

type validateFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// ValidateField gives inline feedback for one form field. The purpose field
// also returns the offered purposes.
func (h *Handler) ValidateField(c *gin.Context) {
	var req validateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": MsgInvalidBody})
		return
	}

	resp := gin.H{"valid": true}
	if req.Field == "purpose" {
		resp["options"] = domain.Purposes
	}

	if err := h.submissions.ValidateField(req.Field, req.Value); err != nil {
		resp["valid"] = false
		resp["message"] = err.Error()
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			resp["message"] = vErr.Message
		}
	}
	c.JSON(http.StatusOK, resp)
}
