package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vinnesia/domainform-backend/internal/auth"
	"github.com/vinnesia/domainform-backend/internal/auth/domain"
	"github.com/vinnesia/domainform-backend/internal/auth/session"
	"github.com/vinnesia/domainform-backend/internal/logging"
)

// GetSession returns the current identity and syncs the applicant profile.
func (h *Handler) GetSession(c *gin.Context) {
	logger := logging.New(c.Request.Context())
	id := auth.CurrentIdentity(c)
	if id.UID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Please login first"})
		return
	}

	applicant, err := h.applicants.Sync(c.Request.Context(), domain.SyncApplicantRequest{
		FirebaseUID: id.UID,
		Email:       id.Email,
		DisplayName: optional(c.GetString(auth.CtxName)),
		PhotoURL:    optional(c.GetString(auth.CtxPicture)),
		Provider:    optional(c.GetString(auth.CtxProvider)),
	})
	if err != nil {
		logger.LogError("auth.session", err, "user_id", id.UID)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to sync applicant"})
		return
	}

	if err := h.broker.Publish(c.Request.Context(), session.Event{
		Type:    session.SignedIn,
		UID:     id.UID,
		Session: &session.Session{UID: id.UID, Email: id.Email},
	}); err != nil {
		logger.LogWarn("auth.session", "failed to publish sign-in", "error", err.Error())
	}

	c.JSON(http.StatusOK, SessionResponse{
		Authenticated: true,
		UID:           id.UID,
		Email:         id.Email,
		Applicant:     applicant,
	})
}

// Logout revokes the user's refresh tokens and notifies open dashboards.
func (h *Handler) Logout(c *gin.Context) {
	logger := logging.New(c.Request.Context())
	uid := auth.UserFirebaseUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Please login first"})
		return
	}

	if err := h.revoker.RevokeRefreshTokens(c.Request.Context(), uid); err != nil {
		logger.LogError("auth.logout", err, "user_id", uid)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Logout failed. Please try again."})
		return
	}

	if err := h.broker.Publish(c.Request.Context(), session.Event{Type: session.SignedOut, UID: uid}); err != nil {
		logger.LogWarn("auth.logout", "failed to publish sign-out", "error", err.Error())
	}

	logger.LogInfof("auth.logout", "user %s signed out", uid)
	c.JSON(http.StatusOK, gin.H{"success": true, "redirect": "/"})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
