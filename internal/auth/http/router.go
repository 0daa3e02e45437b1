package http

import "github.com/gin-gonic/gin"

// Register mounts the session routes. rg must already enforce Firebase auth.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/session", h.GetSession)
	rg.POST("/logout", h.Logout)
}
