package http

import "github.com/gin-gonic/gin"

// Register mounts the applicant routes. rg must already enforce Firebase auth.
func (h *Handler) Register(rg *gin.RouterGroup) {
	subs := rg.Group("/submissions")
	subs.POST("", h.CreateSubmission)
	subs.GET("", h.ListSubmissions)

	dash := rg.Group("/dashboard")
	dash.GET("", h.GetDashboard)
	dash.GET("/stream", h.StreamDashboard)
}

// RegisterPublic mounts routes that need no sign-in.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.POST("/submissions/validate", h.ValidateField)
}
