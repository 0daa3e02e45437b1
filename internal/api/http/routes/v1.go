package routes

import (
	"github.com/gin-gonic/gin"

	authhttp "github.com/vinnesia/domainform-backend/internal/auth/http"
	authmw "github.com/vinnesia/domainform-backend/internal/auth/middleware"
	subhttp "github.com/vinnesia/domainform-backend/internal/submissions/http"
)

type V1Deps struct {
	Verifier    authmw.TokenVerifier
	Submissions *subhttp.Handler
	Auth        *authhttp.Handler
}

// RegisterV1 mounts /api/v1. Everything except field validation needs a
// Firebase ID token.
func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")
	dep.Submissions.RegisterPublic(api)

	protected := api.Group("")
	protected.Use(authmw.FirebaseAuthMiddleware(dep.Verifier))

	dep.Submissions.Register(protected)
	dep.Auth.Register(protected.Group("/auth"))
}
