package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vinnesia/domainform-backend/internal/submissions/domain"
)

// Gin context keys set by the Firebase middleware.
const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxName        = "name"
	CtxPicture     = "picture"
	CtxProvider    = "sign_in_provider"
)

// UserFirebaseUID extracts the Firebase UID from the Gin context
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// CurrentIdentity returns the signed-in applicant, or a zero Identity.
func CurrentIdentity(c *gin.Context) domain.Identity {
	return domain.Identity{
		UID:   UserFirebaseUID(c),
		Email: strings.TrimSpace(c.GetString(CtxEmail)),
	}
}
