package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	authctx "github.com/vinnesia/domainform-backend/internal/auth"
	"github.com/vinnesia/domainform-backend/internal/logging"
)

// TokenVerifier checks Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and extracts user info
func FirebaseAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Please login first"})
			return
		}

		decoded, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			logging.New(c.Request.Context()).LogWarn("auth.verify", "invalid id token", "error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Session expired. Please login again"})
			return
		}

		c.Set(authctx.CtxFirebaseUID, decoded.UID)
		for key, claim := range map[string]string{
			authctx.CtxEmail:   "email",
			authctx.CtxName:    "name",
			authctx.CtxPicture: "picture",
		} {
			if v, ok := decoded.Claims[claim].(string); ok {
				c.Set(key, v)
			}
		}
		c.Set(authctx.CtxProvider, decoded.Firebase.SignInProvider)

		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
