package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authctx "github.com/alightgram/alightgram-backend/internal/auth"
	"github.com/alightgram/alightgram-backend/internal/logging"
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
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			return
		}

		if !setUser(c, verifier, token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			return
		}
		c.Next()
	}
}

// OptionalFirebaseAuth sets user info when a valid token is present and lets the request
// through either way.
func OptionalFirebaseAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			setUser(c, verifier, token)
		}
		c.Next()
	}
}

func setUser(c *gin.Context, verifier TokenVerifier, token string) bool {
	decoded, err := verifier.VerifyIDToken(c.Request.Context(), token)
	if err != nil {
		logging.FromContext(c.Request.Context()).Debug("id token rejected", zap.Error(err))
		return false
	}

	c.Set(authctx.CtxFirebaseUID, decoded.UID)
	if email, ok := decoded.Claims["email"].(string); ok {
		c.Set(authctx.CtxEmail, email)
	}
	c.Set(authctx.CtxFirebaseToken, decoded)
	return true
}

// extractToken reads a Bearer token from the Authorization header, or the access_token query
// parameter for clients that cannot set headers (EventSource, WebSocket).
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return c.Query("access_token")
}
