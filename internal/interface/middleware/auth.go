package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/response"
)

const CtxUserIDKey = "userID"

// SessionLookup returns the cached session hash for a user; empty means no session.
type SessionLookup interface {
	Lookup(ctx context.Context, userID string) (map[string]string, error)
}

// Auth resolves the request subject from an access token and stores it under
// CtxUserIDKey. The token is read from "Authorization: Bearer" first, then the
// access_token cookie. When sessions is non-nil the subject must also have an
// active session whose sid matches the token.
func Auth(jwt *helpers.JWTManager, sessions SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token")
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token")
			return
		}

		if sessions != nil {
			data, err := sessions.Lookup(c.Request.Context(), claims.UserID)
			if err != nil || len(data) == 0 {
				response.Abort(c, http.StatusUnauthorized, "session not found")
				return
			}
			if sid := data["sid"]; sid != "" && sid != claims.SessionID {
				response.Abort(c, http.StatusUnauthorized, "session not found")
				return
			}
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	if tok, err := c.Cookie("access_token"); err == nil {
		return tok
	}
	return ""
}
