package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deephumans/deephumans/internal/model"
	"github.com/deephumans/deephumans/internal/pkg/errcode"
	"github.com/deephumans/deephumans/internal/pkg/jwt"
	"github.com/deephumans/deephumans/internal/pkg/response"
)

const (
	ContextUserIDKey    = "user_id"
	ContextUserEmailKey = "user_email"
)

// UserLookup fetches the token subject; the stamp claim is checked against
// its current security stamp so a password reset kills outstanding tokens.
type UserLookup interface {
	GetByID(ctx context.Context, userID string) (*model.User, error)
}

func JWTAuth(secret []byte, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, errcode.ErrUnauthorized, "missing authorization")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, errcode.ErrUnauthorized, "invalid authorization")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(parts[1], secret)
		if err != nil {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || user.SecurityStamp != claims.Stamp {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		if claims.Email != "" {
			c.Set(ContextUserEmailKey, claims.Email)
		}
		c.Next()
	}
}
