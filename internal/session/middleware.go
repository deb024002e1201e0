package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CookieName = "dh_session"
	contextKey = "dh_session"
)

// Middleware attaches the caller's server-side session to the gin context,
// issuing the session cookie on first contact.
func Middleware(store *Store, cookieMaxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CookieName, id, cookieMaxAge, "/", "", false, true)
		}
		c.Set(contextKey, store.Fetch(id))
		c.Next()
	}
}

func FromContext(c *gin.Context) *Session {
	value, _ := c.Get(contextKey)
	sess, _ := value.(*Session)
	return sess
}
