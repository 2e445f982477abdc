package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"compliancehub/internal/compliance"
)

const sessionKey = "session"

// SessionCookie is the cookie the browser carries the session token in.
const SessionCookie = "compliancehub_session"

// RequireRole gates a route group. Unauthenticated requests are redirected
// to the login page; an authenticated user with the wrong role is redirected
// to their own dashboard. With no roles listed, any authenticated user
// passes.
func RequireRole(manager *Manager, roles ...compliance.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		session, err := manager.Verify(token)
		if err != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		if len(roles) > 0 && !hasRole(session.Role, roles) {
			c.Redirect(http.StatusFound, RoleHome(session.Role))
			c.Abort()
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// SessionFrom returns the session the middleware attached, or nil on
// ungated routes.
func SessionFrom(c *gin.Context) *Session {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := value.(*Session)
	return session
}

func tokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func hasRole(role compliance.Role, allowed []compliance.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
