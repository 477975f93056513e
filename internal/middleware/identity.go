package middleware

import "github.com/labstack/echo/v4"

// Context keys set by JWTAuth.
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// CurrentUserID returns the authenticated user id stored by JWTAuth.
func CurrentUserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(UserIDKey).(uint64)
	return id, ok && id != 0
}

// CurrentRole returns the role stored by JWTAuth, or "".
func CurrentRole(c echo.Context) string {
	r, _ := c.Get(RoleKey).(string)
	return r
}
