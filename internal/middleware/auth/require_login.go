package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ivgrimm/shop_backend/internal/session"
)

const UserIDKey = "userID"

// RequireLogin resolves the session cookie and puts the authenticated user id
// on the echo context. Anonymous requests get a 401.
func RequireLogin(sessions *session.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required"})
			}

			userID, err := sessions.Resolve(cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required"})
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

// UserID reads the id RequireLogin stored on the context.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(UserIDKey).(uint)
	return id, ok
}
