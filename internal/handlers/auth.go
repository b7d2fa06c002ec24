package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ivgrimm/shop_backend/internal/events"
	"github.com/ivgrimm/shop_backend/internal/hash"
	mwauth "github.com/ivgrimm/shop_backend/internal/middleware/auth"
	"github.com/ivgrimm/shop_backend/internal/models"
	"github.com/ivgrimm/shop_backend/internal/session"
)

type AuthHandler struct {
	DB       *gorm.DB
	Sessions *session.Service
	Producer *events.Producer
}

func CreateCookie(name string, value string, path string, expTime time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicUserEvents, fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if req.Username == nil || req.Password == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing username or password"})
	}

	var existing models.User
	err := h.DB.Where("username = ?", *req.Username).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"message": "Username already taken"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return internalError(c)
	}

	passwordHash, err := hash.HashPassword(*req.Password)
	if err != nil {
		return internalError(c)
	}

	user := models.User{
		Username:     *req.Username,
		PasswordHash: passwordHash,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return internalError(c)
	}

	h.publish(c, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "User created successfully"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	// Wrong username and wrong password are deliberately indistinguishable.
	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized. Invalid credentials"})
		}
		return internalError(c)
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized. Invalid credentials"})
	}

	token, exp, err := h.Sessions.Issue(user.ID)
	if err != nil {
		return internalError(c)
	}
	c.SetCookie(CreateCookie(session.CookieName, token, "/", exp))

	h.publish(c, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Login successful"})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(session.CookieName)
	if err == nil {
		if err := h.Sessions.Revoke(cookie.Value); err != nil {
			return internalError(c)
		}
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(CreateCookie(session.CookieName, "", "/", expired))

	if userID, ok := mwauth.UserID(c); ok {
		h.publish(c, map[string]any{
			"type":   "user_logged_out",
			"userID": userID,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successful"})
}
