package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ivgrimm/shop_backend/internal/models"
)

const CookieName = "session"

// ErrInvalidSession covers every way a session can fail to resolve: bad
// signature, unknown id, revoked or expired row. Callers get no finer
// distinction.
var ErrInvalidSession = errors.New("invalid session")

// Service issues and resolves server-held sessions. The cookie value is an
// HS256-signed token carrying the user id and an opaque session id; the
// session itself lives in the sessions table, so a revoked row invalidates
// the cookie no matter how well it is signed.
type Service struct {
	DB     *gorm.DB
	Secret []byte
	TTL    time.Duration
}

func (s *Service) Issue(userID uint) (string, time.Time, error) {
	sid := uuid.NewString()
	exp := time.Now().Add(s.TTL)

	claims := jwt.MapClaims{
		"sub": userID,
		"jti": sid,
		"exp": exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	record := models.Session{
		Token:     sid,
		UserID:    userID,
		ExpiresAt: exp.Unix(),
		Revoked:   false,
	}
	if err := s.DB.Create(&record).Error; err != nil {
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}

	return token, exp, nil
}

// Resolve returns the user id behind a session cookie value.
func (s *Service) Resolve(raw string) (uint, error) {
	sid, userID, err := s.parse(raw)
	if err != nil {
		return 0, err
	}

	var stored models.Session
	if err := s.DB.Where("token = ?", sid).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrInvalidSession
		}
		return 0, fmt.Errorf("load session: %w", err)
	}

	if stored.Revoked || time.Now().Unix() > stored.ExpiresAt || stored.UserID != userID {
		return 0, ErrInvalidSession
	}

	return stored.UserID, nil
}

// Revoke marks the session row revoked. Unparseable tokens are ignored, a
// logout with a garbage cookie has nothing to revoke.
func (s *Service) Revoke(raw string) error {
	sid, _, err := s.parse(raw)
	if err != nil {
		return nil
	}

	if err := s.DB.Model(&models.Session{}).Where("token = ?", sid).Update("revoked", true).Error; err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Service) parse(raw string) (string, uint, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !token.Valid {
		return "", 0, ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", 0, ErrInvalidSession
	}
	sid, ok := claims["jti"].(string)
	if !ok {
		return "", 0, ErrInvalidSession
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return "", 0, ErrInvalidSession
	}

	return sid, uint(sub), nil
}
