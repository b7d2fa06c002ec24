package session

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ivgrimm/shop_backend/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.Session{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newService(t *testing.T, ttl time.Duration) *Service {
	return &Service{
		DB:     initTestDB(t),
		Secret: []byte("test_secret"),
		TTL:    ttl,
	}
}

func TestIssueAndResolve(t *testing.T) {
	svc := newService(t, time.Hour)

	token, exp, err := svc.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, exp.After(time.Now()))

	userID, err := svc.Resolve(token)
	require.NoError(t, err)
	require.Equal(t, uint(42), userID)
}

func TestResolveRevoked(t *testing.T) {
	svc := newService(t, time.Hour)

	token, _, err := svc.Issue(7)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(token))

	_, err = svc.Resolve(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestResolveTampered(t *testing.T) {
	svc := newService(t, time.Hour)

	token, _, err := svc.Issue(7)
	require.NoError(t, err)

	_, err = svc.Resolve(token + "x")
	require.ErrorIs(t, err, ErrInvalidSession)

	_, err = svc.Resolve("not-a-token")
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestResolveWrongSecret(t *testing.T) {
	svc := newService(t, time.Hour)

	token, _, err := svc.Issue(7)
	require.NoError(t, err)

	other := &Service{DB: svc.DB, Secret: []byte("other_secret"), TTL: time.Hour}
	_, err = other.Resolve(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestResolveExpired(t *testing.T) {
	svc := newService(t, -time.Hour)

	token, _, err := svc.Issue(7)
	require.NoError(t, err)

	_, err = svc.Resolve(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestRevokeGarbageIsNoop(t *testing.T) {
	svc := newService(t, time.Hour)
	require.NoError(t, svc.Revoke("garbage"))
}
