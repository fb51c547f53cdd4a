package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gannewala/juice-shop/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.RefreshToken{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newTokenService(db *gorm.DB) *TokenService {
	return &TokenService{
		DB:            db,
		JWTSecret:     []byte("test_jwt_secret"),
		RefreshSecret: []byte("test_refresh_secret"),
	}
}

func requestWithAccess(t *testing.T, ts *TokenService, role string) echo.Context {
	token, err := SignAccessToken(1, role, ts.JWTSecret)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestRoleMiddlewareAdmits(t *testing.T) {
	ts := newTokenService(initTestDB(t))

	called := false
	next := func(c echo.Context) error {
		called = true
		return nil
	}

	c := requestWithAccess(t, ts, models.RoleSeller)
	require.NoError(t, ts.RoleMiddleware(models.RoleSeller)(next)(c))
	require.True(t, called)
	require.Equal(t, models.RoleSeller, c.Get("role"))
	require.Equal(t, uint(1), c.Get("userID"))
}

func TestRoleMiddlewareRejectsWrongRole(t *testing.T) {
	ts := newTokenService(initTestDB(t))

	next := func(c echo.Context) error { return nil }

	c := requestWithAccess(t, ts, models.RoleSeller)
	err := ts.RoleMiddleware(models.RoleAdmin)(next)(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusForbidden, he.Code)
}

func TestAuthMiddlewareRejectsAnonymous(t *testing.T) {
	ts := newTokenService(initTestDB(t))

	next := func(c echo.Context) error { return nil }

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := ts.AuthMiddleware(next)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRotateToken(t *testing.T) {
	db := initTestDB(t)
	ts := newTokenService(db)

	refresh, err := SignRefreshToken(7, models.RoleAdmin, ts.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(db, refresh, 7, models.RoleAdmin))

	newAccess, newRefresh, err := ts.RotateToken(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, newAccess)
	require.NotEmpty(t, newRefresh)
	require.NotEqual(t, refresh, newRefresh)

	var stored models.RefreshToken
	require.NoError(t, db.Where("token = ?", newRefresh).First(&stored).Error)
	require.Equal(t, uint(7), stored.UserID)
	require.False(t, stored.Revoked)
}

func TestRotateTokenRevoked(t *testing.T) {
	db := initTestDB(t)
	ts := newTokenService(db)

	refresh, err := SignRefreshToken(7, models.RoleAdmin, ts.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.RefreshToken{
		Token:     refresh,
		UserID:    7,
		Role:      models.RoleAdmin,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
		Revoked:   true,
	}).Error)

	_, _, err = ts.RotateToken(refresh)
	require.Error(t, err)
}
