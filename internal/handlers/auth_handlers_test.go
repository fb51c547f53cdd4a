package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gannewala/juice-shop/internal/hash"
	"github.com/gannewala/juice-shop/internal/models"
	"github.com/gannewala/juice-shop/internal/mykafka"
)

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.Order{}, &models.User{}, &models.RefreshToken{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{
		DB:            db,
		JWTSecret:     []byte("test_jwt_secret"),
		RefreshSecret: []byte("test_refresh_secret"),
		Producer:      &mykafka.Producer{},
	}
}

func seedUser(t *testing.T, db *gorm.DB, username, password, role string) models.User {
	passwordHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := models.User{Username: username, PasswordHash: passwordHash, Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func loginRequest(t *testing.T, handler *AuthHandler, body map[string]string) (*httptest.ResponseRecorder, error) {
	bodyBytes, err := json.Marshal(body)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(bodyBytes))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	return rec, handler.Login(c)
}

func TestLogin(t *testing.T) {
	db := InitTestDB(t)
	handler := newAuthHandler(db)
	seedUser(t, db, "seller", "seller123", models.RoleSeller)

	rec, err := loginRequest(t, handler, map[string]string{
		"username": "seller",
		"password": "seller123",
		"role":     "seller",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "seller", resp["role"])
	require.Equal(t, "/seller/dashboard", resp["redirect"])

	cookies := rec.Result().Cookies()
	names := make(map[string]bool)
	for _, cookie := range cookies {
		names[cookie.Name] = true
	}
	require.True(t, names["accessToken"])
	require.True(t, names["refreshToken"])
}

func TestLoginWrongRole(t *testing.T) {
	db := InitTestDB(t)
	handler := newAuthHandler(db)
	seedUser(t, db, "seller", "seller123", models.RoleSeller)

	// correct password, wrong claimed role
	_, err := loginRequest(t, handler, map[string]string{
		"username": "seller",
		"password": "seller123",
		"role":     "admin",
	})

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	db := InitTestDB(t)
	handler := newAuthHandler(db)
	seedUser(t, db, "admin", "admin123", models.RoleAdmin)

	_, err := loginRequest(t, handler, map[string]string{
		"username": "admin",
		"password": "not-the-password",
		"role":     "admin",
	})

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLogout(t *testing.T) {
	db := InitTestDB(t)
	handler := newAuthHandler(db)
	user := seedUser(t, db, "seller", "seller123", models.RoleSeller)

	refresh := models.RefreshToken{Token: "refresh-token-value", UserID: user.ID, Role: user.Role, ExpiresAt: 1<<62 - 1}
	require.NoError(t, db.Create(&refresh).Error)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "refresh-token-value"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.Logout(c))
	require.Equal(t, http.StatusFound, rec.Code)

	var stored models.RefreshToken
	require.NoError(t, db.Where("token = ?", "refresh-token-value").First(&stored).Error)
	require.True(t, stored.Revoked)
}
