package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// =====================
// レスポンス確認用（any禁止）
// =====================

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

func testConfig() config.Config {
	return config.Config{JWTSecret: "test_secret"}
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func validClaims(userID int64, role string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	}
}

// contextに詰まったuser_id/roleをそのまま返すダミーハンドラ
func echoBackHandler(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserIDKey).(int64)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	return c.JSON(http.StatusOK, mwOKResponse{UserID: userID, Role: role})
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authz string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(echoBackHandler)(c)
	assert.NoError(t, err)
	return rec
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	rec := doRequest(t, middleware.AuthJWT(testConfig()), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	rec := doRequest(t, middleware.AuthJWT(testConfig()), "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_BadSignature(t *testing.T) {
	token := signToken(t, "other_secret", validClaims(7, "USER"))

	rec := doRequest(t, middleware.AuthJWT(testConfig()), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body mwErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body.Error)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	claims := validClaims(7, "USER")
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, "test_secret", claims)

	rec := doRequest(t, middleware.AuthJWT(testConfig()), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ValidToken_SetsContext(t *testing.T) {
	token := signToken(t, "test_secret", validClaims(7, "USER"))

	rec := doRequest(t, middleware.AuthJWT(testConfig()), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.UserID)
	assert.Equal(t, "USER", body.Role)
}

func TestAdminRoleGuard_UserRole_Forbidden(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserRoleKey, "USER")

	err := middleware.AdminRoleGuard()(echoBackHandler)(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoleGuard_NoRole_Unauthorized(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := middleware.AdminRoleGuard()(echoBackHandler)(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoleGuard_Admin_Passes(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserIDKey, int64(1))
	c.Set(middleware.CtxUserRoleKey, "ADMIN")

	err := middleware.AdminRoleGuard()(echoBackHandler)(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
