package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub":   "ops-1",
		"email": "ops@thewell.solutions",
		"role":  "admin",
		"exp":   expiresAt.Unix(),
		"iat":   time.Now().Unix(),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func runMiddleware(config JWTConfig, path, authorization string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if next == nil {
		next = func(c echo.Context) error {
			return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
		}
	}
	_ = JWTMiddleware(config)(next)(c)
	return rec
}

func TestJWTMiddleware_SuccessfulAuthentication(t *testing.T) {
	config := JWTConfig{Secret: testSecret, Logger: zap.NewNop()}
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), time.Now().Add(time.Hour))

	rec := runMiddleware(config, "/api/internal/webhook-events", "Bearer "+token, func(c echo.Context) error {
		operator, err := GetOperatorFromContext(c)
		require.NoError(t, err)
		assert.Equal(t, "ops-1", operator.Subject)
		assert.Equal(t, "ops@thewell.solutions", operator.Email)
		assert.Equal(t, "admin", operator.Role)
		return c.NoContent(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTMiddleware_Rejections(t *testing.T) {
	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), time.Now().Add(time.Hour))

	tests := []struct {
		name          string
		secret        string
		authorization string
		wantCode      string
	}{
		{
			name:     "missing header",
			secret:   testSecret,
			wantCode: "MISSING_AUTH_HEADER",
		},
		{
			name:          "not a bearer token",
			secret:        testSecret,
			authorization: "Token " + valid,
			wantCode:      "INVALID_AUTH_FORMAT",
		},
		{
			name:          "wrong secret",
			secret:        "other-secret",
			authorization: "Bearer " + valid,
			wantCode:      "INVALID_TOKEN",
		},
		{
			name:          "expired token",
			secret:        testSecret,
			authorization: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), time.Now().Add(-time.Hour)),
			wantCode:      "INVALID_TOKEN",
		},
		{
			name:          "HS512 is not accepted",
			secret:        testSecret,
			authorization: "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), time.Now().Add(time.Hour)),
			wantCode:      "INVALID_TOKEN",
		},
		{
			name:          "no secret configured",
			authorization: "Bearer " + valid,
			wantCode:      "AUTH_NOT_CONFIGURED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := JWTConfig{Secret: tt.secret, Logger: zap.NewNop()}
			rec := runMiddleware(config, "/api/internal/webhook-events", tt.authorization, nil)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}

func TestJWTMiddleware_SkipPaths(t *testing.T) {
	config := JWTConfig{
		Secret:    testSecret,
		Logger:    zap.NewNop(),
		SkipPaths: []string{"/health"},
	}

	rec := runMiddleware(config, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOperatorFromContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := GetOperatorFromContext(c)
	assert.Error(t, err)

	ctx := context.WithValue(c.Request().Context(), operatorContextKey, &Operator{Subject: "ops-1"})
	c.SetRequest(c.Request().WithContext(ctx))

	operator, err := GetOperatorFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "ops-1", operator.Subject)
}
