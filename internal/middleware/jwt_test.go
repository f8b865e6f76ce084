package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/degreepath/scheduler/internal/models"
	"github.com/degreepath/scheduler/internal/service"
)

func signedToken(t *testing.T, secret string, claims *models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: "secret"})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	JWT(svc)(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, c.IsAborted())
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: "secret"})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Token abc")

	JWT(svc)(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAcceptsValidBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: "secret", Issuer: "idp", Audience: "scheduler"})
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleStudent, RegisteredClaims: jwt.RegisteredClaims{
		Issuer: "idp", Audience: jwt.ClaimStrings{"scheduler"}, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	signed := signedToken(t, "secret", claims)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer "+signed)

	JWT(svc)(c)

	assert.False(t, c.IsAborted())
	stored, exists := c.Get(ContextUserKey)
	require.True(t, exists)
	assert.Equal(t, "u1", stored.(*models.JWTClaims).UserID)
}

func TestOptionalJWTContinuesWithoutHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: "secret"})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	OptionalJWT(svc)(c)

	assert.False(t, c.IsAborted())
	_, exists := c.Get(ContextUserKey)
	assert.False(t, exists)
}
