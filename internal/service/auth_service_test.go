package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/degreepath/scheduler/internal/models"
	appErrors "github.com/degreepath/scheduler/pkg/errors"
)

func signToken(t *testing.T, secret string, claims *models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateTokenAcceptsWellFormedToken(t *testing.T) {
	svc := NewAuthService(AuthConfig{AccessTokenSecret: "secret", Issuer: "idp", Audience: "scheduler"})
	claims := &models.JWTClaims{
		UserID: "u1",
		Role:   models.RoleAdvisor,
		Email:  "advisor@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "idp",
			Audience:  jwt.ClaimStrings{"scheduler"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed := signToken(t, "secret", claims)

	got, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, models.RoleAdvisor, got.Role)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := NewAuthService(AuthConfig{AccessTokenSecret: "secret", Issuer: "idp", Audience: "scheduler"})
	claims := &models.JWTClaims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
		Issuer: "idp", Audience: jwt.ClaimStrings{"scheduler"}, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	signed := signToken(t, "wrong-secret", claims)

	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsExpiredToken(t *testing.T) {
	svc := NewAuthService(AuthConfig{AccessTokenSecret: "secret", Issuer: "idp", Audience: "scheduler"})
	claims := &models.JWTClaims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
		Issuer: "idp", Audience: jwt.ClaimStrings{"scheduler"}, ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}}
	signed := signToken(t, "secret", claims)

	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsMissingSubjectClaim(t *testing.T) {
	svc := NewAuthService(AuthConfig{AccessTokenSecret: "secret", Issuer: "idp", Audience: "scheduler"})
	claims := &models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer: "idp", Audience: jwt.ClaimStrings{"scheduler"}, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	signed := signToken(t, "secret", claims)

	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
