package service

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/degreepath/scheduler/internal/models"
	appErrors "github.com/degreepath/scheduler/pkg/errors"
)

// AuthConfig configures verification of externally-issued access tokens.
// There is no login, refresh, or password flow in this service: identity
// and credential management live in the institution's identity provider,
// and this service only checks the signature and claims on tokens it
// receives.
type AuthConfig struct {
	AccessTokenSecret string
	Issuer            string
	Audience          string
}

// AuthService validates bearer tokens issued by an external identity
// provider and extracts the claims the RBAC middleware needs.
type AuthService struct {
	config AuthConfig
}

// NewAuthService constructs an AuthService.
func NewAuthService(config AuthConfig) *AuthService {
	return &AuthService{config: config}
}

// ValidateToken parses and verifies an access token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithAudience(s.config.Audience))
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	if claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token missing subject claim")
	}
	return claims, nil
}
