package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the claim set carried by access tokens issued by the external
// identity provider. The service validates and reads these claims; it never
// issues, stores, or refreshes tokens itself.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}
