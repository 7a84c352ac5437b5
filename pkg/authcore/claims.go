// Package authcore implements password verification and the short-lived
// access / bound-refresh JWT pair described in spec §4.1.
package authcore

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"time"
)

// AccessLifetime and RefreshLifetime are the fixed claim lifetimes of
// spec §4.1.
const (
	AccessLifetime  = time.Hour
	RefreshLifetime = 48 * time.Hour
)

// AccessClaims is the access-token claim set: { iat, exp, user_id }. Both
// timestamps are ms-since-epoch (spec §4.1), not the JWT-standard
// seconds-since-epoch — validation in this package compares them
// directly (see ValidateAccess in jwt.go) rather than through the jwt
// library's own second-resolution expiry check, so every Get* method
// below is a deliberate no-op: it opts this claim set out of the
// library's built-in registered-claim validation.
type AccessClaims struct {
	IssuedAt  int64     `json:"iat"`
	ExpiresAt int64     `json:"exp"`
	UserID    uuid.UUID `json:"user_id"`
}

func (c AccessClaims) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (c AccessClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (c AccessClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c AccessClaims) GetIssuer() (string, error)                  { return "", nil }
func (c AccessClaims) GetSubject() (string, error)                 { return "", nil }
func (c AccessClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// RefreshClaims is the refresh-token claim set: { iat, exp, access_token }.
// It binds to one specific access token by embedding its raw string.
type RefreshClaims struct {
	IssuedAt    int64  `json:"iat"`
	ExpiresAt   int64  `json:"exp"`
	AccessToken string `json:"access_token"`
}

func (c RefreshClaims) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (c RefreshClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (c RefreshClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c RefreshClaims) GetIssuer() (string, error)                  { return "", nil }
func (c RefreshClaims) GetSubject() (string, error)                 { return "", nil }
func (c RefreshClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }
