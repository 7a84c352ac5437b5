package authcore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenPair is the issued-token response shape for /login and /refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// Signer issues and decodes HS256 access/refresh tokens against a single
// process-wide secret (spec §9: "JWT secret is process-wide immutable
// configuration").
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner builds a Signer bound to secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

func (s *Signer) nowMillis() int64 { return s.now().UnixMilli() }

// IssuePair mints a fresh access/refresh pair for userID, with iat=now.
func (s *Signer) IssuePair(userID uuid.UUID) (TokenPair, error) {
	iat := s.nowMillis()
	accessExp := iat + AccessLifetime.Milliseconds()

	access, err := s.signAccess(AccessClaims{IssuedAt: iat, ExpiresAt: accessExp, UserID: userID})
	if err != nil {
		return TokenPair{}, Error.Wrap(err)
	}

	refreshExp := iat + RefreshLifetime.Milliseconds()
	refresh, err := s.signRefresh(RefreshClaims{IssuedAt: iat, ExpiresAt: refreshExp, AccessToken: access})
	if err != nil {
		return TokenPair{}, Error.Wrap(err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: accessExp}, nil
}

func (s *Signer) signAccess(c AccessClaims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

func (s *Signer) signRefresh(c RefreshClaims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

func (s *Signer) keyFunc(_ *jwt.Token) (interface{}, error) { return s.secret, nil }

// decodeAccess parses token into AccessClaims without enforcing
// expiration via the library (spec §4.1 defines its own iat/exp
// semantics, see ValidateAccess).
func (s *Signer) decodeAccess(token string) (AccessClaims, error) {
	var claims AccessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !parsed.Valid {
		return AccessClaims{}, BadRequest.New("malformed access token")
	}
	return claims, nil
}

func (s *Signer) decodeRefresh(token string) (RefreshClaims, error) {
	var claims RefreshClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !parsed.Valid {
		return RefreshClaims{}, BadRequest.New("malformed refresh token")
	}
	return claims, nil
}

// ValidateAccess enforces spec §4.1's middleware semantics: now must lie
// in [iat, exp] — a token is expired only once now > exp.
func (s *Signer) ValidateAccess(token string) (AccessClaims, error) {
	claims, err := s.decodeAccess(token)
	if err != nil {
		return AccessClaims{}, Unauthorized.Wrap(err)
	}
	now := s.nowMillis()
	if now < claims.IssuedAt || now > claims.ExpiresAt {
		return AccessClaims{}, Unauthorized.New("token expired or not yet valid")
	}
	return claims, nil
}

// Refresh implements spec §4.1's Refresh operation: given an access token
// and the refresh token that claims to bind to it, validate the binding
// and expiry, then issue a brand-new pair.
func (s *Signer) Refresh(access, refresh string) (TokenPair, error) {
	accessClaims, err := s.decodeAccess(access)
	if err != nil {
		return TokenPair{}, err
	}
	refreshClaims, err := s.decodeRefresh(refresh)
	if err != nil {
		return TokenPair{}, err
	}

	if s.nowMillis() > refreshClaims.ExpiresAt {
		return TokenPair{}, Forbidden.New("refresh token expired")
	}
	if refreshClaims.AccessToken != access {
		return TokenPair{}, Forbidden.New("refresh token is not bound to the supplied access token")
	}

	return s.IssuePair(accessClaims.UserID)
}
