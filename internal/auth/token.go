package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/clinic-portal/internal/domain"
)

// Token verification failure kinds. Verify returns exactly one of these for
// any invalid credential.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// TokenManager signs and verifies portal identity tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    time.Duration(ttlMinutes) * time.Minute,
		now:    time.Now,
	}
}

// WithClock overrides the manager's clock. Tests use this to cross the
// embedded-expiry boundary deterministically.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// Claims describes the JWT payload. The user id rides in both the custom uid
// field and the registered subject; older issuers populated only the latter.
type Claims struct {
	UserID           string      `json:"uid,omitempty"`
	Role             domain.Role `json:"role"`
	CanBookMediaDay  bool        `json:"canBookMediaDay,omitempty"`
	ParentCustomerID string      `json:"parentCustomerId,omitempty"`
	jwt.RegisteredClaims
}

// TokenFlags carries the optional role-specific claims embedded at issue time.
type TokenFlags struct {
	CanBookMediaDay  bool
	ParentCustomerID string
}

// Issue builds and signs a token for the given identity.
func (tm *TokenManager) Issue(userID string, role domain.Role, flags TokenFlags) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		UserID:           userID,
		Role:             role,
		CanBookMediaDay:  flags.CanBookMediaDay,
		ParentCustomerID: flags.ParentCustomerID,
		RegisteredClaims: jwt.RegisteredClaims{
			// unique per issuance: iat/exp have second granularity, so
			// without a jti two logins in the same second would mint
			// byte-identical tokens and defeat session overwrite
			ID:        uuid.NewString(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates the signature and expiry and returns the decoded claims.
// Failures are one of ErrTokenMalformed, ErrTokenSignatureInvalid,
// ErrTokenExpired.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenSignatureInvalid
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
