package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-portal/internal/domain"
	apperrors "github.com/spec-kit/clinic-portal/pkg/util"
)

const identityKey = "auth_identity"

// AuthMiddleware is the per-request authentication gate: it verifies the
// bearer token and checks the session registry before publishing the
// verified identity for downstream handlers.
type AuthMiddleware struct {
	tokens   *TokenManager
	sessions *SessionRegistry
}

// NewAuthMiddleware constructs the gate.
func NewAuthMiddleware(tokens *TokenManager, sessions *SessionRegistry) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewMissingCredential()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewInvalidCredential("malformed", nil)
	}
	rawToken := parts[1]

	claims, err := m.tokens.Verify(rawToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			return apperrors.NewInvalidCredential("expired", err)
		case errors.Is(err, ErrTokenSignatureInvalid):
			return apperrors.NewInvalidCredential("signature", err)
		default:
			return apperrors.NewInvalidCredential("malformed", err)
		}
	}

	// Older issuers populated only the registered subject.
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" || !claims.Role.Valid() {
		return apperrors.NewInvalidCredential("malformed", nil)
	}

	if !m.sessions.IsValidSession(userID, rawToken, claims.Role) {
		return apperrors.NewSessionExpired()
	}

	c.Locals(identityKey, &domain.Identity{
		UserID:           userID,
		Role:             claims.Role,
		CanBookMediaDay:  claims.CanBookMediaDay,
		ParentCustomerID: claims.ParentCustomerID,
	})
	return c.Next()
}

// IdentityFromContext retrieves the verified caller identity.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}
