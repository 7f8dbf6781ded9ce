package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-portal/internal/domain"
	apperrors "github.com/spec-kit/clinic-portal/pkg/util"
)

const effectiveCustomerKey = "auth_effective_customer_id"

// ResolveEffectiveCustomerID derives the customer identity a delegation-
// eligible request acts on: a customer's own id, or the parent customer a
// receptionist is linked to. A receptionist without a delegation link is a
// configuration error and is refused. Routes invoking this must already have
// restricted roles to customer or receptionist.
func ResolveEffectiveCustomerID(identity *domain.Identity) (string, error) {
	switch identity.Role {
	case domain.RoleCustomer:
		return identity.UserID, nil
	case domain.RoleReceptionist:
		if identity.ParentCustomerID == "" {
			return "", apperrors.NewForbidden("receptionist has no linked customer")
		}
		return identity.ParentCustomerID, nil
	case domain.RoleAdmin, domain.RoleEmployee:
		return "", apperrors.NewForbidden("route is customer-scoped")
	default:
		return "", apperrors.NewForbidden("insufficient role")
	}
}

// ResolveEffectiveCustomer middleware resolves and publishes the effective
// customer id. Must run after role and capability checks.
func ResolveEffectiveCustomer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		customerID, err := ResolveEffectiveCustomerID(identity)
		if err != nil {
			return err
		}
		c.Locals(effectiveCustomerKey, customerID)
		return c.Next()
	}
}

// EffectiveCustomerIDFromContext retrieves the resolved customer id.
func EffectiveCustomerIDFromContext(c *fiber.Ctx) (string, bool) {
	val := c.Locals(effectiveCustomerKey)
	if val == nil {
		return "", false
	}
	id, ok := val.(string)
	return id, ok
}
