package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-portal/internal/domain"
	apperrors "github.com/spec-kit/clinic-portal/pkg/util"
)

// CheckRoleIn passes when the identity's role is one of the allowed roles.
func CheckRoleIn(identity *domain.Identity, allowed ...domain.Role) error {
	for _, role := range allowed {
		if identity.Role == role {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient role")
}

// CheckBookingAccess gates read access to booking/availability views. Plain
// role membership cannot express this: receptionists are admitted only when
// their canBookMediaDay capability is set.
func CheckBookingAccess(identity *domain.Identity) error {
	switch identity.Role {
	case domain.RoleAdmin, domain.RoleCustomer, domain.RoleEmployee:
		return nil
	case domain.RoleReceptionist:
		if identity.CanBookMediaDay {
			return nil
		}
		return apperrors.NewForbidden("receptionist lacks media day booking capability")
	default:
		return apperrors.NewForbidden("insufficient role")
	}
}

// CheckCanBookMediaDay gates booking mutations on customer-scoped routes.
// Customers pass unconditionally; receptionists need the capability flag.
// Callers must have restricted the role to customer or receptionist first,
// and must run this before resolving the effective customer.
func CheckCanBookMediaDay(identity *domain.Identity) error {
	switch identity.Role {
	case domain.RoleCustomer:
		return nil
	case domain.RoleReceptionist:
		if identity.CanBookMediaDay {
			return nil
		}
		return apperrors.NewForbidden("receptionist lacks media day booking capability")
	case domain.RoleAdmin, domain.RoleEmployee:
		return apperrors.NewForbidden("customer-scoped route")
	default:
		return apperrors.NewForbidden("insufficient role")
	}
}

// RequireRoleIn ensures the caller holds one of the allowed roles.
func RequireRoleIn(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := CheckRoleIn(identity, allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}

// AllowBookingAccess admits callers to read-only booking views.
func AllowBookingAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := CheckBookingAccess(identity); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireCanBookMediaDay admits customers and capable receptionists to
// booking mutations.
func RequireCanBookMediaDay() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := CheckCanBookMediaDay(identity); err != nil {
			return err
		}
		return c.Next()
	}
}
