package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-portal/internal/api/dto"
	"github.com/spec-kit/clinic-portal/internal/auth"
	"github.com/spec-kit/clinic-portal/internal/domain"
	"github.com/spec-kit/clinic-portal/internal/service"
)

// AuthHandler exposes login/logout endpoints per portal role.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// LoginCustomer handles POST /auth/customers/login.
func (h *AuthHandler) LoginCustomer(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}
	customer, issued, err := h.auth.LoginCustomer(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": fiber.Map{"id": customer.ID, "name": customer.Name, "email": customer.Email},
			"auth":    issuedToResponse(issued),
		},
	})
}

// LoginEmployee handles POST /auth/employees/login for admins and employees.
func (h *AuthHandler) LoginEmployee(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}
	employee, issued, err := h.auth.LoginEmployee(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": fiber.Map{"id": employee.ID, "name": employee.Name, "email": employee.Email},
			"auth":    issuedToResponse(issued),
		},
	})
}

// LoginReceptionist handles POST /auth/receptionists/login.
func (h *AuthHandler) LoginReceptionist(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}
	receptionist, issued, err := h.auth.LoginReceptionist(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": fiber.Map{
				"id":                 receptionist.ID,
				"name":               receptionist.Name,
				"email":              receptionist.Email,
				"parent_customer_id": receptionist.ParentCustomerID,
			},
			"auth": issuedToResponse(issued),
		},
	})
}

// Logout handles POST /auth/logout for the authenticated caller.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	h.auth.Logout(c.Context(), identity.UserID, identity.Role)
	return c.SendStatus(http.StatusNoContent)
}

// Sessions handles GET /auth/sessions, listing the caller's active sessions
// across roles.
func (h *AuthHandler) Sessions(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return c.JSON(fiber.Map{"data": h.auth.ActiveSessions(identity.UserID)})
}

func parseLogin(c *fiber.Ctx) (*dto.LoginRequest, error) {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return nil, fiber.NewError(http.StatusBadRequest, "email and password required")
	}
	return &req, nil
}

func issuedToResponse(issued *domain.IssuedToken) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     issued.Value,
		Role:      string(issued.Role),
		ExpiresAt: issued.ExpiresAt,
	}
}
