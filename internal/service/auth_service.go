package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-portal/internal/auth"
	"github.com/spec-kit/clinic-portal/internal/config"
	"github.com/spec-kit/clinic-portal/internal/domain"
	"github.com/spec-kit/clinic-portal/internal/events"
	"github.com/spec-kit/clinic-portal/internal/repository"
	apperrors "github.com/spec-kit/clinic-portal/pkg/util"
)

// AuthService coordinates the login/logout flows: credential verification,
// token issuance and session registration.
type AuthService struct {
	customers     repository.CustomerRepository
	employees     repository.EmployeeRepository
	receptionists repository.ReceptionistRepository
	tokenMgr      *auth.TokenManager
	sessions      *auth.SessionRegistry
	dispatcher    events.Dispatcher
	bcryptCost    int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	CustomerRepo     repository.CustomerRepository
	EmployeeRepo     repository.EmployeeRepository
	ReceptionistRepo repository.ReceptionistRepository
	Sessions         *auth.SessionRegistry
	Dispatcher       events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		customers:     deps.CustomerRepo,
		employees:     deps.EmployeeRepo,
		receptionists: deps.ReceptionistRepo,
		tokenMgr:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		sessions:      deps.Sessions,
		dispatcher:    deps.Dispatcher,
		bcryptCost:    cfg.Auth.BcryptCost,
	}
}

// LoginCustomer authenticates a clinic account.
func (s *AuthService) LoginCustomer(ctx context.Context, email, password string) (*domain.Customer, *domain.IssuedToken, error) {
	customer, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if customer.Status != domain.CustomerStatusActive {
		return nil, nil, apperrors.NewUnauthorized("account suspended")
	}
	if err := auth.ComparePassword(customer.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	issued, err := s.startSession(ctx, customer.ID, domain.RoleCustomer, auth.TokenFlags{})
	if err != nil {
		return nil, nil, err
	}
	return customer, issued, nil
}

// LoginEmployee authenticates an internal operator; the role (admin or
// employee) comes from the account record.
func (s *AuthService) LoginEmployee(ctx context.Context, email, password string) (*domain.Employee, *domain.IssuedToken, error) {
	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if !employee.Active {
		return nil, nil, apperrors.NewUnauthorized("account inactive")
	}
	if err := auth.ComparePassword(employee.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	issued, err := s.startSession(ctx, employee.ID, employee.Role, auth.TokenFlags{})
	if err != nil {
		return nil, nil, err
	}
	return employee, issued, nil
}

// LoginReceptionist authenticates a delegated receptionist. An account with
// no parent customer link is a configuration error and is refused outright.
func (s *AuthService) LoginReceptionist(ctx context.Context, email, password string) (*domain.Receptionist, *domain.IssuedToken, error) {
	receptionist, err := s.receptionists.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if !receptionist.Active {
		return nil, nil, apperrors.NewUnauthorized("account inactive")
	}
	if err := auth.ComparePassword(receptionist.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if receptionist.ParentCustomerID == "" {
		return nil, nil, apperrors.NewForbidden("receptionist has no linked customer")
	}

	issued, err := s.startSession(ctx, receptionist.ID, domain.RoleReceptionist, auth.TokenFlags{
		CanBookMediaDay:  receptionist.CanBookMediaDay,
		ParentCustomerID: receptionist.ParentCustomerID,
	})
	if err != nil {
		return nil, nil, err
	}
	return receptionist, issued, nil
}

// Logout drops the caller's session for the given role. Idempotent.
func (s *AuthService) Logout(ctx context.Context, userID string, role domain.Role) {
	s.sessions.RemoveSession(userID, role)
	s.publish(ctx, events.EventLogout, userID, role, nil)
}

// ActiveSessions lists session metadata across every role the user holds.
func (s *AuthService) ActiveSessions(userID string) []auth.SessionInfo {
	return s.sessions.GetUserSessions(userID)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) startSession(ctx context.Context, userID string, role domain.Role, flags auth.TokenFlags) (*domain.IssuedToken, error) {
	token, expiresAt, err := s.tokenMgr.Issue(userID, role, flags)
	if err != nil {
		return nil, err
	}
	replaced := s.sessions.AddSession(userID, role, token)
	if replaced {
		s.publish(ctx, events.EventSessionRevoked, userID, role, events.SessionRevokedPayload{
			Reason: "superseded by new login",
		})
	}
	s.publish(ctx, events.EventLoginSucceeded, userID, role, events.LoginSucceededPayload{
		OverwrotePriorSession: replaced,
	})
	return &domain.IssuedToken{
		Value:     token,
		Role:      role,
		IssuedAt:  time.Now(),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, role domain.Role, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     events.Actor{UserID: userID, Role: role},
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
