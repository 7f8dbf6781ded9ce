package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-portal/internal/auth"
	"github.com/spec-kit/clinic-portal/internal/domain"
	"github.com/spec-kit/clinic-portal/internal/observability"
)

type pipelineFixture struct {
	app      *fiber.App
	tokens   *auth.TokenManager
	sessions *auth.SessionRegistry
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	tokens := auth.NewTokenManager("test-secret", 60)
	sessions := auth.NewSessionRegistry(24, 9, zap.NewNop())
	gate := auth.NewAuthMiddleware(tokens, sessions)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	app.Get("/protected", gate.Handle, func(c *fiber.Ctx) error {
		identity, _ := auth.IdentityFromContext(c)
		return c.JSON(fiber.Map{"user_id": identity.UserID, "role": identity.Role})
	})
	app.Get("/availability", gate.Handle, auth.AllowBookingAccess(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Post("/book", gate.Handle,
		auth.RequireRoleIn(domain.RoleCustomer, domain.RoleReceptionist),
		auth.RequireCanBookMediaDay(),
		auth.ResolveEffectiveCustomer(),
		func(c *fiber.Ctx) error {
			customerID, _ := auth.EffectiveCustomerIDFromContext(c)
			return c.JSON(fiber.Map{"customer_id": customerID})
		})

	return &pipelineFixture{app: app, tokens: tokens, sessions: sessions}
}

// login issues a token and registers its session, mirroring the login flow.
func (f *pipelineFixture) login(t *testing.T, userID string, role domain.Role, flags auth.TokenFlags) string {
	t.Helper()
	token, _, err := f.tokens.Issue(userID, role, flags)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	f.sessions.AddSession(userID, role, token)
	return token
}

func (f *pipelineFixture) request(t *testing.T, method, path, bearer string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := f.app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var payload map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("decode body %q: %v", body, err)
		}
	}
	return resp.StatusCode, payload
}

func errorCode(payload map[string]any) string {
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestGateMissingCredential(t *testing.T) {
	f := newPipelineFixture(t)

	status, payload := f.request(t, "GET", "/protected", "")
	if status != 401 {
		t.Fatalf("expected 401, have %d", status)
	}
	if errorCode(payload) != "MISSING_CREDENTIAL" {
		t.Fatalf("expected MISSING_CREDENTIAL, have %q", errorCode(payload))
	}
}

func TestGateRejectsGarbageToken(t *testing.T) {
	f := newPipelineFixture(t)

	status, payload := f.request(t, "GET", "/protected", "garbage")
	if status != 401 {
		t.Fatalf("expected 401, have %d", status)
	}
	if errorCode(payload) != "INVALID_CREDENTIAL" {
		t.Fatalf("expected INVALID_CREDENTIAL, have %q", errorCode(payload))
	}
}

func TestGateRequiresLiveSession(t *testing.T) {
	f := newPipelineFixture(t)

	// signed token but no session registered
	token, _, err := f.tokens.Issue("u1", domain.RoleCustomer, auth.TokenFlags{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	status, payload := f.request(t, "GET", "/protected", token)
	if status != 403 {
		t.Fatalf("expected 403, have %d", status)
	}
	if errorCode(payload) != "SESSION_EXPIRED" {
		t.Fatalf("expected SESSION_EXPIRED, have %q", errorCode(payload))
	}
}

func TestGatePublishesIdentity(t *testing.T) {
	f := newPipelineFixture(t)
	token := f.login(t, "u1", domain.RoleCustomer, auth.TokenFlags{})

	status, payload := f.request(t, "GET", "/protected", token)
	if status != 200 {
		t.Fatalf("expected 200, have %d", status)
	}
	if payload["user_id"] != "u1" || payload["role"] != string(domain.RoleCustomer) {
		t.Fatalf("unexpected identity payload: %v", payload)
	}

	f.sessions.RemoveSession("u1", domain.RoleCustomer)
	status, _ = f.request(t, "GET", "/protected", token)
	if status != 403 {
		t.Fatalf("expected 403 after logout, have %d", status)
	}
}

func TestBookingAccessReceptionistCapability(t *testing.T) {
	f := newPipelineFixture(t)

	blocked := f.login(t, "r1", domain.RoleReceptionist, auth.TokenFlags{ParentCustomerID: "c1"})
	status, payload := f.request(t, "GET", "/availability", blocked)
	if status != 403 {
		t.Fatalf("expected 403 for receptionist without capability, have %d", status)
	}
	if errorCode(payload) != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN, have %q", errorCode(payload))
	}

	allowed := f.login(t, "r2", domain.RoleReceptionist, auth.TokenFlags{
		CanBookMediaDay:  true,
		ParentCustomerID: "c1",
	})
	if status, _ := f.request(t, "GET", "/availability", allowed); status != 200 {
		t.Fatalf("expected 200 for capable receptionist, have %d", status)
	}

	employee := f.login(t, "e1", domain.RoleEmployee, auth.TokenFlags{})
	if status, _ := f.request(t, "GET", "/availability", employee); status != 200 {
		t.Fatalf("expected 200 for employee, have %d", status)
	}
}

func TestBookingRouteResolvesEffectiveCustomer(t *testing.T) {
	f := newPipelineFixture(t)

	receptionist := f.login(t, "r1", domain.RoleReceptionist, auth.TokenFlags{
		CanBookMediaDay:  true,
		ParentCustomerID: "C1",
	})
	status, payload := f.request(t, "POST", "/book", receptionist)
	if status != 200 {
		t.Fatalf("expected 200, have %d (payload %v)", status, payload)
	}
	if payload["customer_id"] != "C1" {
		t.Fatalf("expected effective customer C1, have %v", payload["customer_id"])
	}

	customer := f.login(t, "U5", domain.RoleCustomer, auth.TokenFlags{})
	status, payload = f.request(t, "POST", "/book", customer)
	if status != 200 || payload["customer_id"] != "U5" {
		t.Fatalf("expected customer to act on own id, have %d %v", status, payload)
	}

	employee := f.login(t, "e1", domain.RoleEmployee, auth.TokenFlags{})
	if status, _ := f.request(t, "POST", "/book", employee); status != 403 {
		t.Fatalf("expected 403 for employee on customer-scoped route, have %d", status)
	}
}
