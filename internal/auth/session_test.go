package auth

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/clinic-portal/internal/domain"
)

// testClock is a manually advanced clock shared by registry tests.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock {
	return &testClock{now: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func localTime(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.Local)
}

func newTestRegistry(clock *testClock) *SessionRegistry {
	return NewSessionRegistry(24, 9, nil).WithClock(clock.Now)
}

func TestAddSessionThenValid(t *testing.T) {
	clock := newTestClock(localTime(2024, time.March, 4, 10, 0))
	registry := newTestRegistry(clock)

	registry.AddSession("u1", domain.RoleCustomer, "tok-1")
	if !registry.IsValidSession("u1", "tok-1", domain.RoleCustomer) {
		t.Fatalf("expected fresh session to validate")
	}
}

func TestIsValidSessionRejectsWrongToken(t *testing.T) {
	clock := newTestClock(localTime(2024, time.March, 4, 10, 0))
	registry := newTestRegistry(clock)

	registry.AddSession("u1", domain.RoleCustomer, "tok-1")
	if registry.IsValidSession("u1", "tok-1x", domain.RoleCustomer) {
		t.Fatalf("expected near-miss token to be rejected")
	}
	if registry.IsValidSession("u1", "tok-1", domain.RoleAdmin) {
		t.Fatalf("expected wrong role to be rejected")
	}
	if registry.IsValidSession("u2", "tok-1", domain.RoleCustomer) {
		t.Fatalf("expected unknown user to be rejected")
	}
}

func TestDailyResetBoundary(t *testing.T) {
	clock := newTestClock(localTime(2024, time.March, 4, 14, 0))
	registry := newTestRegistry(clock)

	registry.AddSession("u1", domain.RoleCustomer, "tok-1")

	// next morning just before the boundary
	clock.Set(localTime(2024, time.March, 5, 8, 59))
	if !registry.IsValidSession("u1", "tok-1", domain.RoleCustomer) {
		t.Fatalf("expected prior-day session to remain valid before 9 AM")
	}

	clock.Set(localTime(2024, time.March, 5, 9, 0))
	if registry.IsValidSession("u1", "tok-1", domain.RoleCustomer) {
		t.Fatalf("expected prior-day session to be invalid at 9 AM")
	}
	if registry.ActiveCount() != 0 {
		t.Fatalf("expected record to be removed at the boundary, have %d", registry.ActiveCount())
	}
}

func TestSecondLoginInvalidatesFirstToken(t *testing.T) {
	clock := newTestClock(localTime(2024, time.March, 4, 10, 0))
	registry := newTestRegistry(clock)

	if replaced := registry.AddSession("u1", domain.RoleCustomer, "tok-1"); replaced {
		t.Fatalf("first login should not report a replaced session")
	}
	if replaced := registry.AddSession("u1", domain.RoleCustomer, "tok-2"); !replaced {
		t.Fatalf("second login should report a replaced session")
	}

	if registry.IsValidSession("u1", "tok-1", domain.RoleCustomer) {
		t.Fatalf("expected first token to be invalidated by second login")
	}
	if !registry.IsValidSession("u1", "tok-2", domain.RoleCustomer) {
		t.Fatalf("expected second token to be valid")
	}
}

func TestRemoveSessionIdempotent(t *testing.T) {
	clock := newTestClock(localTime(2024, time.March, 4, 10, 0))
	registry := newTestRegistry(clock)

	registry.AddSession("u1", domain.RoleCustomer, "tok-1")
	registry.RemoveSession("u1", domain.RoleCustomer)
	registry.RemoveSession("u1", domain.RoleCustomer)

	if registry.IsValidSession("u1", "tok-1", domain.RoleCustomer) {
		t.Fatalf("expected removed session to be invalid")
	}
}

func TestFailedValidationDoesNotRefreshActivity(t *testing.T) {
	clock := newTestClock(localTime(2024, time.March, 4, 10, 0))
	registry := newTestRegistry(clock)

	registry.AddSession("u1", domain.RoleCustomer, "tok-1")
	created := clock.Now()

	clock.Advance(time.Hour)
	if registry.IsValidSession("u1", "wrong", domain.RoleCustomer) {
		t.Fatalf("expected wrong token to fail")
	}

	infos := registry.GetUserSessions("u1")
	if len(infos) != 1 {
		t.Fatalf("expected one session, have %d", len(infos))
	}
	if !infos[0].LastActivityAt.Equal(created) {
		t.Fatalf("failed validation must not refresh last activity: have %v want %v",
			infos[0].LastActivityAt, created)
	}

	if !registry.IsValidSession("u1", "tok-1", domain.RoleCustomer) {
		t.Fatalf("expected correct token to pass")
	}
	infos = registry.GetUserSessions("u1")
	if !infos[0].LastActivityAt.Equal(clock.Now()) {
		t.Fatalf("successful validation must refresh last activity")
	}
}

func TestCleanupOldSessionsDailyRule(t *testing.T) {
	clock := newTestClock(localTime(2024, time.March, 4, 16, 0))
	registry := newTestRegistry(clock)

	registry.AddSession("old", domain.RoleCustomer, "tok-old")

	clock.Set(localTime(2024, time.March, 5, 7, 30))
	registry.AddSession("fresh", domain.RoleEmployee, "tok-fresh")

	clock.Set(localTime(2024, time.March, 5, 9, 5))
	removed := registry.CleanupOldSessions()
	if removed != 1 {
		t.Fatalf("expected 1 removed, have %d", removed)
	}
	if registry.IsValidSession("old", "tok-old", domain.RoleCustomer) {
		t.Fatalf("expected prior-day session to be swept")
	}
	if !registry.IsValidSession("fresh", "tok-fresh", domain.RoleEmployee) {
		t.Fatalf("expected same-day session to survive the sweep")
	}
}

func TestCleanupOldSessionsIdleTimeout(t *testing.T) {
	// login early enough that the idle rule fires while still before the
	// daily boundary hour
	clock := newTestClock(localTime(2024, time.March, 4, 7, 0))
	registry := newTestRegistry(clock)

	registry.AddSession("u1", domain.RoleCustomer, "tok-1")

	clock.Set(localTime(2024, time.March, 5, 7, 45))
	if removed := registry.CleanupOldSessions(); removed != 1 {
		t.Fatalf("expected idle session removed, have %d removals", removed)
	}
}

func TestCleanupToleratesEmptyTable(t *testing.T) {
	clock := newTestClock(localTime(2024, time.March, 4, 10, 0))
	registry := newTestRegistry(clock)

	if removed := registry.CleanupOldSessions(); removed != 0 {
		t.Fatalf("expected no-op sweep, removed %d", removed)
	}
	if removed := registry.ForceDailyReset(); removed != 0 {
		t.Fatalf("expected no-op reset, removed %d", removed)
	}
}

func TestForceDailyResetThreshold(t *testing.T) {
	clock := newTestClock(localTime(2024, time.March, 4, 8, 0))
	registry := newTestRegistry(clock)

	registry.AddSession("u1", domain.RoleCustomer, "tok-1")

	// before the boundary hour nothing happens
	if removed := registry.ForceDailyReset(); removed != 0 {
		t.Fatalf("reset before boundary removed %d", removed)
	}

	// a coarse timer ticking at 09:07 still triggers the reset
	clock.Set(localTime(2024, time.March, 4, 9, 7))
	if removed := registry.ForceDailyReset(); removed != 1 {
		t.Fatalf("expected full reset to clear 1 session, have %d", removed)
	}

	// only once per day
	registry.AddSession("u1", domain.RoleCustomer, "tok-2")
	clock.Set(localTime(2024, time.March, 4, 15, 0))
	if removed := registry.ForceDailyReset(); removed != 0 {
		t.Fatalf("second reset on the same day removed %d", removed)
	}
	if !registry.IsValidSession("u1", "tok-2", domain.RoleCustomer) {
		t.Fatalf("expected post-reset login to survive the rest of the day")
	}

	// fires again the next day
	clock.Set(localTime(2024, time.March, 5, 9, 30))
	if removed := registry.ForceDailyReset(); removed != 1 {
		t.Fatalf("expected next-day reset to clear 1 session, have %d", removed)
	}
}

func TestGetUserSessionsAcrossRoles(t *testing.T) {
	clock := newTestClock(localTime(2024, time.March, 4, 10, 0))
	registry := newTestRegistry(clock)

	registry.AddSession("u1", domain.RoleCustomer, "tok-c")
	registry.AddSession("u1", domain.RoleReceptionist, "tok-r")
	registry.AddSession("u2", domain.RoleAdmin, "tok-a")

	infos := registry.GetUserSessions("u1")
	if len(infos) != 2 {
		t.Fatalf("expected 2 sessions for u1, have %d", len(infos))
	}
	for _, info := range infos {
		if info.UserID != "u1" {
			t.Fatalf("unexpected user id %q", info.UserID)
		}
	}
}

func TestConcurrentAddSessionsDistinctKeys(t *testing.T) {
	clock := newTestClock(localTime(2024, time.March, 4, 10, 0))
	registry := newTestRegistry(clock)

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", n)
			token := fmt.Sprintf("tok-%d", n)
			registry.AddSession(userID, domain.RoleCustomer, token)
		}(i)
	}
	wg.Wait()

	if registry.ActiveCount() != workers {
		t.Fatalf("expected %d sessions, have %d", workers, registry.ActiveCount())
	}
	for i := 0; i < workers; i++ {
		userID := fmt.Sprintf("user-%d", i)
		token := fmt.Sprintf("tok-%d", i)
		if !registry.IsValidSession(userID, token, domain.RoleCustomer) {
			t.Fatalf("expected session for %s to be intact", userID)
		}
	}
}
