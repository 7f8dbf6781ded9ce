package auth

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-portal/internal/domain"
)

// sessionKey identifies the one authoritative session an identity may hold
// per role.
type sessionKey struct {
	userID string
	role   domain.Role
}

type sessionRecord struct {
	token          string
	createdAt      time.Time
	lastActivityAt time.Time
	loginDate      time.Time
}

// SessionInfo is the read-only metadata returned for active sessions.
type SessionInfo struct {
	UserID         string      `json:"user_id"`
	Role           domain.Role `json:"role"`
	CreatedAt      time.Time   `json:"created_at"`
	LastActivityAt time.Time   `json:"last_activity_at"`
	LoginDate      time.Time   `json:"login_date"`
}

// SessionRegistry is the process-wide authoritative table of active sessions.
// A token is honored only while its record exists here; codec expiry alone is
// not sufficient. All access is serialized by a single table lock, acceptable
// at this cardinality.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[sessionKey]*sessionRecord

	now         func() time.Time
	idleTimeout time.Duration
	resetHour   int

	// calendar day whose full reset has already been processed; guards
	// ForceDailyReset against both double-firing and missed ticks.
	lastFullReset time.Time

	logger *zap.Logger
}

// NewSessionRegistry builds an empty registry. idleTimeoutHours and resetHour
// fall back to 24 and 9 when out of range.
func NewSessionRegistry(idleTimeoutHours, resetHour int, logger *zap.Logger) *SessionRegistry {
	if idleTimeoutHours <= 0 {
		idleTimeoutHours = 24
	}
	if resetHour < 0 || resetHour > 23 {
		resetHour = 9
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRegistry{
		sessions:    make(map[sessionKey]*sessionRecord),
		now:         time.Now,
		idleTimeout: time.Duration(idleTimeoutHours) * time.Hour,
		resetHour:   resetHour,
		logger:      logger,
	}
}

// WithClock overrides the registry clock, used by tests to cross the daily
// and idle boundaries deterministically.
func (r *SessionRegistry) WithClock(now func() time.Time) *SessionRegistry {
	r.now = now
	return r
}

// AddSession inserts the authoritative record for (userID, role). An existing
// record for the same key is overwritten, silently logging out the previous
// session for that role; the return value reports whether that happened.
func (r *SessionRegistry) AddSession(userID string, role domain.Role, token string) bool {
	now := r.now()
	key := sessionKey{userID: userID, role: role}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced := r.sessions[key]
	if replaced {
		r.logger.Debug("session overwritten by new login",
			zap.String("user_id", userID), zap.String("role", string(role)))
	}
	r.sessions[key] = &sessionRecord{
		token:          token,
		createdAt:      now,
		lastActivityAt: now,
		loginDate:      now,
	}
	return replaced
}

// IsValidSession reports whether the token is the currently honored one for
// (userID, role). A session logged in on a prior calendar day is deleted and
// rejected once local time reaches the reset hour. On success the record's
// last-activity timestamp is refreshed; on any failure no state changes
// beyond the daily-rule deletion.
func (r *SessionRegistry) IsValidSession(userID, token string, role domain.Role) bool {
	now := r.now()
	key := sessionKey{userID: userID, role: role}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[key]
	if !ok {
		return false
	}
	if r.dailyResetDue(rec, now) {
		delete(r.sessions, key)
		r.logger.Debug("session invalidated by daily reset",
			zap.String("user_id", userID), zap.String("role", string(role)))
		return false
	}
	if rec.token != token {
		return false
	}
	rec.lastActivityAt = now
	return true
}

// RemoveSession deletes the record for (userID, role). No-op if absent.
func (r *SessionRegistry) RemoveSession(userID string, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionKey{userID: userID, role: role})
}

// GetUserSessions returns metadata for every active session the user holds,
// across all roles.
func (r *SessionRegistry) GetUserSessions(userID string) []SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	var infos []SessionInfo
	for key, rec := range r.sessions {
		if key.userID != userID {
			continue
		}
		infos = append(infos, SessionInfo{
			UserID:         key.userID,
			Role:           key.role,
			CreatedAt:      rec.createdAt,
			LastActivityAt: rec.lastActivityAt,
			LoginDate:      rec.loginDate,
		})
	}
	return infos
}

// CleanupOldSessions removes every record that has crossed the daily reset
// boundary or has been idle longer than the idle timeout. Intended to run on
// a periodic timer, independent of request traffic. Returns the number of
// records removed.
func (r *SessionRegistry) CleanupOldSessions() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, rec := range r.sessions {
		if r.dailyResetDue(rec, now) || now.Sub(rec.lastActivityAt) > r.idleTimeout {
			delete(r.sessions, key)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Info("session sweep removed stale sessions", zap.Int("removed", removed))
	}
	return removed
}

// ForceDailyReset clears the entire table once per calendar day, the first
// time it is invoked at or after the reset hour. Coarse fallback on top of
// the per-record daily rule; callers on a coarse timer still trigger it
// because the check is a threshold guarded by a processed-day marker, not an
// exact-minute match. Returns the number of records removed.
func (r *SessionRegistry) ForceDailyReset() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Hour() < r.resetHour || sameDay(r.lastFullReset, now) {
		return 0
	}
	removed := len(r.sessions)
	r.sessions = make(map[sessionKey]*sessionRecord)
	r.lastFullReset = now
	if removed > 0 {
		r.logger.Info("daily full reset cleared session table", zap.Int("removed", removed))
	}
	return removed
}

// ActiveCount returns the number of live session records.
func (r *SessionRegistry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// dailyResetDue reports whether the record's login day lies before today and
// local time has reached the reset hour. Callers hold r.mu.
func (r *SessionRegistry) dailyResetDue(rec *sessionRecord, now time.Time) bool {
	return now.Hour() >= r.resetHour && !sameDay(rec.loginDate, now)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
