package events

import (
	"time"

	"github.com/spec-kit/clinic-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginSucceeded EventType = "login_succeeded"
	EventLogout         EventType = "logout"
	EventSessionRevoked EventType = "session_revoked"
	EventBookingCreated EventType = "booking_created"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LoginSucceededPayload payload.
type LoginSucceededPayload struct {
	OverwrotePriorSession bool `json:"overwrote_prior_session"`
}

// SessionRevokedPayload payload.
type SessionRevokedPayload struct {
	Reason string `json:"reason"`
}

// BookingCreatedPayload payload.
type BookingCreatedPayload struct {
	BookingID   string    `json:"booking_id"`
	Reference   string    `json:"reference"`
	CustomerID  string    `json:"customer_id"`
	BookingDate time.Time `json:"booking_date"`
}
