package domain

import "time"

// BookingStatus tracks a media-day booking's lifecycle.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// MediaDayBooking is a reservation of a media-day slot for a customer. The
// CustomerID is always the effective customer identity: a receptionist's
// booking lands on its parent customer.
type MediaDayBooking struct {
	ID         string
	Reference  string
	CustomerID string
	BookedByID string
	BookedBy   Role
	Date       time.Time
	Status     BookingStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
