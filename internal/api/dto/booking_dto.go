package dto

import "time"

// CreateBookingRequest reserves a media-day slot.
type CreateBookingRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
}

// BookingResponse describes a media-day booking.
type BookingResponse struct {
	ID         string    `json:"id"`
	Reference  string    `json:"reference"`
	CustomerID string    `json:"customer_id"`
	Date       string    `json:"date"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// AvailabilityResponse reports free slots for a date.
type AvailabilityResponse struct {
	Date      string `json:"date"`
	Remaining int    `json:"remaining"`
}
