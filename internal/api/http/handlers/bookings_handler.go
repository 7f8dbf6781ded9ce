package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-portal/internal/api/dto"
	"github.com/spec-kit/clinic-portal/internal/auth"
	"github.com/spec-kit/clinic-portal/internal/domain"
	"github.com/spec-kit/clinic-portal/internal/service"
)

const dateLayout = "2006-01-02"

// BookingsHandler exposes media-day availability and booking endpoints.
type BookingsHandler struct {
	bookings *service.BookingService
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookingService *service.BookingService) *BookingsHandler {
	return &BookingsHandler{bookings: bookingService}
}

// Availability handles GET /bookings/availability?date=YYYY-MM-DD. Reachable
// by any staff role, customers, and receptionists holding the booking
// capability.
func (h *BookingsHandler) Availability(c *fiber.Ctx) error {
	date, err := parseDate(c.Query("date"))
	if err != nil {
		return err
	}
	remaining, err := h.bookings.Availability(c.Context(), date)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AvailabilityResponse{
		Date:      date.Format(dateLayout),
		Remaining: remaining,
	}})
}

// Create handles POST /bookings. The route stack has already verified role,
// capability and delegation; the effective customer id is read back from the
// request context.
func (h *BookingsHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	customerID, ok := auth.EffectiveCustomerIDFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusForbidden, "no effective customer")
	}

	var req dto.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}

	booking, err := h.bookings.CreateBooking(c.Context(), customerID, identity, date)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": bookingToResponse(booking)})
}

// List handles GET /bookings for the effective customer.
func (h *BookingsHandler) List(c *fiber.Ctx) error {
	customerID, ok := auth.EffectiveCustomerIDFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusForbidden, "no effective customer")
	}
	bookings, err := h.bookings.ListBookings(c.Context(), customerID)
	if err != nil {
		return err
	}
	responses := make([]dto.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		responses = append(responses, bookingToResponse(booking))
	}
	return c.JSON(fiber.Map{"data": responses})
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fiber.NewError(http.StatusBadRequest, "date required")
	}
	date, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fiber.NewError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	return date, nil
}

func bookingToResponse(booking *domain.MediaDayBooking) dto.BookingResponse {
	return dto.BookingResponse{
		ID:         booking.ID,
		Reference:  booking.Reference,
		CustomerID: booking.CustomerID,
		Date:       booking.Date.Format(dateLayout),
		Status:     string(booking.Status),
		CreatedAt:  booking.CreatedAt,
	}
}
