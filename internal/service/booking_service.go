package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-portal/internal/domain"
	"github.com/spec-kit/clinic-portal/internal/events"
	"github.com/spec-kit/clinic-portal/internal/persistence"
	"github.com/spec-kit/clinic-portal/internal/repository"
	apperrors "github.com/spec-kit/clinic-portal/pkg/util"
)

const (
	mediaDayCapacity      = 4
	availabilityCacheTTL  = time.Minute
	availabilityKeyPrefix = "mediaday:availability:"
)

// BookingService handles media-day availability and booking creation. Every
// booking is keyed by the effective customer identity resolved by the auth
// layer; this service never re-derives delegation.
type BookingService struct {
	bookings   repository.BookingRepository
	cache      *persistence.Redis
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewBookingService builds the service.
func NewBookingService(bookings repository.BookingRepository, cache *persistence.Redis, dispatcher events.Dispatcher, logger *zap.Logger) *BookingService {
	return &BookingService{
		bookings:   bookings,
		cache:      cache,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Availability returns the number of free media-day slots on the given date,
// consulting the Redis cache before the database.
func (s *BookingService) Availability(ctx context.Context, date time.Time) (int, error) {
	date = truncateToDay(date)
	key := availabilityKey(date)

	if s.cache != nil && s.cache.Client != nil {
		if cached, err := s.cache.Client.Get(ctx, key).Result(); err == nil {
			if remaining, convErr := strconv.Atoi(cached); convErr == nil {
				return remaining, nil
			}
		}
	}

	booked, err := s.bookings.CountByDate(ctx, date)
	if err != nil {
		return 0, err
	}
	remaining := mediaDayCapacity - booked
	if remaining < 0 {
		remaining = 0
	}

	if s.cache != nil && s.cache.Client != nil {
		if err := s.cache.Client.Set(ctx, key, strconv.Itoa(remaining), availabilityCacheTTL).Err(); err != nil {
			s.logger.Warn("availability cache write failed", zap.Error(err))
		}
	}
	return remaining, nil
}

// CreateBooking reserves a media-day slot for the effective customer.
func (s *BookingService) CreateBooking(ctx context.Context, customerID string, identity *domain.Identity, date time.Time) (*domain.MediaDayBooking, error) {
	date = truncateToDay(date)

	remaining, err := s.Availability(ctx, date)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		return nil, apperrors.NewConflict("no media day slots remaining", map[string]any{
			"date": date.Format("2006-01-02"),
		})
	}

	booking := &domain.MediaDayBooking{
		Reference:  uuid.NewString(),
		CustomerID: customerID,
		BookedByID: identity.UserID,
		BookedBy:   identity.Role,
		Date:       date,
		Status:     domain.BookingStatusConfirmed,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.invalidateAvailability(ctx, date)
	s.publishBookingCreated(ctx, booking)
	return booking, nil
}

// ListBookings returns the customer's bookings ordered by date.
func (s *BookingService) ListBookings(ctx context.Context, customerID string) ([]*domain.MediaDayBooking, error) {
	return s.bookings.ListByCustomer(ctx, customerID)
}

func (s *BookingService) invalidateAvailability(ctx context.Context, date time.Time) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	if err := s.cache.Client.Del(ctx, availabilityKey(date)).Err(); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.Error(err))
	}
}

func (s *BookingService) publishBookingCreated(ctx context.Context, booking *domain.MediaDayBooking) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventBookingCreated,
		Actor:     events.Actor{UserID: booking.BookedByID, Role: booking.BookedBy},
		Timestamp: time.Now(),
		Payload: events.BookingCreatedPayload{
			BookingID:   booking.ID,
			Reference:   booking.Reference,
			CustomerID:  booking.CustomerID,
			BookingDate: booking.Date,
		},
	})
}

func availabilityKey(date time.Time) string {
	return availabilityKeyPrefix + date.Format("2006-01-02")
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
