package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-portal/internal/domain"
	apperrors "github.com/spec-kit/clinic-portal/pkg/util"
)

type fakeBookingRepo struct {
	bookings []*domain.MediaDayBooking
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *domain.MediaDayBooking) error {
	booking.ID = fmt.Sprintf("b%d", len(f.bookings)+1)
	booking.CreatedAt = time.Now()
	f.bookings = append(f.bookings, booking)
	return nil
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id string) (*domain.MediaDayBooking, error) {
	for _, booking := range f.bookings {
		if booking.ID == id {
			return booking, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeBookingRepo) ListByCustomer(_ context.Context, customerID string) ([]*domain.MediaDayBooking, error) {
	var out []*domain.MediaDayBooking
	for _, booking := range f.bookings {
		if booking.CustomerID == customerID {
			out = append(out, booking)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) CountByDate(_ context.Context, date time.Time) (int, error) {
	count := 0
	for _, booking := range f.bookings {
		if booking.Date.Equal(date) && booking.Status == domain.BookingStatusConfirmed {
			count++
		}
	}
	return count, nil
}

func TestAvailabilityDecreasesWithBookings(t *testing.T) {
	repo := &fakeBookingRepo{}
	svc := NewBookingService(repo, nil, nil, zap.NewNop())
	identity := &domain.Identity{UserID: "c1", Role: domain.RoleCustomer}
	date := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.Local)

	remaining, err := svc.Availability(context.Background(), date)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if remaining != mediaDayCapacity {
		t.Fatalf("expected %d free slots, have %d", mediaDayCapacity, remaining)
	}

	if _, err := svc.CreateBooking(context.Background(), "c1", identity, date); err != nil {
		t.Fatalf("create booking: %v", err)
	}
	remaining, err = svc.Availability(context.Background(), date)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if remaining != mediaDayCapacity-1 {
		t.Fatalf("expected %d free slots, have %d", mediaDayCapacity-1, remaining)
	}
}

func TestCreateBookingRefusedWhenFull(t *testing.T) {
	repo := &fakeBookingRepo{}
	svc := NewBookingService(repo, nil, nil, zap.NewNop())
	identity := &domain.Identity{UserID: "c1", Role: domain.RoleCustomer}
	date := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.Local)

	for i := 0; i < mediaDayCapacity; i++ {
		if _, err := svc.CreateBooking(context.Background(), "c1", identity, date); err != nil {
			t.Fatalf("booking %d: %v", i+1, err)
		}
	}

	_, err := svc.CreateBooking(context.Background(), "c1", identity, date)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT when full, have %v", err)
	}
}

func TestCreateBookingRecordsActor(t *testing.T) {
	repo := &fakeBookingRepo{}
	svc := NewBookingService(repo, nil, nil, zap.NewNop())
	identity := &domain.Identity{
		UserID:           "r1",
		Role:             domain.RoleReceptionist,
		CanBookMediaDay:  true,
		ParentCustomerID: "c9",
	}
	date := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.Local)

	booking, err := svc.CreateBooking(context.Background(), "c9", identity, date)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if booking.CustomerID != "c9" || booking.BookedByID != "r1" || booking.BookedBy != domain.RoleReceptionist {
		t.Fatalf("booking actor not recorded: %+v", booking)
	}
	if booking.Reference == "" {
		t.Fatalf("expected a booking reference")
	}

	listed, err := svc.ListBookings(context.Background(), "c9")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 booking for c9, have %d", len(listed))
	}
}
