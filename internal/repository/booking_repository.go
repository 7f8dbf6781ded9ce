package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinic-portal/internal/domain"
)

// BookingRepository defines persistence access for media-day bookings.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.MediaDayBooking) error
	GetByID(ctx context.Context, id string) (*domain.MediaDayBooking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.MediaDayBooking, error)
	CountByDate(ctx context.Context, date time.Time) (int, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository returns a Postgres-backed implementation.
func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

func (r *bookingRepository) Create(ctx context.Context, booking *domain.MediaDayBooking) error {
	const query = `
        INSERT INTO media_day_bookings (reference, customer_id, booked_by_id, booked_by_role, booking_date, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		booking.Reference,
		booking.CustomerID,
		booking.BookedByID,
		booking.BookedBy,
		booking.Date,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.MediaDayBooking, error) {
	const query = `
        SELECT id, reference, customer_id, booked_by_id, booked_by_role, booking_date, status, created_at, updated_at
        FROM media_day_bookings WHERE id=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *bookingRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.MediaDayBooking, error) {
	const query = `
        SELECT id, reference, customer_id, booked_by_id, booked_by_role, booking_date, status, created_at, updated_at
        FROM media_day_bookings WHERE customer_id=$1 ORDER BY booking_date`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.MediaDayBooking
	for rows.Next() {
		booking, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) CountByDate(ctx context.Context, date time.Time) (int, error) {
	const query = `
        SELECT COUNT(*) FROM media_day_bookings
        WHERE booking_date=$1 AND status='CONFIRMED'`

	var count int
	if err := r.pool.QueryRow(ctx, query, date).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *bookingRepository) scanOne(row pgx.Row) (*domain.MediaDayBooking, error) {
	var booking domain.MediaDayBooking
	if err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.CustomerID,
		&booking.BookedByID,
		&booking.BookedBy,
		&booking.Date,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &booking, nil
}
