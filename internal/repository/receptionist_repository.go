package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinic-portal/internal/domain"
)

// ReceptionistRepository defines persistence access for delegated
// receptionist accounts.
type ReceptionistRepository interface {
	Create(ctx context.Context, receptionist *domain.Receptionist) error
	Update(ctx context.Context, receptionist *domain.Receptionist) error
	GetByID(ctx context.Context, id string) (*domain.Receptionist, error)
	GetByEmail(ctx context.Context, email string) (*domain.Receptionist, error)
	ListByParentCustomer(ctx context.Context, customerID string) ([]*domain.Receptionist, error)
}

type receptionistRepository struct {
	pool *pgxpool.Pool
}

// NewReceptionistRepository returns a Postgres-backed implementation.
func NewReceptionistRepository(pool *pgxpool.Pool) ReceptionistRepository {
	return &receptionistRepository{pool: pool}
}

func (r *receptionistRepository) Create(ctx context.Context, receptionist *domain.Receptionist) error {
	const query = `
        INSERT INTO receptionists (name, email, password_hash, parent_customer_id, can_book_media_day, active)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		receptionist.Name,
		receptionist.Email,
		receptionist.PasswordHash,
		receptionist.ParentCustomerID,
		receptionist.CanBookMediaDay,
		receptionist.Active,
	).Scan(&receptionist.ID, &receptionist.CreatedAt, &receptionist.UpdatedAt)
}

func (r *receptionistRepository) Update(ctx context.Context, receptionist *domain.Receptionist) error {
	const query = `
        UPDATE receptionists
        SET name=$1, email=$2, password_hash=$3, parent_customer_id=$4, can_book_media_day=$5, active=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		receptionist.Name,
		receptionist.Email,
		receptionist.PasswordHash,
		receptionist.ParentCustomerID,
		receptionist.CanBookMediaDay,
		receptionist.Active,
		receptionist.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *receptionistRepository) GetByID(ctx context.Context, id string) (*domain.Receptionist, error) {
	const query = `
        SELECT id, name, email, password_hash, parent_customer_id, can_book_media_day, active, created_at, updated_at
        FROM receptionists WHERE id=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *receptionistRepository) GetByEmail(ctx context.Context, email string) (*domain.Receptionist, error) {
	const query = `
        SELECT id, name, email, password_hash, parent_customer_id, can_book_media_day, active, created_at, updated_at
        FROM receptionists WHERE email=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *receptionistRepository) ListByParentCustomer(ctx context.Context, customerID string) ([]*domain.Receptionist, error) {
	const query = `
        SELECT id, name, email, password_hash, parent_customer_id, can_book_media_day, active, created_at, updated_at
        FROM receptionists WHERE parent_customer_id=$1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receptionists []*domain.Receptionist
	for rows.Next() {
		receptionist, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		receptionists = append(receptionists, receptionist)
	}
	return receptionists, rows.Err()
}

func (r *receptionistRepository) scanOne(row pgx.Row) (*domain.Receptionist, error) {
	var receptionist domain.Receptionist
	if err := row.Scan(
		&receptionist.ID,
		&receptionist.Name,
		&receptionist.Email,
		&receptionist.PasswordHash,
		&receptionist.ParentCustomerID,
		&receptionist.CanBookMediaDay,
		&receptionist.Active,
		&receptionist.CreatedAt,
		&receptionist.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &receptionist, nil
}
