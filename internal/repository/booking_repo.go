package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mentor-pulse/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking domain.Booking) error
	GetByID(ctx context.Context, id string) (domain.Booking, error)
	// UpdateStatus transiciona el booking solo desde el estado esperado;
	// devuelve false si no estaba en ese estado.
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
}

type PgBookingRepository struct {
	pool *pgxpool.Pool
}

func NewPgBookingRepository(pool *pgxpool.Pool) *PgBookingRepository {
	return &PgBookingRepository{pool: pool}
}

func (r *PgBookingRepository) Create(ctx context.Context, booking domain.Booking) error {
	const query = `
		INSERT INTO bookings (id, student_id, tutor_id, topic, scheduled_at, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.StudentID,
		booking.TutorID,
		booking.Topic,
		booking.ScheduledAt,
		string(booking.Status),
		booking.CreatedAt,
	)
	return err
}

func (r *PgBookingRepository) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	const query = `
		SELECT id, student_id, tutor_id, topic, scheduled_at, status, created_at
		FROM bookings
		WHERE id = $1
	`
	var (
		b      domain.Booking
		status string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.StudentID,
		&b.TutorID,
		&b.Topic,
		&b.ScheduledAt,
		&status,
		&b.CreatedAt,
	)
	if err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func (r *PgBookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (bool, error) {
	const query = `
		UPDATE bookings
		SET status = $3
		WHERE id = $1 AND status = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, string(from), string(to))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	const query = `
		SELECT id, student_id, tutor_id, topic, scheduled_at, status, created_at
		FROM bookings
		WHERE student_id = $1 OR tutor_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var (
			b      domain.Booking
			status string
		)
		if err := rows.Scan(
			&b.ID,
			&b.StudentID,
			&b.TutorID,
			&b.Topic,
			&b.ScheduledAt,
			&status,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		b.Status = domain.BookingStatus(status)
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}
