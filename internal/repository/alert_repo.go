package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mentor-pulse/internal/domain"
)

type AlertRepository interface {
	Create(ctx context.Context, alert domain.TutorAlert) error
	// ExistsRecent responde si ya hay una alerta para el par (tutor, student)
	// creada desde `since`.
	ExistsRecent(ctx context.Context, tutorID, studentID string, since time.Time) (bool, error)
	ListUnreadByTutor(ctx context.Context, tutorID string) ([]domain.TutorAlert, error)
	// MarkRead marca leída la alerta solo si pertenece al tutor; devuelve
	// false si no era suya o no existe.
	MarkRead(ctx context.Context, alertID, tutorID string) (bool, error)
}

type PgAlertRepository struct {
	pool *pgxpool.Pool
}

func NewPgAlertRepository(pool *pgxpool.Pool) *PgAlertRepository {
	return &PgAlertRepository{pool: pool}
}

func (r *PgAlertRepository) Create(ctx context.Context, alert domain.TutorAlert) error {
	const query = `
		INSERT INTO tutor_alerts (id, tutor_id, student_id, urgency, topic, score, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		alert.ID,
		alert.TutorID,
		alert.StudentID,
		string(alert.Urgency),
		alert.Topic,
		alert.Score,
		alert.Message,
		alert.Read,
		alert.CreatedAt,
	)
	return err
}

func (r *PgAlertRepository) ExistsRecent(ctx context.Context, tutorID, studentID string, since time.Time) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM tutor_alerts
			WHERE tutor_id = $1 AND student_id = $2 AND created_at >= $3
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, tutorID, studentID, since).Scan(&exists)
	return exists, err
}

func (r *PgAlertRepository) ListUnreadByTutor(ctx context.Context, tutorID string) ([]domain.TutorAlert, error) {
	const query = `
		SELECT id, tutor_id, student_id, urgency, topic, score, message, read, created_at
		FROM tutor_alerts
		WHERE tutor_id = $1 AND read = FALSE
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, tutorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.TutorAlert
	for rows.Next() {
		var (
			a       domain.TutorAlert
			urgency string
		)
		if err := rows.Scan(
			&a.ID,
			&a.TutorID,
			&a.StudentID,
			&urgency,
			&a.Topic,
			&a.Score,
			&a.Message,
			&a.Read,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.Urgency = domain.AlertUrgency(urgency)
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return alerts, nil
}

func (r *PgAlertRepository) MarkRead(ctx context.Context, alertID, tutorID string) (bool, error) {
	const query = `
		UPDATE tutor_alerts
		SET read = TRUE
		WHERE id = $1 AND tutor_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, alertID, tutorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
