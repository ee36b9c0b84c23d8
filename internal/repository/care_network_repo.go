package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mentor-pulse/internal/domain"
)

type CareNetworkRepository interface {
	// AddTutor agrega el tutor al set del estudiante (sin duplicados) y
	// actualiza el timestamp de última interacción.
	AddTutor(ctx context.Context, studentID, tutorID string, interactedAt time.Time) error
	GetByStudentID(ctx context.Context, studentID string) (domain.CareNetwork, error)
}

type PgCareNetworkRepository struct {
	pool *pgxpool.Pool
}

func NewPgCareNetworkRepository(pool *pgxpool.Pool) *PgCareNetworkRepository {
	return &PgCareNetworkRepository{pool: pool}
}

func (r *PgCareNetworkRepository) AddTutor(ctx context.Context, studentID, tutorID string, interactedAt time.Time) error {
	const query = `
		INSERT INTO care_networks (student_id, tutor_ids, last_interaction_at)
		VALUES ($1, ARRAY[$2]::uuid[], $3)
		ON CONFLICT (student_id)
		DO UPDATE SET
			tutor_ids = CASE
				WHEN $2::uuid = ANY(care_networks.tutor_ids) THEN care_networks.tutor_ids
				ELSE array_append(care_networks.tutor_ids, $2::uuid)
			END,
			last_interaction_at = EXCLUDED.last_interaction_at
	`
	_, err := r.pool.Exec(ctx, query, studentID, tutorID, interactedAt)
	return err
}

func (r *PgCareNetworkRepository) GetByStudentID(ctx context.Context, studentID string) (domain.CareNetwork, error) {
	const query = `
		SELECT student_id, tutor_ids, last_interaction_at
		FROM care_networks
		WHERE student_id = $1
	`
	var network domain.CareNetwork
	err := r.pool.QueryRow(ctx, query, studentID).Scan(
		&network.StudentID,
		&network.TutorIDs,
		&network.LastInteractionAt,
	)
	if err != nil {
		return domain.CareNetwork{}, err
	}
	return network, nil
}
