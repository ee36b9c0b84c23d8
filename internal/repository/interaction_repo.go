package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mentor-pulse/internal/domain"
)

type InteractionRepository interface {
	Create(ctx context.Context, interaction domain.Interaction) error
	GetByID(ctx context.Context, id string) (domain.Interaction, error)
	// ListByUserSince devuelve interacciones del usuario desde `since`,
	// más recientes primero.
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]domain.Interaction, error)
}

type PgInteractionRepository struct {
	pool *pgxpool.Pool
}

func NewPgInteractionRepository(pool *pgxpool.Pool) *PgInteractionRepository {
	return &PgInteractionRepository{pool: pool}
}

func (r *PgInteractionRepository) Create(ctx context.Context, interaction domain.Interaction) error {
	const query = `
		INSERT INTO tutor_interactions (id, user_id, role, track, topic, input, status, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		interaction.ID,
		interaction.UserID,
		string(interaction.Role),
		interaction.Track,
		interaction.Topic,
		interaction.Input,
		string(interaction.Status),
		interaction.LatencyMS,
		interaction.CreatedAt,
	)
	return err
}

func (r *PgInteractionRepository) GetByID(ctx context.Context, id string) (domain.Interaction, error) {
	const query = `
		SELECT id, user_id, role, track, topic, input, status, latency_ms, created_at
		FROM tutor_interactions
		WHERE id = $1
	`
	var (
		it     domain.Interaction
		role   string
		status string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&it.ID,
		&it.UserID,
		&role,
		&it.Track,
		&it.Topic,
		&it.Input,
		&status,
		&it.LatencyMS,
		&it.CreatedAt,
	)
	if err != nil {
		return domain.Interaction{}, err
	}
	it.Role = domain.Role(role)
	it.Status = domain.InteractionStatus(status)
	return it, nil
}

func (r *PgInteractionRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]domain.Interaction, error) {
	const query = `
		SELECT id, user_id, role, track, topic, input, status, latency_ms, created_at
		FROM tutor_interactions
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interactions []domain.Interaction
	for rows.Next() {
		var (
			it     domain.Interaction
			role   string
			status string
		)
		if err := rows.Scan(
			&it.ID,
			&it.UserID,
			&role,
			&it.Track,
			&it.Topic,
			&it.Input,
			&status,
			&it.LatencyMS,
			&it.CreatedAt,
		); err != nil {
			return nil, err
		}
		it.Role = domain.Role(role)
		it.Status = domain.InteractionStatus(status)
		interactions = append(interactions, it)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return interactions, nil
}
