package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mentor-pulse/internal/domain"
)

// TopicCount agrega cuántas señales acumuló un topic en una ventana.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type SignalRepository interface {
	// CreateUnique inserta la señal y devuelve false si ya existía una del
	// mismo kind para la misma interacción. El índice único de la tabla es
	// quien decide, no la aplicación.
	CreateUnique(ctx context.Context, signal domain.Signal) (bool, error)
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]domain.Signal, error)
	TopTopicsSince(ctx context.Context, since time.Time, limit int) ([]TopicCount, error)
}

type PgSignalRepository struct {
	pool *pgxpool.Pool
}

func NewPgSignalRepository(pool *pgxpool.Pool) *PgSignalRepository {
	return &PgSignalRepository{pool: pool}
}

func (r *PgSignalRepository) CreateUnique(ctx context.Context, signal domain.Signal) (bool, error) {
	const query = `
		INSERT INTO struggle_signals (id, user_id, interaction_id, topic, kind, magnitude, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (interaction_id, kind) DO NOTHING
	`
	meta := signal.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return false, err
	}

	tag, err := r.pool.Exec(ctx, query,
		signal.ID,
		signal.UserID,
		signal.InteractionID,
		signal.Topic,
		string(signal.Kind),
		signal.Magnitude,
		metaJSON,
		signal.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgSignalRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]domain.Signal, error) {
	const query = `
		SELECT id, user_id, interaction_id, topic, kind, magnitude, meta, created_at
		FROM struggle_signals
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []domain.Signal
	for rows.Next() {
		var (
			s        domain.Signal
			kind     string
			metaJSON []byte
		)
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.InteractionID,
			&s.Topic,
			&kind,
			&s.Magnitude,
			&metaJSON,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		s.Kind = domain.SignalKind(kind)
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &s.Meta)
		}
		signals = append(signals, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return signals, nil
}

func (r *PgSignalRepository) TopTopicsSince(ctx context.Context, since time.Time, limit int) ([]TopicCount, error) {
	const query = `
		SELECT topic, COUNT(*) AS total
		FROM struggle_signals
		WHERE created_at >= $1 AND topic <> ''
		GROUP BY topic
		ORDER BY total DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []TopicCount
	for rows.Next() {
		var tc TopicCount
		if err := rows.Scan(&tc.Topic, &tc.Count); err != nil {
			return nil, err
		}
		topics = append(topics, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topics, nil
}
