package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mentor-pulse/internal/domain"
)

type PointsRepository interface {
	// CreateUnique inserta la línea del ledger y devuelve false si el premio
	// (user, kind, ref) ya había sido otorgado.
	CreateUnique(ctx context.Context, entry domain.PointsEntry) (bool, error)
	TotalByUser(ctx context.Context, userID string) (int, error)
	TopTotals(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

type PgPointsRepository struct {
	pool *pgxpool.Pool
}

func NewPgPointsRepository(pool *pgxpool.Pool) *PgPointsRepository {
	return &PgPointsRepository{pool: pool}
}

func (r *PgPointsRepository) CreateUnique(ctx context.Context, entry domain.PointsEntry) (bool, error) {
	const query = `
		INSERT INTO points_entries (id, user_id, kind, ref, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, kind, ref) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Kind,
		entry.Ref,
		entry.Amount,
		entry.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgPointsRepository) TotalByUser(ctx context.Context, userID string) (int, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM points_entries
		WHERE user_id = $1
	`
	var total int
	err := r.pool.QueryRow(ctx, query, userID).Scan(&total)
	return total, err
}

func (r *PgPointsRepository) TopTotals(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	const query = `
		SELECT user_id, COALESCE(SUM(amount), 0) AS total
		FROM points_entries
		GROUP BY user_id
		ORDER BY total DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Points); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
