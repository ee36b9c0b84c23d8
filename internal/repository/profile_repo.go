package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"mentor-pulse/internal/domain"
)

type ProfileRepository interface {
	// Upsert sobreescribe el perfil vigente del usuario (uno por usuario).
	Upsert(ctx context.Context, profile domain.StruggleProfile) error
	GetByUserID(ctx context.Context, userID string) (domain.StruggleProfile, error)
	CountBySupportLevel(ctx context.Context) (map[domain.SupportLevel]int, error)
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) Upsert(ctx context.Context, profile domain.StruggleProfile) error {
	const query = `
		INSERT INTO struggle_profiles (user_id, track, cohort, score, trend, support_level, contributors, reason, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id)
		DO UPDATE SET
			track = EXCLUDED.track,
			cohort = EXCLUDED.cohort,
			score = EXCLUDED.score,
			trend = EXCLUDED.trend,
			support_level = EXCLUDED.support_level,
			contributors = EXCLUDED.contributors,
			reason = EXCLUDED.reason,
			evaluated_at = EXCLUDED.evaluated_at
	`
	contributors := profile.Contributors
	if contributors == nil {
		contributors = []domain.Contribution{}
	}
	contribJSON, err := json.Marshal(contributors)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		profile.UserID,
		profile.Track,
		profile.Cohort,
		profile.Score,
		string(profile.Trend),
		string(profile.SupportLevel),
		contribJSON,
		profile.Reason,
		profile.EvaluatedAt,
	)
	return err
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.StruggleProfile, error) {
	const query = `
		SELECT user_id, track, cohort, score, trend, support_level, contributors, reason, evaluated_at
		FROM struggle_profiles
		WHERE user_id = $1
	`
	var (
		profile     domain.StruggleProfile
		trend       string
		support     string
		contribJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Track,
		&profile.Cohort,
		&profile.Score,
		&trend,
		&support,
		&contribJSON,
		&profile.Reason,
		&profile.EvaluatedAt,
	)
	if err != nil {
		return domain.StruggleProfile{}, err
	}
	profile.Trend = domain.Trend(trend)
	profile.SupportLevel = domain.SupportLevel(support)
	if len(contribJSON) > 0 {
		_ = json.Unmarshal(contribJSON, &profile.Contributors)
	}
	return profile, nil
}

func (r *PgProfileRepository) CountBySupportLevel(ctx context.Context) (map[domain.SupportLevel]int, error) {
	const query = `
		SELECT support_level, COUNT(*)
		FROM struggle_profiles
		GROUP BY support_level
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.SupportLevel]int)
	for rows.Next() {
		var (
			level string
			total int
		)
		if err := rows.Scan(&level, &total); err != nil {
			return nil, err
		}
		counts[domain.SupportLevel(level)] = total
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}
