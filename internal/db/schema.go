package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements define el esquema completo de forma idempotente.
// Los índices únicos sobre struggle_signals y points_entries son la garantía
// de idempotencia del pipeline: un segundo intento de escritura concurrente
// termina en ON CONFLICT DO NOTHING, nunca en duplicados.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		track TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		email_verified_at TIMESTAMPTZ,
		otp_code_hash TEXT NOT NULL DEFAULT '',
		otp_expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT valid_role CHECK (role IN ('learner', 'tutor', 'admin'))
	)`,

	`CREATE TABLE IF NOT EXISTS tutor_interactions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		role TEXT NOT NULL,
		track TEXT NOT NULL DEFAULT '',
		topic TEXT NOT NULL DEFAULT '',
		input TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		latency_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT valid_interaction_status CHECK (status IN ('answered', 'failed'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_user_created
		ON tutor_interactions(user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS struggle_signals (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		interaction_id UUID NOT NULL REFERENCES tutor_interactions(id),
		topic TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		magnitude DOUBLE PRECISION NOT NULL,
		meta JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT valid_magnitude CHECK (magnitude >= 0 AND magnitude <= 1)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_signals_interaction_kind
		ON struggle_signals(interaction_id, kind)`,
	`CREATE INDEX IF NOT EXISTS idx_signals_user_created
		ON struggle_signals(user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS struggle_profiles (
		user_id UUID PRIMARY KEY REFERENCES users(id),
		track TEXT NOT NULL DEFAULT '',
		cohort TEXT NOT NULL DEFAULT '',
		score DOUBLE PRECISION NOT NULL,
		trend TEXT NOT NULL,
		support_level TEXT NOT NULL,
		contributors JSONB NOT NULL DEFAULT '[]'::jsonb,
		reason TEXT NOT NULL DEFAULT '',
		evaluated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT valid_score CHECK (score >= 1 AND score <= 10),
		CONSTRAINT valid_trend CHECK (trend IN ('rising', 'falling', 'stable')),
		CONSTRAINT valid_support CHECK (support_level IN ('low', 'medium', 'high'))
	)`,

	`CREATE TABLE IF NOT EXISTS tutor_alerts (
		id UUID PRIMARY KEY,
		tutor_id UUID NOT NULL REFERENCES users(id),
		student_id UUID NOT NULL REFERENCES users(id),
		urgency TEXT NOT NULL,
		topic TEXT NOT NULL DEFAULT '',
		score DOUBLE PRECISION NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT valid_urgency CHECK (urgency IN ('soft', 'urgent'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_pair_created
		ON tutor_alerts(tutor_id, student_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_tutor_unread
		ON tutor_alerts(tutor_id, created_at DESC) WHERE read = FALSE`,

	`CREATE TABLE IF NOT EXISTS care_networks (
		student_id UUID PRIMARY KEY REFERENCES users(id),
		tutor_ids UUID[] NOT NULL DEFAULT '{}',
		last_interaction_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES users(id),
		tutor_id UUID NOT NULL REFERENCES users(id),
		topic TEXT NOT NULL DEFAULT '',
		scheduled_at TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT valid_booking_status CHECK (status IN ('requested', 'confirmed', 'completed', 'cancelled'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_student ON bookings(student_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_tutor ON bookings(tutor_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS points_entries (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		kind TEXT NOT NULL,
		ref TEXT NOT NULL,
		amount INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_points_user_kind_ref
		ON points_entries(user_id, kind, ref)`,
}

// EnsureSchema aplica el esquema al arrancar. Todas las sentencias son
// idempotentes, así que se puede correr en cada deploy.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
