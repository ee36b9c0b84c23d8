package domain

import "time"

// Motivos del ledger de gamificación. El par (user, kind, ref) es único:
// otorgar dos veces el mismo premio es un no-op.
const (
	PointsKindInteraction  = "interaction"
	PointsKindBooking      = "booking_completed"
	PointsKindBreakthrough = "breakthrough"
)

// PointsEntry es una línea inmutable del ledger de puntos.
type PointsEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Ref       string    `json:"ref"`
	Amount    int       `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardEntry es una posición del ranking de puntos.
type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}
