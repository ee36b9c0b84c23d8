package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mentor-pulse/internal/domain"
	"mentor-pulse/internal/repository"
)

// Montos fijos del ledger. Como cualquier constante de producto, viven acá
// y no repartidos por los call sites.
const (
	interactionPoints = 5
	bookingPoints     = 25
	breakthroughBonus = 50
)

var (
	ErrPointsNotConfigured = errors.New("points service not configured")
	ErrPointsInvalidInput  = errors.New("points invalid input")
)

// PointsService mantiene el ledger de gamificación: líneas inmutables en la
// base y un ranking cacheado. Otorgar dos veces el mismo premio es no-op.
type PointsService struct {
	entries repository.PointsRepository
	board   LeaderboardCache
	logger  *zap.Logger
}

func NewPointsService(entries repository.PointsRepository, board LeaderboardCache, logger *zap.Logger) *PointsService {
	if board == nil {
		board = NewMemoryLeaderboardCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PointsService{
		entries: entries,
		board:   board,
		logger:  logger,
	}
}

// Award suma puntos de forma idempotente. Devuelve false si el premio
// (user, kind, ref) ya existía.
func (s *PointsService) Award(ctx context.Context, userID, kind, ref string, amount int) (bool, error) {
	if s == nil || s.entries == nil {
		return false, ErrPointsNotConfigured
	}
	userID = strings.TrimSpace(userID)
	kind = strings.TrimSpace(kind)
	ref = strings.TrimSpace(ref)
	if userID == "" || kind == "" || ref == "" || amount <= 0 {
		return false, ErrPointsInvalidInput
	}

	created, err := s.entries.CreateUnique(ctx, domain.PointsEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Ref:       ref,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("create points entry: %w", err)
	}
	if !created {
		return false, nil
	}

	if err := s.board.Increment(ctx, userID, amount); err != nil {
		// El ledger en la base es la fuente de verdad; el ranking se
		// reconstruye desde ahí cuando haga falta.
		s.logger.Warn("leaderboard increment failed", zap.Error(err), zap.String("user_id", userID))
	}

	return true, nil
}

func (s *PointsService) Total(ctx context.Context, userID string) (int, error) {
	if s == nil || s.entries == nil {
		return 0, ErrPointsNotConfigured
	}
	return s.entries.TotalByUser(ctx, userID)
}

// Leaderboard devuelve el top N desde el cache; si está vacío o falla,
// cae al agregado en la base.
func (s *PointsService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if s == nil || s.entries == nil {
		return nil, ErrPointsNotConfigured
	}
	if limit <= 0 {
		limit = 10
	}

	top, err := s.board.Top(ctx, limit)
	if err == nil && len(top) > 0 {
		return top, nil
	}
	if err != nil {
		s.logger.Warn("leaderboard cache read failed", zap.Error(err))
	}

	return s.entries.TopTotals(ctx, limit)
}
