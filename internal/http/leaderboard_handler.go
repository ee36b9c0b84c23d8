package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mentor-pulse/internal/domain"
	"mentor-pulse/internal/service"
)

const defaultLeaderboardSize = 10

// LeaderboardHandler expone el tablero de puntos.
type LeaderboardHandler struct {
	logger     *zap.Logger
	pointsServ *service.PointsService
}

func NewLeaderboardHandler(logger *zap.Logger, pointsServ *service.PointsService) *LeaderboardHandler {
	return &LeaderboardHandler{
		logger:     logger,
		pointsServ: pointsServ,
	}
}

// Leaderboard maneja GET /leaderboard.
func (h *LeaderboardHandler) Leaderboard(c *gin.Context) {
	limit := defaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.pointsServ.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("leaderboard failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build leaderboard"})
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
