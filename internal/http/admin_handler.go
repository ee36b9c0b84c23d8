package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mentor-pulse/internal/service"
)

// AdminHandler expone agregados de esfuerzo para administradores.
// Nunca expone perfiles individuales de estudiantes.
type AdminHandler struct {
	logger      *zap.Logger
	insightServ *service.InsightService
}

func NewAdminHandler(logger *zap.Logger, insightServ *service.InsightService) *AdminHandler {
	return &AdminHandler{
		logger:      logger,
		insightServ: insightServ,
	}
}

// StruggleSummary maneja GET /admin/struggle/summary.
func (h *AdminHandler) StruggleSummary(c *gin.Context) {
	summary, err := h.insightServ.SupportLevels(c.Request.Context())
	if err != nil {
		h.logger.Error("struggle summary failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// StruggleTopics maneja GET /admin/struggle/topics.
func (h *AdminHandler) StruggleTopics(c *gin.Context) {
	var window time.Duration
	if raw := c.Query("window_hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window_hours"})
			return
		}
		window = time.Duration(hours) * time.Hour
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	topics, err := h.insightServ.TopStrugglingTopics(c.Request.Context(), window, limit)
	if err != nil {
		h.logger.Error("struggle topics failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list topics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}
