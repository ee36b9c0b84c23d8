package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mentor-pulse/internal/service"
)

// AlertHandler expone las alertas de seguimiento para tutores.
type AlertHandler struct {
	logger    *zap.Logger
	alertServ *service.AlertService
}

func NewAlertHandler(logger *zap.Logger, alertServ *service.AlertService) *AlertHandler {
	return &AlertHandler{
		logger:    logger,
		alertServ: alertServ,
	}
}

// ListUnread maneja GET /alerts.
func (h *AlertHandler) ListUnread(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	alerts, err := h.alertServ.ListUnread(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list alerts failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list alerts"})
		return
	}
	if alerts == nil {
		alerts = []service.AlertView{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// MarkRead maneja POST /alerts/:id/read.
func (h *AlertHandler) MarkRead(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	alertID := strings.TrimSpace(c.Param("id"))
	if alertID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.alertServ.MarkRead(c.Request.Context(), alertID, claims.UserID); err != nil {
		if errors.Is(err, service.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		h.logger.Error("mark alert read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark alert"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}
