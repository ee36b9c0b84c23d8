package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mentor-pulse/internal/service"
)

// TutorHandler expone el tutor conversacional.
type TutorHandler struct {
	logger    *zap.Logger
	userServ  *service.UserService
	tutorServ *service.TutorService
}

func NewTutorHandler(logger *zap.Logger, userServ *service.UserService, tutorServ *service.TutorService) *TutorHandler {
	return &TutorHandler{
		logger:    logger,
		userServ:  userServ,
		tutorServ: tutorServ,
	}
}

// Ask maneja POST /tutor/ask.
func (h *TutorHandler) Ask(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Topic string `json:"topic" binding:"required"`
		Input string `json:"input" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid tutor ask request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		h.logger.Error("load user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return
	}

	answer, err := h.tutorServ.Ask(c.Request.Context(), user, req.Topic, req.Input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTutorInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		case errors.Is(err, service.ErrTutorUnavailable):
			// La interaccion fallida ya quedo registrada; el cliente puede reintentar.
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":          "tutor unavailable",
				"interaction_id": answer.Interaction.ID,
			})
			return
		default:
			h.logger.Error("tutor ask failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not answer"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":      answer.Answer,
		"interaction": answer.Interaction,
	})
}
