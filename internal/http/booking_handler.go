package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mentor-pulse/internal/domain"
	"mentor-pulse/internal/service"
)

// BookingHandler expone la agenda de sesiones tutor-estudiante.
type BookingHandler struct {
	logger      *zap.Logger
	bookingServ *service.BookingService
}

func NewBookingHandler(logger *zap.Logger, bookingServ *service.BookingService) *BookingHandler {
	return &BookingHandler{
		logger:      logger,
		bookingServ: bookingServ,
	}
}

// Create maneja POST /bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		TutorID     string    `json:"tutor_id" binding:"required"`
		Topic       string    `json:"topic"`
		ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create booking request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	booking, err := h.bookingServ.Create(c.Request.Context(), claims.UserID, req.TutorID, req.Topic, req.ScheduledAt)
	if err != nil {
		if errors.Is(err, service.ErrBookingInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		h.logger.Error("create booking failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create booking"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// Confirm maneja POST /bookings/:id/confirm.
func (h *BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, h.bookingServ.Confirm)
}

// Complete maneja POST /bookings/:id/complete.
func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.bookingServ.Complete)
}

// Cancel maneja POST /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.bookingServ.Cancel)
}

// ListByUser maneja GET /bookings.
func (h *BookingHandler) ListByUser(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	bookings, err := h.bookingServ.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list bookings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

type bookingTransition func(ctx context.Context, bookingID, userID string) (domain.Booking, error)

func (h *BookingHandler) transition(c *gin.Context, fn bookingTransition) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	bookingID := strings.TrimSpace(c.Param("id"))
	if bookingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	booking, err := fn(c.Request.Context(), bookingID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, service.ErrBookingForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "booking does not belong to user"})
		case errors.Is(err, service.ErrBookingWrongState):
			c.JSON(http.StatusConflict, gin.H{"error": "booking in wrong state"})
		default:
			h.logger.Error("booking transition failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}
