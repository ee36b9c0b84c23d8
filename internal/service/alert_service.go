package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mentor-pulse/internal/domain"
	"mentor-pulse/internal/repository"
)

var (
	ErrAlertNotConfigured = errors.New("alert service not configured")
	ErrAlertNotFound      = errors.New("alert not found")
)

// AlertView es la proyección de una alerta para la bandeja del tutor.
type AlertView struct {
	ID          string              `json:"id"`
	StudentName string              `json:"student_name"`
	Topic       string              `json:"topic"`
	Urgency     domain.AlertUrgency `json:"urgency"`
	Message     string              `json:"message"`
	Read        bool                `json:"read"`
	CreatedAt   time.Time           `json:"created_at"`
}

// AlertService es la superficie de lectura para tutores. Los estudiantes no
// tienen superficie equivalente: sus señales y scores nunca se les exponen.
type AlertService struct {
	alerts repository.AlertRepository
	users  repository.UserRepository
}

func NewAlertService(alerts repository.AlertRepository, users repository.UserRepository) *AlertService {
	return &AlertService{
		alerts: alerts,
		users:  users,
	}
}

// ListUnread devuelve las alertas no leídas del tutor, más recientes primero.
func (s *AlertService) ListUnread(ctx context.Context, tutorID string) ([]AlertView, error) {
	if s == nil || s.alerts == nil {
		return nil, ErrAlertNotConfigured
	}
	tutorID = strings.TrimSpace(tutorID)
	if tutorID == "" {
		return []AlertView{}, nil
	}

	alerts, err := s.alerts.ListUnreadByTutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list unread alerts: %w", err)
	}

	names := make(map[string]string)
	views := make([]AlertView, 0, len(alerts))
	for _, alert := range alerts {
		views = append(views, AlertView{
			ID:          alert.ID,
			StudentName: s.studentName(ctx, names, alert.StudentID),
			Topic:       alert.Topic,
			Urgency:     alert.Urgency,
			Message:     alert.Message,
			Read:        alert.Read,
			CreatedAt:   alert.CreatedAt,
		})
	}
	return views, nil
}

// MarkRead marca la alerta como leída verificando antes que pertenezca al
// tutor que la pide.
func (s *AlertService) MarkRead(ctx context.Context, alertID, tutorID string) error {
	if s == nil || s.alerts == nil {
		return ErrAlertNotConfigured
	}
	updated, err := s.alerts.MarkRead(ctx, strings.TrimSpace(alertID), strings.TrimSpace(tutorID))
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	if !updated {
		return ErrAlertNotFound
	}
	return nil
}

func (s *AlertService) studentName(ctx context.Context, cache map[string]string, studentID string) string {
	if name, ok := cache[studentID]; ok {
		return name
	}
	name := "Student"
	if s.users != nil {
		if user, err := s.users.GetByID(ctx, studentID); err == nil && user.DisplayName != "" {
			name = user.DisplayName
		}
	}
	cache[studentID] = name
	return name
}
