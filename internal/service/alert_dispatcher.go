package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mentor-pulse/internal/domain"
	"mentor-pulse/internal/repository"
)

// DispatcherConfig concentra las constantes de producto del despachador.
type DispatcherConfig struct {
	Cooldown      time.Duration
	CriticalScore float64
}

// DefaultDispatcherConfig devuelve la configuración de producción.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Cooldown:      24 * time.Hour,
		CriticalScore: 9,
	}
}

var ErrDispatcherNotConfigured = errors.New("alert dispatcher not configured")

// alertMessageTemplate es la única superficie que ve el tutor: una plantilla
// de apoyo, sin culpas y sin datos crudos de señales.
const alertMessageTemplate = "%s may appreciate some extra support with %s right now. A quick check-in could make a real difference."

const fallbackTopic = "current topic"

// AlertDispatcher crea como máximo una alerta por par (tutor, student) por
// ventana de cooldown, para los tutores de la care network del estudiante.
type AlertDispatcher struct {
	profiles repository.ProfileRepository
	networks repository.CareNetworkRepository
	alerts   repository.AlertRepository
	users    repository.UserRepository
	cooldown CooldownGuard
	cfg      DispatcherConfig
	logger   *zap.Logger
}

func NewAlertDispatcher(
	profiles repository.ProfileRepository,
	networks repository.CareNetworkRepository,
	alerts repository.AlertRepository,
	users repository.UserRepository,
	cooldown CooldownGuard,
	cfg DispatcherConfig,
	logger *zap.Logger,
) *AlertDispatcher {
	if cooldown == nil {
		cooldown = NewMemoryCooldownGuard()
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 24 * time.Hour
	}
	if cfg.CriticalScore <= 0 {
		cfg.CriticalScore = 9
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertDispatcher{
		profiles: profiles,
		networks: networks,
		alerts:   alerts,
		users:    users,
		cooldown: cooldown,
		cfg:      cfg,
		logger:   logger,
	}
}

// Dispatch evalúa el perfil del estudiante y notifica a su care network.
// Falta de perfil, de red o de urgencia devuelven vacío, nunca error; los
// tutores en cooldown se excluyen en silencio.
func (d *AlertDispatcher) Dispatch(ctx context.Context, studentID string) ([]domain.TutorAlert, error) {
	if d == nil || d.profiles == nil || d.networks == nil || d.alerts == nil {
		return nil, ErrDispatcherNotConfigured
	}

	profile, err := d.profiles.GetByUserID(ctx, studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if !d.shouldAlert(profile) {
		return nil, nil
	}

	network, err := d.networks.GetByStudentID(ctx, studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get care network: %w", err)
	}
	if len(network.TutorIDs) == 0 {
		return nil, nil
	}

	topic := profile.Reason
	if topic == "" {
		topic = fallbackTopic
	}

	urgency := domain.UrgencySoft
	if profile.Score >= d.cfg.CriticalScore {
		urgency = domain.UrgencyUrgent
	}

	studentName := d.displayName(ctx, studentID)
	now := time.Now().UTC()

	var created []domain.TutorAlert
	for _, tutorID := range network.TutorIDs {
		recent, err := d.alerts.ExistsRecent(ctx, tutorID, studentID, now.Add(-d.cfg.Cooldown))
		if err != nil {
			return created, fmt.Errorf("check recent alerts: %w", err)
		}
		if recent {
			continue
		}

		acquired, err := d.cooldown.Acquire(ctx, tutorID, studentID, d.cfg.Cooldown)
		if err != nil {
			return created, fmt.Errorf("acquire cooldown: %w", err)
		}
		if !acquired {
			continue
		}

		alert := domain.TutorAlert{
			ID:        uuid.NewString(),
			TutorID:   tutorID,
			StudentID: studentID,
			Urgency:   urgency,
			Topic:     topic,
			Score:     profile.Score,
			Message:   fmt.Sprintf(alertMessageTemplate, studentName, topic),
			CreatedAt: now,
		}
		if err := d.alerts.Create(ctx, alert); err != nil {
			return created, fmt.Errorf("create alert: %w", err)
		}
		created = append(created, alert)
	}

	if len(created) > 0 {
		d.logger.Info("tutor alerts dispatched",
			zap.String("student_id", studentID),
			zap.String("urgency", string(urgency)),
			zap.Int("alerts", len(created)),
		)
	}

	return created, nil
}

// shouldAlert implementa la puerta de elegibilidad: soporte alto con
// tendencia en alza, o score crítico que la bypassea.
func (d *AlertDispatcher) shouldAlert(profile domain.StruggleProfile) bool {
	if profile.Score >= d.cfg.CriticalScore {
		return true
	}
	return profile.SupportLevel == domain.SupportHigh && profile.Trend == domain.TrendRising
}

func (d *AlertDispatcher) displayName(ctx context.Context, studentID string) string {
	if d.users == nil {
		return "Your student"
	}
	user, err := d.users.GetByID(ctx, studentID)
	if err != nil || user.DisplayName == "" {
		return "Your student"
	}
	return user.DisplayName
}
