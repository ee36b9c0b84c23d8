package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentor-pulse/internal/domain"
	"mentor-pulse/internal/repository"
)

var ErrInsightNotConfigured = errors.New("insight service not configured")

// SupportSummary es la vista admin de cuántos perfiles hay por nivel.
type SupportSummary struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
	Total  int `json:"total"`
}

// InsightService expone proyecciones agregadas de solo lectura para el panel
// admin. No participa del pipeline: consume lo que éste dejó persistido.
type InsightService struct {
	profiles repository.ProfileRepository
	signals  repository.SignalRepository
}

func NewInsightService(profiles repository.ProfileRepository, signals repository.SignalRepository) *InsightService {
	return &InsightService{
		profiles: profiles,
		signals:  signals,
	}
}

// SupportLevels cuenta perfiles por nivel de soporte.
func (s *InsightService) SupportLevels(ctx context.Context) (SupportSummary, error) {
	if s == nil || s.profiles == nil {
		return SupportSummary{}, ErrInsightNotConfigured
	}
	counts, err := s.profiles.CountBySupportLevel(ctx)
	if err != nil {
		return SupportSummary{}, fmt.Errorf("count profiles: %w", err)
	}
	summary := SupportSummary{
		Low:    counts[domain.SupportLow],
		Medium: counts[domain.SupportMedium],
		High:   counts[domain.SupportHigh],
	}
	summary.Total = summary.Low + summary.Medium + summary.High
	return summary, nil
}

// TopStrugglingTopics devuelve los topics con más señales en la ventana.
func (s *InsightService) TopStrugglingTopics(ctx context.Context, window time.Duration, limit int) ([]repository.TopicCount, error) {
	if s == nil || s.signals == nil {
		return nil, ErrInsightNotConfigured
	}
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	if limit <= 0 {
		limit = 10
	}
	since := time.Now().UTC().Add(-window)
	return s.signals.TopTopicsSince(ctx, since, limit)
}
