package service

import (
	"context"
	"testing"
	"time"

	"mentor-pulse/internal/domain"
)

func TestInsightServiceSupportLevels(t *testing.T) {
	profiles := newMockProfileRepo()
	seed := []struct {
		userID string
		level  domain.SupportLevel
	}{
		{"u1", domain.SupportLow},
		{"u2", domain.SupportLow},
		{"u3", domain.SupportMedium},
		{"u4", domain.SupportHigh},
	}
	for _, s := range seed {
		_ = profiles.Upsert(context.Background(), domain.StruggleProfile{UserID: s.userID, SupportLevel: s.level})
	}

	svc := NewInsightService(profiles, newMockSignalRepo())

	summary, err := svc.SupportLevels(context.Background())
	if err != nil {
		t.Fatalf("support levels: %v", err)
	}
	if summary.Low != 2 || summary.Medium != 1 || summary.High != 1 || summary.Total != 4 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestInsightServiceTopStrugglingTopics(t *testing.T) {
	signals := newMockSignalRepo()
	now := time.Now().UTC()
	seed := []struct {
		id    string
		topic string
		age   time.Duration
	}{
		{"i1", "recursion", time.Hour},
		{"i2", "recursion", 2 * time.Hour},
		{"i3", "pointers", time.Hour},
		{"i4", "goroutines", 10 * 24 * time.Hour}, // fuera de la ventana por defecto
	}
	for _, s := range seed {
		if _, err := signals.CreateUnique(context.Background(), domain.Signal{
			InteractionID: s.id,
			UserID:        "u1",
			Kind:          domain.SignalFailedAttempt,
			Topic:         s.topic,
			CreatedAt:     now.Add(-s.age),
		}); err != nil {
			t.Fatalf("seed signal: %v", err)
		}
	}

	svc := NewInsightService(newMockProfileRepo(), signals)

	topics, err := svc.TopStrugglingTopics(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("top topics: %v", err)
	}
	counts := make(map[string]int)
	for _, tc := range topics {
		counts[tc.Topic] = tc.Count
	}
	if counts["recursion"] != 2 || counts["pointers"] != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if _, ok := counts["goroutines"]; ok {
		t.Fatalf("stale topic leaked into default window: %+v", counts)
	}
}

func TestInsightServiceNotConfigured(t *testing.T) {
	var svc *InsightService
	if _, err := svc.SupportLevels(context.Background()); err == nil {
		t.Fatalf("nil service should error")
	}
	if _, err := svc.TopStrugglingTopics(context.Background(), time.Hour, 5); err == nil {
		t.Fatalf("nil service should error")
	}
}
