package service

import (
	"context"
	"testing"
	"time"

	"mentor-pulse/internal/domain"
)

func newTestAggregator(signals *mockSignalRepo, profiles *mockProfileRepo) *ScoreAggregator {
	return NewScoreAggregator(signals, profiles, newMockUserRepo(), DefaultWeightTable(), 24*time.Hour, nil)
}

func seedSignal(repo *mockSignalRepo, userID, interactionID string, kind domain.SignalKind, magnitude float64) {
	_, _ = repo.CreateUnique(context.Background(), domain.Signal{
		ID:            "s-" + interactionID + "-" + string(kind),
		UserID:        userID,
		InteractionID: interactionID,
		Kind:          kind,
		Magnitude:     magnitude,
		CreatedAt:     time.Now().UTC(),
	})
}

func TestEvaluate_NoSignalsResetsToBaseline(t *testing.T) {
	signals := newMockSignalRepo()
	profiles := newMockProfileRepo()
	aggregator := newTestAggregator(signals, profiles)

	// Perfil viejo con score alto: sin señales en ventana debe decaer.
	profiles.profiles["u1"] = domain.StruggleProfile{
		UserID: "u1", Score: 8.4, Trend: domain.TrendRising, SupportLevel: domain.SupportHigh,
	}

	profile, err := aggregator.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if profile.Score != 1 {
		t.Fatalf("score = %v, want baseline 1", profile.Score)
	}
	// Ventana vacía: reset completo, no una caída que luego cuente como mejora.
	if profile.Trend != domain.TrendStable {
		t.Fatalf("trend = %v, want stable on empty window", profile.Trend)
	}
	if profile.IsBreakthrough() {
		t.Fatalf("signals aging out must not read as a breakthrough: %+v", profile)
	}
	if profile.SupportLevel != domain.SupportLow {
		t.Fatalf("support = %v, want low", profile.SupportLevel)
	}
	if len(profile.Contributors) != 0 {
		t.Fatalf("expected empty contributors, got %+v", profile.Contributors)
	}
	if profile.Reason != "" {
		t.Fatalf("expected empty reason, got %q", profile.Reason)
	}
	if stored := profiles.profiles["u1"]; stored.Score != 1 {
		t.Fatalf("baseline profile was not persisted: %+v", stored)
	}
}

func TestEvaluate_SingleFailedAttempt(t *testing.T) {
	signals := newMockSignalRepo()
	profiles := newMockProfileRepo()
	aggregator := newTestAggregator(signals, profiles)

	seedSignal(signals, "u1", "i1", domain.SignalFailedAttempt, 1.0)

	profile, err := aggregator.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	// raw = 0.20*1.0 -> score = round((1+0.2*9)*10)/10 = 2.8
	if profile.Score != 2.8 {
		t.Fatalf("score = %v, want 2.8", profile.Score)
	}
	if profile.SupportLevel != domain.SupportLow {
		t.Fatalf("support = %v, want low", profile.SupportLevel)
	}
	if profile.Trend != domain.TrendStable {
		t.Fatalf("trend = %v, want stable without previous profile", profile.Trend)
	}
	if profile.Reason != "failed attempt" {
		t.Fatalf("reason = %q, want %q", profile.Reason, "failed attempt")
	}
}

func TestEvaluate_MaxMagnitudePerKind(t *testing.T) {
	signals := newMockSignalRepo()
	profiles := newMockProfileRepo()
	aggregator := newTestAggregator(signals, profiles)

	// Dos señales del mismo kind: manda la máxima, no la suma.
	seedSignal(signals, "u1", "i1", domain.SignalRepeatedTopic, 0.4)
	seedSignal(signals, "u1", "i2", domain.SignalRepeatedTopic, 0.8)

	profile, err := aggregator.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	// raw = 0.25*0.8 = 0.2 -> score = round((1+1.8)*10)/10 = 2.8
	if profile.Score != 2.8 {
		t.Fatalf("score = %v, want 2.8", profile.Score)
	}
	if len(profile.Contributors) != 1 {
		t.Fatalf("expected a single contributor, got %+v", profile.Contributors)
	}
	if profile.Contributors[0].Magnitude != 0.8 {
		t.Fatalf("contributor magnitude = %v, want max 0.8", profile.Contributors[0].Magnitude)
	}
}

func TestEvaluate_TrendClassification(t *testing.T) {
	signals := newMockSignalRepo()
	profiles := newMockProfileRepo()
	aggregator := newTestAggregator(signals, profiles)

	profiles.profiles["u1"] = domain.StruggleProfile{UserID: "u1", Score: 2.0}

	seedSignal(signals, "u1", "i1", domain.SignalFailedAttempt, 1.0)
	seedSignal(signals, "u1", "i2", domain.SignalRepeatedTopic, 1.0)
	seedSignal(signals, "u1", "i3", domain.SignalLongResponseTime, 1.0)

	profile, err := aggregator.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	// raw = 0.25 + 0.20 + 0.15 = 0.60 -> score 6.4; 6.4 > 2.0+0.5 -> rising.
	if profile.Score != 6.4 {
		t.Fatalf("score = %v, want 6.4", profile.Score)
	}
	if profile.Trend != domain.TrendRising {
		t.Fatalf("trend = %v, want rising", profile.Trend)
	}
	if profile.SupportLevel != domain.SupportMedium {
		t.Fatalf("support = %v, want medium", profile.SupportLevel)
	}
}

func TestEvaluate_ReasonUsesTwoHighestWeightedKinds(t *testing.T) {
	signals := newMockSignalRepo()
	profiles := newMockProfileRepo()
	aggregator := newTestAggregator(signals, profiles)

	seedSignal(signals, "u1", "i1", domain.SignalHintDependency, 0.9)
	seedSignal(signals, "u1", "i2", domain.SignalFailedAttempt, 1.0)
	seedSignal(signals, "u1", "i3", domain.SignalRepeatedTopic, 0.5)

	profile, err := aggregator.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if profile.Reason != "repeated topic & failed attempt" {
		t.Fatalf("reason = %q, want top-two weighted kinds", profile.Reason)
	}
}

func TestEvaluate_ScoreStaysInRange(t *testing.T) {
	signals := newMockSignalRepo()
	profiles := newMockProfileRepo()
	aggregator := newTestAggregator(signals, profiles)

	for i, kind := range domain.AllSignalKinds() {
		seedSignal(signals, "u1", string(rune('a'+i)), kind, 1.0)
	}

	profile, err := aggregator.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if profile.Score != 10 {
		t.Fatalf("all kinds at max: score = %v, want 10", profile.Score)
	}
	if profile.SupportLevel != domain.SupportHigh {
		t.Fatalf("support = %v, want high", profile.SupportLevel)
	}
}

func TestHasBreakthrough(t *testing.T) {
	signals := newMockSignalRepo()
	profiles := newMockProfileRepo()
	aggregator := newTestAggregator(signals, profiles)

	got, err := aggregator.HasBreakthrough(context.Background(), "missing")
	if err != nil || got {
		t.Fatalf("no profile: got (%v, %v), want (false, nil)", got, err)
	}

	profiles.profiles["u1"] = domain.StruggleProfile{UserID: "u1", Score: 3.5, Trend: domain.TrendFalling}
	if got, _ := aggregator.HasBreakthrough(context.Background(), "u1"); !got {
		t.Fatalf("falling trend with low score should be a breakthrough")
	}

	profiles.profiles["u2"] = domain.StruggleProfile{UserID: "u2", Score: 6.0, Trend: domain.TrendFalling}
	if got, _ := aggregator.HasBreakthrough(context.Background(), "u2"); got {
		t.Fatalf("score above 4 should not be a breakthrough")
	}

	profiles.profiles["u3"] = domain.StruggleProfile{UserID: "u3", Score: 2.0, Trend: domain.TrendStable}
	if got, _ := aggregator.HasBreakthrough(context.Background(), "u3"); got {
		t.Fatalf("stable trend should not be a breakthrough")
	}
}
