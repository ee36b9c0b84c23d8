package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mentor-pulse/internal/domain"
	"mentor-pulse/internal/llm"
)

func TestTutorServiceAsk(t *testing.T) {
	interactions := &mockInteractionRepo{}
	points := newMockPointsRepo()
	pointsSvc := NewPointsService(points, nil, nil)
	client := &llm.MockClient{Response: "try breaking it into a base case"}
	svc := NewTutorService(client, interactions, nil, pointsSvc, nil)

	learner := domain.User{ID: "u1", Role: domain.RoleLearner, Track: "backend"}
	answer, err := svc.Ask(context.Background(), learner, "recursion", "how do I stop infinite recursion?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if answer.Answer == "" {
		t.Fatalf("empty answer")
	}
	if answer.Interaction.Status != domain.InteractionAnswered {
		t.Fatalf("status = %v, want answered", answer.Interaction.Status)
	}
	if len(interactions.interactions) != 1 {
		t.Fatalf("interaction not persisted")
	}
	if !strings.Contains(client.LastPrompt, "Topic: recursion") {
		t.Fatalf("prompt sent upstream lost the topic: %q", client.LastPrompt)
	}

	total, err := points.TotalByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("points total: %v", err)
	}
	if total != interactionPoints {
		t.Fatalf("participation points = %d, want %d", total, interactionPoints)
	}
}

func TestTutorServiceAsk_UpstreamFailureStillRecords(t *testing.T) {
	interactions := &mockInteractionRepo{}
	svc := NewTutorService(&llm.MockClient{Err: errors.New("boom")}, interactions, nil, nil, nil)

	learner := domain.User{ID: "u1", Role: domain.RoleLearner}
	answer, err := svc.Ask(context.Background(), learner, "recursion", "help")
	if !errors.Is(err, ErrTutorUnavailable) {
		t.Fatalf("expected ErrTutorUnavailable, got %v", err)
	}
	if answer.Interaction.Status != domain.InteractionFailed {
		t.Fatalf("status = %v, want failed", answer.Interaction.Status)
	}
	if len(interactions.interactions) != 1 {
		t.Fatalf("failed interaction was not persisted")
	}
}

func TestTutorServiceAsk_RejectsEmptyInput(t *testing.T) {
	svc := NewTutorService(&llm.MockClient{Response: "hi"}, &mockInteractionRepo{}, nil, nil, nil)
	if _, err := svc.Ask(context.Background(), domain.User{ID: "u1"}, "topic", "   "); !errors.Is(err, ErrTutorInvalidInput) {
		t.Fatalf("expected ErrTutorInvalidInput, got %v", err)
	}
}

func TestTutorServiceAsk_TutorsEarnNoParticipationPoints(t *testing.T) {
	points := newMockPointsRepo()
	pointsSvc := NewPointsService(points, nil, nil)
	svc := NewTutorService(&llm.MockClient{Response: "sure"}, &mockInteractionRepo{}, nil, pointsSvc, nil)

	tutor := domain.User{ID: "t1", Role: domain.RoleTutor}
	if _, err := svc.Ask(context.Background(), tutor, "", "quick question"); err != nil {
		t.Fatalf("ask: %v", err)
	}
	total, err := points.TotalByUser(context.Background(), "t1")
	if err != nil {
		t.Fatalf("points total: %v", err)
	}
	if total != 0 {
		t.Fatalf("tutor earned %d points, want 0", total)
	}
}

func TestBuildTutorPrompt(t *testing.T) {
	prompt := buildTutorPrompt("recursion", "why does this loop forever?")
	if !strings.Contains(prompt, "Topic: recursion") {
		t.Fatalf("topic missing from prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "why does this loop forever?") {
		t.Fatalf("question missing from prompt: %q", prompt)
	}

	noTopic := buildTutorPrompt("", "help")
	if strings.Contains(noTopic, "Topic:") {
		t.Fatalf("empty topic should be omitted: %q", noTopic)
	}
}
