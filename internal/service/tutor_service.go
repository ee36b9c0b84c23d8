package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mentor-pulse/internal/domain"
	"mentor-pulse/internal/llm"
	"mentor-pulse/internal/repository"
)

var (
	ErrTutorNotConfigured = errors.New("tutor service not configured")
	ErrTutorInvalidInput  = errors.New("tutor invalid input")
	ErrTutorUnavailable   = errors.New("tutor upstream unavailable")
)

// TutorAnswer es lo que recibe el learner: la respuesta y el registro de la
// interacción que quedó persistido.
type TutorAnswer struct {
	Answer      string             `json:"answer,omitempty"`
	Interaction domain.Interaction `json:"interaction"`
}

// TutorService atiende consultas al tutor AI. Primero resuelve y persiste la
// interacción; después dispara el pipeline de struggle como efecto secundario
// que jamás demora ni rompe la respuesta al usuario.
type TutorService struct {
	llmClient    llm.LLMClient
	interactions repository.InteractionRepository
	pipeline     *StrugglePipeline
	points       *PointsService
	logger       *zap.Logger
}

func NewTutorService(
	llmClient llm.LLMClient,
	interactions repository.InteractionRepository,
	pipeline *StrugglePipeline,
	points *PointsService,
	logger *zap.Logger,
) *TutorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TutorService{
		llmClient:    llmClient,
		interactions: interactions,
		pipeline:     pipeline,
		points:       points,
		logger:       logger,
	}
}

// Ask resuelve una consulta del usuario contra el LLM y registra el resultado.
// Si el upstream falla, la interacción igual se persiste con status failed:
// un intento fallido también es señal.
func (s *TutorService) Ask(ctx context.Context, user domain.User, topic, input string) (TutorAnswer, error) {
	if s == nil || s.llmClient == nil || s.interactions == nil {
		return TutorAnswer{}, ErrTutorNotConfigured
	}

	topic = strings.TrimSpace(topic)
	input = strings.TrimSpace(input)
	if input == "" {
		return TutorAnswer{}, ErrTutorInvalidInput
	}

	prompt := buildTutorPrompt(topic, input)

	started := time.Now()
	answer, llmErr := s.llmClient.Generate(ctx, prompt)
	latency := time.Since(started)

	status := domain.InteractionAnswered
	if llmErr != nil {
		status = domain.InteractionFailed
	}

	interaction := domain.Interaction{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		Track:     user.Track,
		Topic:     topic,
		Input:     input,
		Status:    status,
		LatencyMS: latency.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.interactions.Create(ctx, interaction); err != nil {
		// Sin registro no hay señales ni puntos; esto sí es un error duro.
		return TutorAnswer{}, err
	}

	s.awardParticipation(ctx, user, interaction)

	if s.pipeline != nil {
		s.pipeline.RunAsync(interaction)
	}

	if llmErr != nil {
		s.logger.Warn("tutor upstream failed",
			zap.Error(llmErr),
			zap.String("user_id", user.ID),
			zap.String("interaction_id", interaction.ID),
		)
		return TutorAnswer{Interaction: interaction}, ErrTutorUnavailable
	}

	return TutorAnswer{Answer: answer, Interaction: interaction}, nil
}

func (s *TutorService) awardParticipation(ctx context.Context, user domain.User, interaction domain.Interaction) {
	if s.points == nil || user.Role != domain.RoleLearner {
		return
	}
	if _, err := s.points.Award(ctx, user.ID, domain.PointsKindInteraction, interaction.ID, interactionPoints); err != nil {
		s.logger.Warn("participation award failed", zap.Error(err), zap.String("user_id", user.ID))
	}
}

func buildTutorPrompt(topic, input string) string {
	var sb strings.Builder
	sb.WriteString("You are a patient programming mentor. Guide the learner towards the answer, prefer questions and small steps over full solutions.\n")
	if topic != "" {
		sb.WriteString("Topic: " + topic + "\n")
	}
	sb.WriteString("\nLearner question:\n" + input)
	return sb.String()
}
