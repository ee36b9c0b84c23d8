package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mentor-pulse/internal/domain"
	"mentor-pulse/internal/repository"
)

// ExtractorConfig concentra las constantes de producto del extractor.
// Los valores por defecto replican la calibración original; se inyectan en la
// construcción para que los tests puedan usar otras tablas.
type ExtractorConfig struct {
	Lookback time.Duration

	RepeatedTopicMin      int
	RepeatedTopicRangeMin float64
	RepeatedTopicRangeMax float64

	LatencyRatioMin     float64
	LatencyRangeMin     float64
	LatencyRangeMax     float64
	BaselineLatencyMS   float64
	LatencySampleSize   int

	SentimentCutoff float64

	HintRangeMin float64
	HintRangeMax float64

	EngagementMinWindow int
	EngagementMinPrev   int
	EngagementHalfSpan  time.Duration
	EngagementRangeMin  float64
	EngagementRangeMax  float64
	EngagementCutoff    float64
}

// DefaultExtractorConfig devuelve la configuración de producción.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Lookback:              24 * time.Hour,
		RepeatedTopicMin:      3,
		RepeatedTopicRangeMin: 1,
		RepeatedTopicRangeMax: 5,
		LatencyRatioMin:       1.5,
		LatencyRangeMin:       1.1,
		LatencyRangeMax:       2.5,
		BaselineLatencyMS:     4000,
		LatencySampleSize:     30,
		SentimentCutoff:       0.45,
		HintRangeMin:          1,
		HintRangeMax:          8,
		EngagementMinWindow:   10,
		EngagementMinPrev:     3,
		EngagementHalfSpan:    6 * time.Hour,
		EngagementRangeMin:    0.1,
		EngagementRangeMax:    0.8,
		EngagementCutoff:      0.6,
	}
}

// ExtractionResult reporta cuántas señales se crearon y cuántas ya existían.
type ExtractionResult struct {
	Created int             `json:"created"`
	Skipped int             `json:"skipped"`
	Signals []domain.Signal `json:"signals"`
}

var ErrExtractorNotConfigured = errors.New("signal extractor not configured")

// SignalExtractor inspecciona una interacción terminada más la ventana
// reciente del usuario y emite señales normalizadas de struggle. Cada regla
// es independiente y degrada en silencio si no puede computar sus entradas.
type SignalExtractor struct {
	signals      repository.SignalRepository
	interactions repository.InteractionRepository
	lexicon      Lexicon
	cfg          ExtractorConfig
	logger       *zap.Logger
}

func NewSignalExtractor(
	signals repository.SignalRepository,
	interactions repository.InteractionRepository,
	lexicon Lexicon,
	cfg ExtractorConfig,
	logger *zap.Logger,
) *SignalExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignalExtractor{
		signals:      signals,
		interactions: interactions,
		lexicon:      lexicon,
		cfg:          cfg,
		logger:       logger,
	}
}

// Extract corre todas las reglas de detección sobre la interacción y persiste
// cada señal que disparó. Un duplicado (interacción, kind) cuenta como
// skipped, nunca como error: re-extraer es siempre seguro.
func (e *SignalExtractor) Extract(ctx context.Context, interaction domain.Interaction) (ExtractionResult, error) {
	if e == nil || e.signals == nil || e.interactions == nil {
		return ExtractionResult{}, ErrExtractorNotConfigured
	}

	// Solo las interacciones del learner alimentan la detección.
	if interaction.Role != domain.RoleLearner {
		return ExtractionResult{}, nil
	}

	window, err := e.loadWindow(ctx, interaction)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("load lookback window: %w", err)
	}

	var candidates []domain.Signal
	appendIf := func(sig *domain.Signal) {
		if sig != nil {
			candidates = append(candidates, *sig)
		}
	}

	appendIf(e.detectFailedAttempt(interaction))
	appendIf(e.detectRepeatedTopic(interaction, window))
	appendIf(e.detectLongResponseTime(interaction, window))
	appendIf(e.detectNegativeSentiment(interaction))
	appendIf(e.detectHintDependency(interaction, window))
	appendIf(e.detectEngagementDrop(interaction, window))

	result := ExtractionResult{}
	for _, candidate := range candidates {
		created, err := e.signals.CreateUnique(ctx, candidate)
		if err != nil {
			return result, fmt.Errorf("persist signal %s: %w", candidate.Kind, err)
		}
		if created {
			result.Created++
			result.Signals = append(result.Signals, candidate)
		} else {
			result.Skipped++
		}
	}

	e.logger.Debug("signal extraction done",
		zap.String("interaction_id", interaction.ID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

// loadWindow trae las interacciones de la ventana de lookback, garantizando
// que la interacción actual esté incluida aunque todavía no se haya persistido.
func (e *SignalExtractor) loadWindow(ctx context.Context, interaction domain.Interaction) ([]domain.Interaction, error) {
	since := interaction.CreatedAt.Add(-e.cfg.Lookback)
	window, err := e.interactions.ListByUserSince(ctx, interaction.UserID, since)
	if err != nil {
		return nil, err
	}
	for _, it := range window {
		if it.ID == interaction.ID {
			return window, nil
		}
	}
	return append([]domain.Interaction{interaction}, window...), nil
}

func (e *SignalExtractor) newSignal(interaction domain.Interaction, kind domain.SignalKind, magnitude float64, meta map[string]any) *domain.Signal {
	return &domain.Signal{
		ID:            uuid.NewString(),
		UserID:        interaction.UserID,
		InteractionID: interaction.ID,
		Topic:         interaction.Topic,
		Kind:          kind,
		Magnitude:     Clamp01(magnitude),
		Meta:          meta,
		CreatedAt:     time.Now().UTC(),
	}
}

// detectFailedAttempt: un intento fallido siempre dispara con magnitud 1.
func (e *SignalExtractor) detectFailedAttempt(interaction domain.Interaction) *domain.Signal {
	if interaction.Status != domain.InteractionFailed {
		return nil
	}
	return e.newSignal(interaction, domain.SignalFailedAttempt, 1.0, map[string]any{
		"status": string(interaction.Status),
	})
}

// detectRepeatedTopic: el mismo topic repetido en la ventana sugiere que el
// learner sigue trabado en lo mismo.
func (e *SignalExtractor) detectRepeatedTopic(interaction domain.Interaction, window []domain.Interaction) *domain.Signal {
	topic := strings.TrimSpace(interaction.Topic)
	if topic == "" {
		return nil
	}

	count := 0
	for _, it := range window {
		if strings.EqualFold(strings.TrimSpace(it.Topic), topic) {
			count++
		}
	}
	if count < e.cfg.RepeatedTopicMin {
		return nil
	}

	magnitude := Normalize(float64(count), e.cfg.RepeatedTopicRangeMin, e.cfg.RepeatedTopicRangeMax)
	return e.newSignal(interaction, domain.SignalRepeatedTopic, magnitude, map[string]any{
		"occurrences": count,
		"window_size": len(window),
	})
}

// detectLongResponseTime: compara la latencia actual contra la mediana de la
// muestra reciente. Sin historial usa la latencia de referencia.
func (e *SignalExtractor) detectLongResponseTime(interaction domain.Interaction, window []domain.Interaction) *domain.Signal {
	current := float64(interaction.LatencyMS)
	if current <= 0 {
		// Latencia ilegible: la regla no dispara, no aborta la pasada.
		return nil
	}

	var latencies []float64
	for _, it := range window {
		if it.ID == interaction.ID || it.LatencyMS <= 0 {
			continue
		}
		latencies = append(latencies, float64(it.LatencyMS))
		if len(latencies) >= e.cfg.LatencySampleSize {
			break
		}
	}

	baseline := e.cfg.BaselineLatencyMS
	if len(latencies) > 0 {
		baseline = median(latencies)
	}
	if baseline <= 0 {
		return nil
	}

	ratio := current / baseline
	if ratio < e.cfg.LatencyRatioMin {
		return nil
	}

	magnitude := Normalize(ratio, e.cfg.LatencyRangeMin, e.cfg.LatencyRangeMax)
	return e.newSignal(interaction, domain.SignalLongResponseTime, magnitude, map[string]any{
		"latency_ms":  interaction.LatencyMS,
		"median_ms":   baseline,
		"ratio":       ratio,
		"sample_size": len(latencies),
	})
}

// detectNegativeSentiment: puntúa el input con el léxico fijo. La metadata
// guarda solo conteos gruesos, nunca el texto crudo.
func (e *SignalExtractor) detectNegativeSentiment(interaction domain.Interaction) *domain.Signal {
	negatives, positives := e.lexicon.SentimentCounts(interaction.Input)
	// score ∈ [-1,1], -1 muy negativo; el shift de 0.1 tolera texto neutro.
	score := clamp(float64(positives-negatives), -3, 3) / 3
	magnitude := Clamp01((-score + 0.1) / 1.1)
	if magnitude < e.cfg.SentimentCutoff {
		return nil
	}

	return e.newSignal(interaction, domain.SignalNegativeSentiment, magnitude, map[string]any{
		"negative_matches": negatives,
		"positive_matches": positives,
		"score":            score,
	})
}

// detectHintDependency: si el input pide pistas, mide cuán seguido viene
// pidiendo pistas en la ventana. Siempre emite cuando hay match.
func (e *SignalExtractor) detectHintDependency(interaction domain.Interaction, window []domain.Interaction) *domain.Signal {
	if !e.lexicon.MatchesHint(interaction.Input) {
		return nil
	}

	count := 0
	for _, it := range window {
		if e.lexicon.MatchesHint(it.Input) {
			count++
		}
	}

	magnitude := Normalize(float64(count), e.cfg.HintRangeMin, e.cfg.HintRangeMax)
	return e.newSignal(interaction, domain.SignalHintDependency, magnitude, map[string]any{
		"hint_requests": count,
		"window_size":   len(window),
	})
}

// detectEngagementDrop: compara la actividad de las últimas 6 horas contra
// las 6 anteriores. Con ventanas chicas la regla se saltea: no hay señal
// estadísticamente honesta que emitir.
func (e *SignalExtractor) detectEngagementDrop(interaction domain.Interaction, window []domain.Interaction) *domain.Signal {
	if len(window) < e.cfg.EngagementMinWindow {
		return nil
	}

	anchor := interaction.CreatedAt
	recentStart := anchor.Add(-e.cfg.EngagementHalfSpan)
	prevStart := anchor.Add(-2 * e.cfg.EngagementHalfSpan)

	recent, preceding := 0, 0
	for _, it := range window {
		switch {
		case !it.CreatedAt.Before(recentStart):
			recent++
		case !it.CreatedAt.Before(prevStart):
			preceding++
		}
	}
	if preceding < e.cfg.EngagementMinPrev {
		return nil
	}

	ratio := float64(recent) / float64(preceding)
	magnitude := Normalize(1-ratio, e.cfg.EngagementRangeMin, e.cfg.EngagementRangeMax)
	if magnitude < e.cfg.EngagementCutoff {
		return nil
	}

	return e.newSignal(interaction, domain.SignalEngagementDrop, magnitude, map[string]any{
		"recent_count":    recent,
		"preceding_count": preceding,
		"ratio":           ratio,
		"window_size":     len(window),
	})
}

// median asume que puede reordenar el slice recibido.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}
	return values[mid]
}
