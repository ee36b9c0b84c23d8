package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mentor-pulse/internal/domain"
	"mentor-pulse/internal/repository"
)

// WeightTable asigna el peso de cada kind en el score compuesto.
// Debe sumar 1 para que el raw quede en [0,1].
type WeightTable map[domain.SignalKind]float64

// DefaultWeightTable devuelve los pesos calibrados en producción.
func DefaultWeightTable() WeightTable {
	return WeightTable{
		domain.SignalRepeatedTopic:     0.25,
		domain.SignalFailedAttempt:     0.20,
		domain.SignalNegativeSentiment: 0.15,
		domain.SignalEngagementDrop:    0.15,
		domain.SignalLongResponseTime:  0.15,
		domain.SignalHintDependency:    0.10,
	}
}

var ErrAggregatorNotConfigured = errors.New("score aggregator not configured")

// ScoreAggregator recalcula y persiste el StruggleProfile de un usuario a
// partir de las señales de la ventana de evaluación. Sin señales, el perfil
// decae a baseline en vez de quedarse con un score alto viejo.
type ScoreAggregator struct {
	signals  repository.SignalRepository
	profiles repository.ProfileRepository
	users    repository.UserRepository
	weights  WeightTable
	window   time.Duration
	logger   *zap.Logger
}

func NewScoreAggregator(
	signals repository.SignalRepository,
	profiles repository.ProfileRepository,
	users repository.UserRepository,
	weights WeightTable,
	window time.Duration,
	logger *zap.Logger,
) *ScoreAggregator {
	if weights == nil {
		weights = DefaultWeightTable()
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreAggregator{
		signals:  signals,
		profiles: profiles,
		users:    users,
		weights:  weights,
		window:   window,
		logger:   logger,
	}
}

// Evaluate recalcula el perfil del usuario y lo sobreescribe vía upsert.
func (a *ScoreAggregator) Evaluate(ctx context.Context, userID string) (domain.StruggleProfile, error) {
	if a == nil || a.signals == nil || a.profiles == nil {
		return domain.StruggleProfile{}, ErrAggregatorNotConfigured
	}

	now := time.Now().UTC()
	signals, err := a.signals.ListByUserSince(ctx, userID, now.Add(-a.window))
	if err != nil {
		return domain.StruggleProfile{}, fmt.Errorf("list signals: %w", err)
	}

	previous, hasPrevious, err := a.loadPrevious(ctx, userID)
	if err != nil {
		return domain.StruggleProfile{}, err
	}

	profile := domain.StruggleProfile{
		UserID:       userID,
		Track:        previous.Track,
		Cohort:       previous.Cohort,
		Score:        1,
		Trend:        domain.TrendStable,
		SupportLevel: domain.SupportLow,
		Contributors: []domain.Contribution{},
		EvaluatedAt:  now,
	}
	a.fillTrack(ctx, userID, &profile)

	if len(signals) > 0 {
		maxima := maxMagnitudePerKind(signals)
		profile.Contributors = a.contributors(maxima)
		profile.Score = composeScore(a.weights, maxima)
		profile.Reason = a.reasonSummary(maxima)

		// La tendencia solo se compara contra el perfil anterior cuando hubo
		// señales en la ventana; una ventana vacía es un reset completo a
		// baseline, no una caída que cuente como mejora.
		if hasPrevious {
			profile.Trend = classifyTrend(profile.Score, previous.Score)
		}
	}
	profile.SupportLevel = classifySupport(profile.Score)

	if err := a.profiles.Upsert(ctx, profile); err != nil {
		return domain.StruggleProfile{}, fmt.Errorf("upsert profile: %w", err)
	}

	a.logger.Debug("struggle profile evaluated",
		zap.String("user_id", userID),
		zap.Float64("score", profile.Score),
		zap.String("trend", string(profile.Trend)),
		zap.String("support_level", string(profile.SupportLevel)),
		zap.Int("signals", len(signals)),
	)

	return profile, nil
}

// HasBreakthrough es la lectura pura que usan colaboradores downstream para
// reconocer mejora: tendencia en baja y score ya en zona tranquila.
func (a *ScoreAggregator) HasBreakthrough(ctx context.Context, userID string) (bool, error) {
	if a == nil || a.profiles == nil {
		return false, ErrAggregatorNotConfigured
	}
	profile, err := a.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get profile: %w", err)
	}
	return profile.IsBreakthrough(), nil
}

func (a *ScoreAggregator) loadPrevious(ctx context.Context, userID string) (domain.StruggleProfile, bool, error) {
	previous, err := a.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StruggleProfile{}, false, nil
	}
	if err != nil {
		return domain.StruggleProfile{}, false, fmt.Errorf("get previous profile: %w", err)
	}
	return previous, true, nil
}

func (a *ScoreAggregator) fillTrack(ctx context.Context, userID string, profile *domain.StruggleProfile) {
	if a.users == nil || profile.Track != "" {
		return
	}
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return
	}
	profile.Track = user.Track
}

// maxMagnitudePerKind se queda con la magnitud máxima observada por kind:
// una sola instancia severa domina la contribución de su kind.
func maxMagnitudePerKind(signals []domain.Signal) map[domain.SignalKind]float64 {
	maxima := make(map[domain.SignalKind]float64)
	for _, s := range signals {
		magnitude := Clamp01(s.Magnitude)
		if magnitude > maxima[s.Kind] {
			maxima[s.Kind] = magnitude
		}
	}
	return maxima
}

// composeScore mapea raw ∈ [0,1] a score ∈ [1,10] redondeado a un decimal.
func composeScore(weights WeightTable, maxima map[domain.SignalKind]float64) float64 {
	raw := 0.0
	for kind, weight := range weights {
		raw += weight * maxima[kind]
	}
	score := math.Round((1+raw*9)*10) / 10
	return clamp(score, 1, 10)
}

func classifyTrend(current, previous float64) domain.Trend {
	switch {
	case current > previous+0.5:
		return domain.TrendRising
	case current < previous-0.5:
		return domain.TrendFalling
	default:
		return domain.TrendStable
	}
}

func classifySupport(score float64) domain.SupportLevel {
	switch {
	case score >= 7:
		return domain.SupportHigh
	case score >= 4:
		return domain.SupportMedium
	default:
		return domain.SupportLow
	}
}

// contributors lista cada kind presente con su peso y magnitud, ordenado por
// peso descendente para que el perfil se explique solo.
func (a *ScoreAggregator) contributors(maxima map[domain.SignalKind]float64) []domain.Contribution {
	contributions := make([]domain.Contribution, 0, len(maxima))
	for kind, magnitude := range maxima {
		contributions = append(contributions, domain.Contribution{
			Kind:      kind,
			Weight:    a.weights[kind],
			Magnitude: magnitude,
		})
	}
	sort.Slice(contributions, func(i, j int) bool {
		if contributions[i].Weight != contributions[j].Weight {
			return contributions[i].Weight > contributions[j].Weight
		}
		return contributions[i].Kind < contributions[j].Kind
	})
	return contributions
}

// reasonSummary arma el resumen de una línea con hasta los dos kinds de mayor
// peso que aportaron magnitud. Solo etiquetas gruesas: nunca texto del usuario.
func (a *ScoreAggregator) reasonSummary(maxima map[domain.SignalKind]float64) string {
	var labels []string
	for _, contribution := range a.contributors(maxima) {
		if contribution.Magnitude <= 0 {
			continue
		}
		labels = append(labels, strings.ToLower(contribution.Kind.Label()))
		if len(labels) == 2 {
			break
		}
	}
	return strings.Join(labels, " & ")
}
