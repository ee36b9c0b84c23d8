package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mentor-pulse/internal/domain"
)

var ErrPipelineNotConfigured = errors.New("struggle pipeline not configured")

// StrugglePipeline encadena extractor → agregador → despachador como efecto
// secundario de cada interacción. Un error en una etapa corta las siguientes
// pero nunca corrompe lo ya persistido: cada etapa es idempotente contra su
// propia clave de duplicados y la siguiente corrida se autocorrige.
type StrugglePipeline struct {
	extractor  *SignalExtractor
	aggregator *ScoreAggregator
	dispatcher *AlertDispatcher
	rewards    *PointsService
	timeout    time.Duration
	logger     *zap.Logger
}

func NewStrugglePipeline(
	extractor *SignalExtractor,
	aggregator *ScoreAggregator,
	dispatcher *AlertDispatcher,
	rewards *PointsService,
	logger *zap.Logger,
) *StrugglePipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrugglePipeline{
		extractor:  extractor,
		aggregator: aggregator,
		dispatcher: dispatcher,
		rewards:    rewards,
		timeout:    30 * time.Second,
		logger:     logger,
	}
}

// Run ejecuta las tres etapas en orden. Devuelve el primer error de etapa;
// el caller decide qué hacer con él (el camino async solo lo loguea).
func (p *StrugglePipeline) Run(ctx context.Context, interaction domain.Interaction) error {
	if p == nil || p.extractor == nil || p.aggregator == nil || p.dispatcher == nil {
		return ErrPipelineNotConfigured
	}

	if _, err := p.extractor.Extract(ctx, interaction); err != nil {
		return fmt.Errorf("extract signals: %w", err)
	}

	if _, err := p.aggregator.Evaluate(ctx, interaction.UserID); err != nil {
		return fmt.Errorf("evaluate profile: %w", err)
	}

	p.awardBreakthrough(ctx, interaction.UserID)

	if _, err := p.dispatcher.Dispatch(ctx, interaction.UserID); err != nil {
		return fmt.Errorf("dispatch alerts: %w", err)
	}

	return nil
}

// RunAsync dispara el pipeline sin bloquear ni afectar el request que lo
// originó: contexto propio con timeout, recover y errores solo logueados.
func (p *StrugglePipeline) RunAsync(interaction domain.Interaction) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("struggle pipeline panic",
					zap.Any("panic", r),
					zap.String("interaction_id", interaction.ID),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := p.Run(ctx, interaction); err != nil {
			p.logger.Warn("struggle pipeline failed",
				zap.Error(err),
				zap.String("interaction_id", interaction.ID),
				zap.String("user_id", interaction.UserID),
			)
		}
	}()
}

// awardBreakthrough consulta la lectura pura de mejora y deja que el ledger
// otorgue el bono diario. Fallas acá jamás frenan el resto del pipeline.
func (p *StrugglePipeline) awardBreakthrough(ctx context.Context, userID string) {
	if p.rewards == nil {
		return
	}
	breakthrough, err := p.aggregator.HasBreakthrough(ctx, userID)
	if err != nil {
		p.logger.Warn("breakthrough check failed", zap.Error(err), zap.String("user_id", userID))
		return
	}
	if !breakthrough {
		return
	}
	ref := "breakthrough:" + time.Now().UTC().Format("2006-01-02")
	if _, err := p.rewards.Award(ctx, userID, domain.PointsKindBreakthrough, ref, breakthroughBonus); err != nil {
		p.logger.Warn("breakthrough award failed", zap.Error(err), zap.String("user_id", userID))
	}
}
