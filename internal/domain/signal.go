package domain

import (
	"fmt"
	"strings"
	"time"
)

// SignalKind es el conjunto cerrado de señales de struggle que sabe emitir
// el extractor. Agregar una señal nueva implica tocar también la tabla de
// pesos del agregador.
type SignalKind string

const (
	SignalRepeatedTopic    SignalKind = "repeated_topic"
	SignalFailedAttempt    SignalKind = "failed_attempt"
	SignalLongResponseTime SignalKind = "long_response_time"
	SignalNegativeSentiment SignalKind = "negative_sentiment"
	SignalEngagementDrop   SignalKind = "engagement_drop"
	SignalHintDependency   SignalKind = "hint_dependency"
)

// AllSignalKinds lista los kinds en el orden de peso del agregador.
func AllSignalKinds() []SignalKind {
	return []SignalKind{
		SignalRepeatedTopic,
		SignalFailedAttempt,
		SignalNegativeSentiment,
		SignalEngagementDrop,
		SignalLongResponseTime,
		SignalHintDependency,
	}
}

// ParseSignalKind valida un kind recibido desde afuera.
func ParseSignalKind(raw string) (SignalKind, error) {
	kind := SignalKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range AllSignalKinds() {
		if kind == known {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown signal kind %q", raw)
}

// Label devuelve el kind en formato humano para resúmenes ("repeated topic").
func (k SignalKind) Label() string {
	return strings.ReplaceAll(string(k), "_", " ")
}

// Signal es una observación normalizada (0..1) de struggle derivada de una
// interacción. Inmutable una vez creada; a lo sumo una por (interacción, kind).
type Signal struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	InteractionID string         `json:"interaction_id"`
	Topic         string         `json:"topic,omitempty"`
	Kind          SignalKind     `json:"kind"`
	Magnitude     float64        `json:"magnitude"`
	Meta          map[string]any `json:"meta,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
