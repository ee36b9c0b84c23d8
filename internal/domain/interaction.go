package domain

import (
	"fmt"
	"strings"
	"time"
)

// InteractionStatus indica cómo terminó una interacción con el tutor AI.
type InteractionStatus string

const (
	InteractionAnswered InteractionStatus = "answered"
	InteractionFailed   InteractionStatus = "failed"
)

// ParseInteractionStatus valida un status recibido desde afuera.
func ParseInteractionStatus(raw string) (InteractionStatus, error) {
	switch InteractionStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case InteractionAnswered:
		return InteractionAnswered, nil
	case InteractionFailed:
		return InteractionFailed, nil
	default:
		return "", fmt.Errorf("unknown interaction status %q", raw)
	}
}

// Interaction es el registro de una consulta completa al tutor AI.
// El pipeline de struggle lo trata como entrada de solo lectura.
type Interaction struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Role      Role              `json:"role"`
	Track     string            `json:"track,omitempty"`
	Topic     string            `json:"topic,omitempty"`
	Input     string            `json:"input"`
	Status    InteractionStatus `json:"status"`
	LatencyMS int64             `json:"latency_ms"`
	CreatedAt time.Time         `json:"created_at"`
}
