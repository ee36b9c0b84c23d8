package domain

import "time"

// Trend clasifica la dirección del score respecto de la evaluación anterior.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// SupportLevel es la clasificación gruesa de cuánta ayuda necesita un learner.
type SupportLevel string

const (
	SupportLow    SupportLevel = "low"
	SupportMedium SupportLevel = "medium"
	SupportHigh   SupportLevel = "high"
)

// Contribution registra qué aportó cada kind al score actual, para poder
// explicar el resultado sin guardar texto crudo del usuario.
type Contribution struct {
	Kind      SignalKind `json:"kind"`
	Weight    float64    `json:"weight"`
	Magnitude float64    `json:"magnitude"`
}

// StruggleProfile es el snapshot vigente de struggle de un usuario.
// Exactamente uno por usuario; el agregador lo sobreescribe en cada
// evaluación, nunca lo acumula.
type StruggleProfile struct {
	UserID       string         `json:"user_id"`
	Track        string         `json:"track,omitempty"`
	Cohort       string         `json:"cohort,omitempty"`
	Score        float64        `json:"score"`
	Trend        Trend          `json:"trend"`
	SupportLevel SupportLevel   `json:"support_level"`
	Contributors []Contribution `json:"contributors"`
	Reason       string         `json:"reason,omitempty"`
	EvaluatedAt  time.Time      `json:"evaluated_at"`
}

// IsBreakthrough detecta mejora sostenida: tendencia en baja con score ya
// dentro de la zona tranquila. Lectura pura, sin efectos.
func (p StruggleProfile) IsBreakthrough() bool {
	return p.Trend == TrendFalling && p.Score <= 4
}
