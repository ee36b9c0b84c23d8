package domain

import "time"

// AlertUrgency distingue avisos suaves de críticos.
type AlertUrgency string

const (
	UrgencySoft   AlertUrgency = "soft"
	UrgencyUrgent AlertUrgency = "urgent"
)

// TutorAlert es una notificación dirigida a un tutor sobre un estudiante.
// El mensaje es siempre una plantilla de apoyo: nunca expone texto crudo del
// estudiante ni datos de señales por debajo del umbral de alerta.
type TutorAlert struct {
	ID        string       `json:"id"`
	TutorID   string       `json:"tutor_id"`
	StudentID string       `json:"student_id"`
	Urgency   AlertUrgency `json:"urgency"`
	Topic     string       `json:"topic"`
	Score     float64      `json:"score"`
	Message   string       `json:"message"`
	Read      bool         `json:"read"`
	CreatedAt time.Time    `json:"created_at"`
}

// CareNetwork registra qué tutores asistieron antes a un estudiante.
// La escribe el flujo de bookings; el pipeline solo la lee.
type CareNetwork struct {
	StudentID         string    `json:"student_id"`
	TutorIDs          []string  `json:"tutor_ids"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
}
