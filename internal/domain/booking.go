package domain

import (
	"fmt"
	"strings"
	"time"
)

// BookingStatus modela el ciclo de vida de una sesión de mentoría.
type BookingStatus string

const (
	BookingRequested BookingStatus = "requested"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// ParseBookingStatus valida un status recibido desde afuera.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	switch BookingStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case BookingRequested:
		return BookingRequested, nil
	case BookingConfirmed:
		return BookingConfirmed, nil
	case BookingCompleted:
		return BookingCompleted, nil
	case BookingCancelled:
		return BookingCancelled, nil
	default:
		return "", fmt.Errorf("unknown booking status %q", raw)
	}
}

// Booking es una sesión de mentoría agendada entre estudiante y tutor.
// Al completarse alimenta la care network del estudiante.
type Booking struct {
	ID          string        `json:"id"`
	StudentID   string        `json:"student_id"`
	TutorID     string        `json:"tutor_id"`
	Topic       string        `json:"topic,omitempty"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}
