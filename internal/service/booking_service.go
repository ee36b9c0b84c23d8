package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mentor-pulse/internal/domain"
	"mentor-pulse/internal/repository"
)

var (
	ErrBookingNotConfigured = errors.New("booking service not configured")
	ErrBookingInvalidInput  = errors.New("booking invalid input")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrBookingForbidden     = errors.New("booking does not belong to user")
	ErrBookingWrongState    = errors.New("booking in wrong state")
)

// BookingService maneja el ciclo de vida de las sesiones de mentoría. Al
// completar una sesión es quien alimenta la care network del estudiante:
// el pipeline de struggle solo la consume.
type BookingService struct {
	bookings repository.BookingRepository
	networks repository.CareNetworkRepository
	points   *PointsService
	logger   *zap.Logger
}

func NewBookingService(
	bookings repository.BookingRepository,
	networks repository.CareNetworkRepository,
	points *PointsService,
	logger *zap.Logger,
) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		bookings: bookings,
		networks: networks,
		points:   points,
		logger:   logger,
	}
}

func (s *BookingService) Create(ctx context.Context, studentID, tutorID, topic string, scheduledAt time.Time) (domain.Booking, error) {
	if s == nil || s.bookings == nil {
		return domain.Booking{}, ErrBookingNotConfigured
	}

	studentID = strings.TrimSpace(studentID)
	tutorID = strings.TrimSpace(tutorID)
	if studentID == "" || tutorID == "" || studentID == tutorID {
		return domain.Booking{}, ErrBookingInvalidInput
	}
	if scheduledAt.IsZero() {
		return domain.Booking{}, ErrBookingInvalidInput
	}

	booking := domain.Booking{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		TutorID:     tutorID,
		Topic:       strings.TrimSpace(topic),
		ScheduledAt: scheduledAt.UTC(),
		Status:      domain.BookingRequested,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return domain.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	return booking, nil
}

// Confirm pasa el booking de requested a confirmed; solo el tutor asignado.
func (s *BookingService) Confirm(ctx context.Context, bookingID, tutorID string) (domain.Booking, error) {
	return s.transition(ctx, bookingID, tutorID, domain.BookingRequested, domain.BookingConfirmed)
}

// Cancel puede hacerlo cualquiera de las dos partes mientras no se completó.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID string) (domain.Booking, error) {
	if s == nil || s.bookings == nil {
		return domain.Booking{}, ErrBookingNotConfigured
	}
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if booking.StudentID != userID && booking.TutorID != userID {
		return domain.Booking{}, ErrBookingForbidden
	}
	if booking.Status != domain.BookingRequested && booking.Status != domain.BookingConfirmed {
		return domain.Booking{}, ErrBookingWrongState
	}

	updated, err := s.bookings.UpdateStatus(ctx, booking.ID, booking.Status, domain.BookingCancelled)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("cancel booking: %w", err)
	}
	if !updated {
		return domain.Booking{}, ErrBookingWrongState
	}
	booking.Status = domain.BookingCancelled
	return booking, nil
}

// Complete cierra la sesión y registra que el tutor asistió al estudiante:
// upsert de la care network y puntos para ambas partes.
func (s *BookingService) Complete(ctx context.Context, bookingID, tutorID string) (domain.Booking, error) {
	booking, err := s.transition(ctx, bookingID, tutorID, domain.BookingConfirmed, domain.BookingCompleted)
	if err != nil {
		return domain.Booking{}, err
	}

	now := time.Now().UTC()
	if s.networks != nil {
		if err := s.networks.AddTutor(ctx, booking.StudentID, booking.TutorID, now); err != nil {
			// La red se vuelve a poblar con la próxima sesión completada.
			s.logger.Warn("care network update failed",
				zap.Error(err),
				zap.String("booking_id", booking.ID),
			)
		}
	}

	s.awardCompletion(ctx, booking)

	return booking, nil
}

func (s *BookingService) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	if s == nil || s.bookings == nil {
		return nil, ErrBookingNotConfigured
	}
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) transition(ctx context.Context, bookingID, tutorID string, from, to domain.BookingStatus) (domain.Booking, error) {
	if s == nil || s.bookings == nil {
		return domain.Booking{}, ErrBookingNotConfigured
	}
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if booking.TutorID != tutorID {
		return domain.Booking{}, ErrBookingForbidden
	}

	updated, err := s.bookings.UpdateStatus(ctx, booking.ID, from, to)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("update booking status: %w", err)
	}
	if !updated {
		return domain.Booking{}, ErrBookingWrongState
	}
	booking.Status = to
	return booking, nil
}

func (s *BookingService) load(ctx context.Context, bookingID string) (domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, strings.TrimSpace(bookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Booking{}, ErrBookingNotFound
	}
	if err != nil {
		return domain.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return booking, nil
}

func (s *BookingService) awardCompletion(ctx context.Context, booking domain.Booking) {
	if s.points == nil {
		return
	}
	for _, userID := range []string{booking.StudentID, booking.TutorID} {
		if _, err := s.points.Award(ctx, userID, domain.PointsKindBooking, booking.ID, bookingPoints); err != nil {
			s.logger.Warn("booking award failed", zap.Error(err), zap.String("user_id", userID))
		}
	}
}
