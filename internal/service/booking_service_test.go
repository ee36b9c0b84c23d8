package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mentor-pulse/internal/domain"
)

type bookingFixture struct {
	bookings *mockBookingRepo
	networks *mockCareNetworkRepo
	points   *mockPointsRepo
	svc      *BookingService
}

func newBookingFixture() *bookingFixture {
	bookings := newMockBookingRepo()
	networks := newMockCareNetworkRepo()
	points := newMockPointsRepo()
	pointsSvc := NewPointsService(points, nil, nil)
	return &bookingFixture{
		bookings: bookings,
		networks: networks,
		points:   points,
		svc:      NewBookingService(bookings, networks, pointsSvc, nil),
	}
}

func (f *bookingFixture) create(t *testing.T) domain.Booking {
	t.Helper()
	booking, err := f.svc.Create(context.Background(), "student-1", "tutor-1", "recursion", time.Now().UTC().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return booking
}

func TestBookingCreate(t *testing.T) {
	f := newBookingFixture()

	booking := f.create(t)
	if booking.Status != domain.BookingRequested {
		t.Fatalf("status = %v, want requested", booking.Status)
	}
	if booking.ID == "" {
		t.Fatalf("missing booking id")
	}

	if _, err := f.svc.Create(context.Background(), "u1", "u1", "x", time.Now()); !errors.Is(err, ErrBookingInvalidInput) {
		t.Fatalf("self booking: expected ErrBookingInvalidInput, got %v", err)
	}
	if _, err := f.svc.Create(context.Background(), "u1", "u2", "x", time.Time{}); !errors.Is(err, ErrBookingInvalidInput) {
		t.Fatalf("zero schedule: expected ErrBookingInvalidInput, got %v", err)
	}
}

func TestBookingConfirm(t *testing.T) {
	f := newBookingFixture()
	booking := f.create(t)

	if _, err := f.svc.Confirm(context.Background(), booking.ID, "tutor-2"); !errors.Is(err, ErrBookingForbidden) {
		t.Fatalf("other tutor: expected ErrBookingForbidden, got %v", err)
	}

	confirmed, err := f.svc.Confirm(context.Background(), booking.ID, "tutor-1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != domain.BookingConfirmed {
		t.Fatalf("status = %v, want confirmed", confirmed.Status)
	}

	// Confirmar dos veces no es una transición válida.
	if _, err := f.svc.Confirm(context.Background(), booking.ID, "tutor-1"); !errors.Is(err, ErrBookingWrongState) {
		t.Fatalf("double confirm: expected ErrBookingWrongState, got %v", err)
	}

	if _, err := f.svc.Confirm(context.Background(), "missing", "tutor-1"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("missing booking: expected ErrBookingNotFound, got %v", err)
	}
}

func TestBookingComplete_FeedsCareNetworkAndPoints(t *testing.T) {
	f := newBookingFixture()
	booking := f.create(t)

	// Completar sin confirmar no está permitido.
	if _, err := f.svc.Complete(context.Background(), booking.ID, "tutor-1"); !errors.Is(err, ErrBookingWrongState) {
		t.Fatalf("complete before confirm: expected ErrBookingWrongState, got %v", err)
	}

	if _, err := f.svc.Confirm(context.Background(), booking.ID, "tutor-1"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	completed, err := f.svc.Complete(context.Background(), booking.ID, "tutor-1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != domain.BookingCompleted {
		t.Fatalf("status = %v, want completed", completed.Status)
	}

	network, err := f.networks.GetByStudentID(context.Background(), "student-1")
	if err != nil {
		t.Fatalf("care network missing: %v", err)
	}
	if len(network.TutorIDs) != 1 || network.TutorIDs[0] != "tutor-1" {
		t.Fatalf("unexpected care network: %+v", network)
	}

	for _, userID := range []string{"student-1", "tutor-1"} {
		total, err := f.points.TotalByUser(context.Background(), userID)
		if err != nil {
			t.Fatalf("total for %s: %v", userID, err)
		}
		if total != bookingPoints {
			t.Fatalf("points for %s = %d, want %d", userID, total, bookingPoints)
		}
	}
}

func TestBookingCancel(t *testing.T) {
	f := newBookingFixture()
	booking := f.create(t)

	if _, err := f.svc.Cancel(context.Background(), booking.ID, "stranger"); !errors.Is(err, ErrBookingForbidden) {
		t.Fatalf("stranger cancel: expected ErrBookingForbidden, got %v", err)
	}

	cancelled, err := f.svc.Cancel(context.Background(), booking.ID, "student-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.BookingCancelled {
		t.Fatalf("status = %v, want cancelled", cancelled.Status)
	}

	if _, err := f.svc.Cancel(context.Background(), booking.ID, "tutor-1"); !errors.Is(err, ErrBookingWrongState) {
		t.Fatalf("cancel after cancel: expected ErrBookingWrongState, got %v", err)
	}
}

func TestBookingListByUser(t *testing.T) {
	f := newBookingFixture()
	first := f.create(t)
	if _, err := f.svc.Create(context.Background(), "student-2", "tutor-1", "pointers", time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("create second booking: %v", err)
	}

	mine, err := f.svc.ListByUser(context.Background(), "student-1")
	if err != nil {
		t.Fatalf("list by student: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != first.ID {
		t.Fatalf("unexpected bookings for student-1: %+v", mine)
	}

	tutors, err := f.svc.ListByUser(context.Background(), "tutor-1")
	if err != nil {
		t.Fatalf("list by tutor: %v", err)
	}
	if len(tutors) != 2 {
		t.Fatalf("tutor should see both bookings, got %d", len(tutors))
	}
}
