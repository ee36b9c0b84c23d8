package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"mentor-pulse/internal/domain"
	"mentor-pulse/internal/repository"
)

// Mocks en memoria compartidos por los tests del paquete. Replican el
// contrato de los repositorios Pg, incluidos los índices únicos.

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByID[user.ID] = user
	if user.Email != "" {
		m.usersByEmail[user.Email] = user.ID
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) UpdateOTP(_ context.Context, id, otpHash string, otpExpiresAt time.Time) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.OtpCodeHash = otpHash
	user.OtpExpiresAt = &otpExpiresAt
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) VerifyEmail(_ context.Context, id string, verifiedAt time.Time) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.EmailVerifiedAt = &verifiedAt
	user.OtpCodeHash = ""
	user.OtpExpiresAt = nil
	m.usersByID[id] = user
	return nil
}

type mockInteractionRepo struct {
	interactions []domain.Interaction
}

func (m *mockInteractionRepo) Create(_ context.Context, interaction domain.Interaction) error {
	m.interactions = append(m.interactions, interaction)
	return nil
}

func (m *mockInteractionRepo) GetByID(_ context.Context, id string) (domain.Interaction, error) {
	for _, it := range m.interactions {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.Interaction{}, pgx.ErrNoRows
}

func (m *mockInteractionRepo) ListByUserSince(_ context.Context, userID string, since time.Time) ([]domain.Interaction, error) {
	var out []domain.Interaction
	for _, it := range m.interactions {
		if it.UserID == userID && !it.CreatedAt.Before(since) {
			out = append(out, it)
		}
	}
	// Más recientes primero, como el repositorio real.
	for i := 0; i < len(out)/2; i++ {
		out[i], out[len(out)-1-i] = out[len(out)-1-i], out[i]
	}
	return out, nil
}

type mockSignalRepo struct {
	signals []domain.Signal
	seen    map[string]bool
}

func newMockSignalRepo() *mockSignalRepo {
	return &mockSignalRepo{seen: make(map[string]bool)}
}

func (m *mockSignalRepo) CreateUnique(_ context.Context, signal domain.Signal) (bool, error) {
	key := signal.InteractionID + "|" + string(signal.Kind)
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	m.signals = append(m.signals, signal)
	return true, nil
}

func (m *mockSignalRepo) ListByUserSince(_ context.Context, userID string, since time.Time) ([]domain.Signal, error) {
	var out []domain.Signal
	for _, s := range m.signals {
		if s.UserID == userID && !s.CreatedAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSignalRepo) TopTopicsSince(_ context.Context, since time.Time, limit int) ([]repository.TopicCount, error) {
	counts := make(map[string]int)
	for _, s := range m.signals {
		if !s.CreatedAt.Before(since) && s.Topic != "" {
			counts[s.Topic]++
		}
	}
	var out []repository.TopicCount
	for topic, count := range counts {
		out = append(out, repository.TopicCount{Topic: topic, Count: count})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockProfileRepo struct {
	profiles map[string]domain.StruggleProfile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]domain.StruggleProfile)}
}

func (m *mockProfileRepo) Upsert(_ context.Context, profile domain.StruggleProfile) error {
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID string) (domain.StruggleProfile, error) {
	profile, ok := m.profiles[userID]
	if !ok {
		return domain.StruggleProfile{}, pgx.ErrNoRows
	}
	return profile, nil
}

func (m *mockProfileRepo) CountBySupportLevel(_ context.Context) (map[domain.SupportLevel]int, error) {
	counts := make(map[domain.SupportLevel]int)
	for _, p := range m.profiles {
		counts[p.SupportLevel]++
	}
	return counts, nil
}

type mockAlertRepo struct {
	alerts []domain.TutorAlert
}

func (m *mockAlertRepo) Create(_ context.Context, alert domain.TutorAlert) error {
	m.alerts = append(m.alerts, alert)
	return nil
}

func (m *mockAlertRepo) ExistsRecent(_ context.Context, tutorID, studentID string, since time.Time) (bool, error) {
	for _, a := range m.alerts {
		if a.TutorID == tutorID && a.StudentID == studentID && !a.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAlertRepo) ListUnreadByTutor(_ context.Context, tutorID string) ([]domain.TutorAlert, error) {
	var out []domain.TutorAlert
	for _, a := range m.alerts {
		if a.TutorID == tutorID && !a.Read {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAlertRepo) MarkRead(_ context.Context, alertID, tutorID string) (bool, error) {
	for i, a := range m.alerts {
		if a.ID == alertID && a.TutorID == tutorID {
			m.alerts[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

type mockCareNetworkRepo struct {
	networks map[string]domain.CareNetwork
}

func newMockCareNetworkRepo() *mockCareNetworkRepo {
	return &mockCareNetworkRepo{networks: make(map[string]domain.CareNetwork)}
}

func (m *mockCareNetworkRepo) AddTutor(_ context.Context, studentID, tutorID string, interactedAt time.Time) error {
	network := m.networks[studentID]
	network.StudentID = studentID
	network.LastInteractionAt = interactedAt
	for _, id := range network.TutorIDs {
		if id == tutorID {
			m.networks[studentID] = network
			return nil
		}
	}
	network.TutorIDs = append(network.TutorIDs, tutorID)
	m.networks[studentID] = network
	return nil
}

func (m *mockCareNetworkRepo) GetByStudentID(_ context.Context, studentID string) (domain.CareNetwork, error) {
	network, ok := m.networks[studentID]
	if !ok {
		return domain.CareNetwork{}, pgx.ErrNoRows
	}
	return network, nil
}

type mockBookingRepo struct {
	bookings map[string]domain.Booking
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]domain.Booking)}
}

func (m *mockBookingRepo) Create(_ context.Context, booking domain.Booking) error {
	m.bookings[booking.ID] = booking
	return nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id string) (domain.Booking, error) {
	booking, ok := m.bookings[id]
	if !ok {
		return domain.Booking{}, pgx.ErrNoRows
	}
	return booking, nil
}

func (m *mockBookingRepo) UpdateStatus(_ context.Context, id string, from, to domain.BookingStatus) (bool, error) {
	booking, ok := m.bookings[id]
	if !ok || booking.Status != from {
		return false, nil
	}
	booking.Status = to
	m.bookings[id] = booking
	return true, nil
}

func (m *mockBookingRepo) ListByUser(_ context.Context, userID string) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.StudentID == userID || b.TutorID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockPointsRepo struct {
	entries []domain.PointsEntry
	seen    map[string]bool
}

func newMockPointsRepo() *mockPointsRepo {
	return &mockPointsRepo{seen: make(map[string]bool)}
}

func (m *mockPointsRepo) CreateUnique(_ context.Context, entry domain.PointsEntry) (bool, error) {
	key := entry.UserID + "|" + entry.Kind + "|" + entry.Ref
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	m.entries = append(m.entries, entry)
	return true, nil
}

func (m *mockPointsRepo) TotalByUser(_ context.Context, userID string) (int, error) {
	total := 0
	for _, e := range m.entries {
		if e.UserID == userID {
			total += e.Amount
		}
	}
	return total, nil
}

func (m *mockPointsRepo) TopTotals(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	totals := make(map[string]int)
	for _, e := range m.entries {
		totals[e.UserID] += e.Amount
	}
	var out []domain.LeaderboardEntry
	for userID, points := range totals {
		out = append(out, domain.LeaderboardEntry{UserID: userID, Points: points})
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockEmailSender struct {
	lastTo      string
	lastCode    string
	lastExpires time.Time
	err         error
}

func (m *mockEmailSender) SendVerificationOTP(_ context.Context, toEmail string, code string, expiresAt time.Time) error {
	m.lastTo = toEmail
	m.lastCode = code
	m.lastExpires = expiresAt
	return m.err
}
