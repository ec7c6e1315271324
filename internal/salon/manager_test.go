package salon

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/salon-booking/internal/notify"
	"github.com/hackgods/salon-booking/internal/schedule"
	"github.com/hackgods/salon-booking/internal/session"
)

type memRepo struct {
	salons   map[uuid.UUID]*Salon
	services map[uuid.UUID]*Service
}

func newMemRepo() *memRepo {
	return &memRepo{salons: map[uuid.UUID]*Salon{}, services: map[uuid.UUID]*Service{}}
}

func (r *memRepo) GetSalon(_ context.Context, id uuid.UUID) (*Salon, error) {
	s, ok := r.salons[id]
	if !ok {
		return nil, ErrSalonNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memRepo) CreateSalon(_ context.Context, s Salon) (*Salon, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.salons[s.ID] = &s
	cp := s
	return &cp, nil
}

func (r *memRepo) UpdateWorkingHours(_ context.Context, id uuid.UUID, hours schedule.WorkingHours) (*Salon, error) {
	s, ok := r.salons[id]
	if !ok {
		return nil, ErrSalonNotFound
	}
	s.WorkingHours = hours
	cp := *s
	return &cp, nil
}

func (r *memRepo) SetApproved(_ context.Context, id uuid.UUID, approved bool) (*Salon, error) {
	s, ok := r.salons[id]
	if !ok {
		return nil, ErrSalonNotFound
	}
	s.Approved = approved
	cp := *s
	return &cp, nil
}

func (r *memRepo) GetService(_ context.Context, id uuid.UUID) (*Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memRepo) ListServices(_ context.Context, salonID uuid.UUID) ([]Service, error) {
	var out []Service
	for _, s := range r.services {
		if s.SalonID == salonID && s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memRepo) CreateService(_ context.Context, s Service) (*Service, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.Active = true
	r.services[s.ID] = &s
	cp := s
	return &cp, nil
}

type recordingNotifier struct {
	sent []notify.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, note notify.Notification) error {
	n.sent = append(n.sent, note)
	return n.err
}

func seedSalon(t *testing.T, repo *memRepo, approved bool) (*Salon, *Service) {
	t.Helper()
	s, err := repo.CreateSalon(context.Background(), Salon{
		OwnerID:  "owner-1",
		Name:     "Glow",
		Timezone: "UTC",
		WorkingHours: schedule.WorkingHours{
			schedule.Monday: {Open: "09:00", Close: "17:00"},
			schedule.Sunday: {Closed: true},
		},
		Approved: approved,
	})
	require.NoError(t, err)
	svc, err := repo.CreateService(context.Background(), Service{
		SalonID:         s.ID,
		Name:            "Cut",
		DurationMinutes: 60,
		PriceCents:      4500,
		Currency:        "USD",
	})
	require.NoError(t, err)
	return s, svc
}

func TestManager_Availability(t *testing.T) {
	repo := newMemRepo()
	s, svc := seedSalon(t, repo, true)
	m := NewManager(repo, nil, nil, zerolog.Nop())

	// Saturday before the Monday being queried.
	now := time.Date(2023, time.December, 30, 12, 0, 0, 0, time.UTC)

	t.Run("open monday", func(t *testing.T) {
		a, err := m.Availability(context.Background(), s.ID, svc.ID, "2024-01-01", now)
		require.NoError(t, err)
		assert.False(t, a.Closed)
		assert.Equal(t, schedule.Monday, a.Weekday)
		assert.Equal(t, "09:00", a.Open)
		assert.Equal(t, "17:00", a.Close)
		assert.Len(t, a.Slots, 15)
		assert.Equal(t, "09:00", a.Slots[0])
		assert.Equal(t, "16:00", a.Slots[len(a.Slots)-1])
	})

	t.Run("closed sunday returns empty list", func(t *testing.T) {
		a, err := m.Availability(context.Background(), s.ID, svc.ID, "2023-12-31", now)
		require.NoError(t, err)
		assert.True(t, a.Closed)
		assert.NotNil(t, a.Slots)
		assert.Empty(t, a.Slots)
	})

	t.Run("missing tuesday behaves like closed", func(t *testing.T) {
		a, err := m.Availability(context.Background(), s.ID, svc.ID, "2024-01-02", now)
		require.NoError(t, err)
		assert.True(t, a.Closed)
		assert.Empty(t, a.Slots)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := m.Availability(context.Background(), s.ID, svc.ID, "01/01/2024", now)
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("past date", func(t *testing.T) {
		_, err := m.Availability(context.Background(), s.ID, svc.ID, "2023-12-25", now)
		assert.ErrorIs(t, err, ErrDateInPast)
	})

	t.Run("service from another salon", func(t *testing.T) {
		other, otherSvc := seedSalon(t, repo, true)
		require.NotEqual(t, other.ID, s.ID)
		_, err := m.Availability(context.Background(), s.ID, otherSvc.ID, "2024-01-01", now)
		assert.ErrorIs(t, err, ErrServiceNotInSalon)
	})

	t.Run("unknown salon", func(t *testing.T) {
		_, err := m.Availability(context.Background(), uuid.New(), svc.ID, "2024-01-01", now)
		assert.ErrorIs(t, err, ErrSalonNotFound)
	})
}

func TestManager_AvailabilityRequiresApproval(t *testing.T) {
	repo := newMemRepo()
	s, svc := seedSalon(t, repo, false)
	m := NewManager(repo, nil, nil, zerolog.Nop())

	_, err := m.Availability(context.Background(), s.ID, svc.ID, "2024-01-01", time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrSalonNotApproved)
}

func TestComputeAvailability_TodayUsesSalonZone(t *testing.T) {
	s := &Salon{
		ID:       uuid.New(),
		Timezone: "America/New_York",
		WorkingHours: schedule.WorkingHours{
			schedule.Monday: {Open: "09:00", Close: "12:00"},
		},
	}
	svc := &Service{ID: uuid.New(), SalonID: s.ID, DurationMinutes: 60}

	// 15:05 UTC is 10:05 in New York.
	now := time.Date(2024, time.January, 1, 15, 5, 0, 0, time.UTC)
	a, err := ComputeAvailability(s, svc, "2024-01-01", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:30", "11:00"}, a.Slots)
}

func TestManager_UpdateWorkingHours(t *testing.T) {
	repo := newMemRepo()
	s, _ := seedSalon(t, repo, true)
	m := NewManager(repo, nil, nil, zerolog.Nop())

	owner := session.Session{UserID: "owner-1", Role: session.RoleSalonAdmin}
	stranger := session.Session{UserID: "owner-2", Role: session.RoleSalonAdmin}
	hours := schedule.WorkingHours{schedule.Friday: {Open: "10:00", Close: "14:00"}}

	_, err := m.UpdateWorkingHours(context.Background(), stranger, s.ID, hours)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = m.UpdateWorkingHours(context.Background(), owner, s.ID, schedule.WorkingHours{
		schedule.Friday: {Open: "14:00", Close: "10:00"},
	})
	assert.ErrorIs(t, err, schedule.ErrInvalidWorkingHours)

	updated, err := m.UpdateWorkingHours(context.Background(), owner, s.ID, hours)
	require.NoError(t, err)
	assert.Equal(t, hours, updated.WorkingHours)
}

func TestManager_CreateService(t *testing.T) {
	repo := newMemRepo()
	s, _ := seedSalon(t, repo, true)
	m := NewManager(repo, nil, nil, zerolog.Nop())
	owner := session.Session{UserID: "owner-1", Role: session.RoleSalonAdmin}

	t.Run("hours converted to minutes", func(t *testing.T) {
		svc, err := m.CreateService(context.Background(), owner, s.ID, NewService{
			Name:          "Colour",
			DurationHours: 1.5,
			PriceCents:    9000,
			Currency:      "usd",
		})
		require.NoError(t, err)
		assert.Equal(t, 90, svc.DurationMinutes)
		assert.Equal(t, "USD", svc.Currency)
	})

	t.Run("minutes win over hours", func(t *testing.T) {
		svc, err := m.CreateService(context.Background(), owner, s.ID, NewService{
			Name:            "Trim",
			DurationMinutes: 20,
			DurationHours:   3,
		})
		require.NoError(t, err)
		assert.Equal(t, 20, svc.DurationMinutes)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []NewService{
			{Name: "", DurationMinutes: 30},
			{Name: "x"},
			{Name: "x", DurationMinutes: 30, PriceCents: -1},
			{Name: "x", DurationMinutes: 30, Currency: "dollars"},
		} {
			_, err := m.CreateService(context.Background(), owner, s.ID, in)
			assert.ErrorIs(t, err, ErrInvalidService)
		}
	})

	t.Run("customers cannot add services", func(t *testing.T) {
		_, err := m.CreateService(context.Background(), session.Session{UserID: "c1", Role: session.RoleCustomer}, s.ID, NewService{Name: "x", DurationMinutes: 30})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestManager_Approve(t *testing.T) {
	repo := newMemRepo()
	s, _ := seedSalon(t, repo, false)
	notes := &recordingNotifier{err: errors.New("smtp down")}
	m := NewManager(repo, notes, nil, zerolog.Nop())

	_, err := m.Approve(context.Background(), session.Session{UserID: "owner-1", Role: session.RoleSalonAdmin}, s.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	approved, err := m.Approve(context.Background(), session.Session{UserID: "root", Role: session.RoleSuperAdmin}, s.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)
	require.Len(t, notes.sent, 1)
	assert.Equal(t, notify.KindSalonApproved, notes.sent[0].Kind)
	assert.Equal(t, "owner-1", notes.sent[0].RecipientID)
}
