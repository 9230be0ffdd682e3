package backend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

// Memory is an in-process Store. It keeps records only and enforces no
// scheduling rules; wrap it in service.Scheduler for that.
type Memory struct {
	mu sync.RWMutex

	loc           *time.Location
	now           func() time.Time
	appointments  map[int64]model.Appointment
	absences      map[int64]model.Absence
	practitioners map[int64]model.Practitioner
	rooms         map[int64]model.Room
	hours         model.OpeningHours

	nextAppointmentID int64
	nextAbsenceID     int64
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the clock used for created/updated stamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithLocation sets the zone used to evaluate date filters.
func WithLocation(loc *time.Location) MemoryOption {
	return func(m *Memory) { m.loc = loc }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		loc:               time.UTC,
		now:               time.Now,
		appointments:      make(map[int64]model.Appointment),
		absences:          make(map[int64]model.Absence),
		practitioners:     make(map[int64]model.Practitioner),
		rooms:             make(map[int64]model.Room),
		nextAppointmentID: 1,
		nextAbsenceID:     1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddPractitioner seeds the practitioner catalog.
func (m *Memory) AddPractitioner(p model.Practitioner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.practitioners[p.ID] = p
}

// AddRoom seeds the room catalog.
func (m *Memory) AddRoom(r model.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.ID] = r
}

func (m *Memory) ListAppointments(_ context.Context, filter AppointmentFilter) ([]model.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Appointment, 0, len(m.appointments))
	for _, a := range m.appointments {
		if filter.Matches(a, m.loc) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) GetAppointment(_ context.Context, id int64) (*model.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("get appointment %d: %w", id, ErrNotFound)
	}
	return &a, nil
}

func (m *Memory) CreateAppointment(_ context.Context, appt model.Appointment) (*model.Appointment, error) {
	if err := appt.Validate(); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	appt.ID = m.nextAppointmentID
	m.nextAppointmentID++
	if appt.Status == "" {
		appt.Status = model.StatusPlanned
	}
	now := m.now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	m.appointments[appt.ID] = appt
	return &appt, nil
}

func (m *Memory) UpdateAppointment(_ context.Context, id int64, patch AppointmentPatch) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("update appointment %d: %w", id, ErrNotFound)
	}
	a = patch.Apply(a)
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("update appointment %d: %w", id, err)
	}
	a.UpdatedAt = m.now()
	m.appointments[id] = a
	return &a, nil
}

func (m *Memory) DeleteAppointment(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.appointments[id]; !ok {
		return fmt.Errorf("delete appointment %d: %w", id, ErrNotFound)
	}
	delete(m.appointments, id)
	return nil
}

func (m *Memory) ListAbsences(_ context.Context, filter AbsenceFilter) ([]model.Absence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Absence, 0, len(m.absences))
	for _, a := range m.absences {
		if filter.Matches(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CreateAbsence(_ context.Context, absence model.Absence) (*model.Absence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	absence.ID = m.nextAbsenceID
	m.nextAbsenceID++
	m.absences[absence.ID] = absence
	return &absence, nil
}

func (m *Memory) UpdateAbsence(_ context.Context, absence model.Absence) (*model.Absence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.absences[absence.ID]; !ok {
		return nil, fmt.Errorf("update absence %d: %w", absence.ID, ErrNotFound)
	}
	m.absences[absence.ID] = absence
	return &absence, nil
}

func (m *Memory) DeleteAbsence(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.absences[id]; !ok {
		return fmt.Errorf("delete absence %d: %w", id, ErrNotFound)
	}
	delete(m.absences, id)
	return nil
}

func (m *Memory) ListPractitioners(_ context.Context) ([]model.Practitioner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Practitioner, 0, len(m.practitioners))
	for _, p := range m.practitioners {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListRooms(_ context.Context) ([]model.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetOpeningHours(_ context.Context) (model.OpeningHours, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.hours == nil {
		return nil, nil
	}
	out := make(model.OpeningHours, len(m.hours))
	for k, v := range m.hours {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) UpdateOpeningHours(_ context.Context, hours model.OpeningHours) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hours = make(model.OpeningHours, len(hours))
	for k, v := range hours {
		m.hours[k] = v
	}
	return nil
}
