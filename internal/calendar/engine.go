// Package calendar keeps the visible appointment grid of one session and
// turns gestures on it into validated backend mutations.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/practice_scheduler/internal/availability"
	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/conflict"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

var (
	ErrMutationInFlight = errors.New("appointment has a mutation in flight")
	ErrInvalidSelection = errors.New("selection must end after it starts")
	ErrNoView           = errors.New("calendar view is not set")
)

// Config wires an Engine.
type Config struct {
	Store    backend.Store
	Location *time.Location
	Logger   *zap.Logger
	Now      func() time.Time
}

// Engine is the calendar of one session. All methods are safe for
// concurrent use; the lock is never held while the backend is called.
type Engine struct {
	store   backend.Store
	checker *conflict.Checker
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
	bus     *Bus

	mu       sync.Mutex
	snap     Snapshot
	hasView  bool
	inflight map[int64]*mutation
	fetchSeq uint64
	applied  uint64
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("calendar: store is required")
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		store:    cfg.Store,
		checker:  conflict.NewChecker(loc),
		loc:      loc,
		logger:   logger,
		now:      now,
		bus:      NewBus(),
		inflight: make(map[int64]*mutation),
	}, nil
}

// Subscribe registers an observer; call the returned function to stop.
func (e *Engine) Subscribe() (<-chan Event, func()) {
	return e.bus.Subscribe()
}

// Location returns the zone all dates are evaluated in.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// View returns the current view and whether one is set.
func (e *Engine) View() (View, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.clone().View, e.hasView
}

// Snapshot returns a copy of the visible state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.clone()
}

// Items returns the classified grid items of the visible state.
func (e *Engine) Items() []Item {
	e.mu.Lock()
	defer e.mu.Unlock()

	pending := make(map[int64]bool, len(e.inflight))
	for id, m := range e.inflight {
		if m.optimistic {
			pending[id] = true
		}
	}
	return e.snap.items(e.loc, pending)
}

// Resources returns the visible resources of the current axis.
func (e *Engine) Resources() []ResourceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.resources()
}

// Bounds returns the time-of-day axis covering every visible date.
func (e *Engine) Bounds() availability.Window {
	e.mu.Lock()
	defer e.mu.Unlock()
	return availability.VisibleBounds(e.snap.Hours, e.snap.View.From, e.snap.View.To)
}

// Appointment returns the visible appointment with id.
func (e *Engine) Appointment(id int64) (model.Appointment, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.snap.find(id)
	if !ok {
		return model.Appointment{}, false
	}
	return e.snap.Appointments[i], true
}

// SetView switches range or axis and refetches.
func (e *Engine) SetView(ctx context.Context, v View) error {
	if err := v.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.snap.View = v
	e.hasView = true
	e.mu.Unlock()

	return e.Refresh(ctx)
}

// Refresh refetches the whole view and replaces the snapshot. A fetch that
// finishes after a newer one is discarded.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	if !e.hasView {
		e.mu.Unlock()
		return ErrNoView
	}
	view := e.snap.clone().View
	e.fetchSeq++
	seq := e.fetchSeq
	e.mu.Unlock()

	next, err := e.fetch(ctx, view)
	if err != nil {
		e.logger.Warn("Calendar refresh failed", zap.Error(err))
		return fmt.Errorf("refresh calendar: %w", err)
	}

	e.mu.Lock()
	if seq < e.applied || !sameView(view, e.snap.View) {
		e.mu.Unlock()
		return nil
	}
	e.applied = seq
	for id, m := range e.inflight {
		if !m.optimistic {
			continue
		}
		if m.kind == mutationDelete {
			next.Appointments = removeAppointment(next.Appointments, id)
			continue
		}
		if i, ok := next.find(id); ok {
			next.Appointments[i] = m.after
		}
	}
	e.snap = next
	e.mu.Unlock()

	e.bus.Publish(Event{Type: EventRefreshed, At: e.now()})
	return nil
}

func (e *Engine) fetch(ctx context.Context, view View) (Snapshot, error) {
	snap := Snapshot{View: view}
	g, ctx := errgroup.WithContext(ctx)

	// From the day before, so appointments running past midnight into the
	// view are checked against.
	g.Go(func() error {
		var err error
		snap.Appointments, err = e.store.ListAppointments(ctx, backend.AppointmentFilter{From: view.From.AddDays(-1), To: view.To})
		return err
	})
	g.Go(func() error {
		var err error
		snap.Absences, err = e.store.ListAbsences(ctx, backend.AbsenceFilter{From: view.From, To: view.To, ApprovedOnly: true})
		return err
	})
	g.Go(func() error {
		var err error
		snap.Hours, err = e.store.GetOpeningHours(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Practitioners, err = e.store.ListPractitioners(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Rooms, err = e.store.ListRooms(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.FetchedAt = e.now()
	return snap, nil
}

func sameView(a, b View) bool {
	if a.Axis != b.Axis || a.From != b.From || a.To != b.To || len(a.ResourceIDs) != len(b.ResourceIDs) {
		return false
	}
	for i := range a.ResourceIDs {
		if a.ResourceIDs[i] != b.ResourceIDs[i] {
			return false
		}
	}
	return true
}

func removeAppointment(list []model.Appointment, id int64) []model.Appointment {
	out := list[:0:0]
	for _, a := range list {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

// SelectRequest is an empty range picked on the grid.
type SelectRequest struct {
	Resource model.Resource
	Start    time.Time
	End      time.Time
}

// Selection carries creation defaults for both forms a selection can open.
// Absence is nil on the room axis.
type Selection struct {
	Resource    model.Resource
	Start       time.Time
	End         time.Time
	Appointment model.Appointment
	Absence     *model.Absence
}

// Select turns a range selection into creation defaults. It mutates nothing.
func (e *Engine) Select(req SelectRequest) (Selection, error) {
	if !req.End.After(req.Start) {
		return Selection{}, ErrInvalidSelection
	}
	if !req.Resource.Kind.Valid() || req.Resource.ID == 0 {
		return Selection{}, fmt.Errorf("select: invalid resource %s", req.Resource)
	}

	sel := Selection{Resource: req.Resource, Start: req.Start, End: req.End}
	sel.Appointment = model.Appointment{
		Start:           req.Start,
		DurationMinutes: int(req.End.Sub(req.Start) / time.Minute),
		Status:          model.StatusPlanned,
	}
	sel.Appointment.Assign(req.Resource)

	if req.Resource.Kind == model.ResourcePractitioner {
		start, end := req.Start.In(e.loc), req.End.In(e.loc)
		abs := model.Absence{
			PractitionerID: req.Resource.ID,
			Type:           model.AbsenceOther,
			StartDate:      model.DateOf(start),
			EndDate:        model.DateOf(end),
		}
		from, to := model.ClockOf(start), model.ClockOf(end)
		if from.Seconds() == 0 && to.Seconds() == 0 {
			abs.IsFullDay = true
			abs.EndDate = abs.EndDate.AddDays(-1)
		} else {
			if to.Seconds() == 0 {
				abs.EndDate = abs.EndDate.AddDays(-1)
				to = model.TimeOfDay{Hour: 24}
			}
			abs.StartTime, abs.EndTime = &from, &to
		}
		sel.Absence = &abs
	}

	e.bus.Publish(Event{Type: EventSelected, Selection: &sel, At: e.now()})
	return sel, nil
}
