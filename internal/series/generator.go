// Package series expands a prescription into a recurring run of
// appointments. Conflicting slots are skipped, never shifted.
package series

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/availability"
	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/conflict"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

var ErrInvalidSpec = fmt.Errorf("invalid series spec: %w", backend.ErrValidation)

// Generator places series appointments through a backend store.
type Generator struct {
	store   backend.Store
	checker *conflict.Checker
	loc     *time.Location
	logger  *zap.Logger
	newID   func() uuid.UUID
}

func NewGenerator(store backend.Store, loc *time.Location, logger *zap.Logger) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		store:   store,
		checker: conflict.NewChecker(loc),
		loc:     loc,
		logger:  logger,
		newID:   uuid.New,
	}
}

// Validate checks a series request before anything is loaded.
func Validate(spec model.SeriesSpec) error {
	switch {
	case spec.Count < 1:
		return fmt.Errorf("%w: number of appointments must be at least 1", ErrInvalidSpec)
	case spec.IntervalDays < 1:
		return fmt.Errorf("%w: days between sessions must be at least 1", ErrInvalidSpec)
	case spec.DurationMinutes <= 0:
		return fmt.Errorf("%w: %v", ErrInvalidSpec, model.ErrInvalidDuration)
	case spec.StartDate.IsZero():
		return fmt.Errorf("%w: start date is required", ErrInvalidSpec)
	case spec.PreferredPractitionerID != nil && *spec.PreferredPractitionerID <= 0:
		return fmt.Errorf("%w: invalid practitioner", ErrInvalidSpec)
	case spec.PreferredRoomID != nil && *spec.PreferredRoomID <= 0:
		return fmt.Errorf("%w: invalid room", ErrInvalidSpec)
	}
	return nil
}

// occupancy is what the generator checks slots against. Created
// appointments are added as the series grows.
type occupancy struct {
	appointments  []model.Appointment
	absences      []model.Absence
	hours         model.OpeningHours
	practitioners []model.Resource
	rooms         []model.Resource
}

// Generate creates every free slot of spec. On a backend failure it stops
// and returns what was created so far together with the error; earlier
// appointments are kept.
func (g *Generator) Generate(ctx context.Context, spec model.SeriesSpec) (model.SeriesResult, error) {
	if err := Validate(spec); err != nil {
		return model.SeriesResult{}, err
	}

	res := model.SeriesResult{
		SeriesID:  g.newID(),
		Requested: spec.Count,
		Created:   []model.Appointment{},
		Skipped:   []model.SeriesSkip{},
	}
	log := g.logger.With(
		zap.String("series_id", res.SeriesID.String()),
		zap.Int64("prescription_id", spec.PrescriptionID),
	)

	occ, err := g.load(ctx, spec)
	if err != nil {
		return res, fmt.Errorf("load series window: %w", err)
	}

	for i := 0; i < spec.Count; i++ {
		start := spec.StartAt(i, g.loc)
		end := start.Add(time.Duration(spec.DurationMinutes) * time.Minute)

		practitioner, room, skip := g.place(occ, spec, start, end)
		if skip != nil {
			skip.Index, skip.Number, skip.Start = i, i+1, start
			res.Skipped = append(res.Skipped, *skip)
			log.Info("Series slot skipped", zap.Int("number", i+1), zap.String("reason", string(skip.Reason)))
			continue
		}

		seriesID := res.SeriesID
		appt := model.Appointment{
			PatientID:       spec.PatientID,
			PractitionerID:  practitioner,
			RoomID:          room,
			TreatmentID:     spec.TreatmentID,
			SeriesID:        &seriesID,
			Start:           start,
			DurationMinutes: spec.DurationMinutes,
			Status:          model.StatusPlanned,
			Notes:           spec.Notes,
		}
		if spec.PrescriptionID != 0 {
			prescription := spec.PrescriptionID
			appt.PrescriptionID = &prescription
		}

		created, err := g.store.CreateAppointment(ctx, appt)
		if err != nil {
			var c *conflict.Conflict
			if errors.As(err, &c) {
				res.Skipped = append(res.Skipped, skipFor(i, start, c))
				log.Info("Series slot taken meanwhile", zap.Int("number", i+1), zap.Error(err))
				continue
			}
			log.Error("Series aborted", zap.Int("number", i+1), zap.Int("created", len(res.Created)), zap.Error(err))
			return res, fmt.Errorf("create series appointment %d of %d: %w", i+1, spec.Count, err)
		}

		res.Created = append(res.Created, *created)
		occ.appointments = append(occ.appointments, *created)
	}

	log.Info("Series generated",
		zap.Int("requested", res.Requested),
		zap.Int("created", len(res.Created)),
		zap.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

func (g *Generator) load(ctx context.Context, spec model.SeriesSpec) (*occupancy, error) {
	last := spec.StartDate.AddDays((spec.Count - 1) * spec.IntervalDays)
	occ := &occupancy{}

	var err error
	occ.appointments, err = g.store.ListAppointments(ctx, backend.AppointmentFilter{From: spec.StartDate.AddDays(-1), To: last})
	if err != nil {
		return nil, err
	}
	occ.absences, err = g.store.ListAbsences(ctx, backend.AbsenceFilter{From: spec.StartDate, To: last, ApprovedOnly: true})
	if err != nil {
		return nil, err
	}
	occ.hours, err = g.store.GetOpeningHours(ctx)
	if err != nil {
		return nil, err
	}

	if spec.PreferredPractitionerID != nil {
		occ.practitioners = []model.Resource{model.PractitionerResource(*spec.PreferredPractitionerID)}
	} else {
		list, err := g.store.ListPractitioners(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range list {
			if p.IsActive {
				occ.practitioners = append(occ.practitioners, p.Resource())
			}
		}
	}

	if spec.PreferredRoomID != nil {
		occ.rooms = []model.Resource{model.RoomResource(*spec.PreferredRoomID)}
	} else {
		list, err := g.store.ListRooms(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range list {
			if r.IsActive {
				occ.rooms = append(occ.rooms, r.Resource())
			}
		}
	}
	return occ, nil
}

// place picks a practitioner and a room for one slot, or explains why the
// slot is skipped.
func (g *Generator) place(occ *occupancy, spec model.SeriesSpec, start, end time.Time) (int64, int64, *model.SeriesSkip) {
	date := model.DateOf(start.In(g.loc))
	if brk := availability.BreakWindow(occ.hours, date); brk != nil {
		bs, be := brk.On(date, g.loc)
		if conflict.Overlaps(start, end, bs, be) {
			return 0, 0, &model.SeriesSkip{Reason: model.SkipBreak}
		}
	}

	practitioner, skip := g.pick(occ, occ.practitioners, spec.PreferredPractitionerID != nil, model.SkipNoFreePractitioner, start, end)
	if skip != nil {
		return 0, 0, skip
	}
	room, skip := g.pick(occ, occ.rooms, spec.PreferredRoomID != nil, model.SkipNoFreeRoom, start, end)
	if skip != nil {
		return 0, 0, skip
	}
	return practitioner.ID, room.ID, nil
}

// pick returns the first free candidate. A preferred resource reports its
// own conflict; an exhausted auto-pick reports noneFree.
func (g *Generator) pick(occ *occupancy, candidates []model.Resource, preferred bool, noneFree model.SkipReason, start, end time.Time) (model.Resource, *model.SeriesSkip) {
	for _, r := range candidates {
		c := g.checker.Check(conflict.Candidate{Resource: r, Start: start, End: end}, occ.appointments, occ.absences, nil)
		if c == nil {
			return r, nil
		}
		if preferred {
			skip := skipFor(0, start, c)
			return model.Resource{}, &skip
		}
	}
	return model.Resource{}, &model.SeriesSkip{Reason: noneFree}
}

func skipFor(i int, start time.Time, c *conflict.Conflict) model.SeriesSkip {
	r := c.Resource
	return model.SeriesSkip{
		Index:      i,
		Number:     i + 1,
		Start:      start,
		Reason:     model.SkipReason(c.Kind),
		Resource:   &r,
		ConflictID: c.ConflictID,
	}
}
