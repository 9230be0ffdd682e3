package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/conflict"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/series"
	"github.com/Freeeeeet/practice_scheduler/internal/status"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, 0, 0, time.UTC)
}

func newScheduler(t *testing.T) (*Scheduler, *backend.Memory) {
	t.Helper()
	store := backend.NewMemory()
	store.AddPractitioner(model.Practitioner{ID: 7, FirstName: "Anna", IsActive: true})
	store.AddPractitioner(model.Practitioner{ID: 8, FirstName: "Ben", IsActive: true})
	store.AddRoom(model.Room{ID: 3, Name: "Room 3", IsActive: true})
	store.AddRoom(model.Room{ID: 4, Name: "Room 4", IsActive: true})

	brkStart, brkEnd := "12:00", "13:00"
	require.NoError(t, store.UpdateOpeningHours(context.Background(), model.OpeningHours{
		"monday": {Open: true, Start: "08:00", End: "18:00", BreakStart: &brkStart, BreakEnd: &brkEnd},
	}))
	return NewScheduler(store, time.UTC, zaptest.NewLogger(t)), store
}

func book(t *testing.T, s *Scheduler, practitioner, room int64, start time.Time, minutes int) *model.Appointment {
	t.Helper()
	a, err := s.CreateAppointment(context.Background(), model.Appointment{
		PatientID:       1,
		PractitionerID:  practitioner,
		RoomID:          room,
		Start:           start,
		DurationMinutes: minutes,
	})
	require.NoError(t, err)
	return a
}

func TestCreateAppointment(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()
	first := book(t, s, 7, 3, at(9, 0), 30)
	assert.Equal(t, model.StatusPlanned, first.Status)

	book(t, s, 7, 3, at(9, 30), 30)

	tests := []struct {
		name  string
		appt  model.Appointment
		check func(t *testing.T, err error)
	}{
		{
			name: "practitioner busy",
			appt: model.Appointment{PractitionerID: 7, RoomID: 4, Start: at(9, 15), DurationMinutes: 30},
			check: func(t *testing.T, err error) {
				var c *conflict.Conflict
				require.ErrorAs(t, err, &c)
				assert.Equal(t, conflict.KindAppointment, c.Kind)
				assert.Equal(t, model.PractitionerResource(7), c.Resource)
				assert.Equal(t, first.ID, c.ConflictID)
			},
		},
		{
			name: "room busy",
			appt: model.Appointment{PractitionerID: 8, RoomID: 3, Start: at(9, 0), DurationMinutes: 15},
			check: func(t *testing.T, err error) {
				var c *conflict.Conflict
				require.ErrorAs(t, err, &c)
				assert.Equal(t, model.RoomResource(3), c.Resource)
			},
		},
		{
			name: "break",
			appt: model.Appointment{PractitionerID: 8, RoomID: 4, Start: at(11, 45), DurationMinutes: 30},
			check: func(t *testing.T, err error) {
				var c *conflict.Conflict
				require.ErrorAs(t, err, &c)
				assert.Equal(t, conflict.KindBreak, c.Kind)
			},
		},
		{
			name: "zero duration",
			appt: model.Appointment{PractitionerID: 8, RoomID: 4, Start: at(15, 0)},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, model.ErrInvalidDuration)
			},
		},
		{
			name: "missing room",
			appt: model.Appointment{PractitionerID: 8, Start: at(15, 0), DurationMinutes: 30},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, backend.ErrValidation)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateAppointment(ctx, tt.appt)
			tt.check(t, err)
		})
	}
}

func TestCreateAppointment_CancelledDoesNotOccupy(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()
	a := book(t, s, 7, 3, at(9, 0), 60)

	_, err := s.UpdateAppointment(ctx, a.ID, backend.StatusPatch(model.StatusCancelled))
	require.NoError(t, err)

	b := book(t, s, 7, 3, at(9, 0), 60)

	_, err = s.UpdateAppointment(ctx, a.ID, backend.StatusPatch(model.StatusPlanned))
	var c *conflict.Conflict
	require.ErrorAs(t, err, &c, "reactivating must not double-book")
	assert.Equal(t, b.ID, c.ConflictID)
}

func TestUpdateAppointment_Geometry(t *testing.T) {
	s, store := newScheduler(t)
	ctx := context.Background()
	a := book(t, s, 7, 3, at(9, 0), 30)
	other := book(t, s, 8, 4, at(10, 0), 60)

	moved := *a
	moved.Start = at(10, 30)
	_, err := s.UpdateAppointment(ctx, a.ID, backend.GeometryPatch(moved))
	require.NoError(t, err)

	moved.RoomID = 4
	_, err = s.UpdateAppointment(ctx, a.ID, backend.GeometryPatch(moved))
	var c *conflict.Conflict
	require.ErrorAs(t, err, &c)
	assert.Equal(t, other.ID, c.ConflictID)

	persisted, err := store.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), persisted.RoomID, "rejected update leaves the record unchanged")
	assert.True(t, persisted.Start.Equal(at(10, 30)))
}

func TestUpdateAppointment_GeometryNeedsPlanned(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()
	a := book(t, s, 7, 3, at(9, 0), 30)

	_, err := s.UpdateAppointment(ctx, a.ID, backend.StatusPatch(model.StatusCompleted))
	require.NoError(t, err)

	duration := 45
	_, err = s.UpdateAppointment(ctx, a.ID, backend.AppointmentPatch{DurationMinutes: &duration})
	var nme *status.NotMutableError
	require.ErrorAs(t, err, &nme)
	assert.Equal(t, model.StatusCompleted, nme.Status)
}

func TestUpdateAppointment_Status(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()
	a := book(t, s, 7, 3, at(9, 0), 30)

	for _, next := range []model.AppointmentStatus{model.StatusCompleted, model.StatusReadyToBill, model.StatusBilled} {
		updated, err := s.UpdateAppointment(ctx, a.ID, backend.StatusPatch(next))
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	_, err := s.UpdateAppointment(ctx, a.ID, backend.StatusPatch(model.StatusPlanned))
	assert.ErrorIs(t, err, status.ErrIllegalTransition)

	_, err = s.UpdateAppointment(ctx, 999, backend.StatusPatch(model.StatusPlanned))
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestUpdateAppointment_SameStatusIsIllegal(t *testing.T) {
	s, store := newScheduler(t)
	ctx := context.Background()
	a := book(t, s, 7, 3, at(9, 0), 30)

	_, err := s.UpdateAppointment(ctx, a.ID, backend.StatusPatch(model.StatusPlanned))
	var ite *status.IllegalTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, model.StatusPlanned, ite.From)
	assert.Equal(t, model.StatusPlanned, ite.To)

	for _, next := range []model.AppointmentStatus{model.StatusCompleted, model.StatusReadyToBill, model.StatusBilled} {
		_, err := s.UpdateAppointment(ctx, a.ID, backend.StatusPatch(next))
		require.NoError(t, err)
	}
	_, err = s.UpdateAppointment(ctx, a.ID, backend.StatusPatch(model.StatusBilled))
	assert.ErrorIs(t, err, status.ErrIllegalTransition)

	got, err := store.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBilled, got.Status)
}

func TestCreateSeries_SkipsBusySlots(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()
	blocker := book(t, s, 7, 4, time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC), 60)

	practitioner, room := int64(7), int64(3)
	res, err := s.CreateSeries(ctx, model.SeriesSpec{
		PatientID:               1,
		StartDate:               model.Date{Year: 2024, Month: time.March, Day: 4},
		StartTime:               model.MustTimeOfDay("10:30"),
		IntervalDays:            7,
		Count:                   5,
		PreferredPractitionerID: &practitioner,
		PreferredRoomID:         &room,
		DurationMinutes:         30,
	})
	require.NoError(t, err)
	assert.Len(t, res.Created, 4)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 3, res.Skipped[0].Number)
	assert.Equal(t, blocker.ID, res.Skipped[0].ConflictID)

	_, err = s.CreateSeries(ctx, model.SeriesSpec{Count: 0})
	assert.ErrorIs(t, err, series.ErrInvalidSpec)
	assert.ErrorIs(t, err, backend.ErrValidation)
}

func TestAbsences(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()

	abs, err := s.CreateAbsence(ctx, model.Absence{
		PractitionerID: 7,
		Type:           model.AbsenceVacation,
		StartDate:      model.Date{Year: 2024, Month: time.March, Day: 4},
		EndDate:        model.Date{Year: 2024, Month: time.March, Day: 4},
		IsFullDay:      true,
		IsApproved:     true,
	})
	require.NoError(t, err)

	_, err = s.CreateAppointment(ctx, model.Appointment{PractitionerID: 7, RoomID: 3, Start: at(9, 0), DurationMinutes: 30})
	var c *conflict.Conflict
	require.ErrorAs(t, err, &c)
	assert.Equal(t, conflict.KindAbsence, c.Kind)
	assert.Equal(t, abs.ID, c.ConflictID)

	_, err = s.CreateAbsence(ctx, model.Absence{
		PractitionerID: 7,
		StartDate:      model.Date{Year: 2024, Month: time.March, Day: 5},
		EndDate:        model.Date{Year: 2024, Month: time.March, Day: 4},
	})
	assert.ErrorIs(t, err, backend.ErrValidation)
}

func TestUpdateOpeningHours_Validates(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()

	err := s.UpdateOpeningHours(ctx, model.OpeningHours{"funday": {Open: true, Start: "08:00", End: "18:00"}})
	assert.ErrorIs(t, err, backend.ErrValidation)

	err = s.UpdateOpeningHours(ctx, model.OpeningHours{"tuesday": {Open: true, Start: "8am", End: "18:00"}})
	assert.ErrorIs(t, err, backend.ErrValidation)

	require.NoError(t, s.UpdateOpeningHours(ctx, model.OpeningHours{"tuesday": {Open: false}}))
	hours, err := s.GetOpeningHours(ctx)
	require.NoError(t, err)
	assert.False(t, hours["tuesday"].Open)
}
