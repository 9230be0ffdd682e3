package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/conflict"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

func TestParseBookArgs(t *testing.T) {
	args, err := parseBookArgs("/book@practice_bot 12 14:30 45 7 3")
	require.NoError(t, err)
	assert.Equal(t, bookArgs{
		patient:      12,
		start:        model.MustTimeOfDay("14:30"),
		minutes:      45,
		practitioner: 7,
		room:         3,
	}, args)
}

func TestParseBookArgs_Invalid(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"/book", "usage"},
		{"/book 12 14:30 45 7", "usage"},
		{"/book 0 14:30 45 7 3", "patient"},
		{"/book 12 2pm 45 7 3", "not a time"},
		{"/book 12 14:30 0 7 3", "minutes"},
		{"/book 12 14:30 45 x 3", "practitioner"},
		{"/book 12 14:30 45 7 -3", "room"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := parseBookArgs(tt.text)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func newBookingEngine(t *testing.T, axis model.ResourceKind) (*calendar.Engine, *backend.Memory) {
	t.Helper()
	ctx := context.Background()
	mem := backend.NewMemory()
	mem.AddPractitioner(model.Practitioner{ID: 7, FirstName: "Anna", IsActive: true})
	mem.AddRoom(model.Room{ID: 3, Name: "Room 3", IsActive: true})
	_, err := mem.CreateAppointment(ctx, model.Appointment{
		PatientID: 1, PractitionerID: 7, RoomID: 3,
		Start: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), DurationMinutes: 60,
	})
	require.NoError(t, err)

	e, err := calendar.NewEngine(calendar.Config{Store: mem, Location: time.UTC})
	require.NoError(t, err)
	require.NoError(t, e.SetView(ctx, calendar.DayView(axis, model.Date{Year: 2024, Month: time.March, Day: 4})))
	return e, mem
}

func TestDraftFor(t *testing.T) {
	e, mem := newBookingEngine(t, model.ResourceRoom)
	args := bookArgs{patient: 12, start: model.MustTimeOfDay("14:30"), minutes: 45, practitioner: 7, room: 3}

	draft, err := draftFor(e, args, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(12), draft.PatientID)
	assert.Equal(t, int64(7), draft.PractitionerID)
	assert.Equal(t, int64(3), draft.RoomID)
	assert.Equal(t, time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC), draft.Start)
	assert.Equal(t, 45, draft.DurationMinutes)
	assert.Equal(t, model.StatusPlanned, draft.Status)

	created, err := e.Create(context.Background(), draft)
	require.NoError(t, err)
	_, err = mem.GetAppointment(context.Background(), created.ID)
	assert.NoError(t, err)
}

func TestDraftFor_OverlapIsRejectedOnCreate(t *testing.T) {
	e, _ := newBookingEngine(t, model.ResourcePractitioner)
	args := bookArgs{patient: 12, start: model.MustTimeOfDay("09:30"), minutes: 30, practitioner: 7, room: 3}

	draft, err := draftFor(e, args, time.UTC)
	require.NoError(t, err)
	_, err = e.Create(context.Background(), draft)
	assert.ErrorIs(t, err, conflict.ErrConflict)
}

func TestDraftFor_NoView(t *testing.T) {
	e, err := calendar.NewEngine(calendar.Config{Store: backend.NewMemory()})
	require.NoError(t, err)

	_, err = draftFor(e, bookArgs{patient: 1, start: model.MustTimeOfDay("10:00"), minutes: 30, practitioner: 7, room: 3}, time.UTC)
	assert.ErrorIs(t, err, calendar.ErrNoView)
}
