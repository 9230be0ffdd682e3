package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/conflict"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/status"
)

var monday = model.Date{Year: 2024, Month: time.March, Day: 4}

func practitioners(ids ...int64) []calendar.ResourceInfo {
	out := make([]calendar.ResourceInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, calendar.ResourceInfo{Resource: model.PractitionerResource(id), Name: fmt.Sprintf("P%d", id)})
	}
	return out
}

func TestNextResource(t *testing.T) {
	a := model.Appointment{PractitionerID: 8, RoomID: 3}

	next, ok := NextResource(practitioners(7, 8, 9), a, model.ResourcePractitioner)
	require.True(t, ok)
	assert.Equal(t, model.PractitionerResource(9), next.Resource)

	a.PractitionerID = 9
	next, ok = NextResource(practitioners(7, 8, 9), a, model.ResourcePractitioner)
	require.True(t, ok)
	assert.Equal(t, model.PractitionerResource(7), next.Resource)

	_, ok = NextResource(practitioners(9), a, model.ResourcePractitioner)
	assert.False(t, ok)
}

func TestMenuTargets(t *testing.T) {
	assert.Equal(t,
		[]model.AppointmentStatus{model.StatusCompleted, model.StatusCancelled, model.StatusNoShow},
		MenuTargets(model.StatusPlanned))
	assert.Equal(t,
		[]model.AppointmentStatus{model.StatusCompleted, model.StatusBilled},
		MenuTargets(model.StatusReadyToBill))

	assert.Equal(t, status.ActionBilling, ActionFor(model.StatusReadyToBill, model.StatusBilled))
	assert.Equal(t, status.ActionMenu, ActionFor(model.StatusPlanned, model.StatusCompleted))
}

func TestErrorMessage(t *testing.T) {
	assert.Contains(t, ErrorMessage(ErrNoSession), "/calendar")
	assert.Equal(t, "Unknown button.", ErrorMessage(fmt.Errorf("%w: x", callbacktypes.ErrInvalidFormat)))
	assert.Equal(t, "That time overlaps the practice break.", ErrorMessage(&conflict.Conflict{Kind: conflict.KindBreak}))
	assert.Equal(t, "The change could not be saved.", ErrorMessage(errors.New("boom")))
}

func TestBuildScreens(t *testing.T) {
	ctx := context.Background()
	store := backend.NewMemory()
	store.AddPractitioner(model.Practitioner{ID: 7, FirstName: "Anna", IsActive: true})
	store.AddPractitioner(model.Practitioner{ID: 8, FirstName: "Ben", IsActive: true})
	created, err := store.CreateAppointment(ctx, model.Appointment{
		PatientID: 1, PractitionerID: 7, RoomID: 3,
		Start: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), DurationMinutes: 30,
		Status: model.StatusPlanned,
	})
	require.NoError(t, err)

	e, err := calendar.NewEngine(calendar.Config{Store: store, Location: time.UTC})
	require.NoError(t, err)

	_, _, _, err = BuildCalendarScreen(e, time.Now())
	assert.ErrorIs(t, err, calendar.ErrNoView)

	require.NoError(t, e.SetView(ctx, calendar.DayView(model.ResourcePractitioner, monday)))
	caption, kb, img, err := BuildCalendarScreen(e, time.Now())
	require.NoError(t, err)
	assert.Contains(t, caption, "<b>Practitioners</b>")
	assert.Contains(t, caption, "1 appointment.")
	assert.NotEmpty(t, img)
	require.Len(t, kb.InlineKeyboard, 3)

	a, ok := e.Appointment(created.ID)
	require.True(t, ok)
	text, menu := BuildAppointmentScreen(e, a)
	assert.Contains(t, text, "Anna")
	assert.Equal(t, callbacktypes.Reassign(created.ID, model.PractitionerResource(8)), menu.InlineKeyboard[2][0].CallbackData)
}
