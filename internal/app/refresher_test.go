package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

type staticSource []*calendar.Engine

func (s staticSource) Engines() []*calendar.Engine { return s }

func TestRefresher_PicksUpExternalEdits(t *testing.T) {
	ctx := context.Background()
	day := model.Date{Year: 2024, Month: time.March, Day: 4}

	mem := backend.NewMemory()
	mem.AddPractitioner(model.Practitioner{ID: 7, FirstName: "Anna", IsActive: true})
	mem.AddRoom(model.Room{ID: 3, Name: "Room 3", IsActive: true})

	withView, err := calendar.NewEngine(calendar.Config{Store: mem, Location: time.UTC})
	require.NoError(t, err)
	require.NoError(t, withView.SetView(ctx, calendar.DayView(model.ResourcePractitioner, day)))

	withoutView, err := calendar.NewEngine(calendar.Config{Store: mem, Location: time.UTC})
	require.NoError(t, err)

	_, err = mem.CreateAppointment(ctx, model.Appointment{
		PatientID: 1, PractitionerID: 7, RoomID: 3,
		Start: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), DurationMinutes: 30,
	})
	require.NoError(t, err)
	assert.Empty(t, withView.Snapshot().Appointments)

	r := NewRefresher(staticSource{withView, withoutView}, time.Hour, zaptest.NewLogger(t))
	r.RefreshAll(ctx)

	assert.Len(t, withView.Snapshot().Appointments, 1)
}

func TestRefresher_StartStop(t *testing.T) {
	r := NewRefresher(staticSource{}, 10*time.Millisecond, zaptest.NewLogger(t))
	r.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	r.Stop()
	r.Stop()
}
