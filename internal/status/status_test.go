package status

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

var table = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.StatusPlanned:     {model.StatusCompleted, model.StatusCancelled, model.StatusNoShow},
	model.StatusCompleted:   {model.StatusReadyToBill, model.StatusCancelled},
	model.StatusReadyToBill: {model.StatusBilled, model.StatusCompleted},
	model.StatusBilled:      {model.StatusReadyToBill},
	model.StatusCancelled:   {model.StatusPlanned},
	model.StatusNoShow:      {model.StatusPlanned, model.StatusCancelled},
}

func inTable(from, to model.AppointmentStatus) bool {
	for _, t := range table[from] {
		if t == to {
			return true
		}
	}
	return false
}

func sample(s model.AppointmentStatus) model.Appointment {
	return model.Appointment{
		ID:              42,
		PatientID:       1,
		PractitionerID:  7,
		RoomID:          3,
		Start:           time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		Status:          s,
		Notes:           "knee",
	}
}

func TestEveryStatusHasTableAndLabel(t *testing.T) {
	for _, s := range model.AllStatuses {
		assert.NotEmpty(t, Targets(s), "table entry for %s", s)
		assert.NotEqual(t, string(s), Label(s), "label for %s", s)
		assert.NotEqual(t, "❔", Emoji(s), "emoji for %s", s)
	}
}

func TestTransition_AllPairs(t *testing.T) {
	for _, from := range model.AllStatuses {
		for _, to := range model.AllStatuses {
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				before := sample(from)
				got, err := Transition(before, to)

				if inTable(from, to) {
					require.NoError(t, err)
					want := before
					want.Status = to
					assert.Equal(t, want, got, "only status changes")
					return
				}

				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrIllegalTransition))
				assert.False(t, errors.Is(err, ErrNotMutable))
				var ite *IllegalTransitionError
				require.True(t, errors.As(err, &ite))
				assert.Equal(t, from, ite.From)
				assert.Equal(t, to, ite.To)
				assert.Equal(t, before, got, "rejected transition returns input")
			})
		}
	}
}

func TestTransition_UnknownStatuses(t *testing.T) {
	_, err := Transition(sample("archived"), model.StatusPlanned)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = Transition(sample(model.StatusPlanned), "archived")
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestCheckMutable(t *testing.T) {
	for _, s := range model.AllStatuses {
		err := CheckMutable(sample(s))
		if s == model.StatusPlanned {
			assert.NoError(t, err)
			continue
		}
		assert.ErrorIs(t, err, ErrNotMutable, s)
		assert.False(t, errors.Is(err, ErrIllegalTransition), s)
	}
}

func TestTransitionBy(t *testing.T) {
	tests := []struct {
		action Action
		from   model.AppointmentStatus
		to     model.AppointmentStatus
		ok     bool
	}{
		{ActionMenu, model.StatusPlanned, model.StatusCompleted, true},
		{ActionEdit, model.StatusCompleted, model.StatusReadyToBill, true},
		{ActionMenu, model.StatusReadyToBill, model.StatusBilled, false},
		{ActionEdit, model.StatusBilled, model.StatusReadyToBill, false},
		{ActionBilling, model.StatusReadyToBill, model.StatusBilled, true},
		{ActionBilling, model.StatusBilled, model.StatusReadyToBill, true},
		{ActionBilling, model.StatusPlanned, model.StatusCompleted, false},
		{ActionDrag, model.StatusPlanned, model.StatusCompleted, false},
		{ActionDrag, model.StatusCancelled, model.StatusPlanned, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s->%s", tt.action, tt.from, tt.to), func(t *testing.T) {
			got, err := TransitionBy(tt.action, sample(tt.from), tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got.Status)
				return
			}
			assert.ErrorIs(t, err, ErrIllegalTransition)
			var ana *ActionNotAllowedError
			assert.True(t, errors.As(err, &ana))
		})
	}
}

func TestTransitionBy_OutOfTableIsIllegal(t *testing.T) {
	_, err := TransitionBy(ActionBilling, sample(model.StatusPlanned), model.StatusBilled)
	var ite *IllegalTransitionError
	require.True(t, errors.As(err, &ite))
}

func TestAllowed(t *testing.T) {
	assert.Equal(t,
		[]model.AppointmentStatus{model.StatusCompleted, model.StatusCancelled, model.StatusNoShow},
		Allowed(ActionMenu, model.StatusPlanned))
	assert.Equal(t,
		[]model.AppointmentStatus{model.StatusCompleted},
		Allowed(ActionMenu, model.StatusReadyToBill))
	assert.Equal(t,
		[]model.AppointmentStatus{model.StatusBilled},
		Allowed(ActionBilling, model.StatusReadyToBill))
	assert.Empty(t, Allowed(ActionDrag, model.StatusPlanned))
	assert.Empty(t, Allowed(ActionMenu, model.StatusBilled))
}
