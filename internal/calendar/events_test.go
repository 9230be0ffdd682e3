package calendar

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/conflict"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/status"
)

func TestBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBus()
	slow, unsubscribe := b.Subscribe()

	for i := 0; i < subscriberBuffer*4; i++ {
		b.Publish(Event{Type: EventRefreshed})
	}
	assert.Len(t, slow, subscriberBuffer)

	unsubscribe()
	unsubscribe()
	assert.Zero(t, b.Len())

	n := 0
	for range slow {
		n++
	}
	assert.Equal(t, subscriberBuffer, n, "channel closed after buffered events")
}

func TestBus_FansOut(t *testing.T) {
	b := NewBus()
	a, stopA := b.Subscribe()
	c, stopC := b.Subscribe()
	defer stopA()
	defer stopC()

	b.Publish(Event{Type: EventCommitted, AppointmentID: 5})
	require.Len(t, a, 1)
	require.Len(t, c, 1)
	assert.Equal(t, int64(5), (<-a).AppointmentID)
	assert.Equal(t, EventCommitted, (<-c).Type)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&conflict.Conflict{Kind: conflict.KindBreak}, "That time overlaps the practice break."},
		{&conflict.Conflict{Kind: conflict.KindAppointment, ConflictID: 12}, "That time overlaps appointment #12."},
		{fmt.Errorf("move: %w", &conflict.Conflict{Kind: conflict.KindAbsence}), "The practitioner is absent at that time."},
		{&status.NotMutableError{AppointmentID: 1, Status: model.StatusBilled}, "Only planned appointments can be moved or resized."},
		{&status.IllegalTransitionError{From: model.StatusBilled, To: model.StatusPlanned}, "Status cannot change from Billed to Planned."},
		{ErrMutationInFlight, "This appointment is still being saved. Try again in a moment."},
		{&backend.TransportError{Op: "x", Status: 502}, "The server could not be reached. The change was undone, please try again."},
		{&backend.APIError{Op: "x", Status: 403, Detail: "Invalid token."}, "The server refused the change: Invalid token."},
		{errors.New("boom"), "The change could not be saved."},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Message(tt.err))
	}
}
