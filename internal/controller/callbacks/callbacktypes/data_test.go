package callbacktypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Data
	}{
		{"noop", Data{Kind: KindNoop}},
		{"cal:next", Data{Kind: KindCalendar, Nav: NavNext}},
		{"cal:axis", Data{Kind: KindCalendar, Nav: NavAxis}},
		{"appt:12", Data{Kind: KindOpen, AppointmentID: 12}},
		{"mv:12:-15", Data{Kind: KindMove, AppointmentID: 12, DeltaMinutes: -15}},
		{"rs:12:15", Data{Kind: KindResize, AppointmentID: 12, DeltaMinutes: 15}},
		{"rr:12:room:4", Data{Kind: KindReassign, AppointmentID: 12, Resource: model.RoomResource(4)}},
		{"st:12:no_show", Data{Kind: KindStatus, AppointmentID: 12, Status: model.StatusNoShow}},
		{"del:12", Data{Kind: KindDelete, AppointmentID: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.raw, got.String())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"cal",
		"cal:sideways",
		"cal:next:1",
		"appt:abc",
		"appt:0",
		"appt:12:1",
		"mv:12",
		"mv:12:0",
		"mv:12:soon",
		"rr:12:desk:4",
		"rr:12:room",
		"st:12:lost",
		"zz:12:1",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestPayloadsFitTelegramLimit(t *testing.T) {
	const id = int64(9_223_372_036_854_775_807)
	for _, p := range []string{
		Move(id, -15),
		Reassign(id, model.PractitionerResource(id)),
		Status(id, model.StatusReadyToBill),
	} {
		assert.LessOrEqual(t, len(p), 64, p)
	}
}
