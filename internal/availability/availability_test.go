package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

func strPtr(s string) *string { return &s }

// 2024-03-04 is a Monday.
var monday = model.Date{Year: 2024, Month: time.March, Day: 4}

func practiceHours() model.OpeningHours {
	return model.OpeningHours{
		"monday": {
			Open:       true,
			Start:      "07:30",
			End:        "18:00",
			BreakStart: strPtr("12:00"),
			BreakEnd:   strPtr("12:45:00"),
		},
		"tuesday": {
			Open:  true,
			Start: "09:00:00",
			End:   "21:00:00",
		},
		"wednesday": {
			Open:       false,
			Start:      "09:00",
			End:        "17:00",
			BreakStart: strPtr("12:00"),
			BreakEnd:   strPtr("13:00"),
		},
		"thursday": {
			Open:  true,
			Start: "18:00",
			End:   "08:00",
		},
	}
}

func TestOpenWindow(t *testing.T) {
	hours := practiceHours()

	tests := []struct {
		name string
		date model.Date
		want Window
	}{
		{"configured day is normalized", monday, Window{"07:30:00", "18:00:00"}},
		{"seconds kept", monday.AddDays(1), Window{"09:00:00", "21:00:00"}},
		{"closed day falls back", monday.AddDays(2), DefaultWindow},
		{"inverted bounds fall back", monday.AddDays(3), DefaultWindow},
		{"missing day falls back", monday.AddDays(5), DefaultWindow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OpenWindow(hours, tt.date))
		})
	}
}

func TestOpenWindow_NilConfig(t *testing.T) {
	assert.Equal(t, DefaultWindow, OpenWindow(nil, monday))
}

func TestBreakWindow(t *testing.T) {
	hours := practiceHours()

	got := BreakWindow(hours, monday)
	require.NotNil(t, got)
	assert.Equal(t, Window{"12:00:00", "12:45:00"}, *got)

	assert.Nil(t, BreakWindow(hours, monday.AddDays(1)), "no break configured")
	assert.Nil(t, BreakWindow(nil, monday))
}

func TestBreakWindow_ClosedDayIgnoresStaleBreak(t *testing.T) {
	hours := practiceHours()
	wednesday := monday.AddDays(2)

	day, ok := hours.For(wednesday)
	require.True(t, ok)
	require.NotNil(t, day.BreakStart)

	assert.Nil(t, BreakWindow(hours, wednesday))
}

func TestBreakWindow_HalfConfigured(t *testing.T) {
	hours := model.OpeningHours{
		"monday": {Open: true, Start: "08:00", End: "18:00", BreakStart: strPtr("12:00")},
	}
	assert.Nil(t, BreakWindow(hours, monday))

	hours["monday"] = model.DayHours{Open: true, Start: "08:00", End: "18:00", BreakStart: strPtr(""), BreakEnd: strPtr("13:00")}
	assert.Nil(t, BreakWindow(hours, monday))

	hours["monday"] = model.DayHours{Open: true, Start: "08:00", End: "18:00", BreakStart: strPtr("13:00"), BreakEnd: strPtr("12:00")}
	assert.Nil(t, BreakWindow(hours, monday))
}

func TestWindowOn(t *testing.T) {
	loc := time.UTC
	start, end := Window{"12:00:00", "12:45:00"}.On(monday, loc)
	assert.Equal(t, time.Date(2024, 3, 4, 12, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2024, 3, 4, 12, 45, 0, 0, loc), end)

	start, end = Window{"bogus", "x"}.On(monday, loc)
	assert.Equal(t, time.Date(2024, 3, 4, 8, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2024, 3, 4, 20, 0, 0, 0, loc), end)
}

func TestVisibleBounds(t *testing.T) {
	hours := practiceHours()

	assert.Equal(t, Window{"07:30:00", "21:00:00"}, VisibleBounds(hours, monday, monday.AddDays(1)))
	assert.Equal(t, Window{"07:30:00", "18:00:00"}, VisibleBounds(hours, monday, monday))
	assert.Equal(t, DefaultWindow, VisibleBounds(nil, monday, monday.AddDays(6)))
	assert.Equal(t, Window{"07:30:00", "18:00:00"}, VisibleBounds(hours, monday, monday.AddDays(-3)), "inverted range collapses to from")
}
