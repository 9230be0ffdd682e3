package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

func TestParseViewArgs(t *testing.T) {
	today := model.Date{Year: 2024, Month: time.March, Day: 4}
	march10 := model.Date{Year: 2024, Month: time.March, Day: 10}

	tests := []struct {
		text string
		want calendar.View
	}{
		{"/calendar", calendar.DayView(model.ResourcePractitioner, today)},
		{"/calendar 2024-03-10", calendar.DayView(model.ResourcePractitioner, march10)},
		{"/calendar 3", calendar.View{Axis: model.ResourcePractitioner, From: today, To: today.AddDays(2)}},
		{"/calendar 2024-03-10 7", calendar.View{Axis: model.ResourcePractitioner, From: march10, To: march10.AddDays(6)}},
		{"/calendar@practice_bot 7 2024-03-10", calendar.View{Axis: model.ResourcePractitioner, From: march10, To: march10.AddDays(6)}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := parseViewArgs(tt.text, model.ResourcePractitioner, today)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseViewArgs_Invalid(t *testing.T) {
	today := model.Date{Year: 2024, Month: time.March, Day: 4}
	for _, text := range []string{
		"/rooms 0",
		"/rooms 8",
		"/rooms 10.03.2024",
		"/rooms 2024-03-10 2 extra",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := parseViewArgs(text, model.ResourceRoom, today)
			assert.Error(t, err)
		})
	}
}
