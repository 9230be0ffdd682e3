package formatting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{45, "45 min"},
		{60, "1 h"},
		{120, "2 h"},
		{90, "1 h 30 min"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.minutes))
	}
}

func TestFormatRange(t *testing.T) {
	mon := model.Date{Year: 2024, Month: time.March, Day: 4}
	assert.Equal(t, "Mon 04.03.2024", FormatRange(mon, mon))
	assert.Equal(t, "Mon 04.03.2024 to Tue 05.03.2024", FormatRange(mon, mon.AddDays(1)))
}

func TestAppointment(t *testing.T) {
	a := model.Appointment{
		ID:              12,
		PatientID:       3,
		PractitionerID:  7,
		RoomID:          4,
		Start:           time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 45,
		Status:          model.StatusCompleted,
		Notes:           "knee <left>",
	}
	names := Names{Practitioners: map[int64]string{7: "Anna Weber"}}

	text := Appointment(a, names, time.UTC)
	assert.Contains(t, text, "<b>Appointment #12</b>")
	assert.Contains(t, text, "Mon 04.03.2024, 09:00-09:45 (45 min)")
	assert.Contains(t, text, "Anna Weber")
	assert.Contains(t, text, "🚪 #4")
	assert.Contains(t, text, "knee &lt;left&gt;")
	assert.Contains(t, text, "Only planned appointments")
}
