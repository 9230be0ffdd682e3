package model

import (
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResource(t *testing.T) {
	r, err := ParseResource("practitioner:7")
	require.NoError(t, err)
	assert.Equal(t, PractitionerResource(7), r)
	assert.Equal(t, "practitioner:7", r.String())

	r, err = ParseResource(RoomResource(12).String())
	require.NoError(t, err)
	assert.Equal(t, RoomResource(12), r)

	for _, bad := range []string{"", "7", "doctor:7", "room:", "room:x", "room:-1", "room:0"} {
		_, err := ParseResource(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"08:00", TimeOfDay{Hour: 8}, false},
		{"12:45:30", TimeOfDay{Hour: 12, Minute: 45, Second: 30}, false},
		{" 9:05 ", TimeOfDay{Hour: 9, Minute: 5}, false},
		{"24:00", TimeOfDay{Hour: 24}, false},
		{"24:01", TimeOfDay{}, true},
		{"25:00", TimeOfDay{}, true},
		{"12:60", TimeOfDay{}, true},
		{"noon", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayOn_EndOfDay(t *testing.T) {
	d := Date{Year: 2024, Month: time.February, Day: 29}
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), TimeOfDay{Hour: 24}.On(d, time.UTC))
}

func TestDateJSON(t *testing.T) {
	var a Absence
	err := json.Unmarshal([]byte(`{"id":1,"practitioner":7,"absence_type":"vacation","start_date":"2024-03-01","end_date":"2024-03-02","start_time":null,"end_time":"16:30:00","is_full_day":false,"is_approved":true}`), &a)
	require.NoError(t, err)

	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 1}, a.StartDate)
	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 2}, a.EndDate)
	assert.Nil(t, a.StartTime)
	require.NotNil(t, a.EndTime)
	assert.Equal(t, TimeOfDay{Hour: 16, Minute: 30}, *a.EndTime)

	out, err := json.Marshal(struct {
		D Date `json:"d"`
		Z Date `json:"z"`
	}{D: a.StartDate})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-03-01","z":null}`, string(out))
}

func TestAbsenceIntervals(t *testing.T) {
	full := Absence{
		PractitionerID: 7,
		StartDate:      Date{Year: 2024, Month: time.March, Day: 1},
		EndDate:        Date{Year: 2024, Month: time.March, Day: 1},
		IsFullDay:      true,
		IsApproved:     true,
	}
	got := full.Intervals(time.UTC)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got[0].Start)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), got[0].End)

	from := MustTimeOfDay("10:00")
	partial := Absence{
		StartDate: Date{Year: 2024, Month: time.March, Day: 4},
		EndDate:   Date{Year: 2024, Month: time.March, Day: 5},
		StartTime: &from,
	}
	got = partial.Intervals(time.UTC)
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), got[0].Start)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got[0].End, "missing end runs to midnight")
	assert.Equal(t, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), got[1].Start)

	inverted := partial
	inverted.EndDate = Date{Year: 2024, Month: time.March, Day: 1}
	assert.Empty(t, inverted.Intervals(time.UTC))

	assert.True(t, partial.Covers(Date{Year: 2024, Month: time.March, Day: 5}))
	assert.False(t, partial.Covers(Date{Year: 2024, Month: time.March, Day: 6}))
}

func TestAppointmentGeometry(t *testing.T) {
	a := Appointment{
		ID:              1,
		PractitionerID:  7,
		RoomID:          3,
		Start:           time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 45,
		Status:          StatusPlanned,
	}
	assert.Equal(t, time.Date(2024, 3, 4, 9, 45, 0, 0, time.UTC), a.End())
	assert.NoError(t, a.Validate())
	assert.True(t, a.BoundTo(PractitionerResource(7)))
	assert.True(t, a.BoundTo(RoomResource(3)))
	assert.False(t, a.BoundTo(RoomResource(7)))

	b := a
	b.Assign(RoomResource(4))
	assert.Equal(t, int64(4), b.RoomID)
	assert.False(t, a.SameGeometry(b))

	a.DurationMinutes = 0
	assert.ErrorIs(t, a.Validate(), ErrInvalidDuration)
}

func TestOpeningHoursFor(t *testing.T) {
	h := OpeningHours{"monday": {Open: true, Start: "08:00", End: "18:00"}}
	day, ok := h.For(Date{Year: 2024, Month: time.March, Day: 4})
	require.True(t, ok)
	assert.Equal(t, "08:00", day.Start)

	_, ok = h.For(Date{Year: 2024, Month: time.March, Day: 5})
	assert.False(t, ok)
}

func TestSeriesStartAt(t *testing.T) {
	spec := SeriesSpec{
		StartDate:    Date{Year: 2024, Month: time.March, Day: 25},
		StartTime:    MustTimeOfDay("10:30"),
		IntervalDays: 7,
		Count:        5,
	}
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// Crosses the DST switch on 2024-03-31; wall clock stays at 10:30.
	for i := 0; i < spec.Count; i++ {
		got := spec.StartAt(i, berlin)
		assert.Equal(t, 10, got.Hour())
		assert.Equal(t, 30, got.Minute())
	}
}
