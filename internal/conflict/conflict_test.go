package conflict

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/practice_scheduler/internal/availability"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

func at(day, hour, min int) time.Time {
	return time.Date(2024, time.March, day, hour, min, 0, 0, time.UTC)
}

func appt(id, practitioner, room int64, start time.Time, minutes int) model.Appointment {
	return model.Appointment{
		ID:              id,
		PractitionerID:  practitioner,
		RoomID:          room,
		Start:           start,
		DurationMinutes: minutes,
		Status:          model.StatusPlanned,
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"disjoint", at(4, 9, 0), at(4, 10, 0), at(4, 11, 0), at(4, 12, 0), false},
		{"touching end to start", at(4, 9, 0), at(4, 10, 0), at(4, 10, 0), at(4, 11, 0), false},
		{"touching start to end", at(4, 10, 0), at(4, 11, 0), at(4, 9, 0), at(4, 10, 0), false},
		{"partial overlap", at(4, 9, 0), at(4, 10, 0), at(4, 9, 30), at(4, 10, 30), true},
		{"contained", at(4, 9, 0), at(4, 12, 0), at(4, 10, 0), at(4, 10, 30), true},
		{"identical", at(4, 9, 0), at(4, 10, 0), at(4, 9, 0), at(4, 10, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1), "symmetric")
		})
	}
}

func TestCheck_BackToBackIsFree(t *testing.T) {
	c := NewChecker(time.UTC)
	existing := []model.Appointment{appt(1, 7, 3, at(4, 9, 0), 30)}

	before := Candidate{Resource: model.PractitionerResource(7), Start: at(4, 8, 30), End: at(4, 9, 0)}
	after := Candidate{Resource: model.PractitionerResource(7), Start: at(4, 9, 30), End: at(4, 10, 0)}

	assert.Nil(t, c.Check(before, existing, nil, nil))
	assert.Nil(t, c.Check(after, existing, nil, nil))
}

func TestCheck_OverlapOnSameResource(t *testing.T) {
	c := NewChecker(time.UTC)
	existing := []model.Appointment{appt(11, 7, 3, at(4, 9, 0), 60)}

	for _, r := range []model.Resource{model.PractitionerResource(7), model.RoomResource(3)} {
		got := c.Check(Candidate{Resource: r, Start: at(4, 9, 45), End: at(4, 10, 15)}, existing, nil, nil)
		require.NotNil(t, got, r.String())
		assert.Equal(t, KindAppointment, got.Kind)
		assert.Equal(t, int64(11), got.ConflictID)
		assert.Equal(t, r, got.Resource)
		assert.True(t, errors.Is(got, ErrConflict))
	}
}

func TestCheck_OtherResourceIsFree(t *testing.T) {
	c := NewChecker(time.UTC)
	existing := []model.Appointment{appt(11, 7, 3, at(4, 9, 0), 60)}

	got := c.Check(Candidate{Resource: model.PractitionerResource(8), Start: at(4, 9, 0), End: at(4, 10, 0)}, existing, nil, nil)
	assert.Nil(t, got)
	got = c.Check(Candidate{Resource: model.RoomResource(4), Start: at(4, 9, 0), End: at(4, 10, 0)}, existing, nil, nil)
	assert.Nil(t, got)
}

func TestCheck_IgnoresSelfAndCancelled(t *testing.T) {
	c := NewChecker(time.UTC)
	cancelled := appt(12, 7, 3, at(4, 9, 0), 60)
	cancelled.Status = model.StatusCancelled
	existing := []model.Appointment{appt(11, 7, 3, at(4, 9, 0), 60), cancelled}

	got := c.Check(Candidate{
		Resource:            model.PractitionerResource(7),
		Start:               at(4, 9, 15),
		End:                 at(4, 10, 15),
		IgnoreAppointmentID: 11,
	}, existing, nil, nil)
	assert.Nil(t, got)
}

func TestCheck_BreakComesFirst(t *testing.T) {
	c := NewChecker(time.UTC)
	brk := &availability.Window{Start: "12:00:00", End: "13:00:00"}
	existing := []model.Appointment{appt(11, 7, 3, at(4, 12, 0), 60)}

	got := c.Check(Candidate{Resource: model.PractitionerResource(7), Start: at(4, 12, 30), End: at(4, 13, 30)}, existing, nil, brk)
	require.NotNil(t, got)
	assert.Equal(t, KindBreak, got.Kind)
	assert.Equal(t, at(4, 12, 0), got.Start)
	assert.Equal(t, at(4, 13, 0), got.End)

	assert.Nil(t, c.Check(Candidate{Resource: model.RoomResource(9), Start: at(4, 13, 0), End: at(4, 13, 30)}, nil, nil, brk), "ends of break are bookable")
}

func TestCheck_AppointmentBeforeAbsence(t *testing.T) {
	c := NewChecker(time.UTC)
	existing := []model.Appointment{appt(11, 7, 3, at(1, 9, 0), 60)}
	absences := []model.Absence{{
		ID:             5,
		PractitionerID: 7,
		StartDate:      model.Date{Year: 2024, Month: time.March, Day: 1},
		EndDate:        model.Date{Year: 2024, Month: time.March, Day: 1},
		IsFullDay:      true,
		IsApproved:     true,
	}}

	got := c.Check(Candidate{Resource: model.PractitionerResource(7), Start: at(1, 9, 0), End: at(1, 9, 30)}, existing, absences, nil)
	require.NotNil(t, got)
	assert.Equal(t, KindAppointment, got.Kind)
}

func TestCheck_FullDayAbsenceBlocksWholeDay(t *testing.T) {
	c := NewChecker(time.UTC)
	absences := []model.Absence{{
		ID:             5,
		PractitionerID: 7,
		Type:           model.AbsenceVacation,
		StartDate:      model.Date{Year: 2024, Month: time.March, Day: 1},
		EndDate:        model.Date{Year: 2024, Month: time.March, Day: 1},
		IsFullDay:      true,
		IsApproved:     true,
	}}
	practitioner := model.PractitionerResource(7)

	for _, start := range []time.Time{at(1, 0, 0), at(1, 8, 0), at(1, 12, 30), at(1, 23, 45)} {
		got := c.Check(Candidate{Resource: practitioner, Start: start, End: start.Add(15 * time.Minute)}, nil, absences, nil)
		require.NotNil(t, got, start.String())
		assert.Equal(t, KindAbsence, got.Kind)
		assert.Equal(t, int64(5), got.ConflictID)
	}

	assert.Nil(t, c.Check(Candidate{Resource: practitioner, Start: at(2, 0, 0), End: at(2, 0, 30)}, nil, absences, nil), "next day is free")
	assert.Nil(t, c.Check(Candidate{Resource: practitioner, Start: at(29, 23, 30).AddDate(0, -1, 0), End: at(1, 0, 0)}, nil, absences, nil), "ending at midnight touches only")
	assert.Nil(t, c.Check(Candidate{Resource: model.PractitionerResource(8), Start: at(1, 9, 0), End: at(1, 10, 0)}, nil, absences, nil), "other practitioner")
	assert.Nil(t, c.Check(Candidate{Resource: model.RoomResource(7), Start: at(1, 9, 0), End: at(1, 10, 0)}, nil, absences, nil), "rooms have no absences")
}

func TestCheck_PartialAbsence(t *testing.T) {
	c := NewChecker(time.UTC)
	from := model.MustTimeOfDay("14:00")
	to := model.MustTimeOfDay("16:00")
	absences := []model.Absence{{
		ID:             6,
		PractitionerID: 7,
		StartDate:      model.Date{Year: 2024, Month: time.March, Day: 4},
		EndDate:        model.Date{Year: 2024, Month: time.March, Day: 6},
		StartTime:      &from,
		EndTime:        &to,
		IsApproved:     true,
	}}
	practitioner := model.PractitionerResource(7)

	got := c.Check(Candidate{Resource: practitioner, Start: at(5, 15, 0), End: at(5, 15, 30)}, nil, absences, nil)
	require.NotNil(t, got)
	assert.Equal(t, KindAbsence, got.Kind)
	assert.Equal(t, at(5, 14, 0), got.Start)

	assert.Nil(t, c.Check(Candidate{Resource: practitioner, Start: at(5, 9, 0), End: at(5, 14, 0)}, nil, absences, nil))
	assert.Nil(t, c.Check(Candidate{Resource: practitioner, Start: at(7, 15, 0), End: at(7, 15, 30)}, nil, absences, nil))
}

func TestCheck_UnapprovedAbsenceDoesNotBlock(t *testing.T) {
	c := NewChecker(time.UTC)
	absences := []model.Absence{{
		ID:             5,
		PractitionerID: 7,
		StartDate:      model.Date{Year: 2024, Month: time.March, Day: 1},
		EndDate:        model.Date{Year: 2024, Month: time.March, Day: 1},
		IsFullDay:      true,
	}}
	assert.Nil(t, c.Check(Candidate{Resource: model.PractitionerResource(7), Start: at(1, 9, 0), End: at(1, 10, 0)}, nil, absences, nil))
}

func TestCheckAppointment_ChecksPractitionerThenRoom(t *testing.T) {
	c := NewChecker(time.UTC)
	existing := []model.Appointment{
		appt(1, 8, 3, at(4, 9, 0), 60),
	}

	candidate := appt(0, 7, 3, at(4, 9, 30), 30)
	got := c.CheckAppointment(candidate, existing, nil, nil)
	require.NotNil(t, got)
	assert.Equal(t, model.RoomResource(3), got.Resource)
	assert.Equal(t, int64(1), got.ConflictID)

	candidate.RoomID = 4
	assert.Nil(t, c.CheckAppointment(candidate, existing, nil, nil))
}

func TestCheckAppointment_UsesBreakOfStartDate(t *testing.T) {
	c := NewChecker(time.UTC)
	brkStart, brkEnd := "12:00", "13:00"
	hours := model.OpeningHours{
		// 2024-03-04 is a Monday.
		"monday": {Open: true, Start: "08:00", End: "18:00", BreakStart: &brkStart, BreakEnd: &brkEnd},
	}

	got := c.CheckAppointment(appt(0, 7, 3, at(4, 12, 15), 15), nil, nil, hours)
	require.NotNil(t, got)
	assert.Equal(t, KindBreak, got.Kind)

	assert.Nil(t, c.CheckAppointment(appt(0, 7, 3, at(5, 12, 15), 15), nil, nil, hours), "tuesday has no break")
}
