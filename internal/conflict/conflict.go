// Package conflict decides whether a candidate placement collides with a
// break, another appointment or an absence. It only reports; callers decide
// what to do with a conflict.
package conflict

import (
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/practice_scheduler/internal/availability"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

// Kind identifies what a candidate collided with.
type Kind string

const (
	KindBreak       Kind = "break"
	KindAppointment Kind = "appointment"
	KindAbsence     Kind = "absence"
)

var ErrConflict = errors.New("scheduling conflict")

// Candidate is a placement to check on one resource.
type Candidate struct {
	Resource model.Resource
	Start    time.Time
	End      time.Time
	// IgnoreAppointmentID excludes the appointment being moved or resized.
	IgnoreAppointmentID int64
}

// Conflict describes the first collision found for a candidate.
type Conflict struct {
	Kind     Kind           `json:"kind"`
	Resource model.Resource `json:"resource"`
	// ConflictID is the colliding appointment or absence id, zero for breaks.
	ConflictID int64     `json:"conflict_id,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

func (c *Conflict) Error() string {
	switch c.Kind {
	case KindAppointment:
		return fmt.Sprintf("conflict with appointment %d on %s", c.ConflictID, c.Resource)
	case KindAbsence:
		return fmt.Sprintf("conflict with absence %d of %s", c.ConflictID, c.Resource)
	default:
		return fmt.Sprintf("conflict with %s on %s", c.Kind, c.Resource)
	}
}

func (c *Conflict) Is(target error) bool {
	return target == ErrConflict
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching bounds do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// Checker evaluates candidates in the practice time zone.
type Checker struct {
	loc *time.Location
}

// NewChecker returns a Checker for loc; nil means UTC.
func NewChecker(loc *time.Location) *Checker {
	if loc == nil {
		loc = time.UTC
	}
	return &Checker{loc: loc}
}

// Location returns the time zone the checker works in.
func (c *Checker) Location() *time.Location {
	return c.loc
}

// Check returns the first conflict for candidate, checking the break window,
// then appointments on the same resource, then approved absences of the
// same practitioner. It returns nil when the candidate is free.
func (c *Checker) Check(candidate Candidate, appointments []model.Appointment, absences []model.Absence, breakWindow *availability.Window) *Conflict {
	if breakWindow != nil {
		date := model.DateOf(candidate.Start.In(c.loc))
		bs, be := breakWindow.On(date, c.loc)
		if Overlaps(candidate.Start, candidate.End, bs, be) {
			return &Conflict{Kind: KindBreak, Resource: candidate.Resource, Start: bs, End: be}
		}
	}

	for _, a := range appointments {
		if a.ID != 0 && a.ID == candidate.IgnoreAppointmentID {
			continue
		}
		if !a.Status.OccupiesResources() || !a.BoundTo(candidate.Resource) {
			continue
		}
		if Overlaps(candidate.Start, candidate.End, a.Start, a.End()) {
			return &Conflict{
				Kind:       KindAppointment,
				Resource:   candidate.Resource,
				ConflictID: a.ID,
				Start:      a.Start,
				End:        a.End(),
			}
		}
	}

	if candidate.Resource.Kind != model.ResourcePractitioner {
		return nil
	}
	for _, abs := range absences {
		if !abs.IsApproved || abs.PractitionerID != candidate.Resource.ID {
			continue
		}
		for _, iv := range abs.Intervals(c.loc) {
			if Overlaps(candidate.Start, candidate.End, iv.Start, iv.End) {
				return &Conflict{
					Kind:       KindAbsence,
					Resource:   candidate.Resource,
					ConflictID: abs.ID,
					Start:      iv.Start,
					End:        iv.End,
				}
			}
		}
	}
	return nil
}

// CheckAppointment checks appt on its practitioner and then on its room.
func (c *Checker) CheckAppointment(appt model.Appointment, appointments []model.Appointment, absences []model.Absence, hours model.OpeningHours) *Conflict {
	brk := availability.BreakWindow(hours, model.DateOf(appt.Start.In(c.loc)))
	for _, r := range appt.Resources() {
		if r.ID == 0 {
			continue
		}
		candidate := Candidate{
			Resource:            r,
			Start:               appt.Start,
			End:                 appt.End(),
			IgnoreAppointmentID: appt.ID,
		}
		if found := c.Check(candidate, appointments, absences, brk); found != nil {
			return found
		}
	}
	return nil
}
