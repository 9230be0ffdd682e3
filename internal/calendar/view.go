package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/practice_scheduler/internal/availability"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

// View is the visible range and resource axis.
type View struct {
	Axis model.ResourceKind
	From model.Date
	To   model.Date
	// ResourceIDs restricts the visible resources; empty shows every active
	// resource of the axis.
	ResourceIDs []int64
}

// Validate checks that the view can be fetched.
func (v View) Validate() error {
	if !v.Axis.Valid() {
		return fmt.Errorf("invalid view axis %q", v.Axis)
	}
	if v.From.IsZero() || v.To.IsZero() {
		return fmt.Errorf("view range is not set")
	}
	if v.To.Before(v.From) {
		return fmt.Errorf("view ends %s before it starts %s", v.To, v.From)
	}
	return nil
}

// Dates lists every date of the view in order.
func (v View) Dates() []model.Date {
	var out []model.Date
	for d := v.From; !d.After(v.To); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// Shift moves the range by n days, keeping its length.
func (v View) Shift(n int) View {
	v.From = v.From.AddDays(n)
	v.To = v.To.AddDays(n)
	return v
}

// DayView returns a one-day view on the given axis.
func DayView(axis model.ResourceKind, d model.Date) View {
	return View{Axis: axis, From: d, To: d}
}

// Snapshot is the last committed state fetched for a view. Optimistic
// changes of in-flight mutations are overlaid on Appointments.
type Snapshot struct {
	View          View
	Appointments  []model.Appointment
	Absences      []model.Absence
	Hours         model.OpeningHours
	Practitioners []model.Practitioner
	Rooms         []model.Room
	FetchedAt     time.Time
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Appointments = append([]model.Appointment(nil), s.Appointments...)
	out.Absences = append([]model.Absence(nil), s.Absences...)
	out.Practitioners = append([]model.Practitioner(nil), s.Practitioners...)
	out.Rooms = append([]model.Room(nil), s.Rooms...)
	out.View.ResourceIDs = append([]int64(nil), s.View.ResourceIDs...)
	return out
}

func (s Snapshot) find(id int64) (int, bool) {
	for i, a := range s.Appointments {
		if a.ID == id {
			return i, true
		}
	}
	return -1, false
}

// ResourceInfo is a visible resource with its display name.
type ResourceInfo struct {
	Resource model.Resource
	Name     string
}

// resources lists the visible resources of the axis in catalog order.
func (s Snapshot) resources() []ResourceInfo {
	wanted := make(map[int64]bool, len(s.View.ResourceIDs))
	for _, id := range s.View.ResourceIDs {
		wanted[id] = true
	}
	visible := func(id int64, active bool) bool {
		if len(wanted) > 0 {
			return wanted[id]
		}
		return active
	}

	var out []ResourceInfo
	switch s.View.Axis {
	case model.ResourcePractitioner:
		for _, p := range s.Practitioners {
			if visible(p.ID, p.IsActive) {
				out = append(out, ResourceInfo{Resource: p.Resource(), Name: p.DisplayName()})
			}
		}
	case model.ResourceRoom:
		for _, r := range s.Rooms {
			if visible(r.ID, r.IsActive) {
				out = append(out, ResourceInfo{Resource: r.Resource(), Name: r.Name})
			}
		}
	}
	return out
}

// ItemKind classifies a render item. The kinds are mutually exclusive.
type ItemKind string

const (
	ItemBreak       ItemKind = "break"
	ItemAbsence     ItemKind = "absence"
	ItemAppointment ItemKind = "appointment"
)

// Item is one block on the grid.
type Item struct {
	Kind     ItemKind
	Resource model.Resource
	Date     model.Date
	Start    time.Time
	End      time.Time

	// Set for appointments.
	AppointmentID int64
	PatientID     int64
	Status        model.AppointmentStatus
	Editable      bool
	Pending       bool

	// Set for absences.
	AbsenceID   int64
	AbsenceType model.AbsenceType
}

// items classifies the snapshot into grid items per visible date and
// resource, sorted by resource then start.
func (s Snapshot) items(loc *time.Location, pending map[int64]bool) []Item {
	resources := s.resources()
	order := make(map[model.Resource]int, len(resources))
	for i, r := range resources {
		order[r.Resource] = i
	}

	var out []Item
	for _, d := range s.View.Dates() {
		dayStart, dayEnd := d.In(loc), d.AddDays(1).In(loc)
		brk := availability.BreakWindow(s.Hours, d)

		for _, r := range resources {
			if brk != nil {
				start, end := brk.On(d, loc)
				out = append(out, Item{Kind: ItemBreak, Resource: r.Resource, Date: d, Start: start, End: end})
			}

			if r.Resource.Kind == model.ResourcePractitioner {
				for _, abs := range s.Absences {
					if !abs.IsApproved || abs.PractitionerID != r.Resource.ID {
						continue
					}
					for _, iv := range abs.Intervals(loc) {
						if !iv.Overlaps(model.Interval{Start: dayStart, End: dayEnd}) {
							continue
						}
						start, end := iv.Start, iv.End
						if start.Before(dayStart) {
							start = dayStart
						}
						if end.After(dayEnd) {
							end = dayEnd
						}
						out = append(out, Item{
							Kind:        ItemAbsence,
							Resource:    r.Resource,
							Date:        d,
							Start:       start,
							End:         end,
							AbsenceID:   abs.ID,
							AbsenceType: abs.Type,
						})
					}
				}
			}

			for _, a := range s.Appointments {
				if !a.BoundTo(r.Resource) || model.DateOf(a.Start.In(loc)) != d {
					continue
				}
				out = append(out, Item{
					Kind:          ItemAppointment,
					Resource:      r.Resource,
					Date:          d,
					Start:         a.Start,
					End:           a.End(),
					AppointmentID: a.ID,
					PatientID:     a.PatientID,
					Status:        a.Status,
					Editable:      a.Status == model.StatusPlanned,
					Pending:       pending[a.ID],
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := order[out[i].Resource], order[out[j].Resource]
		if oi != oj {
			return oi < oj
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
