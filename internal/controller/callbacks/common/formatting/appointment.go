package formatting

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/status"
)

// Names resolves resource ids to display names.
type Names struct {
	Practitioners map[int64]string
	Rooms         map[int64]string
}

func (n Names) practitioner(id int64) string {
	if name, ok := n.Practitioners[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

func (n Names) room(id int64) string {
	if name, ok := n.Rooms[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

// Resource returns the display name of r.
func (n Names) Resource(r model.Resource) string {
	if r.Kind == model.ResourceRoom {
		return n.room(r.ID)
	}
	return n.practitioner(r.ID)
}

// Appointment renders the HTML card of an open appointment.
func Appointment(a model.Appointment, names Names, loc *time.Location) string {
	start := a.Start.In(loc)
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Appointment #%d</b>\n\n", a.ID)
	fmt.Fprintf(&sb, "📅 %s, %s (%s)\n", FormatDate(model.DateOf(start)), FormatTimeRange(start, a.End().In(loc)), FormatDuration(a.DurationMinutes))
	fmt.Fprintf(&sb, "🧑 Patient #%d\n", a.PatientID)
	fmt.Fprintf(&sb, "👤 %s\n", html.EscapeString(names.practitioner(a.PractitionerID)))
	fmt.Fprintf(&sb, "🚪 %s\n", html.EscapeString(names.room(a.RoomID)))
	fmt.Fprintf(&sb, "%s %s\n", status.Emoji(a.Status), status.Label(a.Status))
	if a.SeriesID != nil {
		fmt.Fprintf(&sb, "🔁 Series %s\n", a.SeriesID.String()[:8])
	}
	if a.Notes != "" {
		fmt.Fprintf(&sb, "\n📝 %s\n", html.EscapeString(a.Notes))
	}
	if a.Status != model.StatusPlanned {
		sb.WriteString("\n<i>Only planned appointments can be moved or resized.</i>")
	}
	return strings.TrimRight(sb.String(), "\n")
}
