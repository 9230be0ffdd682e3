package keyboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/status"
)

const (
	maxAppointmentButtons = 24
	appointmentsPerRow    = 3

	// StepMinutes is the move and resize granularity.
	StepMinutes = 15
)

// Calendar is the keyboard under the calendar image: navigation and one
// button per visible appointment.
func Calendar(view calendar.View, items []calendar.Item, loc *time.Location) *models.InlineKeyboardMarkup {
	b := NewBuilder().
		Row(DayPagination(view.From, view.To)...).
		Row(AxisButton(view.Axis), RefreshButton())

	var appts []calendar.Item
	seen := make(map[int64]bool)
	for _, it := range items {
		if it.Kind != calendar.ItemAppointment || seen[it.AppointmentID] {
			continue
		}
		seen[it.AppointmentID] = true
		appts = append(appts, it)
	}
	sort.Slice(appts, func(i, j int) bool {
		if !appts[i].Start.Equal(appts[j].Start) {
			return appts[i].Start.Before(appts[j].Start)
		}
		return appts[i].AppointmentID < appts[j].AppointmentID
	})
	if len(appts) > maxAppointmentButtons {
		appts = appts[:maxAppointmentButtons]
	}

	buttons := make([]models.InlineKeyboardButton, 0, len(appts))
	for _, it := range appts {
		label := fmt.Sprintf("%s %s #%d", status.Emoji(it.Status), it.Start.In(loc).Format("15:04"), it.AppointmentID)
		if len(view.Dates()) > 1 {
			label = fmt.Sprintf("%s %s #%d", status.Emoji(it.Status), it.Start.In(loc).Format("02.01 15:04"), it.AppointmentID)
		}
		buttons = append(buttons, Button(label, callbacktypes.Open(it.AppointmentID)))
	}
	return b.Grid(appointmentsPerRow, buttons...).Build()
}

// AppointmentMenu is what the keyboard of an open appointment offers.
type AppointmentMenu struct {
	Appointment model.Appointment
	// Reassign is the next resource on the current axis, nil if there is none.
	Reassign      *model.Resource
	ReassignLabel string
	Targets       []model.AppointmentStatus
}

// Appointment is the keyboard of an open appointment. Geometry buttons are
// offered for planned appointments only.
func Appointment(m AppointmentMenu) *models.InlineKeyboardMarkup {
	id := m.Appointment.ID
	b := NewBuilder()

	if m.Appointment.Status == model.StatusPlanned {
		b.Row(
			Button(fmt.Sprintf("⏪ -%d min", StepMinutes), callbacktypes.Move(id, -StepMinutes)),
			Button(fmt.Sprintf("⏩ +%d min", StepMinutes), callbacktypes.Move(id, StepMinutes)),
		)
		shorter := []models.InlineKeyboardButton{}
		if m.Appointment.DurationMinutes > StepMinutes {
			shorter = append(shorter, Button(fmt.Sprintf("➖ %d min", StepMinutes), callbacktypes.Resize(id, -StepMinutes)))
		}
		b.Row(append(shorter, Button(fmt.Sprintf("➕ %d min", StepMinutes), callbacktypes.Resize(id, StepMinutes)))...)
		if m.Reassign != nil {
			b.Row(Button("🔀 "+m.ReassignLabel, callbacktypes.Reassign(id, *m.Reassign)))
		}
	}

	targets := make([]models.InlineKeyboardButton, 0, len(m.Targets))
	for _, t := range m.Targets {
		targets = append(targets, Button(status.Emoji(t)+" "+status.Label(t), callbacktypes.Status(id, t)))
	}
	b.Grid(2, targets...)

	return b.Row(
		Button("🗑 Delete", callbacktypes.Delete(id)),
		BackButton(),
	).Build()
}
