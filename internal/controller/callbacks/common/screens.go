package common

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/state"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/render"
	"github.com/Freeeeeet/practice_scheduler/internal/status"
)

// AxisTitle names the calendar of an axis.
func AxisTitle(axis model.ResourceKind) string {
	if axis == model.ResourceRoom {
		return "Rooms"
	}
	return "Practitioners"
}

// NamesOf collects display names from a snapshot.
func NamesOf(snap calendar.Snapshot) formatting.Names {
	names := formatting.Names{
		Practitioners: make(map[int64]string, len(snap.Practitioners)),
		Rooms:         make(map[int64]string, len(snap.Rooms)),
	}
	for _, p := range snap.Practitioners {
		names.Practitioners[p.ID] = p.DisplayName()
	}
	for _, r := range snap.Rooms {
		names.Rooms[r.ID] = r.Name
	}
	return names
}

// NextResource returns the resource after the one a is bound to on axis,
// wrapping around. It is nil when the axis has no other resource.
func NextResource(resources []calendar.ResourceInfo, a model.Appointment, axis model.ResourceKind) (*calendar.ResourceInfo, bool) {
	if len(resources) < 2 {
		return nil, false
	}
	current := model.Resource{Kind: axis, ID: a.ResourceID(axis)}
	for i, r := range resources {
		if r.Resource == current {
			next := resources[(i+1)%len(resources)]
			return &next, true
		}
	}
	return &resources[0], true
}

// MenuTargets lists the statuses the chat menu offers from s. Billing
// targets are included since the bot is the billing surface too.
func MenuTargets(s model.AppointmentStatus) []model.AppointmentStatus {
	out := status.Allowed(status.ActionMenu, s)
	return append(out, status.Allowed(status.ActionBilling, s)...)
}

// ActionFor picks the action that may perform from -> to.
func ActionFor(from, to model.AppointmentStatus) status.Action {
	if status.ActionBilling.Permits(from, to) {
		return status.ActionBilling
	}
	return status.ActionMenu
}

// CalendarCaption is the caption and keyboard of the calendar message.
func CalendarCaption(e *calendar.Engine) (string, *models.InlineKeyboardMarkup, error) {
	view, ok := e.View()
	if !ok {
		return "", nil, calendar.ErrNoView
	}
	items := e.Items()

	appointments := 0
	for _, it := range items {
		if it.Kind == calendar.ItemAppointment {
			appointments++
		}
	}
	caption := fmt.Sprintf("<b>%s</b>\n%s\n\n", AxisTitle(view.Axis), formatting.FormatRange(view.From, view.To))
	switch appointments {
	case 0:
		caption += "No appointments."
	case 1:
		caption += "1 appointment. Tap it to open it."
	default:
		caption += fmt.Sprintf("%d appointments. Tap one to open it.", appointments)
	}
	return caption, keyboard.Calendar(view, items, e.Location()), nil
}

// BuildCalendarScreen builds the caption, keyboard and image of the
// calendar message.
func BuildCalendarScreen(e *calendar.Engine, now time.Time) (string, *models.InlineKeyboardMarkup, []byte, error) {
	caption, kb, err := CalendarCaption(e)
	if err != nil {
		return "", nil, nil, err
	}
	view, _ := e.View()
	img, err := render.Calendar(render.GridOf(e, AxisTitle(view.Axis), now))
	if err != nil {
		return "", nil, nil, err
	}
	return caption, kb, img, nil
}

// BuildAppointmentScreen builds the caption and keyboard of an open
// appointment.
func BuildAppointmentScreen(e *calendar.Engine, a model.Appointment) (string, *models.InlineKeyboardMarkup) {
	view, _ := e.View()
	menu := keyboard.AppointmentMenu{
		Appointment: a,
		Targets:     MenuTargets(a.Status),
	}
	if next, ok := NextResource(e.Resources(), a, view.Axis); ok && next.Resource.ID != a.ResourceID(view.Axis) {
		menu.Reassign = &next.Resource
		menu.ReassignLabel = next.Name
	}
	text := formatting.Appointment(a, NamesOf(e.Snapshot()), e.Location())
	return text, keyboard.Appointment(menu)
}

// ShowCalendar sends a fresh calendar message for the session and removes
// the previous one. An open appointment replaces the caption and keyboard.
func ShowCalendar(ctx context.Context, b *bot.Bot, sess *state.Session, logger *zap.Logger) error {
	caption, kb, img, err := BuildCalendarScreen(sess.Engine, time.Now())
	if err != nil {
		return err
	}
	if id := sess.Selected(); id != 0 {
		if a, ok := sess.Engine.Appointment(id); ok {
			caption, kb = BuildAppointmentScreen(sess.Engine, a)
		} else {
			sess.Select(0)
		}
	}

	msg, err := b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:      sess.ChatID,
		Photo:       &models.InputFileUpload{Filename: "calendar.png", Data: bytes.NewReader(img)},
		Caption:     caption,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: kb,
	})
	if err != nil {
		return fmt.Errorf("send calendar: %w", err)
	}

	if old := sess.MessageID(); old != 0 {
		if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: sess.ChatID, MessageID: old}); err != nil {
			logger.Debug("Failed to delete previous calendar message",
				zap.Int64("chat_id", sess.ChatID),
				zap.Error(err),
			)
		}
	}
	sess.SetMessageID(msg.ID)
	return nil
}

// SendText sends a plain message and logs a failure.
func SendText(ctx context.Context, b *bot.Bot, chatID int64, text string, logger *zap.Logger) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
