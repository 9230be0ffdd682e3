package callbacks

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/state"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

// nextView applies a navigation command to v.
func nextView(v calendar.View, nav callbacktypes.Nav, today model.Date) calendar.View {
	days := len(v.Dates())
	switch nav {
	case callbacktypes.NavPrev:
		return v.Shift(-days)
	case callbacktypes.NavNext:
		return v.Shift(days)
	case callbacktypes.NavToday:
		v.From, v.To = today, today.AddDays(days-1)
	case callbacktypes.NavAxis:
		v.ResourceIDs = nil
		if v.Axis == model.ResourceRoom {
			v.Axis = model.ResourcePractitioner
		} else {
			v.Axis = model.ResourceRoom
		}
	}
	return v
}

func (h *Handler) navigate(ctx context.Context, b *bot.Bot, sess *state.Session, nav callbacktypes.Nav) error {
	e := sess.Engine
	view, ok := e.View()
	if !ok {
		return calendar.ErrNoView
	}

	switch nav {
	case callbacktypes.NavBack:
		sess.Select(0)
		return h.editCaption(ctx, b, sess)
	case callbacktypes.NavRefresh:
		if err := e.Refresh(ctx); err != nil {
			return err
		}
	default:
		sess.Select(0)
		if err := e.SetView(ctx, nextView(view, nav, h.today())); err != nil {
			return err
		}
	}
	return common.ShowCalendar(ctx, b, sess, h.Logger)
}

func (h *Handler) open(ctx context.Context, b *bot.Bot, sess *state.Session, id int64) error {
	if _, ok := sess.Engine.Appointment(id); !ok {
		return common.ErrAppointmentNotVisible
	}
	sess.Select(id)
	return h.editCaption(ctx, b, sess)
}

// editCaption swaps the caption and keyboard of the calendar message
// without sending a new image.
func (h *Handler) editCaption(ctx context.Context, b *bot.Bot, sess *state.Session) error {
	caption, kb, err := common.CalendarCaption(sess.Engine)
	if err != nil {
		return err
	}
	if id := sess.Selected(); id != 0 {
		a, ok := sess.Engine.Appointment(id)
		if !ok {
			sess.Select(0)
			return common.ErrAppointmentNotVisible
		}
		caption, kb = common.BuildAppointmentScreen(sess.Engine, a)
	}

	_, err = b.EditMessageCaption(ctx, &bot.EditMessageCaptionParams{
		ChatID:      sess.ChatID,
		MessageID:   sess.MessageID(),
		Caption:     caption,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: kb,
	})
	return err
}
