package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

const bookUsage = "usage: /book <patient> <HH:MM> <minutes> <practitioner> <room>"

type bookArgs struct {
	patient      int64
	start        model.TimeOfDay
	minutes      int
	practitioner int64
	room         int64
}

// HandleBook creates an appointment on the first day of the open calendar.
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	args, err := parseBookArgs(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, err.Error())
		return
	}
	sess, ok := h.sessions.Get(chatID)
	if !ok {
		h.sendError(ctx, b, chatID, common.ErrorMessage(common.ErrNoSession))
		return
	}

	draft, err := draftFor(sess.Engine, args, h.loc)
	if err != nil {
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	// Rejections reach the chat through the session observer.
	created, err := sess.Engine.Create(ctx, draft)
	if err != nil {
		h.logger.Info("Booking rejected", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	h.logger.Info("Appointment booked from chat",
		zap.Int64("chat_id", chatID),
		zap.Int64("appointment_id", created.ID),
	)

	sess.Select(created.ID)
	if err := common.ShowCalendar(ctx, b, sess, h.logger); err != nil {
		h.logger.Error("Failed to show calendar", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// draftFor selects the booked range in the column of the current axis and
// fills the selection defaults.
func draftFor(e *calendar.Engine, args bookArgs, loc *time.Location) (model.Appointment, error) {
	view, ok := e.View()
	if !ok {
		return model.Appointment{}, calendar.ErrNoView
	}

	start := args.start.On(view.From, loc)
	resource := model.PractitionerResource(args.practitioner)
	if view.Axis == model.ResourceRoom {
		resource = model.RoomResource(args.room)
	}
	sel, err := e.Select(calendar.SelectRequest{
		Resource: resource,
		Start:    start,
		End:      start.Add(time.Duration(args.minutes) * time.Minute),
	})
	if err != nil {
		return model.Appointment{}, err
	}

	draft := sel.Appointment
	draft.PatientID = args.patient
	draft.PractitionerID = args.practitioner
	draft.RoomID = args.room
	return draft, nil
}

// parseBookArgs reads "/book <patient> <HH:MM> <minutes> <practitioner> <room>".
func parseBookArgs(text string) (bookArgs, error) {
	fields := strings.Fields(text)
	if len(fields) > 0 {
		fields = fields[1:]
	}
	if len(fields) != 5 {
		return bookArgs{}, errors.New(bookUsage)
	}

	var args bookArgs
	var err error
	if args.patient, err = positiveID(fields[0], "patient"); err != nil {
		return bookArgs{}, err
	}
	if args.start, err = model.ParseTimeOfDay(fields[1]); err != nil {
		return bookArgs{}, fmt.Errorf("%q is not a time, use HH:MM", fields[1])
	}
	args.minutes, err = strconv.Atoi(fields[2])
	if err != nil || args.minutes < 1 || args.minutes > 24*60 {
		return bookArgs{}, fmt.Errorf("minutes must be between 1 and %d", 24*60)
	}
	if args.practitioner, err = positiveID(fields[3], "practitioner"); err != nil {
		return bookArgs{}, err
	}
	if args.room, err = positiveID(fields[4], "room"); err != nil {
		return bookArgs{}, err
	}
	return args, nil
}

func positiveID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive id, got %q", name, raw)
	}
	return id, nil
}
