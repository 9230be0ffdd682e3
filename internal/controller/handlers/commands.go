package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

const maxViewDays = 7

const helpText = "🗓 Practice calendar\n\n" +
	"/calendar [date] [days] - practitioners calendar\n" +
	"/rooms [date] [days] - rooms calendar\n" +
	"/book <patient> <HH:MM> <minutes> <practitioner> <room> - book on the first day shown\n" +
	"/close - close the calendar of this chat\n" +
	"/help - show this help\n\n" +
	"Dates are YYYY-MM-DD, today by default. Days is 1 to 7.\n" +
	"Tap an appointment to move it by 15 minutes, change its length, " +
	"give it to the next practitioner or room, or change its status."

func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	name := update.Message.From.FirstName
	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf("👋 Hello, %s!\n\n%s", name, helpText))
}

func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleCalendar opens the practitioner axis.
func (h *Handlers) HandleCalendar(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.showAxis(ctx, b, update, model.ResourcePractitioner)
}

// HandleRooms opens the room axis.
func (h *Handlers) HandleRooms(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.showAxis(ctx, b, update, model.ResourceRoom)
}

// HandleClose ends the session of the chat.
func (h *Handlers) HandleClose(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if _, ok := h.sessions.Get(chatID); !ok {
		h.sendMessage(ctx, b, chatID, "No calendar is open.")
		return
	}
	h.sessions.Close(chatID)
	h.sendMessage(ctx, b, chatID, "Calendar closed.")
}

func (h *Handlers) showAxis(ctx context.Context, b *bot.Bot, update *models.Update, axis model.ResourceKind) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	view, err := parseViewArgs(update.Message.Text, axis, model.DateOf(h.now().In(h.loc)))
	if err != nil {
		h.sendError(ctx, b, chatID, err.Error())
		return
	}

	sess, created, err := h.sessions.Open(chatID)
	if err != nil {
		h.logger.Error("Failed to open calendar session", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, b, chatID, "The calendar could not be opened. Try again later.")
		return
	}
	if created {
		common.Watch(b, sess, h.logger)
		h.logger.Info("Calendar session opened", zap.Int64("chat_id", chatID))
	}

	sess.Select(0)
	if err := sess.Engine.SetView(ctx, view); err != nil {
		h.logger.Error("Failed to load calendar", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}
	if err := common.ShowCalendar(ctx, b, sess, h.logger); err != nil {
		h.logger.Error("Failed to show calendar", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, b, chatID, "The calendar could not be drawn.")
	}
}

// parseViewArgs reads "/calendar [YYYY-MM-DD] [days]".
func parseViewArgs(text string, axis model.ResourceKind, today model.Date) (calendar.View, error) {
	fields := strings.Fields(text)
	if len(fields) > 0 {
		fields = fields[1:]
	}
	if len(fields) > 2 {
		return calendar.View{}, fmt.Errorf("usage: /calendar [YYYY-MM-DD] [days]")
	}

	from, days := today, 1
	for _, f := range fields {
		if n, err := strconv.Atoi(f); err == nil {
			if n < 1 || n > maxViewDays {
				return calendar.View{}, fmt.Errorf("days must be between 1 and %d", maxViewDays)
			}
			days = n
			continue
		}
		d, err := model.ParseDate(f)
		if err != nil {
			return calendar.View{}, fmt.Errorf("%q is not a date, use YYYY-MM-DD", f)
		}
		from = d
	}
	return calendar.View{Axis: axis, From: from, To: from.AddDays(days - 1)}, nil
}
