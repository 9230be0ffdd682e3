package callbacks

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/controller/state"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

// Handler answers the inline buttons of calendar messages.
type Handler struct {
	Sessions *state.Manager
	Logger   *zap.Logger
	Location *time.Location
	Now      func() time.Time
}

func NewHandler(sessions *state.Manager, loc *time.Location, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions: sessions,
		Logger:   logger,
		Location: loc,
		Now:      time.Now,
	}
}

func (h *Handler) today() model.Date {
	return model.DateOf(h.Now().In(h.Location))
}

// HandleCallbackQuery is the bot handler for every callback query.
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery
	h.Logger.Debug("Callback received",
		zap.String("data", callback.Data),
		zap.Int64("user_id", callback.From.ID),
	)

	Route(ctx, b, callback, h)
}
