package callbacks

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks/common"
)

// Route dispatches a callback query by its payload kind.
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *Handler) {
	data, err := callbacktypes.Parse(callback.Data)
	if err != nil {
		h.Logger.Warn("Unknown callback", zap.String("data", callback.Data), zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}
	if data.Kind == callbacktypes.KindNoop {
		common.AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrNoMessage))
		return
	}
	sess, ok := h.Sessions.Get(msg.Chat.ID)
	if !ok || sess.MessageID() != msg.ID {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrNoSession))
		return
	}

	switch data.Kind {
	case callbacktypes.KindCalendar:
		err = h.navigate(ctx, b, sess, data.Nav)
	case callbacktypes.KindOpen:
		err = h.open(ctx, b, sess, data.AppointmentID)
	default:
		err = h.mutate(ctx, sess, data)
		if err == nil {
			err = common.ShowCalendar(ctx, b, sess, h.Logger)
		} else if rejected(err) {
			// The engine already reported the rejection to the chat.
			common.AnswerCallback(ctx, b, callback.ID, "")
			return
		}
	}

	if err != nil {
		h.Logger.Error("Callback failed",
			zap.String("data", callback.Data),
			zap.Int64("chat_id", sess.ChatID),
			zap.Error(err),
		)
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}
	common.AnswerCallback(ctx, b, callback.ID, "")
}

// rejectedError marks an engine rejection. The engine publishes those to
// the session observer, so the router does not report them again.
type rejectedError struct{ error }

func (e rejectedError) Unwrap() error { return e.error }

func rejected(err error) bool {
	var r rejectedError
	return errors.As(err, &r)
}
