package common

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AnswerCallback acknowledges a button press, optionally with a toast.
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// AnswerCallbackAlert acknowledges a button press with a modal alert.
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// GetMessageFromCallback returns the message the button belongs to, nil
// when it is no longer accessible.
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}
