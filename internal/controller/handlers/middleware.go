package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// sendError sends an error message and logs a failure to deliver it.
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "❌ " + text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
