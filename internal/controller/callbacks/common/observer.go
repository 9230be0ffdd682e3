package common

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/state"
)

const notifyTimeout = 10 * time.Second

// Watch forwards the rejections published by the session's engine to the
// chat until the session is closed.
func Watch(b *bot.Bot, sess *state.Session, logger *zap.Logger) {
	events, stop := sess.Engine.Subscribe()
	sess.OnClose(stop)

	go func() {
		for ev := range events {
			if ev.Type != calendar.EventReverted || ev.Message == "" {
				continue
			}
			logger.Info("Calendar change rejected",
				zap.Int64("chat_id", sess.ChatID),
				zap.Int64("appointment_id", ev.AppointmentID),
				zap.String("mutation_id", ev.MutationID.String()),
				zap.Error(ev.Err),
			)
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			SendText(ctx, b, sess.ChatID, "⚠️ "+ev.Message, logger)
			cancel()
		}
	}()
}
