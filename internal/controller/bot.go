package controller

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/callbacks"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/practice_scheduler/internal/controller/state"
)

type BotController struct {
	bot             *bot.Bot
	sessions        *state.Manager
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

// NewBotController wires one calendar engine per chat over store.
func NewBotController(botInstance *bot.Bot, store backend.Store, loc *time.Location, logger *zap.Logger) *BotController {
	sessions := state.NewManager(func() (*calendar.Engine, error) {
		return calendar.NewEngine(calendar.Config{
			Store:    store,
			Location: loc,
			Logger:   logger.Named("calendar"),
		})
	})

	return &BotController{
		bot:             botInstance,
		sessions:        sessions,
		handlers:        handlers.NewHandlers(sessions, loc, logger),
		callbackHandler: callbacks.NewHandler(sessions, loc, logger),
		logger:          logger,
	}
}

// Sessions exposes the live chat sessions, e.g. to the refresher.
func (c *BotController) Sessions() *state.Manager {
	return c.sessions
}

// RegisterHandlers registers the commands and the callback router.
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/calendar", bot.MatchTypePrefix, c.handlers.HandleCalendar)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/rooms", bot.MatchTypePrefix, c.handlers.HandleRooms)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/book", bot.MatchTypePrefix, c.handlers.HandleBook)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/close", bot.MatchTypeExact, c.handlers.HandleClose)

	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	return c.setCommands(ctx)
}

func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "calendar", Description: "🗓 Practitioners calendar"},
		{Command: "rooms", Description: "🚪 Rooms calendar"},
		{Command: "book", Description: "➕ Book an appointment"},
		{Command: "close", Description: "✖️ Close the calendar"},
		{Command: "help", Description: "❓ Help"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start polls updates until ctx is done, then closes every session.
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	c.sessions.CloseAll()
	c.logger.Info("Bot stopped")
	return nil
}
