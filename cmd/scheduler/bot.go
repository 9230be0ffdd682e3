package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/app"
	"github.com/Freeeeeet/practice_scheduler/internal/controller"
)

func botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram calendar bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot()
		},
	}
}

func runBot() error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.cfg.RequireTelegram(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := rt.backend(ctx)
	if err != nil {
		return err
	}

	logger := rt.logger.Named("bot")
	botInstance, err := bot.New(rt.cfg.TelegramToken,
		bot.WithErrorsHandler(func(err error) {
			logger.Warn("Telegram error", zap.Error(err))
		}),
	)
	if err != nil {
		return err
	}

	ctrl := controller.NewBotController(botInstance, store, rt.loc, logger)
	if err := ctrl.RegisterHandlers(ctx); err != nil {
		return err
	}

	refresher := app.NewRefresher(ctrl.Sessions(), rt.cfg.RefreshInterval, rt.logger.Named("refresher"))
	refresher.Start(ctx)
	defer refresher.Stop()

	return ctrl.Start(ctx)
}
