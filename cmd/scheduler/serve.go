package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/app"
	"github.com/Freeeeeet/practice_scheduler/internal/config"
	"github.com/Freeeeeet/practice_scheduler/internal/httpapi"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduling REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			return runServer(migrate)
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving (postgres backend)")
	return cmd
}

func runServer(migrate bool) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.cfg.Backend == config.BackendAPI {
		return fmt.Errorf("serve needs BACKEND=postgres or BACKEND=memory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := rt.backend(ctx)
	if err != nil {
		return err
	}

	if migrate && rt.pool != nil {
		migrator, err := app.NewMigrator(rt.pool, rt.logger)
		if err != nil {
			return err
		}
		err = migrator.Run(ctx)
		migrator.Close()
		if err != nil {
			return err
		}
	}

	if rt.cfg.APIToken == "" {
		rt.logger.Warn("API_TOKEN is empty, the API accepts unauthenticated requests")
	}

	srv := httpapi.NewServer(b, rt.loc, rt.logger.Named("http"))
	e := httpapi.NewEcho(srv, rt.pinger(), rt.cfg.APIToken)

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("HTTP server listening", zap.String("addr", rt.cfg.HTTPAddr))
		if err := e.Start(rt.cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	rt.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
