package main

import (
	"context"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/app"
	"github.com/Freeeeeet/practice_scheduler/internal/backend"
	"github.com/Freeeeeet/practice_scheduler/internal/config"
	"github.com/Freeeeeet/practice_scheduler/internal/httpapi"
	"github.com/Freeeeeet/practice_scheduler/internal/model"
	"github.com/Freeeeeet/practice_scheduler/internal/repository"
	"github.com/Freeeeeet/practice_scheduler/internal/service"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "scheduler",
		Short:         "Practice scheduling: REST API, calendar bot and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(botCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seriesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// runtime bundles what every command needs.
type runtime struct {
	cfg    *config.Config
	loc    *time.Location
	logger *zap.Logger
	pool   *pgxpool.Pool
}

func setup() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(cfg.Environment)
	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Environment),
		zap.String("backend", cfg.Backend),
		zap.String("timezone", cfg.Timezone),
	)
	return &runtime{cfg: cfg, loc: loc, logger: logger}, nil
}

func (rt *runtime) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if rt.pool != nil {
		return rt.pool, nil
	}
	if err := rt.cfg.RequireDB(); err != nil {
		return nil, err
	}
	pool, err := app.NewPool(ctx, rt.cfg.DBDSN, rt.cfg.DBMaxConns, rt.cfg.DBMinConns)
	if err != nil {
		return nil, err
	}
	rt.pool = pool
	return pool, nil
}

// backend builds the Backend selected by BACKEND. Server-side backends are
// wrapped in the Scheduler so every caller gets the same rules.
func (rt *runtime) backend(ctx context.Context) (backend.Backend, error) {
	if err := rt.cfg.RequireBackend(); err != nil {
		return nil, err
	}

	switch rt.cfg.Backend {
	case config.BackendAPI:
		return backend.NewClient(backend.ClientConfig{
			BaseURL: rt.cfg.APIBaseURL,
			Token:   rt.cfg.APIToken,
			Timeout: rt.cfg.RequestTimeout,
			Logger:  rt.logger.Named("client"),
		})
	case config.BackendPostgres:
		pool, err := rt.connect(ctx)
		if err != nil {
			return nil, err
		}
		store := repository.NewStore(pool, rt.loc, rt.logger)
		return service.NewScheduler(store, rt.loc, rt.logger), nil
	default:
		mem := backend.NewMemory(backend.WithLocation(rt.loc))
		seedDemo(mem)
		rt.logger.Warn("Using the in-memory backend, data is lost on exit")
		return service.NewScheduler(mem, rt.loc, rt.logger), nil
	}
}

// pinger is the health check target, nil without a database.
func (rt *runtime) pinger() httpapi.Pinger {
	if rt.pool == nil {
		return nil
	}
	return rt.pool
}

func (rt *runtime) close() {
	if rt.pool != nil {
		rt.pool.Close()
	}
	_ = rt.logger.Sync()
}

// seedDemo fills an empty memory backend with a small practice.
func seedDemo(mem *backend.Memory) {
	mem.AddPractitioner(model.Practitioner{ID: 1, FirstName: "Anna", LastName: "Weber", IsActive: true})
	mem.AddPractitioner(model.Practitioner{ID: 2, FirstName: "Ben", LastName: "Kraus", IsActive: true})
	mem.AddRoom(model.Room{ID: 1, Name: "Treatment 1", IsActive: true})
	mem.AddRoom(model.Room{ID: 2, Name: "Treatment 2", IsActive: true})

	brk, brkEnd := "12:00", "13:00"
	workday := model.DayHours{Open: true, Start: "08:00", End: "18:00", BreakStart: &brk, BreakEnd: &brkEnd}
	hours := model.OpeningHours{}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		hours[day] = workday
	}
	_ = mem.UpdateOpeningHours(context.Background(), hours)
}
