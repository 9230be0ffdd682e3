package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/calendar"
)

// EngineSource lists the calendar engines that are currently open.
type EngineSource interface {
	Engines() []*calendar.Engine
}

// Refresher periodically refetches every open calendar so edits made
// elsewhere show up without user action.
type Refresher struct {
	source   EngineSource
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewRefresher(source EngineSource, interval time.Duration, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		source:   source,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start runs the refresh loop in the background.
func (r *Refresher) Start(ctx context.Context) {
	r.logger.Info("Starting calendar refresher", zap.Duration("interval", r.interval))

	r.wg.Add(1)
	go r.run(ctx)
}

// Stop ends the loop and waits for it.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		r.logger.Info("Stopping calendar refresher")
		close(r.stopChan)
	})
	r.wg.Wait()
}

func (r *Refresher) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RefreshAll(ctx)
		case <-r.stopChan:
			r.logger.Info("Calendar refresher stopped")
			return
		case <-ctx.Done():
			r.logger.Info("Calendar refresher cancelled")
			return
		}
	}
}

// RefreshAll refetches every open engine once. Failures are logged and
// left for the next tick.
func (r *Refresher) RefreshAll(ctx context.Context) {
	engines := r.source.Engines()
	failed := 0
	for _, e := range engines {
		if err := e.Refresh(ctx); err != nil && !errors.Is(err, calendar.ErrNoView) {
			failed++
			r.logger.Warn("Calendar refresh failed", zap.Error(err))
		}
	}
	r.logger.Debug("Calendars refreshed", zap.Int("engines", len(engines)), zap.Int("failed", failed))
}
