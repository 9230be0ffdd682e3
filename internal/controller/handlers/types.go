package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/internal/controller/state"
)

// Handlers answers the bot commands.
type Handlers struct {
	sessions *state.Manager
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

func NewHandlers(sessions *state.Manager, loc *time.Location, logger *zap.Logger) *Handlers {
	return &Handlers{
		sessions: sessions,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}
