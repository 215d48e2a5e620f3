package session

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweeper periodically evicts idle sessions from a Registry
type Sweeper struct {
	cron     *cron.Cron
	registry *Registry
	logger   zerolog.Logger
}

// NewSweeper schedules Registry.Sweep using a cron spec such as "@every 5m" or "*/5 * * * *"
func NewSweeper(registry *Registry, schedule string, logger zerolog.Logger) (*Sweeper, error) {
	s := &Sweeper{
		cron:     cron.New(),
		registry: registry,
		logger:   logger,
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid session sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start runs the schedule in the background
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to expire
func (s *Sweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("Timed out waiting for session sweep to finish")
	}
}

func (s *Sweeper) run() {
	removed := s.registry.Sweep()
	if removed > 0 {
		s.logger.Info().
			Int("evicted", removed).
			Int("remaining", s.registry.Len()).
			Msg("Evicted idle sessions")
	}
}
