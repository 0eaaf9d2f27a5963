package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rokelvisar/npm-agent/internal/logging"
)

// Supervisor is the process-level recovery mechanism: it runs the loop,
// and when the loop exits with an error it waits a fixed delay and re-runs
// startup from scratch (full re-sync). This is deliberately coarse; there is
// no partial stream resumption.
type Supervisor struct {
	logger *logging.Logger
	loop   loopRunner
	delay  time.Duration
}

// loopRunner is the single round the supervisor keeps alive. *Loop
// satisfies it.
type loopRunner interface {
	Run(ctx context.Context) error
}

// NewSupervisor creates a supervisor restarting the loop after delay.
func NewSupervisor(loop loopRunner, delay time.Duration) *Supervisor {
	if delay <= 0 {
		delay = 10 * time.Second
	}
	return &Supervisor{
		logger: logging.GetGlobalLogger(),
		loop:   loop,
		delay:  delay,
	}
}

// Run supervises the loop until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	for {
		err := s.runOnce(ctx)
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			s.logger.Info("Shutdown signal received. Exiting...")
			return
		}

		s.logger.Error("[CRITICAL] Unexpected runtime error: %v. Restarting in %s...", err, s.delay)
		select {
		case <-ctx.Done():
			s.logger.Info("Shutdown signal received. Exiting...")
			return
		case <-time.After(s.delay):
		}
	}
}

// runOnce runs a single loop round, converting a panic anywhere in the loop
// body into a round error so the daemon restarts instead of dying.
func (s *Supervisor) runOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in sync loop: %v", r)
		}
	}()
	return s.loop.Run(ctx)
}
