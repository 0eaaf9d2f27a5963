package agent

import (
	"context"
	"fmt"

	"github.com/rokelvisar/npm-agent/internal/logging"
)

// Loop consumes the container runtime's lifecycle event stream and keeps
// proxy state convergent. Events are processed strictly sequentially, one at
// a time, so two reconciliations for overlapping domains can never race.
type Loop struct {
	logger             *logging.Logger
	runtime            ContainerRuntime
	reconciler         *Reconciler
	defaultForwardHost string
}

// NewLoop creates the event loop.
func NewLoop(runtime ContainerRuntime, reconciler *Reconciler, defaultForwardHost string) *Loop {
	return &Loop{
		logger:             logging.GetGlobalLogger(),
		runtime:            runtime,
		reconciler:         reconciler,
		defaultForwardHost: defaultForwardHost,
	}
}

// Run performs one full reconciliation pass over all running containers and
// then processes lifecycle events until the stream breaks or ctx ends. A
// failure for one container is logged and does not abort the loop; a broken
// stream or unreachable runtime is returned to the supervisor.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.runtime.Ping(ctx); err != nil {
		return fmt.Errorf("cannot connect to Docker daemon: %w", err)
	}
	l.logger.Info("Connected to Docker daemon.")

	l.logger.Info("Performing initial container synchronization...")
	containers, err := l.runtime.ListRunning(ctx)
	if err != nil {
		return fmt.Errorf("failed to list running containers: %w", err)
	}
	for _, facts := range containers {
		if err := l.syncContainer(ctx, facts); err != nil {
			l.logger.Error("Error syncing container %s: %v", facts.Name, err)
		}
	}

	l.logger.Info("Monitoring Docker events...")
	events, errs := l.runtime.Events(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errs:
			return fmt.Errorf("event stream broke: %w", err)
		case event, ok := <-events:
			if !ok {
				return fmt.Errorf("event stream closed")
			}
			l.handleEvent(ctx, event)
		}
	}
}

func (l *Loop) handleEvent(ctx context.Context, event ContainerEvent) {
	switch event.Action {
	case "start":
		l.logger.Info("Container started: %s", event.Name)
		facts, err := l.runtime.Inspect(ctx, event.ID)
		if err != nil {
			l.logger.Error("Failed to process start event for %s: %v", event.Name, err)
			return
		}
		if err := l.syncContainer(ctx, facts); err != nil {
			l.logger.Error("Failed to process start event for %s: %v", event.Name, err)
		}

	case "die", "destroy", "stop":
		// The container may already be gone; only the event's attribute
		// snapshot is available here.
		domain, ok := event.Attributes[LabelHost]
		if !ok {
			return
		}
		l.logger.Info("Cleaning up proxy for removed container: %s (%s)", event.Name, domain)
		if err := l.reconciler.Cleanup(ctx, domain); err != nil {
			l.logger.Error("Failed to clean up proxy for %s: %v", event.Name, err)
		}
	}
}

func (l *Loop) syncContainer(ctx context.Context, facts ContainerFacts) error {
	spec, err := DeriveSpec(facts, l.defaultForwardHost)
	if err != nil {
		return err
	}
	if spec == nil {
		return nil
	}

	l.logger.Info("Syncing %s labels (%s)...", facts.Name, spec.Primary())
	return l.reconciler.Reconcile(ctx, *spec)
}
