package docker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"github.com/rokelvisar/npm-agent/internal/agent"
	"github.com/rokelvisar/npm-agent/internal/logging"
)

// apiClient is the slice of the Docker SDK client the adapter uses.
// *client.Client satisfies it.
type apiClient interface {
	Ping(ctx context.Context) (types.Ping, error)
	ContainerList(ctx context.Context, options types.ContainerListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	Events(ctx context.Context, options types.EventsOptions) (<-chan events.Message, <-chan error)
}

// Runtime implements agent.ContainerRuntime using the Docker SDK.
type Runtime struct {
	cli    apiClient
	logger *logging.Logger
}

// NewRuntime creates a new Docker runtime adapter. Connection settings come
// from the environment (DOCKER_HOST et al.).
func NewRuntime() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Runtime{cli: cli, logger: logging.GetGlobalLogger()}, nil
}

// Ping verifies the Docker daemon is reachable.
func (r *Runtime) Ping(ctx context.Context) error {
	if _, err := r.cli.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon unreachable: %w", err)
	}
	return nil
}

// ListRunning returns facts for every running container. A container that
// disappears between list and inspect is logged and skipped; the listing as a
// whole only fails when the list call itself does.
func (r *Runtime) ListRunning(ctx context.Context) ([]agent.ContainerFacts, error) {
	containers, err := r.cli.ContainerList(ctx, types.ContainerListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	facts := make([]agent.ContainerFacts, 0, len(containers))
	for _, c := range containers {
		f, err := r.Inspect(ctx, c.ID)
		if err != nil {
			r.logger.Warn("Skipping container %s: %v", c.ID, err)
			continue
		}
		facts = append(facts, f)
	}
	return facts, nil
}

// Inspect fetches one container by id and maps it to facts.
func (r *Runtime) Inspect(ctx context.Context, id string) (agent.ContainerFacts, error) {
	info, err := r.cli.ContainerInspect(ctx, id)
	if err != nil {
		return agent.ContainerFacts{}, fmt.Errorf("failed to inspect container %s: %w", id, err)
	}

	facts := agent.ContainerFacts{
		ID:             info.ID,
		Name:           strings.TrimPrefix(info.Name, "/"),
		Labels:         map[string]string{},
		PublishedPorts: map[string]string{},
	}
	if info.Config != nil && info.Config.Labels != nil {
		facts.Labels = info.Config.Labels
	}

	if info.NetworkSettings != nil {
		for name, endpoint := range info.NetworkSettings.Networks {
			if endpoint == nil {
				continue
			}
			facts.Networks = append(facts.Networks, agent.NetworkAttachment{
				Name:      name,
				IPAddress: endpoint.IPAddress,
			})
		}
		// Map iteration order is randomized; sort so the first-IP
		// fallback stays deterministic across restarts.
		sort.Slice(facts.Networks, func(i, j int) bool {
			return facts.Networks[i].Name < facts.Networks[j].Name
		})

		for port, bindings := range info.NetworkSettings.Ports {
			for _, binding := range bindings {
				if binding.HostPort != "" {
					facts.PublishedPorts[string(port)] = binding.HostPort
					break
				}
			}
		}
	}

	return facts, nil
}

// Events subscribes to the daemon's event stream, filtered to container
// events, and maps each message to an agent.ContainerEvent.
func (r *Runtime) Events(ctx context.Context) (<-chan agent.ContainerEvent, <-chan error) {
	out := make(chan agent.ContainerEvent)
	errs := make(chan error, 1)

	msgs, rawErrs := r.cli.Events(ctx, types.EventsOptions{
		Filters: filters.NewArgs(filters.Arg("type", "container")),
	})

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case err := <-rawErrs:
				errs <- err
				return
			case msg, ok := <-msgs:
				if !ok {
					errs <- fmt.Errorf("docker event stream closed")
					return
				}
				select {
				case out <- mapEvent(msg):
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}
	}()

	return out, errs
}

func mapEvent(msg events.Message) agent.ContainerEvent {
	attrs := msg.Actor.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	return agent.ContainerEvent{
		Action:     string(msg.Action),
		ID:         msg.Actor.ID,
		Name:       attrs["name"],
		Attributes: attrs,
	}
}
