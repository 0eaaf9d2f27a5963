package agent

import (
	"context"

	"github.com/rokelvisar/npm-agent/internal/npm"
)

// Container labels recognized by the agent. A container without LabelHost is
// entirely out of scope.
const (
	LabelHost        = "npm.proxy.host"
	LabelPort        = "npm.proxy.port"
	LabelScheme      = "npm.proxy.scheme"
	LabelSSL         = "npm.proxy.ssl"
	LabelForwardHost = "npm.proxy.forward_host"
)

// NetworkAttachment is one network a container is attached to. Attachments
// are kept sorted by network name so the first-IP fallback is deterministic.
type NetworkAttachment struct {
	Name      string
	IPAddress string
}

// ContainerFacts is the read-only snapshot of a container the derivation
// consumes: its labels, network attachments, and published port mappings
// keyed as "8080/tcp" -> host port.
type ContainerFacts struct {
	ID             string
	Name           string
	Labels         map[string]string
	Networks       []NetworkAttachment
	PublishedPorts map[string]string
}

// ContainerEvent is one decoded lifecycle event from the runtime. Attributes
// carry the label snapshot the runtime attaches to the event; for teardown
// events the container itself may already be gone.
type ContainerEvent struct {
	Action     string
	ID         string
	Name       string
	Attributes map[string]string
}

// ContainerRuntime is the container-runtime collaborator the event loop
// consumes.
type ContainerRuntime interface {
	Ping(ctx context.Context) error
	ListRunning(ctx context.Context) ([]ContainerFacts, error)
	Inspect(ctx context.Context, id string) (ContainerFacts, error)
	Events(ctx context.Context) (<-chan ContainerEvent, <-chan error)
}

// ProxyGateway is the proxy-backend collaborator the reconciler drives.
// *npm.Client satisfies it.
type ProxyGateway interface {
	ListHosts(ctx context.Context) ([]npm.ProxyHost, error)
	CreateHost(ctx context.Context, spec npm.HostSpec) (*npm.ProxyHost, error)
	DeleteHost(ctx context.Context, id int64) error
}
