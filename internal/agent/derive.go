package agent

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rokelvisar/npm-agent/internal/npm"
)

// DeriveSpec maps a container's labels and network attributes to the proxy
// host it should have. It returns (nil, nil) when the container does not
// carry the opt-in label and is therefore unmanaged.
func DeriveSpec(facts ContainerFacts, defaultForwardHost string) (*npm.HostSpec, error) {
	hostLabel, ok := facts.Labels[LabelHost]
	if !ok {
		return nil, nil
	}

	domains := splitDomains(hostLabel)
	if len(domains) == 0 {
		return nil, fmt.Errorf("container %s: %s label contains no domains", facts.Name, LabelHost)
	}

	internalPort := facts.Labels[LabelPort]
	if internalPort == "" {
		internalPort = "80"
	}

	scheme := facts.Labels[LabelScheme]
	if scheme == "" {
		scheme = "http"
	}

	ssl := true
	if v, ok := facts.Labels[LabelSSL]; ok {
		ssl = strings.EqualFold(v, "true")
	}

	// Forward host precedence: label override, configured default, first
	// network IP.
	forwardHost := facts.Labels[LabelForwardHost]
	if forwardHost == "" {
		forwardHost = defaultForwardHost
	}
	if forwardHost == "" {
		for _, net := range facts.Networks {
			if net.IPAddress != "" {
				forwardHost = net.IPAddress
				break
			}
		}
	}
	if forwardHost == "" {
		return nil, fmt.Errorf("could not determine forward host for %s: set the %s label or NPM_DEFAULT_FORWARD_HOST", facts.Name, LabelForwardHost)
	}

	// A published host-port mapping for the internal port wins; otherwise
	// the container is reachable directly on its internal port.
	finalPort := internalPort
	if mapped, ok := facts.PublishedPorts[internalPort+"/tcp"]; ok && mapped != "" {
		finalPort = mapped
	}

	forwardPort, err := strconv.Atoi(finalPort)
	if err != nil {
		return nil, fmt.Errorf("container %s: invalid forward port %q: %w", facts.Name, finalPort, err)
	}

	return &npm.HostSpec{
		Domains:     domains,
		Scheme:      scheme,
		ForwardHost: forwardHost,
		ForwardPort: forwardPort,
		SSL:         ssl,
	}, nil
}

func splitDomains(label string) []string {
	var domains []string
	for _, d := range strings.Split(label, ",") {
		if d = strings.TrimSpace(d); d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}
