package npm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rokelvisar/npm-agent/internal/logging"
)

const proxyHostsPath = "/api/nginx/proxy-hosts"

// Client provides typed proxy-host operations on top of a Session.
type Client struct {
	logger  *logging.Logger
	session *Session

	// letsEncryptEmail is the contact supplied when a host requests
	// automatic certificate issuance.
	letsEncryptEmail string
}

// NewClient creates a new NPM API client instance.
func NewClient(session *Session, letsEncryptEmail string) *Client {
	return &Client{
		logger:           logging.GetGlobalLogger(),
		session:          session,
		letsEncryptEmail: letsEncryptEmail,
	}
}

// ListHosts returns all proxy-host entries currently known to the backend.
func (c *Client) ListHosts(ctx context.Context) ([]ProxyHost, error) {
	resp, err := c.session.Do(ctx, http.MethodGet, proxyHostsPath, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var hosts []ProxyHost
	if err := json.NewDecoder(resp.Body).Decode(&hosts); err != nil {
		return nil, fmt.Errorf("failed to decode proxy host list: %w", err)
	}
	return hosts, nil
}

// CreateHost creates a proxy host from the given spec with the agent's fixed
// security policy (SSL forcing, exploit blocking, websocket upgrade, HTTP/2;
// caching off) and stamps the ownership marker. When the spec requests SSL
// it additionally asks NPM to issue a Let's Encrypt certificate.
func (c *Client) CreateHost(ctx context.Context, spec HostSpec) (*ProxyHost, error) {
	if len(spec.Domains) == 0 {
		return nil, fmt.Errorf("cannot create proxy host without domains")
	}

	payload := createHostPayload{
		DomainNames:           spec.Domains,
		ForwardScheme:         spec.Scheme,
		ForwardHost:           spec.ForwardHost,
		ForwardPort:           spec.ForwardPort,
		AccessListID:          0,
		CertificateID:         0,
		SSLForced:             true,
		CachingEnabled:        false,
		AllowWebsocketUpgrade: true,
		BlockExploits:         true,
		HTTP2Support:          true,
		HSTSEnabled:           false,
		HSTSSubdomains:        false,
		Meta:                  HostMeta{ManagedBy: managedBy},
		AdvancedConfig:        "# Managed by NPM Docker Agent\n",
		Locations:             []any{},
	}

	if spec.SSL {
		c.logger.Info("Provisioning Let's Encrypt SSL for %s...", spec.Primary())
		payload.CertificateID = "new"
		payload.Meta.LetsEncryptEmail = c.letsEncryptEmail
		payload.Meta.LetsEncryptAgree = true
	}

	resp, err := c.session.Do(ctx, http.MethodPost, proxyHostsPath, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var created ProxyHost
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode created proxy host: %w", err)
	}

	c.logger.Info("Created proxy host %d: %s -> %s:%d (SSL: %v)",
		created.ID, strings.Join(spec.Domains, ", "), spec.ForwardHost, spec.ForwardPort, spec.SSL)
	return &created, nil
}

// DeleteHost removes a proxy host by id.
func (c *Client) DeleteHost(ctx context.Context, id int64) error {
	resp, err := c.session.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", proxyHostsPath, id), nil)
	if err != nil {
		return err
	}
	resp.Body.Close()

	c.logger.Info("Deleted proxy host ID: %d", id)
	return nil
}
