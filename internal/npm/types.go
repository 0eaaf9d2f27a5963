package npm

// managedBy is the ownership marker stamped into the meta of every proxy
// host this agent creates. Entries without it are never deleted on teardown.
const managedBy = "npm-docker-agent"

// HostSpec is the desired proxy-host specification derived from a
// container's labels and network attributes. Domains[0] is the primary
// domain used for logging and matching.
type HostSpec struct {
	Domains     []string
	Scheme      string
	ForwardHost string
	ForwardPort int
	SSL         bool
}

// Primary returns the canonical domain for the spec.
func (s HostSpec) Primary() string {
	if len(s.Domains) == 0 {
		return ""
	}
	return s.Domains[0]
}

// HostMeta is the free-form metadata NPM stores alongside a proxy host.
type HostMeta struct {
	ManagedBy        string `json:"managed_by,omitempty"`
	LetsEncryptEmail string `json:"letsencrypt_email,omitempty"`
	LetsEncryptAgree bool   `json:"letsencrypt_agree,omitempty"`
}

// ProxyHost is a proxy-host record as returned by the NPM API. Only the
// fields the reconciler and dashboard consume are mapped.
type ProxyHost struct {
	ID          int64    `json:"id"`
	DomainNames []string `json:"domain_names"`
	ForwardHost string   `json:"forward_host"`
	ForwardPort int      `json:"forward_port"`
	SSLForced   bool     `json:"ssl_forced"`
	Enabled     int      `json:"enabled"`
	Meta        HostMeta `json:"meta"`
}

// Managed reports whether this entry carries the agent's ownership marker.
func (h ProxyHost) Managed() bool {
	return h.Meta.ManagedBy == managedBy
}

// createHostPayload is the creation request NPM expects. CertificateID is
// either 0 (no certificate) or the string "new" to request issuance, hence
// the untyped field.
type createHostPayload struct {
	DomainNames           []string `json:"domain_names"`
	ForwardScheme         string   `json:"forward_scheme"`
	ForwardHost           string   `json:"forward_host"`
	ForwardPort           int      `json:"forward_port"`
	AccessListID          int      `json:"access_list_id"`
	CertificateID         any      `json:"certificate_id"`
	SSLForced             bool     `json:"ssl_forced"`
	CachingEnabled        bool     `json:"caching_enabled"`
	AllowWebsocketUpgrade bool     `json:"allow_websocket_upgrade"`
	BlockExploits         bool     `json:"block_exploits"`
	HTTP2Support          bool     `json:"http2_support"`
	HSTSEnabled           bool     `json:"hsts_enabled"`
	HSTSSubdomains        bool     `json:"hsts_subdomains"`
	Meta                  HostMeta `json:"meta"`
	AdvancedConfig        string   `json:"advanced_config"`
	Locations             []any    `json:"locations"`
}
