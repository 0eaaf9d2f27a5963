package agent

import (
	"testing"

	"github.com/rokelvisar/npm-agent/internal/npm"
)

func managedFacts(overrides map[string]string) ContainerFacts {
	labels := map[string]string{LabelHost: "app.example.com"}
	for k, v := range overrides {
		labels[k] = v
	}
	return ContainerFacts{
		ID:             "abc123",
		Name:           "app",
		Labels:         labels,
		Networks:       []NetworkAttachment{{Name: "bridge", IPAddress: "172.17.0.2"}},
		PublishedPorts: map[string]string{},
	}
}

func TestDeriveSpec_Unmanaged(t *testing.T) {
	facts := ContainerFacts{
		ID:     "abc123",
		Name:   "db",
		Labels: map[string]string{"com.example.other": "x"},
	}

	spec, err := DeriveSpec(facts, "")
	if err != nil {
		t.Fatalf("DeriveSpec() error = %v; want nil", err)
	}
	if spec != nil {
		t.Fatalf("DeriveSpec() = %+v; want nil for unmanaged container", spec)
	}
}

func TestDeriveSpec_Domains(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		want    []string
		wantErr bool
	}{
		{"single", "a.example.com", []string{"a.example.com"}, false},
		{"multiple with spaces", "a.example.com, b.example.com", []string{"a.example.com", "b.example.com"}, false},
		{"trailing comma", "a.example.com,", []string{"a.example.com"}, false},
		{"only separators", " , ,", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := managedFacts(map[string]string{LabelHost: tt.label})
			spec, err := DeriveSpec(facts, "")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DeriveSpec(%q) error = nil; want error", tt.label)
				}
				return
			}
			if err != nil {
				t.Fatalf("DeriveSpec(%q) error = %v", tt.label, err)
			}
			if len(spec.Domains) != len(tt.want) {
				t.Fatalf("DeriveSpec(%q).Domains = %v; want %v", tt.label, spec.Domains, tt.want)
			}
			for i := range tt.want {
				if spec.Domains[i] != tt.want[i] {
					t.Errorf("Domains[%d] = %q; want %q", i, spec.Domains[i], tt.want[i])
				}
			}
		})
	}
}

func TestDeriveSpec_Defaults(t *testing.T) {
	spec, err := DeriveSpec(managedFacts(nil), "")
	if err != nil {
		t.Fatalf("DeriveSpec() error = %v", err)
	}

	if spec.ForwardPort != 80 {
		t.Errorf("ForwardPort = %d; want 80", spec.ForwardPort)
	}
	if spec.Scheme != "http" {
		t.Errorf("Scheme = %q; want \"http\"", spec.Scheme)
	}
	if !spec.SSL {
		t.Errorf("SSL = false; want true by default")
	}
}

func TestDeriveSpec_SSLLabel(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{"false", false},
		{"no", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("ssl="+tt.value, func(t *testing.T) {
			facts := managedFacts(map[string]string{LabelSSL: tt.value})
			spec, err := DeriveSpec(facts, "")
			if err != nil {
				t.Fatalf("DeriveSpec() error = %v", err)
			}
			if spec.SSL != tt.want {
				t.Errorf("SSL = %v; want %v", spec.SSL, tt.want)
			}
		})
	}
}

func TestDeriveSpec_ForwardHostPrecedence(t *testing.T) {
	tests := []struct {
		name        string
		label       string
		defaultHost string
		networkIP   string
		want        string
		wantErr     bool
	}{
		{"label wins over all", "override.internal", "default.internal", "172.17.0.2", "override.internal", false},
		{"default wins over IP", "", "default.internal", "172.17.0.2", "default.internal", false},
		{"IP as last resort", "", "", "172.17.0.2", "172.17.0.2", false},
		{"nothing resolvable", "", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := managedFacts(nil)
			if tt.label != "" {
				facts.Labels[LabelForwardHost] = tt.label
			}
			facts.Networks = nil
			if tt.networkIP != "" {
				facts.Networks = []NetworkAttachment{{Name: "bridge", IPAddress: tt.networkIP}}
			}

			spec, err := DeriveSpec(facts, tt.defaultHost)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DeriveSpec() error = nil; want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DeriveSpec() error = %v", err)
			}
			if spec.ForwardHost != tt.want {
				t.Errorf("ForwardHost = %q; want %q", spec.ForwardHost, tt.want)
			}
		})
	}
}

func TestDeriveSpec_FirstNetworkIPIsDeterministic(t *testing.T) {
	facts := managedFacts(nil)
	facts.Networks = []NetworkAttachment{
		{Name: "backend", IPAddress: "10.0.1.5"},
		{Name: "frontend", IPAddress: "10.0.2.5"},
	}

	spec, err := DeriveSpec(facts, "")
	if err != nil {
		t.Fatalf("DeriveSpec() error = %v", err)
	}
	if spec.ForwardHost != "10.0.1.5" {
		t.Errorf("ForwardHost = %q; want first sorted network IP 10.0.1.5", spec.ForwardHost)
	}
}

func TestDeriveSpec_PortResolution(t *testing.T) {
	tests := []struct {
		name      string
		portLabel string
		published map[string]string
		want      int
		wantErr   bool
	}{
		{"published mapping wins", "8080", map[string]string{"8080/tcp": "30001"}, 30001, false},
		{"no mapping keeps internal", "8080", map[string]string{}, 8080, false},
		{"mapping for other port ignored", "8080", map[string]string{"9090/tcp": "30001"}, 8080, false},
		{"non-numeric port", "http", map[string]string{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := managedFacts(map[string]string{LabelPort: tt.portLabel})
			facts.PublishedPorts = tt.published

			spec, err := DeriveSpec(facts, "")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DeriveSpec() error = nil; want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DeriveSpec() error = %v", err)
			}
			if spec.ForwardPort != tt.want {
				t.Errorf("ForwardPort = %d; want %d", spec.ForwardPort, tt.want)
			}
		})
	}
}

func TestDeriveSpec_EndToEnd(t *testing.T) {
	facts := ContainerFacts{
		ID:   "abc123",
		Name: "web",
		Labels: map[string]string{
			LabelHost: "a.example.com,b.example.com",
			LabelPort: "3000",
		},
		Networks:       []NetworkAttachment{{Name: "bridge", IPAddress: "172.17.0.9"}},
		PublishedPorts: map[string]string{},
	}

	spec, err := DeriveSpec(facts, "")
	if err != nil {
		t.Fatalf("DeriveSpec() error = %v", err)
	}

	want := npm.HostSpec{
		Domains:     []string{"a.example.com", "b.example.com"},
		Scheme:      "http",
		ForwardHost: "172.17.0.9",
		ForwardPort: 3000,
		SSL:         true,
	}
	if spec.Primary() != want.Primary() || len(spec.Domains) != 2 ||
		spec.Scheme != want.Scheme || spec.ForwardHost != want.ForwardHost ||
		spec.ForwardPort != want.ForwardPort || spec.SSL != want.SSL {
		t.Errorf("DeriveSpec() = %+v; want %+v", *spec, want)
	}
}
