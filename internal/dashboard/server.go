package dashboard

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rokelvisar/npm-agent/internal/logging"
	"github.com/rokelvisar/npm-agent/internal/middleware"
	"github.com/rokelvisar/npm-agent/internal/npm"
)

// HostLister is the read-only slice of the NPM gateway the dashboard needs.
type HostLister interface {
	ListHosts(ctx context.Context) ([]npm.ProxyHost, error)
}

// Server renders the read-only status page. It shares no mutable state with
// the sync loop beyond the session inside the gateway.
type Server struct {
	logger *logging.Logger
	router *gin.Engine
	hosts  HostLister
	addr   string
}

// NewServer creates the dashboard server listening on addr.
func NewServer(hosts HostLister, addr string) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		logger: logging.GetGlobalLogger(),
		router: gin.New(),
		hosts:  hosts,
		addr:   addr,
	}

	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.RateLimit(middleware.RateLimitConfig{RPS: 10, Burst: 20}))

	s.router.SetHTMLTemplate(pageTemplate)
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	return s
}

// Run blocks serving the dashboard.
func (s *Server) Run() error {
	s.logger.Info("Dashboard available at http://localhost%s", s.addr)
	return s.router.Run(s.addr)
}

func (s *Server) handleIndex(c *gin.Context) {
	var managed []npm.ProxyHost
	var loadErr string

	hosts, err := s.hosts.ListHosts(c.Request.Context())
	if err != nil {
		// Degrade to an error banner; the page itself stays up.
		s.logger.Error("Dashboard failed to list proxy hosts: %v", err)
		loadErr = err.Error()
	}
	for _, h := range hosts {
		if h.Managed() {
			managed = append(managed, h)
		}
	}

	c.HTML(http.StatusOK, "index", gin.H{
		"Hosts": managed,
		"Error": loadErr,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>NPM Docker Agent</title>
    <style>
        body { font-family: sans-serif; padding: 40px; background: #f4f7f6; }
        .card { background: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        th, td { text-align: left; padding: 12px; border-bottom: 1px solid #eee; }
        th { background: #fafafa; }
        h1 { margin-top: 0; color: #333; }
        .error { color: #b00020; }
    </style>
</head>
<body>
    <div class="card">
        <h1>NPM Docker Agent</h1>
        <p>Monitoring Docker events and synchronizing with Nginx Proxy Manager.</p>
        {{if .Error}}<p class="error">Backend unavailable: {{.Error}}</p>{{end}}
        <table>
            <thead><tr><th>Domains</th><th>Upstream</th><th>SSL</th><th>Status</th></tr></thead>
            <tbody>
            {{range .Hosts}}
                <tr>
                    <td>{{range $i, $d := .DomainNames}}{{if $i}}, {{end}}{{$d}}{{end}}</td>
                    <td>{{.ForwardHost}}:{{.ForwardPort}}</td>
                    <td>{{if .SSLForced}}&#9989;{{else}}&#10060;{{end}}</td>
                    <td>{{if .Enabled}}&#128994; Active{{else}}&#128308; Disabled{{end}}</td>
                </tr>
            {{else}}
                <tr><td colspan="4">No managed hosts found.</td></tr>
            {{end}}
            </tbody>
        </table>
    </div>
</body>
</html>
`))
