package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rokelvisar/npm-agent/internal/agent"
	"github.com/rokelvisar/npm-agent/internal/config"
	"github.com/rokelvisar/npm-agent/internal/dashboard"
	"github.com/rokelvisar/npm-agent/internal/docker"
	"github.com/rokelvisar/npm-agent/internal/logging"
	"github.com/rokelvisar/npm-agent/internal/npm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reconciliation daemon",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func runServe() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet; the fallback writes to stderr.
		logging.GetGlobalLogger().Error("Missing or invalid configuration: %v", err)
		os.Exit(1)
	}

	if err := logging.InitLogger(logging.DefaultConfig(cfg.LogFile)); err != nil {
		logging.GetGlobalLogger().Error("Failed to initialize logger: %v", err)
		os.Exit(1)
	}
	logger := logging.GetGlobalLogger()
	defer logger.Close()

	logger.Info("NPM Docker Agent starting...")
	if cfg.DockerHost != "" {
		logger.Info("Using Docker endpoint %s", cfg.DockerHost)
	}

	session := npm.NewSession(cfg.APIBaseURL, cfg.APIUser, cfg.APIPassword)
	gateway := npm.NewClient(session, cfg.LetsEncryptEmail)

	runtime, err := docker.NewRuntime()
	if err != nil {
		logger.Error("Failed to initialize Docker client: %v", err)
		os.Exit(1)
	}

	reconciler := agent.NewReconciler(gateway)
	loop := agent.NewLoop(runtime, reconciler, cfg.DefaultForwardHost)
	supervisor := agent.NewSupervisor(loop, cfg.RestartDelay)

	// The dashboard is read-only and runs beside the sync loop; it shares
	// only the NPM session.
	dash := dashboard.NewServer(gateway, cfg.DashboardAddr)
	go func() {
		if err := dash.Run(); err != nil {
			logger.Error("Dashboard server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisor.Run(ctx)
}
