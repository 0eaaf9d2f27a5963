package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the agent
type Config struct {
	// NPM API Configuration
	APIBaseURL  string `env:"NPM_API_BASE_URL,required,notEmpty"`
	APIUser     string `env:"NPM_API_USER,required,notEmpty"`
	APIPassword string `env:"NPM_API_PASSWORD,required,notEmpty"`

	// Defaults applied when containers do not override them via labels
	LetsEncryptEmail   string `env:"NPM_DEFAULT_LE_EMAIL"`
	DefaultForwardHost string `env:"NPM_DEFAULT_FORWARD_HOST"`

	// Docker Configuration
	// DOCKER_HOST is consumed by the Docker SDK itself (client.FromEnv);
	// it is surfaced here only so startup logs can report the target.
	DockerHost string `env:"DOCKER_HOST"`

	// Dashboard Configuration
	DashboardAddr string `env:"DASHBOARD_ADDR" envDefault:":8080"`

	// Supervisor Configuration
	RestartDelay time.Duration `env:"RESTART_DELAY" envDefault:"10s"`

	// Logging Configuration
	LogFile string `env:"LOG_FILE"`
}

// Load loads the configuration from environment variables and an optional
// .env file. Missing required NPM credentials are a fatal startup condition.
func Load() (*Config, error) {
	// Load .env if present; real environment variables take precedence.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
