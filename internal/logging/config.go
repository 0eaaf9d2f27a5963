package logging

// LogConfig holds logging-related configuration
type LogConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	File       string `json:"file"`        // Path to log file
	MaxSize    int    `json:"max_size"`    // Max size in MB
	MaxBackups int    `json:"max_backups"` // Number of backups to keep
	MaxAge     int    `json:"max_age"`     // Max age in days
}

// DefaultConfig returns a LogConfig with sensible defaults for the agent.
func DefaultConfig(file string) *LogConfig {
	if file == "" {
		file = "./logs/agent.log"
	}
	return &LogConfig{
		Level:      LevelInfo,
		File:       file,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
	}
}
