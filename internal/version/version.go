package version

// Version is the agent build version, overridden at build time via
// -ldflags "-X github.com/rokelvisar/npm-agent/internal/version.Version=v1.2.3".
var Version = "dev"
