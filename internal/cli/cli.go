package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rokelvisar/npm-agent/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "npm-agent",
	Short: "NPM Docker Agent",
	Long:  `NPM Docker Agent keeps Nginx Proxy Manager proxy hosts in sync with labeled Docker containers.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the agent version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
