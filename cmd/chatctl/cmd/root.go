package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatctl",
	Short: "Terminal client for the portfolio assistant",
	Long:  "chatctl talks to a running portfolio-assistant server: it creates a conversation and exchanges messages over the HTTP API.",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the portfolio-assistant server")
}
