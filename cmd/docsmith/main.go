package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	serverURL  string
	rootCmd    = &cobra.Command{
		Use:   "docsmith",
		Short: "Docsmith - AI-assisted documentation generator",
		Long: `Docsmith watches configured repositories and generates documentation
for them with a local LLM. Jobs flow through a priority scheduler with a
bounded concurrency pool; a status API and TUI dashboard expose progress.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "base URL of a running docsmith server")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
