package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/ledgerline/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "ledgerline",
	Short: "LINE bookkeeping bot",
	Long:  "ledgerline turns free-text LINE messages into bookkeeping entries,\nusing Gemini for intent classification with a deterministic grammar fallback.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path")
}

// loadConfig loads the config file named by --config, exiting on failure.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
