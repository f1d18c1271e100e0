package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets redacted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		redacted := *cfg
		redacted.LINE.ChannelSecret = redact(cfg.LINE.ChannelSecret)
		redacted.LINE.ChannelAccessToken = redact(cfg.LINE.ChannelAccessToken)
		redacted.Gemini.APIKey = redact(cfg.Gemini.APIKey)

		data, err := json.MarshalIndent(redacted, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
