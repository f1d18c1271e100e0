package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	Listen           string `json:"listen"`
	DBPath           string `json:"db_path"`
	LogLevel         string `json:"log_level"`
	LogRetentionDays int    `json:"log_retention_days"`
	LINE             struct {
		ChannelSecret      string `json:"channel_secret"`
		ChannelAccessToken string `json:"channel_access_token"`
	} `json:"line"`
	Gemini struct {
		APIKey string `json:"api_key"`
		Model  string `json:"model"`
	} `json:"gemini"`
}

// DefaultPath is where Load looks when no path is given on the command line.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".ledgerline", "config.json")
}

// Load reads the config at path, writing a default file first if none
// exists. Environment variables take highest precedence.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Listen:           ":8787",
		DBPath:           filepath.Join(os.Getenv("HOME"), ".ledgerline", "ledgerline.db"),
		LogLevel:         "info",
		LogRetentionDays: 30,
	}
	cfg.Gemini.Model = "gemini-2.0-flash"

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if secret := os.Getenv("LINE_CHANNEL_SECRET"); secret != "" {
		cfg.LINE.ChannelSecret = secret
	}
	if token := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"); token != "" {
		cfg.LINE.ChannelAccessToken = token
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		cfg.Gemini.APIKey = apiKey
	}
	if listen := os.Getenv("LEDGERLINE_LISTEN"); listen != "" {
		cfg.Listen = listen
	}
	if dbPath := os.Getenv("LEDGERLINE_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	return cfg, nil
}

func writeDefaults(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename default config: %w", err)
	}
	return nil
}
