package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Listen != ":8787" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.LogRetentionDays != 30 {
		t.Errorf("retention = %d", cfg.LogRetentionDays)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("model = %q", cfg.Gemini.Model)
	}

	// The default file must now exist and be valid JSON.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var onDisk Config
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("default config not valid JSON: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"listen":":9000","line":{"channel_secret":"s1","channel_access_token":"t1"},"gemini":{"api_key":"g1"}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Listen != ":9000" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.LINE.ChannelSecret != "s1" || cfg.LINE.ChannelAccessToken != "t1" {
		t.Errorf("line = %+v", cfg.LINE)
	}
	if cfg.Gemini.APIKey != "g1" {
		t.Errorf("gemini key = %q", cfg.Gemini.APIKey)
	}
	// Unset fields keep their defaults.
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"line":{"channel_secret":"from-file"}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LINE_CHANNEL_SECRET", "from-env")
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.LINE.ChannelSecret != "from-env" {
		t.Errorf("channel secret = %q, want env to win", cfg.LINE.ChannelSecret)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("gemini key = %q", cfg.Gemini.APIKey)
	}
}

func TestLoadBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
