package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailrelay.yaml")
	content := `listen: ":9000"
webhook:
  url: https://discord.example/api/webhooks/1/abc
  username: Relay
  color: "0x00ff00"
  timeout: 4s
inbound:
  maxBodyBytes: 4096
verbose: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.ListenAddr != ":9000" || cfg.Username != "Relay" || cfg.Color != 0x00ff00 {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
	if cfg.Timeout != 4*time.Second || cfg.MaxBodyBytes != 4096 || !cfg.Verbose {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
	// unset file values keep defaults
	if cfg.Description != DefaultDescription || cfg.FooterText != DefaultFooterText {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfigFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailrelay.json")
	if err := os.WriteFile(path, []byte(`{"webhook":{"url":"https://x.example/h","color":"#123456"}}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.WebhookURL != "https://x.example/h" || cfg.Color != 0x123456 {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
}

func TestApplyFileConfig_BadColor(t *testing.T) {
	var fc FileConfig
	fc.Webhook.Color = "blue"
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err == nil {
		t.Fatalf("expected error for bad color")
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateConfig(cfg); err == nil || !strings.Contains(err.Error(), "webhook url is required") {
		t.Fatalf("expected missing url error, got %v", err)
	}
	cfg.WebhookURL = "discord.example/hook"
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected scheme error")
	}
	cfg.WebhookURL = "https://discord.example/api/webhooks/1/x"
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestNotifyOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WebhookURL = "https://h.example/x"
	opts := cfg.NotifyOptions()
	if opts.WebhookURL != cfg.WebhookURL || opts.Username != DefaultUsername || opts.AvatarURL != DefaultAvatarURL || opts.Color != DefaultColor || opts.UserAgent == "" {
		t.Fatalf("unexpected options %+v", opts)
	}
}
