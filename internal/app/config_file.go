package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "net/url"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to flags/env.
type FileConfig struct {
    Listen string `yaml:"listen" json:"listen"`

    Webhook struct {
        URL         string        `yaml:"url" json:"url"`
        Username    string        `yaml:"username" json:"username"`
        AvatarURL   string        `yaml:"avatarURL" json:"avatarURL"`
        Description string        `yaml:"description" json:"description"`
        Footer      string        `yaml:"footer" json:"footer"`
        // Color accepts 7081389, "0x6a0dad" or "#6a0dad".
        Color       string        `yaml:"color" json:"color"`
        Timeout     time.Duration `yaml:"timeout" json:"timeout"`
    } `yaml:"webhook" json:"webhook"`

    Inbound struct {
        MaxBodyBytes int64 `yaml:"maxBodyBytes" json:"maxBodyBytes"`
    } `yaml:"inbound" json:"inbound"`

    Verbose bool `yaml:"verbose" json:"verbose"`
    LogJSON bool `yaml:"logJSON" json:"logJSON"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays every value set in fc onto cfg. It runs before
// env overrides and flags, so only defaults are replaced in practice.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
    if cfg == nil { return nil }

    if fc.Listen != "" { cfg.ListenAddr = fc.Listen }
    if fc.Webhook.URL != "" { cfg.WebhookURL = fc.Webhook.URL }
    if fc.Webhook.Username != "" { cfg.Username = fc.Webhook.Username }
    if fc.Webhook.AvatarURL != "" { cfg.AvatarURL = fc.Webhook.AvatarURL }
    if fc.Webhook.Description != "" { cfg.Description = fc.Webhook.Description }
    if fc.Webhook.Footer != "" { cfg.FooterText = fc.Webhook.Footer }
    if fc.Webhook.Color != "" {
        n, err := ParseColor(fc.Webhook.Color)
        if err != nil {
            return fmt.Errorf("config: webhook.color %q: %w", fc.Webhook.Color, err)
        }
        cfg.Color = n
    }
    if fc.Webhook.Timeout > 0 { cfg.Timeout = fc.Webhook.Timeout }
    if fc.Inbound.MaxBodyBytes > 0 { cfg.MaxBodyBytes = fc.Inbound.MaxBodyBytes }
    if fc.Verbose { cfg.Verbose = true }
    if fc.LogJSON { cfg.LogJSON = true }
    return nil
}

// ValidateConfig performs minimal validation for required settings. A
// missing webhook URL is fatal at startup.
func ValidateConfig(cfg Config) error {
    if strings.TrimSpace(cfg.WebhookURL) == "" {
        return errors.New("config: webhook url is required (or set DISCORD_WEBHOOK_URL)")
    }
    u, err := url.Parse(cfg.WebhookURL)
    if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
        return fmt.Errorf("config: webhook url %q must be an http(s) url", cfg.WebhookURL)
    }
    if strings.TrimSpace(cfg.ListenAddr) == "" {
        return errors.New("config: listen address is required")
    }
    if cfg.Timeout < 0 || cfg.MaxBodyBytes < 0 {
        return errors.New("config: negative limits are not allowed")
    }
    return nil
}
