package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables when the
// corresponding variables are set. Env takes precedence over the config
// file; flags are applied afterwards and win over both.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 { cfg.ListenAddr = ":" + v }
    }
    if v := os.Getenv("LISTEN_ADDR"); v != "" { cfg.ListenAddr = v }

    // WEBHOOK_URL is the generic name; DISCORD_WEBHOOK_URL wins when both are set
    if v := os.Getenv("WEBHOOK_URL"); v != "" { cfg.WebhookURL = v }
    if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" { cfg.WebhookURL = v }
    if v := os.Getenv("WEBHOOK_USERNAME"); v != "" { cfg.Username = v }
    if v := os.Getenv("WEBHOOK_AVATAR_URL"); v != "" { cfg.AvatarURL = v }
    if v := os.Getenv("WEBHOOK_DESCRIPTION"); v != "" { cfg.Description = v }
    if v := os.Getenv("WEBHOOK_FOOTER"); v != "" { cfg.FooterText = v }
    if v := os.Getenv("WEBHOOK_COLOR"); v != "" {
        if n, err := ParseColor(v); err == nil { cfg.Color = n }
    }
    if v := os.Getenv("WEBHOOK_TIMEOUT"); v != "" {
        if d, err := time.ParseDuration(v); err == nil && d > 0 { cfg.Timeout = d }
    }
    if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
        if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n > 0 { cfg.MaxBodyBytes = n }
    }

    // Booleans override when env present and truthy/falsey
    setBool := func(dst *bool, envKey string) {
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            switch s {
            case "1", "true", "yes", "on":
                *dst = true
            case "0", "false", "no", "off":
                *dst = false
            }
        }
    }
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.LogJSON, "LOG_JSON")
}

// ParseColor accepts decimal, 0x-prefixed or #-prefixed hex colors.
func ParseColor(s string) (int, error) {
    s = strings.TrimSpace(s)
    if strings.HasPrefix(s, "#") {
        n, err := strconv.ParseInt(s[1:], 16, 32)
        return int(n), err
    }
    n, err := strconv.ParseInt(s, 0, 32)
    return int(n), err
}
