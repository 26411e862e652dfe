package app

import (
    "time"

    "github.com/hyperifyio/mailrelay/internal/notify"
)

// Defaults applied before config file, env and flags.
const (
    DefaultListenAddr   = ":3000"
    DefaultUsername     = "Cameo"
    DefaultAvatarURL    = "https://play-lh.googleusercontent.com/_FPZW0siOqA6du-OLwA3Mz_i6y-KT5cNpZBVcccQNHJ4iMgaeLKraPBYl87qXjz3984"
    DefaultDescription  = "New request received"
    DefaultColor        = 0x6a0dad
    DefaultFooterText   = "Pit Podcast Email Bot"
    DefaultTimeout      = 10 * time.Second
    DefaultMaxBodyBytes = 10 << 20
)

// Config holds runtime configuration for the relay.
type Config struct {
    ListenAddr string
    ConfigPath string

    // Outbound webhook
    WebhookURL  string
    Username    string
    AvatarURL   string
    Description string
    FooterText  string
    Color       int
    Timeout     time.Duration

    // Inbound
    MaxBodyBytes int64

    // Behavior
    Verbose bool
    LogJSON bool
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
    return Config{
        ListenAddr:   DefaultListenAddr,
        Username:     DefaultUsername,
        AvatarURL:    DefaultAvatarURL,
        Description:  DefaultDescription,
        FooterText:   DefaultFooterText,
        Color:        DefaultColor,
        Timeout:      DefaultTimeout,
        MaxBodyBytes: DefaultMaxBodyBytes,
    }
}

// NotifyOptions maps the webhook settings onto delivery options.
func (c Config) NotifyOptions() notify.Options {
    return notify.Options{
        WebhookURL:  c.WebhookURL,
        Username:    c.Username,
        AvatarURL:   c.AvatarURL,
        Description: c.Description,
        FooterText:  c.FooterText,
        Color:       c.Color,
        UserAgent:   UserAgent(),
        Timeout:     c.Timeout,
    }
}
