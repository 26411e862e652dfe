package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/mailrelay/internal/app"
)

var (
	serveConfig      string
	serveListen      string
	serveWebhookURL  string
	serveUsername    string
	serveAvatarURL   string
	serveDescription string
	serveFooter      string
	serveColor       string
	serveTimeout     time.Duration
	serveMaxBody     int64
	serveVerbose     bool
	serveLogJSON     bool
	serveNoReload    bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	f := serveCmd.Flags()
	f.StringVar(&serveConfig, "config", os.Getenv("MAILRELAY_CONFIG"), "Path to YAML or JSON config file")
	f.StringVar(&serveListen, "listen", app.DefaultListenAddr, "HTTP listen address")
	f.StringVar(&serveWebhookURL, "webhook.url", "", "Chat webhook URL (or DISCORD_WEBHOOK_URL)")
	f.StringVar(&serveUsername, "webhook.username", app.DefaultUsername, "Display name for posted messages")
	f.StringVar(&serveAvatarURL, "webhook.avatar", app.DefaultAvatarURL, "Avatar URL for posted messages")
	f.StringVar(&serveDescription, "webhook.description", app.DefaultDescription, "Fixed message description")
	f.StringVar(&serveFooter, "webhook.footer", app.DefaultFooterText, "Message footer text")
	f.StringVar(&serveColor, "webhook.color", fmt.Sprintf("0x%06x", app.DefaultColor), "Message color (decimal, 0x or # hex)")
	f.DurationVar(&serveTimeout, "webhook.timeout", app.DefaultTimeout, "Timeout for each webhook post")
	f.Int64Var(&serveMaxBody, "max.bodyBytes", app.DefaultMaxBodyBytes, "Maximum inbound request body size")
	f.BoolVarP(&serveVerbose, "verbose", "v", false, "Verbose logging")
	f.BoolVar(&serveLogJSON, "log.json", false, "Log JSON lines instead of console output")
	f.BoolVar(&serveNoReload, "no-reload", false, "Do not watch the config file for changes")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook listener",
	Long:  "Listens for inbound-email webhook posts on /mailgun and /inbound.\nSettings come from the config file, then the environment, then flags.\nWebhook settings are hot-reloaded when the config file changes.",
	RunE:  runServe,
}

// buildConfig layers defaults, config file, environment and explicitly set
// flags, in that order.
func buildConfig(cmd *cobra.Command) (app.Config, error) {
	cfg := app.DefaultConfig()
	if serveConfig != "" {
		fc, err := app.LoadConfigFile(serveConfig)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			return cfg, err
		}
		cfg.ConfigPath = serveConfig
	}
	app.ApplyEnvOverrides(&cfg)

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.ListenAddr = serveListen
	}
	if flags.Changed("webhook.url") {
		cfg.WebhookURL = serveWebhookURL
	}
	if flags.Changed("webhook.username") {
		cfg.Username = serveUsername
	}
	if flags.Changed("webhook.avatar") {
		cfg.AvatarURL = serveAvatarURL
	}
	if flags.Changed("webhook.description") {
		cfg.Description = serveDescription
	}
	if flags.Changed("webhook.footer") {
		cfg.FooterText = serveFooter
	}
	if flags.Changed("webhook.color") {
		n, err := app.ParseColor(serveColor)
		if err != nil {
			return cfg, fmt.Errorf("--webhook.color %q: %w", serveColor, err)
		}
		cfg.Color = n
	}
	if flags.Changed("webhook.timeout") {
		cfg.Timeout = serveTimeout
	}
	if flags.Changed("max.bodyBytes") {
		cfg.MaxBodyBytes = serveMaxBody
	}
	if flags.Changed("verbose") {
		cfg.Verbose = serveVerbose
	}
	if flags.Changed("log.json") {
		cfg.LogJSON = serveLogJSON
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(os.Stderr, cfg.Verbose, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	if cfg.ConfigPath != "" && !serveNoReload {
		reloader, err := app.NewReloader(cfg.ConfigPath, func() (app.Config, error) {
			return buildConfig(cmd)
		}, a.Reload)
		if err != nil {
			log.Warn().Err(err).Msg("config hot-reload disabled")
		} else {
			go reloader.Run(ctx)
		}
	}

	return a.Run(ctx)
}
