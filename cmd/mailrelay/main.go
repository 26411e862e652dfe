// mailrelay receives inbound-email webhooks and re-publishes the structured
// request they contain to a chat webhook.
package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/mailrelay/internal/app"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:           "mailrelay",
	Short:         "Relay inbound-email webhooks to a chat webhook",
	Long:          "Receives inbound-email webhook posts, extracts the subject, sender and request fields from the email body and posts them as a chat message.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return app.LoadEnvFiles(envFiles...)
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "Dotenv files to load before reading the environment (later files win)")
}

func main() {
	setupLogging(os.Stderr, false, false)
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("mailrelay failed")
		os.Exit(1)
	}
}

// setupLogging configures the global zerolog logger. Console output is the
// default; jsonOut keeps raw JSON lines for log collectors.
func setupLogging(out io.Writer, verbose, jsonOut bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if jsonOut {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
