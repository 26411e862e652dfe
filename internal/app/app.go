package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/mailrelay/internal/notify"
	"github.com/hyperifyio/mailrelay/internal/server"
)

// shutdownTimeout bounds in-flight requests after cancellation.
const shutdownTimeout = 10 * time.Second

type App struct {
	cfg      Config
	notifier *notify.Client
	srv      *http.Server
}

func New(_ context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	client := notify.NewClient(newWebhookHTTPClient(), cfg.NotifyOptions())
	handler := server.NewHandler(client, log.Logger, cfg.MaxBodyBytes)

	a := &App{
		cfg:      cfg,
		notifier: client,
		srv: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	return a, nil
}

// Reload installs new webhook settings. The listen address and body limit
// only change on restart.
func (a *App) Reload(cfg Config) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if cfg.ListenAddr != a.cfg.ListenAddr {
		log.Warn().Str("listen", cfg.ListenAddr).Msg("listen address change requires restart")
	}
	a.notifier.SetOptions(cfg.NotifyOptions())
	return nil
}

// Notifier exposes the webhook client.
func (a *App) Notifier() *notify.Client { return a.notifier }

func (a *App) Close() {
	_ = a.srv.Close()
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.ListenAddr, err)
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
