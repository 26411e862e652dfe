// Package server exposes the inbound-email webhook over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/mailrelay/internal/extract"
	"github.com/hyperifyio/mailrelay/internal/inbound"
)

// DefaultMaxBodyBytes caps inbound request bodies.
const DefaultMaxBodyBytes = 10 << 20

// Notifier delivers one extraction result.
type Notifier interface {
	Notify(ctx context.Context, res extract.Result, recipient string) error
}

// Handler serves the webhook routes.
type Handler struct {
	notifier     Notifier
	log          zerolog.Logger
	maxBodyBytes int64
}

// NewHandler creates a handler. maxBodyBytes <= 0 uses DefaultMaxBodyBytes.
func NewHandler(n Notifier, logger zerolog.Logger, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{notifier: n, log: logger, maxBodyBytes: maxBodyBytes}
}

// Routes configures all HTTP routes.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mailgun", h.handleInbound)
	mux.HandleFunc("/inbound", h.handleInbound)
	mux.HandleFunc("/healthz", h.handleHealth)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// handleInbound extracts the posted email and relays it. Only delivery
// failures are server errors; unrecognized emails still produce a message.
func (h *Handler) handleInbound(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := h.log.With().Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Logger()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	payload, err := inbound.Parse(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn().Int64("limit", tooLarge.Limit).Msg("inbound body too large")
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		logger.Warn().Err(err).Msg("inbound payload rejected")
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if err := payload.Validate(); err != nil {
		logger.Warn().Err(err).Msg("inbound payload rejected")
		http.Error(w, "Missing email body", http.StatusBadRequest)
		return
	}

	res, strategy := payload.Extract()
	logger = logger.With().Str("strategy", strategy).Int("fields", len(res.Fields)).Logger()
	logger.Debug().Str("subject", res.Subject).Str("from", res.From).Msg("email extracted")

	if err := h.notifier.Notify(r.Context(), res, payload.Recipient); err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("notification delivery failed")
		http.Error(w, "Error sending notification", http.StatusInternalServerError)
		return
	}

	logger.Info().Int("status", http.StatusOK).Dur("duration", time.Since(start)).Msg("email relayed")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}
