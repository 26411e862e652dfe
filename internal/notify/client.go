package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hyperifyio/mailrelay/internal/extract"
)

// ErrDelivery is returned when the webhook answers with a non-2xx status.
var ErrDelivery = errors.New("notify: webhook rejected message")

// Options configures delivery and the fixed parts of each message.
type Options struct {
	WebhookURL  string
	Username    string
	AvatarURL   string
	Description string
	FooterText  string
	Color       int
	UserAgent   string
	// Timeout bounds each POST. Zero leaves the HTTP client's own timeout.
	Timeout time.Duration
}

// Client posts messages to a chat webhook. Each message is sent once;
// there is no retry.
type Client struct {
	HTTPClient *http.Client

	opts atomic.Pointer[Options]
	now  func() time.Time
}

// NewClient returns a client for opts. A nil httpClient uses a shared
// client without an overall timeout.
func NewClient(httpClient *http.Client, opts Options) *Client {
	c := &Client{HTTPClient: httpClient, now: time.Now}
	c.SetOptions(opts)
	return c
}

// SetOptions swaps the delivery options. Safe for concurrent use.
func (c *Client) SetOptions(opts Options) {
	c.opts.Store(&opts)
}

// Options returns the current delivery options.
func (c *Client) Options() Options {
	if p := c.opts.Load(); p != nil {
		return *p
	}
	return Options{}
}

// Notify formats res and posts it.
func (c *Client) Notify(ctx context.Context, res extract.Result, recipient string) error {
	opts := c.Options()
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	return c.send(ctx, opts, Format(res, recipient, opts, now()))
}

// Send posts msg using the current options.
func (c *Client) Send(ctx context.Context, msg Message) error {
	return c.send(ctx, c.Options(), msg)
}

func (c *Client) send(ctx context.Context, opts Options, msg Message) error {
	u, err := url.Parse(opts.WebhookURL)
	if err != nil || !isHTTPScheme(u) || u.Host == "" {
		return fmt.Errorf("unsupported webhook url: %q", opts.WebhookURL)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: %s", ErrDelivery, resp.Status, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// defaultHTTPClient has no overall timeout; each POST is bounded by
// Options.Timeout through its context.
var defaultHTTPClient = &http.Client{}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return defaultHTTPClient
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
