package app

import (
	"net"
	"net/http"
	"time"
)

// newWebhookHTTPClient returns an HTTP client for webhook delivery. Each
// inbound email triggers one POST, so a small keep-alive pool suffices. The
// client has no overall timeout; notify bounds each POST with the current
// webhook timeout so a reload takes effect immediately.
func newWebhookHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport}
}
