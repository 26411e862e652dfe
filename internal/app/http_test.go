package app

import (
	"net/http"
	"reflect"
	"testing"
)

func TestNewWebhookHTTPClient_Config(t *testing.T) {
	c := newWebhookHTTPClient()
	if c.Timeout != 0 {
		t.Fatalf("client timeout must stay unset so reloads apply, got %v", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected http.Transport")
	}
	// Ensure we didn't return the default client's transport
	if reflect.ValueOf(http.DefaultTransport).Pointer() == reflect.ValueOf(tr).Pointer() {
		t.Fatalf("transport should not be default")
	}
}
