package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/mailrelay/internal/extract"
)

type fakeNotifier struct {
	mu        sync.Mutex
	results   []extract.Result
	recipient string
	err       error
}

func (f *fakeNotifier) Notify(_ context.Context, res extract.Result, recipient string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, res)
	f.recipient = recipient
	return f.err
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestInbound_RelaysExtractedFields(t *testing.T) {
	n := &fakeNotifier{}
	h := NewHandler(n, zerolog.Nop(), 0).Routes()

	form := url.Values{}
	form.Set("from", "fan@example.com")
	form.Set("recipient", "pit@example.com")
	form.Set("body-html", `<html><head><title>New request</title></head><body><p>Request details</p><p><strong>Occasion:</strong> Birthday</p></body></html>`)
	rec := postForm(t, h, "/mailgun", form)

	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "OK" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
	if len(n.results) != 1 {
		t.Fatalf("expected one notification, got %d", len(n.results))
	}
	res := n.results[0]
	if res.Subject != "New request" || res.From != "fan@example.com" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Fields) != 1 || res.Fields[0].Name != "Occasion" {
		t.Fatalf("unexpected fields %+v", res.Fields)
	}
	if n.recipient != "pit@example.com" {
		t.Fatalf("recipient=%q", n.recipient)
	}
}

func TestInbound_EmptyBodyIsClientError(t *testing.T) {
	n := &fakeNotifier{}
	h := NewHandler(n, zerolog.Nop(), 0).Routes()
	form := url.Values{}
	form.Set("subject", "no body")
	rec := postForm(t, h, "/mailgun", form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
	if len(n.results) != 0 {
		t.Fatalf("notifier must not be called")
	}
}

func TestInbound_DeliveryFailureIsServerError(t *testing.T) {
	n := &fakeNotifier{err: errors.New("boom")}
	h := NewHandler(n, zerolog.Nop(), 0).Routes()
	form := url.Values{}
	form.Set("body-plain", "hello")
	rec := postForm(t, h, "/inbound", form)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Error sending notification") {
		t.Fatalf("body=%q", rec.Body.String())
	}
}

func TestInbound_MethodNotAllowed(t *testing.T) {
	h := NewHandler(&fakeNotifier{}, zerolog.Nop(), 0).Routes()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mailgun", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestInbound_BodyTooLarge(t *testing.T) {
	n := &fakeNotifier{}
	h := NewHandler(n, zerolog.Nop(), 64).Routes()
	form := url.Values{}
	form.Set("body-plain", strings.Repeat("x", 1024))
	rec := postForm(t, h, "/mailgun", form)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d, want 413", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&fakeNotifier{}, zerolog.Nop(), 0).Routes())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(b) != "ok" {
		t.Fatalf("status=%d body=%q", resp.StatusCode, b)
	}
}
