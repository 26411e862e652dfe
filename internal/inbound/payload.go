// Package inbound decodes inbound-email webhook deliveries into a Payload.
//
// Mailgun-style form posts (urlencoded or multipart) and JSON posts
// (CloudMailin/SendGrid style) are accepted. Field names are looked up in a
// fixed preference order so either provider shape works.
package inbound

import (
	"errors"
	"strings"

	"github.com/hyperifyio/mailrelay/internal/extract"
)

// ErrEmptyBody is returned when a delivery carries no usable body field.
var ErrEmptyBody = errors.New("inbound: empty email body")

// Payload holds the string fields of one inbound delivery.
type Payload struct {
	Subject   string
	From      string
	Recipient string
	Plain     string
	HTML      string
	// Body is a combined body field used by relays that do not split
	// plain and HTML parts.
	Body string
}

var (
	htmlKeys      = []string{"body-html", "stripped-html", "html"}
	plainKeys     = []string{"body-plain", "stripped-text", "text", "plain"}
	bodyKeys      = []string{"body"}
	subjectKeys   = []string{"subject", "headers.subject", "headers.Subject"}
	fromKeys      = []string{"from", "sender", "headers.from", "headers.From"}
	recipientKeys = []string{"recipient", "to", "headers.to", "headers.To", "envelope.to"}
)

// fromLookup builds a Payload from a key lookup. lookup returns "" for
// missing keys.
func fromLookup(lookup func(key string) string) Payload {
	return Payload{
		Subject:   first(lookup, subjectKeys),
		From:      first(lookup, fromKeys),
		Recipient: first(lookup, recipientKeys),
		Plain:     first(lookup, plainKeys),
		HTML:      first(lookup, htmlKeys),
		Body:      first(lookup, bodyKeys),
	}
}

func first(lookup func(string) string, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(lookup(k)); v != "" {
			return v
		}
	}
	return ""
}

// Raw returns the body handed to the extractor: HTML first, then plain
// text, then the combined body.
func (p Payload) Raw() string {
	switch {
	case p.HTML != "":
		return p.HTML
	case p.Plain != "":
		return p.Plain
	default:
		return p.Body
	}
}

// Validate reports ErrEmptyBody when no body field is populated.
func (p Payload) Validate() error {
	if strings.TrimSpace(p.Raw()) == "" {
		return ErrEmptyBody
	}
	return nil
}

// Extract runs the extractor over the payload. When the HTML part has no
// request section but a plain part exists, the plain part is scanned line by
// line instead. Fallback subject and sender literals are replaced by the
// delivery's own header fields when present.
func (p Payload) Extract() (extract.Result, string) {
	raw := p.Raw()
	ex := extract.For(raw)
	res := ex.Extract(raw)
	strategy := extract.StrategyName(ex)

	if len(res.Fields) == 0 && p.HTML != "" && p.Plain != "" {
		alt := extract.LineExtractor{}
		plain := alt.Extract(p.Plain)
		if len(plain.Fields) > 0 {
			res.Fields = plain.Fields
			if res.Subject == extract.NoSubject {
				res.Subject = plain.Subject
			}
			if res.From == extract.UnknownSender {
				res.From = plain.From
			}
			strategy = extract.StrategyName(alt)
		}
	}

	if res.Subject == extract.NoSubject && p.Subject != "" {
		res.Subject = p.Subject
	}
	if res.From == extract.UnknownSender && p.From != "" {
		res.From = p.From
	}
	return res, strategy
}
