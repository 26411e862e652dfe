// Package notify formats extraction results as chat-webhook messages and
// delivers them.
package notify

import (
	"time"
	"unicode/utf8"

	"github.com/hyperifyio/mailrelay/internal/extract"
)

// Chat webhook limits.
const (
	maxTitleLen       = 256
	maxDescriptionLen = 4096
	maxEmbedFields    = 25
)

// Message is the JSON envelope posted to the webhook.
type Message struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Embeds    []Embed `json:"embeds"`
}

type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedAuthor struct {
	Name string `json:"name"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

// Format builds the message for one result. The title is the subject, the
// description is the configured fixed text and the author is the sender.
// When nothing was extracted the fields fall back to From (and To when the
// delivery names a recipient).
func Format(res extract.Result, recipient string, opts Options, now time.Time) Message {
	fields := res.FieldsOrFallback()
	if len(res.Fields) == 0 && recipient != "" {
		fields = append(fields, extract.Field{Name: "To", Value: recipient, Inline: true})
	}
	if len(fields) > maxEmbedFields {
		fields = fields[:maxEmbedFields]
	}
	out := make([]EmbedField, 0, len(fields))
	for _, f := range fields {
		out = append(out, EmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}

	from := res.From
	if from == "" {
		from = extract.UnknownSender
	}
	title := res.Subject
	if title == "" {
		title = extract.NoSubject
	}

	embed := Embed{
		Title:       truncate(title, maxTitleLen),
		Description: truncate(opts.Description, maxDescriptionLen),
		Color:       opts.Color,
		Fields:      out,
		Author:      &EmbedAuthor{Name: truncate(from, maxTitleLen)},
		Timestamp:   now.UTC().Format(time.RFC3339),
	}
	if opts.FooterText != "" {
		embed.Footer = &EmbedFooter{Text: opts.FooterText}
	}
	return Message{
		Username:  opts.Username,
		AvatarURL: opts.AvatarURL,
		Embeds:    []Embed{embed},
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
