// Package normalize cleans raw email bodies into line-oriented text.
//
// Two variants exist: PlainText for quoted-printable text bodies and HTML for
// markup bodies. Both strip tags, decode a fixed table of quoted-printable
// escapes and leave '\n' as the only line break. Neither ever fails; anything
// not recognized passes through unchanged.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalizer converts a raw body into normalized text.
type Normalizer interface {
	Normalize(raw string) string
}

// PlainText normalizes quoted-printable plain-text bodies.
type PlainText struct{}

// HTML normalizes HTML bodies. It additionally maps &nbsp; to a space.
type HTML struct{}

func (PlainText) Normalize(raw string) string { return normalize(raw, false) }

func (HTML) Normalize(raw string) string { return normalize(raw, true) }

var (
	breakTag = regexp.MustCompile(`(?i)<br\s*/?>`)
	// Only tag-shaped spans are removed so address brackets like
	// <jane@example.com> survive in From: lines.
	markupTag = regexp.MustCompile(`(?s)<!--.*?-->|<![^>]*>|</?[A-Za-z][A-Za-z0-9:-]*(?:\s[^>]*)?/?>`)
	softBreak = regexp.MustCompile(`=\r?\n`)
)

// qpEscapes is the fixed set of escapes decoded; anything else passes through.
var qpEscapes = strings.NewReplacer(
	"=E2=80=99", "’",
	"=E2=80=9C", "“",
	"=E2=80=9D", "”",
	"=e2=80=99", "’",
	"=e2=80=9c", "“",
	"=e2=80=9d", "”",
	"=20", " ",
	"=3D", "=",
	"=3d", "=",
)

// DecodeQuotedPrintable removes soft line breaks and decodes the known
// escape sequences. Unknown =XX sequences are left as they are.
func DecodeQuotedPrintable(s string) string {
	s = softBreak.ReplaceAllString(s, "")
	return qpEscapes.Replace(s)
}

// StripTags converts <br> to newlines and drops every other tag.
func StripTags(s string) string {
	s = breakTag.ReplaceAllString(s, "\n")
	return markupTag.ReplaceAllString(s, "")
}

// maxPasses bounds the rounds needed to reach a fixed point. Each round that
// changes the text shortens it, so chained escapes like "=3D3D" settle fast.
const maxPasses = 8

func normalize(raw string, html bool) string {
	s := normalizeOnce(raw, html)
	for i := 0; i < maxPasses; i++ {
		next := normalizeOnce(s, html)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func normalizeOnce(raw string, html bool) string {
	s := StripTags(raw)
	s = DecodeQuotedPrintable(s)
	if html {
		s = strings.ReplaceAll(s, "&nbsp;", " ")
	}
	s = strings.ReplaceAll(s, "\r", "")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.TrimSpace(strings.Join(lines, "\n"))
	return norm.NFC.String(s)
}
