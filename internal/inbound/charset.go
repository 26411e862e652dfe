package inbound

import (
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

func isUTF8(charset string) bool {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return true
	}
	return false
}

// decodeString converts s from charset to UTF-8. Unknown charsets and
// decoding errors leave s unchanged.
func decodeString(s, charset string) string {
	if isUTF8(charset) {
		return s
	}
	enc, err := ianaindex.IANA.Encoding(strings.TrimSpace(charset))
	if err != nil || enc == nil {
		return s
	}
	out, err := enc.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

func decodeBytes(b []byte, charset string) []byte {
	if isUTF8(charset) {
		return b
	}
	enc, err := ianaindex.IANA.Encoding(strings.TrimSpace(charset))
	if err != nil || enc == nil {
		return b
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return b
	}
	return out
}
