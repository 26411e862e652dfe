package inbound

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// maxMemory is the in-memory budget for multipart forms; larger parts spill
// to temporary files.
const maxMemory = 8 << 20

// ErrMalformed is returned for bodies that cannot be decoded at all.
var ErrMalformed = errors.New("inbound: malformed payload")

// Parse decodes the request body according to its Content-Type. It does
// not check that a body field is present; call Payload.Validate for that.
func Parse(r *http.Request) (Payload, error) {
	ct := r.Header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		// Some relays omit the header; urlencoded is the common default.
		mediaType = "application/x-www-form-urlencoded"
		params = nil
	}
	charset := params["charset"]

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return Payload{}, fmt.Errorf("read body: %w", err)
		}
		return ParseJSON(b, charset)
	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return Payload{}, fmt.Errorf("parse multipart form: %w", err)
		}
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}
	default:
		if err := r.ParseForm(); err != nil {
			return Payload{}, fmt.Errorf("parse form: %w", err)
		}
	}
	return fromForm(r.PostForm, charset), nil
}

// ParseJSON decodes a JSON delivery. Nested keys such as headers.subject
// are resolved with gjson paths.
func ParseJSON(b []byte, charset string) (Payload, error) {
	b = decodeBytes(b, charset)
	if !gjson.ValidBytes(b) {
		return Payload{}, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	doc := gjson.ParseBytes(b)
	if !doc.IsObject() {
		return Payload{}, fmt.Errorf("%w: json root is not an object", ErrMalformed)
	}
	return fromLookup(func(key string) string {
		return doc.Get(key).String()
	}), nil
}

type formValues interface {
	Get(key string) string
}

// fromForm builds a Payload from form values. A SendGrid-style "charsets"
// field (a JSON object of field name to charset) overrides the request
// charset per field.
func fromForm(form formValues, charset string) Payload {
	charsets := form.Get("charsets")
	return fromLookup(func(key string) string {
		v := form.Get(key)
		if v == "" {
			return ""
		}
		cs := charset
		if charsets != "" && gjson.Valid(charsets) {
			if c := gjson.Get(charsets, escapeKey(key)).String(); c != "" {
				cs = c
			}
		}
		return decodeString(v, cs)
	})
}

// escapeKey escapes gjson path metacharacters in a literal field name.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
