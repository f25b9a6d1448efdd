// Package analyze provides the changelist model the reports are built from:
// raw deltas, normalized per-record events, per-user clusters, filters and
// household lookup.
package analyze

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMalformedPair is returned when a key string segment is not key=value.
var ErrMalformedPair = errors.New("malformed key=value pair")

// ParseKeys splits a "key=value;key=value" string into a map. Keys are
// lower-cased and trimmed, values are trimmed. Empty segments are skipped and
// a repeated key keeps its last value.
func ParseKeys(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, seg := range strings.Split(s, ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		key, value, ok := strings.Cut(seg, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedPair, seg)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil, fmt.Errorf("%w: empty key in %q", ErrMalformedPair, seg)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

var valueEscaper = strings.NewReplacer("%", "%25", ";", "%3B", "=", "%3D")

// EscapeValue percent-encodes the characters that would end a value or
// start an escape, leaving the rest readable.
func EscapeValue(v string) string {
	return valueEscaper.Replace(v)
}

// UnescapeValue reverses EscapeValue and any other percent-encoding a
// browser applied to the value.
func UnescapeValue(v string) (string, error) {
	return url.PathUnescape(v)
}
