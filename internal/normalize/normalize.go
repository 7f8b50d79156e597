// Package normalize cleans raw spreadsheet cell values.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultSentinels are the values treated as "no data" in any field.
var DefaultSentinels = []string{"#N/A"}

// DefaultIDSentinels are additional "no data" values for identifier fields.
var DefaultIDSentinels = []string{"0"}

// Normalizer detects blank and sentinel values. Blank and whitespace-only
// values are always treated as no data.
type Normalizer struct {
	sentinels   map[string]struct{}
	idSentinels map[string]struct{}
}

// New creates a Normalizer. idSentinels apply only to NormalizeID, in
// addition to sentinels.
func New(sentinels, idSentinels []string) *Normalizer {
	n := &Normalizer{
		sentinels:   make(map[string]struct{}, len(sentinels)),
		idSentinels: make(map[string]struct{}, len(sentinels)+len(idSentinels)),
	}
	for _, s := range sentinels {
		s = clean(s)
		if s == "" {
			continue
		}
		n.sentinels[s] = struct{}{}
		n.idSentinels[s] = struct{}{}
	}
	for _, s := range idSentinels {
		if s = clean(s); s != "" {
			n.idSentinels[s] = struct{}{}
		}
	}
	return n
}

// Default returns a Normalizer with DefaultSentinels and DefaultIDSentinels.
func Default() *Normalizer {
	return New(DefaultSentinels, DefaultIDSentinels)
}

// Normalize returns the trimmed value, or false when it carries no data.
func (n *Normalizer) Normalize(v string) (string, bool) {
	return match(v, n.sentinels)
}

// NormalizeID is Normalize for identifier fields.
func (n *Normalizer) NormalizeID(v string) (string, bool) {
	return match(v, n.idSentinels)
}

func match(v string, sentinels map[string]struct{}) (string, bool) {
	v = clean(v)
	if v == "" {
		return "", false
	}
	if _, ok := sentinels[v]; ok {
		return "", false
	}
	return v, true
}

// clean trims Unicode whitespace (including non-breaking spaces from
// spreadsheet exports) and applies NFC so equivalent names compare equal.
func clean(v string) string {
	v = strings.TrimFunc(v, unicode.IsSpace)
	if v == "" {
		return ""
	}
	return norm.NFC.String(v)
}

// FirstOf returns the first non-empty trimmed segment of v split on delim.
// When no segment has content, v is returned unchanged.
func FirstOf(v, delim string) string {
	if delim == "" || !strings.Contains(v, delim) {
		return v
	}
	for _, seg := range strings.Split(v, delim) {
		if seg = strings.TrimSpace(seg); seg != "" {
			return seg
		}
	}
	return v
}
