// Package slug extracts GitHub owner/name slugs from URL-bearing fields.
package slug

import (
	"regexp"
	"strings"
)

// HostMarker identifies a token as a GitHub URL.
const HostMarker = "github.com"

var repoURLRe = regexp.MustCompile(`^https://github\.com/([^/\s]+/[^/\s]+)$`)

// Extract scans fields in priority order and returns the owner/name slug of
// the first GitHub URL found. The first field containing the host marker is
// the only one considered; if its first GitHub token is not exactly
// https://github.com/<owner>/<name>, the result is empty.
func Extract(fields ...string) string {
	token := firstGitHubToken(fields)
	if token == "" {
		return ""
	}
	m := repoURLRe.FindStringSubmatch(token)
	if m == nil {
		return ""
	}
	return m[1]
}

func firstGitHubToken(fields []string) string {
	for _, f := range fields {
		if !strings.Contains(f, HostMarker) {
			continue
		}
		for _, tok := range strings.Split(f, ",") {
			if strings.Contains(tok, HostMarker) {
				return strings.TrimSpace(tok)
			}
		}
	}
	return ""
}
