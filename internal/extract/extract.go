// Package extract pulls candidate URLs out of free submission text.
package extract

import (
	"regexp"
	"strings"
)

// urlPattern matches an http or https URL up to the next whitespace.
var urlPattern = regexp.MustCompile(`(?i)https?://\S+`)

// trailingPunct holds sentence punctuation stripped greedily from the end
// of each match, so "http://x.test/a." captures "http://x.test/a".
const trailingPunct = `.,);]"'`

// URLs returns the URLs found in text, trimmed of trailing punctuation and
// deduplicated in first-occurrence order. Empty input or no matches yields
// an empty result; that is a success, not a failure.
func URLs(text string) []string {
	if text == "" {
		return nil
	}

	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		u := strings.TrimRight(m, trailingPunct)

		// A match can trim down to a bare scheme ("http://."), which is
		// not a usable URL.
		if idx := strings.Index(u, "://"); idx < 0 || idx+len("://") == len(u) {
			continue
		}

		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	return urls
}
