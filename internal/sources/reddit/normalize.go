package reddit

import "strings"

const (
	fullURLPrefix = "https://www.reddit.com/r/"
	shortPrefix   = "r/"
)

// NormalizeSubreddit reduces a loosely formatted subreddit reference (full
// URL, r/-prefixed name, query string, trailing slash) to its bare name.
// It never fails; degenerate input yields an empty string. The result is a
// fixpoint: normalizing it again returns the same string.
func NormalizeSubreddit(raw string) string {
	name := strings.TrimSpace(raw)
	for strings.HasPrefix(name, fullURLPrefix) {
		name = name[len(fullURLPrefix):]
	}
	for strings.HasPrefix(name, shortPrefix) {
		name = name[len(shortPrefix):]
	}
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	return strings.TrimRight(name, "/")
}
