// Package filter narrows a batch of normalized posts to those matching the
// caller's criteria. Predicates are combined with AND; input order is
// preserved.
package filter

import (
	"strings"
	"time"

	"github.com/bakkerme/reddit-proxy/internal/sources/reddit"
)

// Criteria controls which posts survive filtering.
type Criteria struct {
	// Keywords are lowercase substrings matched against title and body,
	// any-of. Empty means no keyword filtering.
	Keywords []string
	// Hours drops posts created before now minus this many hours. The value
	// is applied literally, so 0 keeps only posts created at the cutoff
	// instant or later. Nil disables the cutoff.
	Hours *float64
	// MinScore drops posts scoring below the threshold when positive.
	MinScore int
	// Rule is an optional compiled expression evaluated per post.
	Rule *Rule
}

// ParseKeywords splits a comma-separated keyword string into trimmed
// lowercase terms, dropping empties.
func ParseKeywords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		keyword := strings.ToLower(strings.TrimSpace(part))
		if keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	return keywords
}

// Apply returns the subsequence of posts passing every predicate in c,
// evaluated against the fixed reference time now.
func Apply(posts []reddit.Post, c Criteria, now time.Time) ([]reddit.Post, error) {
	var cutoff time.Time
	if c.Hours != nil {
		cutoff = now.Add(-time.Duration(*c.Hours * float64(time.Hour)))
	}

	filtered := make([]reddit.Post, 0, len(posts))
	for _, post := range posts {
		if len(c.Keywords) > 0 && !matchesKeywords(post, c.Keywords) {
			continue
		}
		if c.Hours != nil && post.CreatedAt.Before(cutoff) {
			continue
		}
		if c.MinScore > 0 && post.Score < c.MinScore {
			continue
		}
		if c.Rule != nil {
			matched, err := c.Rule.Match(post)
			if err != nil {
				return nil, err
			}
			if !matched {
				continue
			}
		}
		filtered = append(filtered, post)
	}
	return filtered, nil
}

func matchesKeywords(post reddit.Post, keywords []string) bool {
	searchText := strings.ToLower(post.Title + " " + post.BodyText)
	for _, keyword := range keywords {
		if strings.Contains(searchText, keyword) {
			return true
		}
	}
	return false
}
