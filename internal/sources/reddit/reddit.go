// Package reddit defines the normalized post model and the fetcher contract
// used by the proxy pipeline. Implementations live in the impl (anonymous
// listing endpoint) and authed (reddit API client) subpackages.
package reddit

import (
	"context"
	"time"
)

// Post is one normalized listing entry. It is constructed once from a raw
// upstream item and never mutated afterwards, except for BodyHTML which is
// filled in by the optional markdown rendering step.
type Post struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Source       string    `json:"source"`
	Score        int       `json:"score"`
	CommentCount int       `json:"commentCount"`
	URL          string    `json:"url"`
	Permalink    string    `json:"permalink"`
	CreatedAt    time.Time `json:"createdAt"`
	IsSelfPost   bool      `json:"isSelfPost"`
	BodyText     string    `json:"bodyText"`
	BodyHTML     string    `json:"bodyHtml,omitempty"`
	Thumbnail    string    `json:"thumbnail"`
	Domain       string    `json:"domain"`
}

// Fetcher retrieves one page of posts for a canonical subreddit name.
type Fetcher interface {
	Fetch(ctx context.Context, subreddit string, limit int) ([]Post, error)
}
