package reddit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	goreddit "github.com/vartanbeno/go-reddit/v2/reddit"
)

// AuthedFetcher serves listings through reddit's OAuth API instead of the
// anonymous JSON endpoint. It is selected when API credentials are
// configured; authenticated traffic is far less likely to trip reddit's
// anti-automation defenses.
type AuthedFetcher struct {
	client  *goreddit.Client
	initErr error
	logger  *slog.Logger
}

func NewAuthedFetcher(logger *slog.Logger, timeout time.Duration, userAgent, clientID, clientSecret, username, password string) *AuthedFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := &http.Client{Timeout: timeout}
	client, err := goreddit.NewClient(goreddit.Credentials{
		ID:       clientID,
		Secret:   clientSecret,
		Username: username,
		Password: password,
	}, goreddit.WithHTTPClient(httpClient), goreddit.WithUserAgent(userAgent))

	return &AuthedFetcher{client: client, initErr: err, logger: logger}
}

func (f *AuthedFetcher) Fetch(ctx context.Context, subreddit string, limit int) ([]Post, error) {
	if f.initErr != nil {
		return nil, ClassifyError(subreddit, f.initErr)
	}
	if limit <= 0 {
		limit = 25
	}

	f.logger.Info("Fetching subreddit via reddit API", slog.String("subreddit", subreddit), slog.Int("limit", limit))

	rawPosts, resp, err := f.client.Subreddit.HotPosts(ctx, subreddit, &goreddit.ListOptions{Limit: limit})
	if err != nil {
		if resp != nil {
			return nil, ClassifyResponse(subreddit, resp.StatusCode, err.Error())
		}
		return nil, ClassifyError(subreddit, fmt.Errorf("reddit api fetch: %w", err))
	}

	posts := make([]Post, 0, len(rawPosts))
	for _, raw := range rawPosts {
		if raw == nil {
			continue
		}
		posts = append(posts, Post{
			ID:           raw.ID,
			Title:        raw.Title,
			Author:       raw.Author,
			Source:       subreddit,
			Score:        raw.Score,
			CommentCount: raw.NumberOfComments,
			URL:          raw.URL,
			Permalink:    absolutePermalink(raw.Permalink),
			CreatedAt:    timestampToTime(raw.Created),
			IsSelfPost:   raw.IsSelfPost,
			BodyText:     raw.Body,
			Domain:       postDomain(subreddit, raw.IsSelfPost, raw.URL),
		})
	}
	return posts, nil
}

func absolutePermalink(permalink string) string {
	if permalink == "" || strings.HasPrefix(permalink, "http://") || strings.HasPrefix(permalink, "https://") {
		return permalink
	}
	return "https://reddit.com" + permalink
}

// postDomain recovers the listing "domain" attribute the OAuth API does not
// expose: the link target's host, or the self.<subreddit> marker.
func postDomain(subreddit string, isSelf bool, postURL string) string {
	if isSelf {
		return "self." + subreddit
	}
	parsed, err := url.Parse(postURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return parsed.Host
}

func timestampToTime(ts *goreddit.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.Time.UTC()
}
