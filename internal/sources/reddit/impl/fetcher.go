// Package impl fetches subreddit listings from reddit's anonymous JSON
// endpoint, impersonating a regular browser client.
package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bakkerme/reddit-proxy/internal/sources/reddit"
)

const (
	// DefaultBaseURL is the public listing endpoint.
	DefaultBaseURL = "https://www.reddit.com"

	// permalinkBase rebuilds the absolute form of the relative permalink
	// reddit returns in listing items.
	permalinkBase = "https://reddit.com"

	// maxErrorBody caps how much of an upstream error body is kept for the
	// classifier and the client-visible details payload.
	maxErrorBody = 64 * 1024
)

// Fixed request headers, mirroring a desktop Chrome session. Accept-Encoding
// is deliberately absent: the transport negotiates gzip itself and decodes it
// transparently, which a manual header would disable.
var browserHeaders = map[string]string{
	"Accept":                    "application/json",
	"Accept-Language":           "en-US,en;q=0.9",
	"DNT":                       "1",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Cache-Control":             "max-age=0",
}

type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	logger    *slog.Logger
}

func NewFetcher(logger *slog.Logger, timeout time.Duration, userAgent, baseURL string) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		userAgent: userAgent,
		logger:    logger,
	}
}

// Fetch issues a single bounded GET for one listing page and normalizes its
// items. Failures come back as a classified *reddit.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error) {
	if limit <= 0 {
		limit = 25
	}

	endpoint := fmt.Sprintf("%s/r/%s.json", f.baseURL, url.PathEscape(subreddit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, reddit.ClassifyError(subreddit, err)
	}

	query := req.URL.Query()
	query.Set("limit", strconv.Itoa(limit))
	req.URL.RawQuery = query.Encode()

	req.Header.Set("User-Agent", f.userAgent)
	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}

	f.logger.Info("Fetching subreddit listing", slog.String("subreddit", subreddit), slog.Int("limit", limit))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, reddit.ClassifyError(subreddit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, reddit.ClassifyResponse(subreddit, resp.StatusCode, string(body))
	}

	var payload listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, reddit.ClassifyError(subreddit, fmt.Errorf("decode listing: %w", err))
	}

	posts := make([]reddit.Post, 0, len(payload.Data.Children))
	for _, raw := range payload.Data.Children {
		post, ok := f.normalizeChild(subreddit, raw)
		if !ok {
			continue
		}
		posts = append(posts, post)
	}

	f.logger.Info("Fetched subreddit listing", slog.String("subreddit", subreddit), slog.Int("posts", len(posts)))
	return posts, nil
}

// normalizeChild maps one listing wrapper into a Post. Items without a data
// payload are skipped silently; items whose payload does not decode are
// skipped with a warning. Neither aborts the batch.
func (f *Fetcher) normalizeChild(subreddit string, raw json.RawMessage) (reddit.Post, bool) {
	var child struct {
		Data *listingPost `json:"data"`
	}
	if err := json.Unmarshal(raw, &child); err != nil {
		f.logger.Warn("Skipping malformed listing item", slog.String("subreddit", subreddit), slog.String("error", err.Error()))
		return reddit.Post{}, false
	}
	if child.Data == nil {
		return reddit.Post{}, false
	}

	data := child.Data
	return reddit.Post{
		ID:           data.ID,
		Title:        data.Title,
		Author:       data.Author,
		Source:       subreddit,
		Score:        data.Score,
		CommentCount: data.NumComments,
		URL:          data.URL,
		Permalink:    permalinkBase + data.Permalink,
		CreatedAt:    time.Unix(int64(data.CreatedUTC), 0).UTC(),
		IsSelfPost:   data.IsSelf,
		BodyText:     data.SelfText,
		Thumbnail:    data.Thumbnail,
		Domain:       data.Domain,
	}, true
}

type listingResponse struct {
	Data struct {
		Children []json.RawMessage `json:"children"`
	} `json:"data"`
}

type listingPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	IsSelf      bool    `json:"is_self"`
	SelfText    string  `json:"selftext"`
	Thumbnail   string  `json:"thumbnail"`
	Domain      string  `json:"domain"`
}
