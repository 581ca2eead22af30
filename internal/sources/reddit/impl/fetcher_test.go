package impl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bakkerme/reddit-proxy/internal/sources/reddit"
)

const listingFixture = `{
	"data": {
		"children": [
			{"data": {
				"id": "abc123",
				"title": "Scaling Postgres",
				"author": "gopher",
				"score": 42,
				"num_comments": 7,
				"url": "https://example.com/article",
				"permalink": "/r/golang/comments/abc123/scaling_postgres/",
				"created_utc": 1700000000,
				"is_self": false,
				"thumbnail": "default",
				"domain": "example.com"
			}},
			{"kind": "t3"},
			{"data": {"id": "bad", "score": "not-a-number"}},
			{"data": {
				"id": "def456",
				"title": "Self post",
				"author": "ferret",
				"score": 3,
				"num_comments": 0,
				"url": "https://www.reddit.com/r/golang/comments/def456/self_post/",
				"permalink": "/r/golang/comments/def456/self_post/",
				"created_utc": 1700000500,
				"is_self": true,
				"selftext": "some **markdown** body",
				"thumbnail": "self",
				"domain": "self.golang"
			}}
		]
	}
}`

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery, gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(listingFixture)); err != nil {
			t.Errorf("write fixture: %v", err)
		}
	}))
	defer srv.Close()

	fetcher := NewFetcher(nil, 2*time.Second, "test-agent/1.0", srv.URL)
	posts, err := fetcher.Fetch(context.Background(), "golang", 25)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotPath != "/r/golang.json" {
		t.Fatalf("path = %q, want %q", gotPath, "/r/golang.json")
	}
	if gotQuery != "limit=25" {
		t.Fatalf("query = %q, want %q", gotQuery, "limit=25")
	}
	if gotUserAgent != "test-agent/1.0" {
		t.Fatalf("User-Agent = %q, want %q", gotUserAgent, "test-agent/1.0")
	}

	// Four children, one without a payload and one malformed; both skipped.
	if len(posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(posts))
	}

	first := posts[0]
	if first.ID != "abc123" {
		t.Fatalf("ID = %q, want %q", first.ID, "abc123")
	}
	if first.Source != "golang" {
		t.Fatalf("Source = %q, want %q", first.Source, "golang")
	}
	if first.CommentCount != 7 {
		t.Fatalf("CommentCount = %d, want 7", first.CommentCount)
	}
	if first.Permalink != "https://reddit.com/r/golang/comments/abc123/scaling_postgres/" {
		t.Fatalf("Permalink = %q", first.Permalink)
	}
	wantCreated := time.Unix(1700000000, 0).UTC()
	if !first.CreatedAt.Equal(wantCreated) {
		t.Fatalf("CreatedAt = %v, want %v", first.CreatedAt, wantCreated)
	}
	if first.BodyText != "" {
		t.Fatalf("BodyText = %q, want empty", first.BodyText)
	}

	second := posts[1]
	if !second.IsSelfPost {
		t.Fatal("IsSelfPost = false, want true")
	}
	if second.BodyText != "some **markdown** body" {
		t.Fatalf("BodyText = %q", second.BodyText)
	}
}

func TestFetcher_FetchDefaultsLimit(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if _, err := w.Write([]byte(`{"data":{"children":[]}}`)); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer srv.Close()

	fetcher := NewFetcher(nil, 2*time.Second, "test-agent/1.0", srv.URL)
	posts, err := fetcher.Fetch(context.Background(), "golang", 0)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotQuery != "limit=25" {
		t.Fatalf("query = %q, want default limit", gotQuery)
	}
	if len(posts) != 0 {
		t.Fatalf("len(posts) = %d, want 0", len(posts))
	}
}

func TestFetcher_FetchClassifiesResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		body       string
		want       reddit.Classification
	}{
		{name: "too many requests", statusCode: http.StatusTooManyRequests, body: "slow down", want: reddit.ClassificationBlocked},
		{name: "rate limit body", statusCode: http.StatusServiceUnavailable, body: "rate limit exceeded", want: reddit.ClassificationBlocked},
		{name: "not found", statusCode: http.StatusNotFound, body: "no such subreddit", want: reddit.ClassificationUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if _, err := w.Write([]byte(tt.body)); err != nil {
					t.Errorf("write: %v", err)
				}
			}))
			defer srv.Close()

			fetcher := NewFetcher(nil, 2*time.Second, "test-agent/1.0", srv.URL)
			_, err := fetcher.Fetch(context.Background(), "golang", 25)

			var fetchErr *reddit.FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("Fetch() error = %v, want *reddit.FetchError", err)
			}
			if fetchErr.Classification != tt.want {
				t.Fatalf("Classification = %q, want %q", fetchErr.Classification, tt.want)
			}
			if fetchErr.StatusCode != tt.statusCode {
				t.Fatalf("StatusCode = %d, want %d", fetchErr.StatusCode, tt.statusCode)
			}
		})
	}
}

func TestFetcher_FetchTimesOut(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	fetcher := NewFetcher(nil, 50*time.Millisecond, "test-agent/1.0", srv.URL)
	_, err := fetcher.Fetch(context.Background(), "golang", 25)

	var fetchErr *reddit.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch() error = %v, want *reddit.FetchError", err)
	}
	if fetchErr.Classification != reddit.ClassificationTimeout {
		t.Fatalf("Classification = %q, want %q", fetchErr.Classification, reddit.ClassificationTimeout)
	}
}

func TestFetcher_FetchMalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("<html>not json</html>")); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer srv.Close()

	fetcher := NewFetcher(nil, 2*time.Second, "test-agent/1.0", srv.URL)
	_, err := fetcher.Fetch(context.Background(), "golang", 25)

	var fetchErr *reddit.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch() error = %v, want *reddit.FetchError", err)
	}
	if fetchErr.Classification != reddit.ClassificationInternal {
		t.Fatalf("Classification = %q, want %q", fetchErr.Classification, reddit.ClassificationInternal)
	}
}
