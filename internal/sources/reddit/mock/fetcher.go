package mock

import (
	"context"
	"sync"

	"github.com/bakkerme/reddit-proxy/internal/sources/reddit"
)

// Fetcher serves canned posts per subreddit for tests. Fetch may be called
// from concurrent goroutines, so call recording is locked.
type Fetcher struct {
	Posts map[string][]reddit.Post
	Errs  map[string]error

	mu    sync.Mutex
	Calls []string
}

func (f *Fetcher) Fetch(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error) {
	_ = ctx
	_ = limit
	f.mu.Lock()
	f.Calls = append(f.Calls, subreddit)
	f.mu.Unlock()
	if err, ok := f.Errs[subreddit]; ok {
		return nil, err
	}
	return f.Posts[subreddit], nil
}
