// Package aggregator runs the fetch-normalize-filter pipeline across one or
// more subreddits and merges the results.
package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bakkerme/reddit-proxy/internal/filter"
	"github.com/bakkerme/reddit-proxy/internal/sources/reddit"
)

// SourceError records one failed source inside an otherwise successful
// aggregation.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Result is the merged outcome of a multi-source fetch: deduplicated, ranked
// posts plus the per-source failures encountered along the way. A non-empty
// Errors list does not make the aggregation itself a failure.
type Result struct {
	Posts  []reddit.Post
	Errors []SourceError
}

type Aggregator struct {
	fetcher reddit.Fetcher
	logger  *slog.Logger
}

func New(fetcher reddit.Fetcher, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{fetcher: fetcher, logger: logger}
}

// FetchOne runs the pipeline for a single raw source reference and returns
// the canonical name alongside the filtered posts. Fetch failures surface as
// a classified *reddit.FetchError.
func (a *Aggregator) FetchOne(ctx context.Context, rawSource string, limit int, criteria filter.Criteria, now time.Time) (string, []reddit.Post, error) {
	tracer := otel.Tracer("reddit-proxy/aggregator")
	ctx, span := tracer.Start(ctx, "aggregator.fetch_one")
	defer span.End()

	subreddit := reddit.NormalizeSubreddit(rawSource)
	span.SetAttributes(attribute.String("reddit.subreddit", subreddit))

	posts, err := a.fetcher.Fetch(ctx, subreddit, limit)
	if err != nil {
		return subreddit, nil, err
	}
	filtered, err := filter.Apply(posts, criteria, now)
	if err != nil {
		return subreddit, nil, err
	}

	a.logger.Info("Filtered subreddit posts",
		slog.String("subreddit", subreddit),
		slog.Int("fetched", len(posts)),
		slog.Int("kept", len(filtered)),
	)
	return subreddit, filtered, nil
}

// FetchAll fans out across the given sources, collecting each source's
// failure instead of aborting the rest. Surviving posts are concatenated in
// source order, deduplicated by id (first occurrence wins) and sorted by
// score descending, then recency descending. Only filter-rule evaluation
// errors abort the whole aggregation.
func (a *Aggregator) FetchAll(ctx context.Context, rawSources []string, limit int, criteria filter.Criteria, now time.Time) (Result, error) {
	tracer := otel.Tracer("reddit-proxy/aggregator")
	ctx, span := tracer.Start(ctx, "aggregator.fetch_all")
	defer span.End()
	span.SetAttributes(attribute.Int("reddit.sources", len(rawSources)))

	type outcome struct {
		posts   []reddit.Post
		err     error
		ruleErr error
	}

	outcomes := make([]outcome, len(rawSources))
	var wg sync.WaitGroup
	for i, raw := range rawSources {
		wg.Add(1)
		go func(i int, raw string) {
			defer wg.Done()
			_, posts, err := a.FetchOne(ctx, raw, limit, criteria, now)
			if err != nil {
				var fetchErr *reddit.FetchError
				if !errors.As(err, &fetchErr) {
					outcomes[i] = outcome{ruleErr: err}
					return
				}
				outcomes[i] = outcome{err: err}
				return
			}
			outcomes[i] = outcome{posts: posts}
		}(i, raw)
	}
	wg.Wait()

	result := Result{
		Posts:  make([]reddit.Post, 0),
		Errors: make([]SourceError, 0),
	}
	seen := make(map[string]struct{})
	for i, out := range outcomes {
		if out.ruleErr != nil {
			return Result{}, out.ruleErr
		}
		if out.err != nil {
			a.logger.Warn("Source fetch failed",
				slog.String("source", rawSources[i]),
				slog.String("error", out.err.Error()),
			)
			result.Errors = append(result.Errors, SourceError{Source: rawSources[i], Error: out.err.Error()})
			continue
		}
		for _, post := range out.posts {
			if _, dup := seen[post.ID]; dup {
				continue
			}
			seen[post.ID] = struct{}{}
			result.Posts = append(result.Posts, post)
		}
	}

	sortPosts(result.Posts)

	a.logger.Info("Aggregated sources",
		slog.Int("sources", len(rawSources)),
		slog.Int("posts", len(result.Posts)),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// sortPosts ranks by score descending, ties broken by newer createdAt. The
// ranking depends only on post content, so concurrent fetch completion order
// never changes the output.
func sortPosts(posts []reddit.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Score != posts[j].Score {
			return posts[i].Score > posts[j].Score
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}
