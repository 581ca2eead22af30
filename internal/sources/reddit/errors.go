package reddit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Classification buckets a failed fetch into one of the categories the API
// layer knows how to present.
type Classification string

const (
	ClassificationBlocked  Classification = "blocked"
	ClassificationUpstream Classification = "upstream_error"
	ClassificationTimeout  Classification = "timeout"
	ClassificationInternal Classification = "internal"
)

// Body fragments reddit serves when it is refusing automated traffic.
var blockedPhrases = []string{
	"blocked by network security",
	"You've been blocked",
	"rate limit",
}

// FetchError is a classified fetch failure for one subreddit.
type FetchError struct {
	Subreddit      string
	Classification Classification
	StatusCode     int    // upstream status when a response was received, else 0
	Message        string
	Detail         string // upstream body for upstream errors, else empty
}

func (e *FetchError) Error() string {
	return e.Message
}

// ClassifyResponse classifies a non-200 upstream response. A 429, or a body
// carrying one of reddit's blocking phrases regardless of status, means the
// request tripped reddit's anti-automation defenses.
func ClassifyResponse(subreddit string, statusCode int, body string) *FetchError {
	if statusCode == 429 || containsBlockedPhrase(body) {
		return &FetchError{
			Subreddit:      subreddit,
			Classification: ClassificationBlocked,
			StatusCode:     statusCode,
			Message:        "Reddit is blocking requests from this server. This is a temporary issue.",
			Detail:         "Reddit has implemented additional security measures that are blocking serverless function requests.",
		}
	}
	return &FetchError{
		Subreddit:      subreddit,
		Classification: ClassificationUpstream,
		StatusCode:     statusCode,
		Message:        fmt.Sprintf("Reddit API error: %d", statusCode),
		Detail:         body,
	}
}

// ClassifyError classifies a failure that produced no upstream response,
// distinguishing deadline expiry from everything else.
func ClassifyError(subreddit string, err error) *FetchError {
	if isTimeout(err) {
		return &FetchError{
			Subreddit:      subreddit,
			Classification: ClassificationTimeout,
			Message:        "Request to Reddit API timed out",
		}
	}
	return &FetchError{
		Subreddit:      subreddit,
		Classification: ClassificationInternal,
		Message:        err.Error(),
	}
}

func containsBlockedPhrase(body string) bool {
	for _, phrase := range blockedPhrases {
		if strings.Contains(body, phrase) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
