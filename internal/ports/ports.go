package ports

import (
	"context"
	"time"

	"ResearchBriefing/internal/domain"
	"ResearchBriefing/internal/state"
)

// PaperSource pulls recent papers from the arXiv API.
type PaperSource interface {
	FetchRecent(ctx context.Context, now time.Time) ([]domain.Paper, error)
}

// BlogSource pulls recent posts from the configured RSS feeds. A partial
// result is valid: posts from reachable feeds are returned alongside a
// joined error describing the feeds that failed.
type BlogSource interface {
	FetchPosts(ctx context.Context, now time.Time) ([]domain.BlogPost, error)
}

// Briefer delivers one briefing day to the external channel. A nil return
// is the confirmed-success signal the delivery coordinator acknowledges
// on; any error leaves the buffered data untouched.
type Briefer interface {
	SendBriefing(ctx context.Context, day time.Time, snap domain.Snapshot) error
}

// StateStore loads and saves the persistent state blob.
type StateStore interface {
	Load() (*state.Blob, error)
	Save(blob *state.Blob) error
}
