package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ResearchBriefing/internal/domain"
	"ResearchBriefing/internal/keyword"
	"ResearchBriefing/internal/ports"
	"ResearchBriefing/internal/state"
)

// CollectorDeps wires all driven adapters into the collect cycle.
type CollectorDeps struct {
	Blogs     ports.BlogSource
	Papers    ports.PaperSource
	Store     ports.StateStore
	Matcher   *keyword.Matcher
	Retention state.Retention
	Location  *time.Location
	Logger    *slog.Logger
}

// Collector implements the collect cycle: fetch feeds, classify, dedup,
// append survivors to today's buffer, persist. It never posts anywhere.
type Collector struct {
	blogs     ports.BlogSource
	papers    ports.PaperSource
	store     ports.StateStore
	matcher   *keyword.Matcher
	retention state.Retention
	location  *time.Location
	logger    *slog.Logger
}

// NewCollector constructs the collect use case.
func NewCollector(deps CollectorDeps) *Collector {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Collector{
		blogs:     deps.Blogs,
		papers:    deps.Papers,
		store:     deps.Store,
		matcher:   deps.Matcher,
		retention: deps.Retention,
		location:  loc,
		logger:    deps.Logger,
	}
}

// Run executes one collect invocation. Partial failures (an unreachable
// feed, a failed arXiv fetch) do not block the surviving items: whatever
// was collected is still buffered and saved, and the failures come back
// joined so the scheduler can flag the run.
func (c *Collector) Run(ctx context.Context, now time.Time) error {
	blob, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	// Prune before any dedup check so rotated-out ids can be collected
	// again instead of the stores growing forever.
	local := now.In(c.location)
	blob.Prune(local, c.retention)
	today := state.DateKey(local)

	var failures []error

	if err := c.collectBlogs(ctx, blob, now, today); err != nil {
		failures = append(failures, err)
	}

	if err := c.collectPapers(ctx, blob, now, today); err != nil {
		c.logger.Warn("arxiv fetch failed; blog data will still be saved, papers retried next run", "error", err)
		failures = append(failures, err)
	}

	if err := c.store.Save(blob); err != nil {
		failures = append(failures, fmt.Errorf("save state: %w", err))
	} else {
		c.logger.Info("collect done, state saved", "date", today)
	}

	return errors.Join(failures...)
}

func (c *Collector) collectBlogs(ctx context.Context, blob *state.Blob, now time.Time, today string) error {
	posts, err := c.blogs.FetchPosts(ctx, now)
	c.logger.Info("fetched blog posts", "count", len(posts))

	buffered := 0
	links := 0
	for _, post := range posts {
		if blob.NotifiedBlogURLs.Known(post.URL) {
			continue
		}
		blob.NotifiedBlogURLs.MarkSeen(post.URL, now)

		for _, id := range post.ArxivIDs {
			// Last write wins when two posts mention the same paper.
			blob.BlogArxivMap.Link(id, domain.BlogRef{
				BlogURL:    post.URL,
				BlogTitle:  post.Title,
				BlogSource: post.Source,
				AddedAt:    now,
			})
			links++
		}

		blob.DailyBuffer.AppendBlog(today, post)
		buffered++
	}
	c.logger.Info("buffered new blog posts", "count", buffered, "arxiv_links", links)

	if err != nil {
		return fmt.Errorf("fetch blogs: %w", err)
	}
	return nil
}

func (c *Collector) collectPapers(ctx context.Context, blob *state.Blob, now time.Time, today string) error {
	papers, err := c.papers.FetchRecent(ctx, now)
	if err != nil {
		return fmt.Errorf("fetch arxiv: %w", err)
	}
	c.logger.Info("fetched recent papers", "count", len(papers))

	linked := 0
	notable := 0
	for _, paper := range papers {
		if blob.NotifiedIDs.Known(paper.ArxivID) {
			continue
		}

		if ref, ok := blob.BlogArxivMap.Lookup(paper.ArxivID); ok {
			blob.DailyBuffer.AppendLinked(today, domain.LinkedPaper{Paper: paper, Blog: ref})
			blob.BlogArxivMap.Unlink(paper.ArxivID)
			blob.NotifiedIDs.MarkSeen(paper.ArxivID, now)
			linked++
			continue
		}

		matched := c.matcher.Match(paper.Title, paper.Summary, strings.Join(paper.Authors, " "))
		if len(matched) == 0 {
			// Unmatched papers are never buffered; leaving them unmarked
			// lets a blog post seen later still link them.
			continue
		}

		paper.Matched = matched
		blob.DailyBuffer.AppendPaper(today, paper)
		blob.NotifiedIDs.MarkSeen(paper.ArxivID, now)
		notable++
	}

	c.logger.Info("buffered new papers", "linked", linked, "notable", notable)
	return nil
}
