package rss

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"ResearchBriefing/internal/config"
	"ResearchBriefing/internal/domain"
	"ResearchBriefing/internal/ports"
)

const (
	userAgent = "researchbrief/1.0"

	// maxSummaryLen bounds stored blog summaries in runes.
	maxSummaryLen = 600
)

// arxivIDExpr matches arXiv ids like 2501.01234 or 2501.01234v2 in URLs
// and text; the capture group drops the version suffix.
var arxivIDExpr = regexp.MustCompile(`\b(\d{4}\.\d{4,5})(?:v\d+)?\b`)

// Client fetches recent posts from the configured blog RSS feeds.
type Client struct {
	feeds  []config.FeedConfig
	window time.Duration
	client *http.Client
	parser *gofeed.Parser
	logger *slog.Logger
}

var _ ports.BlogSource = (*Client)(nil)

// NewClient wires the feed list; a nil HTTP client gets a 30s timeout.
func NewClient(feeds []config.FeedConfig, window time.Duration, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		feeds:  feeds,
		window: window,
		client: client,
		parser: gofeed.NewParser(),
		logger: logger,
	}
}

// FetchPosts walks every configured feed. A failing feed is reported in
// the joined error but never blocks the others; the returned posts are
// the successful subset in feed order.
func (c *Client) FetchPosts(ctx context.Context, now time.Time) ([]domain.BlogPost, error) {
	cutoff := now.Add(-c.window)

	var posts []domain.BlogPost
	var failures []error

	for _, feed := range c.feeds {
		parsed, err := c.fetchFeed(ctx, feed.URL)
		if err != nil {
			c.warn("feed fetch failed", "source", feed.Source, "error", err)
			failures = append(failures, fmt.Errorf("feed %s: %w", feed.Source, err))
			continue
		}

		for _, item := range parsed.Items {
			post, ok := parseEntry(item, feed.Source, cutoff)
			if !ok {
				continue
			}
			posts = append(posts, post)
		}
	}

	c.debug("blog fetch done", "feeds", len(c.feeds), "posts", len(posts), "failed_feeds", len(failures))
	return posts, errors.Join(failures...)
}

func (c *Client) fetchFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// parseEntry converts one feed item into a blog post. Items without a
// title or link, or published before the cutoff, are skipped without
// aborting the feed.
func parseEntry(item *gofeed.Item, source string, cutoff time.Time) (domain.BlogPost, bool) {
	title := strings.TrimSpace(item.Title)
	link := item.Link
	if title == "" || link == "" {
		return domain.BlogPost{}, false
	}

	var published time.Time
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.UTC()
	}
	if !published.IsZero() && published.Before(cutoff) {
		return domain.BlogPost{}, false
	}

	// Scan link, summary, content and all entry links for paper ids.
	parts := []string{link, item.Description, item.Content}
	parts = append(parts, item.Links...)
	ids := extractArxivIDs(strings.Join(parts, " "))

	summary := stripHTML(item.Description)
	if len([]rune(summary)) > maxSummaryLen {
		summary = string([]rune(summary)[:maxSummaryLen])
	}

	return domain.BlogPost{
		Title:     title,
		URL:       link,
		Source:    source,
		Published: published,
		Summary:   summary,
		ArxivIDs:  ids,
	}, true
}

// extractArxivIDs returns unique ids without version suffixes, in order
// of first appearance.
func extractArxivIDs(text string) []string {
	var ids []string
	seen := map[string]struct{}{}
	for _, match := range arxivIDExpr.FindAllStringSubmatch(text, -1) {
		id := match[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
