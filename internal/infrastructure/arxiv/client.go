package arxiv

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"ResearchBriefing/internal/domain"
	"ResearchBriefing/internal/ports"
)

const (
	maxRetries = 3
	userAgent  = "researchbrief/1.0"
)

// idExpr extracts the short arXiv id from an Atom entry id such as
// http://arxiv.org/abs/2501.01234v1.
var idExpr = regexp.MustCompile(`(\d{4}\.\d{4,5})(v\d+)?$`)

// Options configures the arXiv API query.
type Options struct {
	APIURL     string
	Categories []string
	Window     time.Duration
	MaxResults int
}

// Client fetches recent papers from the arXiv Atom API.
type Client struct {
	opts          Options
	client        *http.Client
	parser        *gofeed.Parser
	logger        *slog.Logger
	retryDelay    time.Duration
	courtesyDelay time.Duration
}

var _ ports.PaperSource = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets a 30s timeout default.
func NewClient(opts Options, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		opts:          opts,
		client:        client,
		parser:        gofeed.NewParser(),
		logger:        logger,
		retryDelay:    5 * time.Second,
		courtesyDelay: time.Second,
	}
}

// FetchRecent queries the API and returns papers published within the
// fetch window, newest first as the API sorts them.
func (c *Client) FetchRecent(ctx context.Context, now time.Time) ([]domain.Paper, error) {
	if len(c.opts.Categories) == 0 {
		return nil, fmt.Errorf("no arxiv categories configured")
	}

	feed, err := c.fetchFeed(ctx, c.queryURL())
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(-c.opts.Window)
	papers := make([]domain.Paper, 0, len(feed.Items))

	for _, item := range feed.Items {
		if item.PublishedParsed == nil {
			continue
		}
		published := item.PublishedParsed.UTC()
		if published.Before(cutoff) {
			continue
		}

		id := extractID(item)
		if id == "" {
			continue
		}

		papers = append(papers, domain.Paper{
			ArxivID:    id,
			Title:      collapseSpace(item.Title),
			Summary:    collapseSpace(item.Description),
			Authors:    extractAuthors(item),
			Link:       extractLink(item, id),
			Published:  published,
			Categories: item.Categories,
		})
	}

	c.debug("arxiv fetch done", "entries", len(feed.Items), "recent", len(papers))
	return papers, nil
}

// fetchFeed retries transient API failures with a linearly growing delay.
func (c *Client) fetchFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		feed, err := c.fetchOnce(ctx, url)
		if err == nil {
			return feed, nil
		}
		lastErr = err
		c.debug("arxiv request failed", "attempt", attempt, "error", err)

		if attempt < maxRetries {
			select {
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("arxiv api failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url string) (*gofeed.Feed, error) {
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
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	// Courtesy pause after each API call; the endpoint asks clients to
	// space their requests.
	if c.courtesyDelay > 0 {
		select {
		case <-time.After(c.courtesyDelay):
		case <-ctx.Done():
		}
	}
	return feed, nil
}

// queryURL joins category clauses with +OR+, which the API requires
// unencoded inside search_query.
func (c *Client) queryURL() string {
	clauses := make([]string, 0, len(c.opts.Categories))
	for _, cat := range c.opts.Categories {
		clauses = append(clauses, "cat:"+cat)
	}
	return fmt.Sprintf(
		"%s?search_query=%s&sortBy=submittedDate&sortOrder=descending&max_results=%d",
		c.opts.APIURL, strings.Join(clauses, "+OR+"), c.opts.MaxResults,
	)
}

func extractID(item *gofeed.Item) string {
	match := idExpr.FindStringSubmatch(item.GUID)
	if match != nil {
		return match[1]
	}
	// Keep the full entry id rather than dropping the paper silently.
	return item.GUID
}

func extractAuthors(item *gofeed.Item) []string {
	authors := make([]string, 0, len(item.Authors))
	for _, person := range item.Authors {
		if person != nil && person.Name != "" {
			authors = append(authors, person.Name)
		}
	}
	return authors
}

func extractLink(item *gofeed.Item, id string) string {
	if item.Link != "" {
		return item.Link
	}
	return "https://arxiv.org/abs/" + id
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
