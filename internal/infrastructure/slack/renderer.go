package slack

import (
	"fmt"
	"strings"
	"time"

	"ResearchBriefing/internal/domain"
)

const (
	// maxItemsPerSection caps what the message shows; overflow is noted
	// in a context line.
	maxItemsPerSection = 5

	// previewLen is the summary preview length in runes.
	previewLen = 150

	// maxArxivLinks caps inline arXiv links per blog item.
	maxArxivLinks = 3
)

// Block is a Slack Block Kit block.
type Block struct {
	Type     string `json:"type"`
	Text     *Text  `json:"text,omitempty"`
	Elements []Text `json:"elements,omitempty"`
}

// Text is a Block Kit text object.
type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func section(markdown string) Block {
	return Block{Type: "section", Text: &Text{Type: "mrkdwn", Text: markdown}}
}

func divider() Block {
	return Block{Type: "divider"}
}

func contextLine(markdown string) Block {
	return Block{Type: "context", Elements: []Text{{Type: "mrkdwn", Text: markdown}}}
}

// Renderer formats a briefing snapshot as Block Kit blocks and as an
// equivalent Markdown document. Keyword labels pass through the display
// resolver here, at rendering time only.
type Renderer struct {
	categories []string
	fetchHours int
	display    func(label string) string
}

// NewRenderer wires the footer metadata and the label display resolver.
func NewRenderer(categories []string, fetchHours int, display func(string) string) *Renderer {
	if display == nil {
		display = func(label string) string { return label }
	}
	return &Renderer{categories: categories, fetchHours: fetchHours, display: display}
}

// Title is the plain-text fallback line for the briefing message.
func (r *Renderer) Title(day time.Time) string {
	return fmt.Sprintf("Daily AI Research Briefing — %s", day.Format("2006-01-02"))
}

// Blocks builds the Block Kit message for one briefing day. Empty
// sections are omitted; an all-empty snapshot still renders the header
// and the zero-count footer, a briefing run is never skipped.
func (r *Renderer) Blocks(day time.Time, snap domain.Snapshot) []Block {
	blocks := []Block{{
		Type: "header",
		Text: &Text{
			Type: "plain_text",
			Text: fmt.Sprintf("Daily AI Research Briefing — %s (%s)", day.Format("2006-01-02"), day.Format("MST")),
		},
	}}

	if len(snap.BlogPosts) > 0 {
		blocks = append(blocks, divider(),
			section(fmt.Sprintf(":fire:  *High Priority — Tech Blog Posts*  (%d)", len(snap.BlogPosts))))
		for _, post := range capBlog(snap.BlogPosts) {
			blocks = append(blocks, section(r.blogItem(post)))
		}
		if overflow := len(snap.BlogPosts) - maxItemsPerSection; overflow > 0 {
			blocks = append(blocks, contextLine(fmt.Sprintf("_+%d more blog posts_", overflow)))
		}
	}

	if len(snap.ArxivPapers) > 0 {
		blocks = append(blocks, divider(),
			section(fmt.Sprintf(":test_tube:  *Notable arXiv Papers*  (%d)", len(snap.ArxivPapers))))
		for _, paper := range capPapers(snap.ArxivPapers) {
			blocks = append(blocks, section(r.paperItem(paper)))
		}
		if overflow := len(snap.ArxivPapers) - maxItemsPerSection; overflow > 0 {
			blocks = append(blocks, contextLine(fmt.Sprintf("_+%d more arXiv papers_", overflow)))
		}
	}

	if len(snap.LinkedPapers) > 0 {
		blocks = append(blocks, divider(),
			section(fmt.Sprintf(":link:  *Blog ↔ arXiv Updates*  (%d)", len(snap.LinkedPapers))))
		for _, item := range capLinked(snap.LinkedPapers) {
			blocks = append(blocks, section(r.linkedItem(item)))
		}
		if overflow := len(snap.LinkedPapers) - maxItemsPerSection; overflow > 0 {
			blocks = append(blocks, contextLine(fmt.Sprintf("_+%d more linked papers_", overflow)))
		}
	}

	blocks = append(blocks, divider(), contextLine(r.footer(snap)))
	return blocks
}

func (r *Renderer) blogItem(post domain.BlogPost) string {
	published := ""
	if !post.Published.IsZero() {
		published = post.Published.Format("2006-01-02")
	}
	line := fmt.Sprintf("*<%s|%s>*\n_%s_ · %s", post.URL, post.Title, post.Source, published)

	if len(post.ArxivIDs) > 0 {
		ids := post.ArxivIDs
		if len(ids) > maxArxivLinks {
			ids = ids[:maxArxivLinks]
		}
		links := make([]string, 0, len(ids))
		for _, id := range ids {
			links = append(links, fmt.Sprintf("<https://arxiv.org/abs/%s|%s>", id, id))
		}
		line += " · arXiv: " + strings.Join(links, ", ")
	}

	if post.Summary != "" {
		line += "\n" + truncate(post.Summary, previewLen)
	}
	return line
}

func (r *Renderer) paperItem(paper domain.Paper) string {
	line := fmt.Sprintf("*<%s|%s>*\n`%s` · %s",
		paper.Link, paper.Title, paper.ArxivID, strings.Join(r.displayAll(paper.Matched), ", "))
	if paper.Summary != "" {
		line += "\n" + truncate(paper.Summary, previewLen)
	}
	return line
}

func (r *Renderer) linkedItem(item domain.LinkedPaper) string {
	blogRef := item.Blog.BlogSource
	if item.Blog.BlogURL != "" && item.Blog.BlogTitle != "" {
		blogRef = fmt.Sprintf("<%s|%s>", item.Blog.BlogURL, item.Blog.BlogTitle)
	}
	line := fmt.Sprintf("*<%s|%s>*\n`%s` · %s (%s)",
		item.Paper.Link, item.Paper.Title, item.Paper.ArxivID, blogRef, item.Blog.BlogSource)
	if item.Paper.Summary != "" {
		line += "\n" + truncate(item.Paper.Summary, previewLen)
	}
	return line
}

func (r *Renderer) footer(snap domain.Snapshot) string {
	return fmt.Sprintf(":bar_chart:  %s · Past %dh · %d blogs, %d arXiv, %d linked · %d total",
		strings.Join(r.categories, ", "), r.fetchHours,
		len(snap.BlogPosts), len(snap.ArxivPapers), len(snap.LinkedPapers), snap.Total())
}

// Markdown builds the document uploaded alongside the message.
func (r *Renderer) Markdown(day time.Time, snap domain.Snapshot) string {
	var b strings.Builder
	write := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	write("# Daily AI Research Briefing — %s (%s)", day.Format("2006-01-02"), day.Format("MST"))
	write("")

	if len(snap.BlogPosts) > 0 {
		write("## High Priority — Tech Blog Posts (%d)", len(snap.BlogPosts))
		write("")
		for _, post := range capBlog(snap.BlogPosts) {
			write("- **[%s](%s)**", post.Title, post.URL)
			published := ""
			if !post.Published.IsZero() {
				published = post.Published.Format("2006-01-02")
			}
			write("  %s · %s", post.Source, published)
			if len(post.ArxivIDs) > 0 {
				ids := post.ArxivIDs
				if len(ids) > maxArxivLinks {
					ids = ids[:maxArxivLinks]
				}
				links := make([]string, 0, len(ids))
				for _, id := range ids {
					links = append(links, fmt.Sprintf("[%s](https://arxiv.org/abs/%s)", id, id))
				}
				write("  arXiv: %s", strings.Join(links, ", "))
			}
			if post.Summary != "" {
				write("  %s", truncate(post.Summary, previewLen))
			}
			write("")
		}
		if overflow := len(snap.BlogPosts) - maxItemsPerSection; overflow > 0 {
			write("_+%d more blog posts_", overflow)
			write("")
		}
	}

	if len(snap.ArxivPapers) > 0 {
		write("## Notable arXiv Papers (%d)", len(snap.ArxivPapers))
		write("")
		for _, paper := range capPapers(snap.ArxivPapers) {
			write("- **[%s](%s)** ([PDF](https://arxiv.org/pdf/%s))", paper.Title, paper.Link, paper.ArxivID)
			write("  `%s` · %s", paper.ArxivID, strings.Join(r.displayAll(paper.Matched), ", "))
			if paper.Summary != "" {
				write("  %s", truncate(paper.Summary, previewLen))
			}
			write("")
		}
		if overflow := len(snap.ArxivPapers) - maxItemsPerSection; overflow > 0 {
			write("_+%d more arXiv papers_", overflow)
			write("")
		}
	}

	if len(snap.LinkedPapers) > 0 {
		write("## Blog ↔ arXiv Updates (%d)", len(snap.LinkedPapers))
		write("")
		for _, item := range capLinked(snap.LinkedPapers) {
			blogRef := item.Blog.BlogSource
			if item.Blog.BlogURL != "" && item.Blog.BlogTitle != "" {
				blogRef = fmt.Sprintf("[%s](%s)", item.Blog.BlogTitle, item.Blog.BlogURL)
			}
			write("- **[%s](%s)** ([PDF](https://arxiv.org/pdf/%s))", item.Paper.Title, item.Paper.Link, item.Paper.ArxivID)
			write("  `%s` · %s (%s)", item.Paper.ArxivID, blogRef, item.Blog.BlogSource)
			if item.Paper.Summary != "" {
				write("  %s", truncate(item.Paper.Summary, previewLen))
			}
			write("")
		}
		if overflow := len(snap.LinkedPapers) - maxItemsPerSection; overflow > 0 {
			write("_+%d more linked papers_", overflow)
			write("")
		}
	}

	write("---")
	write("%s · Past %dh · %d blogs, %d arXiv, %d linked · %d total",
		strings.Join(r.categories, ", "), r.fetchHours,
		len(snap.BlogPosts), len(snap.ArxivPapers), len(snap.LinkedPapers), snap.Total())

	return b.String()
}

func (r *Renderer) displayAll(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		out = append(out, r.display(label))
	}
	return out
}

func capBlog(posts []domain.BlogPost) []domain.BlogPost {
	if len(posts) > maxItemsPerSection {
		return posts[:maxItemsPerSection]
	}
	return posts
}

func capPapers(papers []domain.Paper) []domain.Paper {
	if len(papers) > maxItemsPerSection {
		return papers[:maxItemsPerSection]
	}
	return papers
}

func capLinked(items []domain.LinkedPaper) []domain.LinkedPaper {
	if len(items) > maxItemsPerSection {
		return items[:maxItemsPerSection]
	}
	return items
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
