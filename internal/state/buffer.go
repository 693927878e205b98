package state

import (
	"time"

	"ResearchBriefing/internal/domain"
)

const dateLayout = "2006-01-02"

// DateKey formats t as the calendar-day key used by the daily buffer.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// DayEntry accumulates the items collected for one briefing day.
type DayEntry struct {
	BlogPosts    []domain.BlogPost    `json:"blog_posts"`
	ArxivPapers  []domain.Paper       `json:"arxiv_papers"`
	LinkedPapers []domain.LinkedPaper `json:"linked_papers"`
}

// DailyBuffer keys not-yet-delivered items by briefing date. Entries are
// mutated only by appends during collection and cleared in full by a
// successful delivery acknowledgment.
type DailyBuffer map[string]*DayEntry

func (b DailyBuffer) day(date string) *DayEntry {
	entry, ok := b[date]
	if !ok {
		entry = &DayEntry{}
		b[date] = entry
	}
	return entry
}

// AppendBlog adds a blog post to the date's entry, skipping URLs already
// buffered for that day.
func (b DailyBuffer) AppendBlog(date string, post domain.BlogPost) {
	entry := b.day(date)
	for _, existing := range entry.BlogPosts {
		if existing.URL == post.URL {
			return
		}
	}
	entry.BlogPosts = append(entry.BlogPosts, post)
}

// AppendPaper adds a keyword-matched paper to the date's entry, skipping
// arXiv ids already buffered for that day.
func (b DailyBuffer) AppendPaper(date string, paper domain.Paper) {
	entry := b.day(date)
	for _, existing := range entry.ArxivPapers {
		if existing.ArxivID == paper.ArxivID {
			return
		}
	}
	entry.ArxivPapers = append(entry.ArxivPapers, paper)
}

// AppendLinked adds a blog-linked paper to the date's entry, skipping
// arXiv ids already buffered for that day.
func (b DailyBuffer) AppendLinked(date string, item domain.LinkedPaper) {
	entry := b.day(date)
	for _, existing := range entry.LinkedPapers {
		if existing.Paper.ArxivID == item.Paper.ArxivID {
			return
		}
	}
	entry.LinkedPapers = append(entry.LinkedPapers, item)
}

// Peek returns a copy of the date's sequences in insertion order. The
// copy is deep down to the per-item slices, so neither later buffer
// mutations nor edits to a handed-out snapshot can reach the other side.
// An absent date yields empty, non-nil sequences.
func (b DailyBuffer) Peek(date string) domain.Snapshot {
	snap := domain.Snapshot{
		BlogPosts:    []domain.BlogPost{},
		ArxivPapers:  []domain.Paper{},
		LinkedPapers: []domain.LinkedPaper{},
	}
	entry, ok := b[date]
	if !ok {
		return snap
	}
	for _, post := range entry.BlogPosts {
		post.ArxivIDs = copyStrings(post.ArxivIDs)
		snap.BlogPosts = append(snap.BlogPosts, post)
	}
	for _, paper := range entry.ArxivPapers {
		snap.ArxivPapers = append(snap.ArxivPapers, copyPaper(paper))
	}
	for _, item := range entry.LinkedPapers {
		item.Paper = copyPaper(item.Paper)
		snap.LinkedPapers = append(snap.LinkedPapers, item)
	}
	return snap
}

func copyPaper(p domain.Paper) domain.Paper {
	p.Authors = copyStrings(p.Authors)
	p.Categories = copyStrings(p.Categories)
	p.Matched = copyStrings(p.Matched)
	return p
}

// copyStrings preserves nil so snapshots compare equal across JSON
// round trips.
func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Clear removes the date's entry entirely.
func (b DailyBuffer) Clear(date string) {
	delete(b, date)
}

// Prune drops entries older than retentionDays, computed as a calendar-day
// difference so retention does not depend on time of day. Entries age out
// regardless of delivery status.
func (b DailyBuffer) Prune(now time.Time, retentionDays int) {
	cutoff := DateKey(now.AddDate(0, 0, -retentionDays))
	for date := range b {
		if date < cutoff {
			delete(b, date)
		}
	}
}
