package state

import "time"

// Retention bundles the age limits applied by Blob.Prune.
type Retention struct {
	// PaperMaxAge covers notified arXiv ids: the fetch window plus a
	// 24h margin so ids cannot rotate out while still fetchable.
	PaperMaxAge time.Duration
	// BlogMaxAge covers notified blog URLs and cross-references.
	BlogMaxAge time.Duration
	// BufferDays bounds daily buffer entries in calendar days.
	BufferDays int
}

// Blob is the root aggregate persisted between invocations. It is the
// sole durable contract: loaded fresh at process start and saved before
// exit, never shared in memory across runs.
type Blob struct {
	NotifiedIDs      DedupStore  `json:"notified_ids"`
	NotifiedBlogURLs DedupStore  `json:"notified_blog_urls"`
	BlogArxivMap     CrossRefMap `json:"blog_arxiv_map"`
	DailyBuffer      DailyBuffer `json:"daily_buffer"`
}

// NewBlob returns the empty first-run state.
func NewBlob() *Blob {
	blob := &Blob{}
	blob.normalize()
	return blob
}

// normalize fills maps a JSON decode may have left nil.
func (b *Blob) normalize() {
	if b.NotifiedIDs == nil {
		b.NotifiedIDs = DedupStore{}
	}
	if b.NotifiedBlogURLs == nil {
		b.NotifiedBlogURLs = DedupStore{}
	}
	if b.BlogArxivMap == nil {
		b.BlogArxivMap = CrossRefMap{}
	}
	if b.DailyBuffer == nil {
		b.DailyBuffer = DailyBuffer{}
	}
}

// Prune applies every retention window. It must run before dedup checks
// in a cycle so rotated-out ids can be collected again instead of the
// stores growing without bound.
func (b *Blob) Prune(now time.Time, r Retention) {
	b.NotifiedIDs.Prune(now, r.PaperMaxAge)
	b.NotifiedBlogURLs.Prune(now, r.BlogMaxAge)
	b.BlogArxivMap.Prune(now, r.BlogMaxAge)
	b.DailyBuffer.Prune(now, r.BufferDays)
}
