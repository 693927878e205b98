package state

import (
	"time"

	"ResearchBriefing/internal/domain"
)

// CrossRefMap links arXiv paper ids to the blog post that mentioned them.
// At most one reference exists per paper id; a later link overwrites an
// earlier one.
type CrossRefMap map[string]domain.BlogRef

// Link sets or replaces the reference for paperID.
func (m CrossRefMap) Link(paperID string, ref domain.BlogRef) {
	m[paperID] = ref
}

// Lookup returns the blog reference for paperID, if any.
func (m CrossRefMap) Lookup(paperID string) (domain.BlogRef, bool) {
	ref, ok := m[paperID]
	return ref, ok
}

// Unlink removes the reference once a linked paper has been buffered, so
// the same pairing is not surfaced twice.
func (m CrossRefMap) Unlink(paperID string) {
	delete(m, paperID)
}

// Prune removes references older than maxAge relative to now.
func (m CrossRefMap) Prune(now time.Time, maxAge time.Duration) {
	cutoff := now.Add(-maxAge)
	for paperID, ref := range m {
		if ref.AddedAt.Before(cutoff) {
			delete(m, paperID)
		}
	}
}
