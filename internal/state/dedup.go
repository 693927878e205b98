package state

import "time"

// DedupStore maps an item key (arXiv id or blog URL) to the time it was
// first seen. Keys present in the store are never processed as new again
// until pruned by age.
type DedupStore map[string]time.Time

// Known reports whether key has been seen before.
func (s DedupStore) Known(key string) bool {
	_, ok := s[key]
	return ok
}

// MarkSeen records key with the given timestamp. Marking an already-known
// key is a no-op: first-seen semantics are kept.
func (s DedupStore) MarkSeen(key string, ts time.Time) {
	if _, ok := s[key]; ok {
		return
	}
	s[key] = ts
}

// Prune removes every record older than maxAge relative to now.
func (s DedupStore) Prune(now time.Time, maxAge time.Duration) {
	cutoff := now.Add(-maxAge)
	for key, ts := range s {
		if ts.Before(cutoff) {
			delete(s, key)
		}
	}
}
