package state

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"ResearchBriefing/internal/domain"
)

func TestFileStoreLoadAbsentFile(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"), nil)

	blob, err := store.Load()
	if err != nil {
		t.Fatalf("Load of absent file should yield the empty state: %v", err)
	}
	if blob.NotifiedIDs == nil || blob.NotifiedBlogURLs == nil ||
		blob.BlogArxivMap == nil || blob.DailyBuffer == nil {
		t.Fatal("empty state must have all maps initialized")
	}
}

func TestFileStoreLoadMalformedFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"notified_ids": [truncated`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewFileStore(path, nil)
	if _, err := store.Load(); err == nil {
		t.Fatal("malformed state must fail loudly, not reset silently")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	date := "2025-03-10"

	blob := NewBlob()
	blob.NotifiedIDs.MarkSeen("2501.00001", now)
	blob.NotifiedBlogURLs.MarkSeen("https://blog.example/a", now)
	blob.BlogArxivMap.Link("2501.00002", domain.BlogRef{
		BlogURL:    "https://blog.example/a",
		BlogTitle:  "Announcing",
		BlogSource: "OpenAI",
		AddedAt:    now,
	})
	blob.DailyBuffer.AppendBlog(date, domain.BlogPost{
		Title:     "Announcing",
		URL:       "https://blog.example/a",
		Source:    "OpenAI",
		Published: now,
		ArxivIDs:  []string{"2501.00002"},
	})
	blob.DailyBuffer.AppendPaper(date, domain.Paper{
		ArxivID:   "2501.00001",
		Title:     "Paper",
		Authors:   []string{"Alice"},
		Published: now,
		Matched:   []string{"OpenAI"},
	})

	want := blob.DailyBuffer.Peek(date)

	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"), nil)
	if err := store.Save(blob); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if got := loaded.DailyBuffer.Peek(date); !reflect.DeepEqual(got, want) {
		t.Fatalf("round-trip snapshot mismatch:\n got %+v\nwant %+v", got, want)
	}
	if !loaded.NotifiedIDs.Known("2501.00001") {
		t.Fatal("dedup record lost across round trip")
	}
	if ref, ok := loaded.BlogArxivMap.Lookup("2501.00002"); !ok || ref.BlogTitle != "Announcing" {
		t.Fatalf("cross-reference lost across round trip: %+v", ref)
	}
}

func TestFileStoreSaveReplacesAtomically(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	store := NewFileStore(path, nil)

	first := NewBlob()
	first.NotifiedIDs.MarkSeen("one", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	if err := store.Save(first); err != nil {
		t.Fatalf("first Save error: %v", err)
	}

	second := NewBlob()
	second.NotifiedIDs.MarkSeen("two", time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC))
	if err := store.Save(second); err != nil {
		t.Fatalf("second Save error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.NotifiedIDs.Known("one") || !loaded.NotifiedIDs.Known("two") {
		t.Fatalf("expected the second blob to fully replace the first: %+v", loaded.NotifiedIDs)
	}

	// No temp files may linger after a successful rename.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".state-") {
			t.Fatalf("leftover temp file: %s", entry.Name())
		}
	}
}

func TestBlobPruneAppliesAllWindows(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	retention := Retention{
		PaperMaxAge: 72 * time.Hour,
		BlogMaxAge:  30 * 24 * time.Hour,
		BufferDays:  3,
	}

	blob := NewBlob()
	blob.NotifiedIDs.MarkSeen("stale-paper", now.Add(-80*time.Hour))
	blob.NotifiedIDs.MarkSeen("fresh-paper", now.Add(-time.Hour))
	blob.NotifiedBlogURLs.MarkSeen("stale-url", now.Add(-31*24*time.Hour))
	blob.BlogArxivMap.Link("stale-ref", domain.BlogRef{AddedAt: now.Add(-31 * 24 * time.Hour)})
	blob.DailyBuffer.AppendBlog("2025-03-01", domain.BlogPost{URL: "https://blog.example/old"})

	blob.Prune(now, retention)

	if blob.NotifiedIDs.Known("stale-paper") {
		t.Fatal("stale paper id should be pruned")
	}
	if !blob.NotifiedIDs.Known("fresh-paper") {
		t.Fatal("fresh paper id should survive")
	}
	if blob.NotifiedBlogURLs.Known("stale-url") {
		t.Fatal("stale blog url should be pruned")
	}
	if _, ok := blob.BlogArxivMap.Lookup("stale-ref"); ok {
		t.Fatal("stale cross-reference should be pruned")
	}
	if _, ok := blob.DailyBuffer["2025-03-01"]; ok {
		t.Fatal("stale buffer entry should be pruned")
	}
}
