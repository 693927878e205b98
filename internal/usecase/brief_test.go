package usecase

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"ResearchBriefing/internal/domain"
	"ResearchBriefing/internal/ports"
	"ResearchBriefing/internal/state"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func seedBuffer(t *testing.T, store ports.StateStore, date string) domain.Snapshot {
	t.Helper()
	blob, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	blob.DailyBuffer.AppendPaper(date, domain.Paper{
		ArxivID: "2501.00001", Title: "OpenAI scaling study",
		Published: testNow, Matched: []string{"OpenAI"},
	})
	if err := store.Save(blob); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	return blob.DailyBuffer.Peek(date)
}

func TestDelivererSendsAndClearsOnSuccess(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	date := state.DateKey(testNow)
	want := seedBuffer(t, store, date)

	briefer := &fakeBriefer{}
	deliverer := NewDeliverer(DelivererDeps{
		Briefer:   briefer,
		Store:     store,
		Retention: testRetention(),
		Logger:    testLogger(),
	})

	if err := deliverer.Run(context.Background(), testNow); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(briefer.sent) != 1 {
		t.Fatalf("expected 1 briefing sent, got %d", len(briefer.sent))
	}
	if !reflect.DeepEqual(briefer.sent[0], want) {
		t.Fatalf("sent snapshot differs from the peeked buffer:\n got %+v\nwant %+v", briefer.sent[0], want)
	}

	blob, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if snap := blob.DailyBuffer.Peek(date); snap.Total() != 0 {
		t.Fatalf("buffer should be empty after a confirmed send, got %d items", snap.Total())
	}
}

func TestDelivererFailureLeavesBufferIntact(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	date := state.DateKey(testNow)
	want := seedBuffer(t, store, date)

	deliverer := NewDeliverer(DelivererDeps{
		Briefer:   &fakeBriefer{err: errors.New("slack api chat.postMessage failed: channel_not_found")},
		Store:     store,
		Retention: testRetention(),
		Logger:    testLogger(),
	})

	if err := deliverer.Run(context.Background(), testNow); err == nil {
		t.Fatal("a failed send must surface to the caller")
	}

	blob, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	got := blob.DailyBuffer.Peek(date)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buffer must be identical after a failed send:\n got %+v\nwant %+v", got, want)
	}
}

func TestDelivererSendsZeroItemBriefing(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	briefer := &fakeBriefer{}
	deliverer := NewDeliverer(DelivererDeps{
		Briefer:   briefer,
		Store:     store,
		Retention: testRetention(),
		Logger:    testLogger(),
	})

	// Nothing buffered: the run still sends an all-empty digest rather
	// than skipping, preserving the daily cadence.
	if err := deliverer.Run(context.Background(), testNow); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(briefer.sent) != 1 {
		t.Fatalf("expected an empty briefing to be sent, got %d sends", len(briefer.sent))
	}
	if briefer.sent[0].Total() != 0 {
		t.Fatalf("expected all-empty sections, got %d items", briefer.sent[0].Total())
	}
	if briefer.sent[0].BlogPosts == nil || briefer.sent[0].ArxivPapers == nil || briefer.sent[0].LinkedPapers == nil {
		t.Fatal("empty snapshot sections must be non-nil")
	}
}

func TestDelivererIgnoresOtherDates(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	yesterday := state.DateKey(testNow.AddDate(0, 0, -1))
	seedBuffer(t, store, yesterday)

	briefer := &fakeBriefer{}
	deliverer := NewDeliverer(DelivererDeps{
		Briefer:   briefer,
		Store:     store,
		Retention: testRetention(),
		Logger:    testLogger(),
	})

	if err := deliverer.Run(context.Background(), testNow); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if briefer.sent[0].Total() != 0 {
		t.Fatalf("only the current date is delivered, got %d items", briefer.sent[0].Total())
	}
	blob, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if snap := blob.DailyBuffer.Peek(yesterday); snap.Total() != 1 {
		t.Fatal("other dates' entries must stay buffered until pruned")
	}
}

func TestCollectThenBriefEndToEnd(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	papers := &fakePapers{papers: []domain.Paper{
		{ArxivID: "2501.00001", Title: "OpenAI scaling study", Published: testNow},
		{ArxivID: "2501.00002", Title: "Unrelated graph theory", Published: testNow},
	}}

	collector := NewCollector(CollectorDeps{
		Blogs:     &fakeBlogs{},
		Papers:    papers,
		Store:     store,
		Matcher:   testMatcher(t),
		Retention: testRetention(),
		Logger:    testLogger(),
	})
	briefer := &fakeBriefer{}
	deliverer := NewDeliverer(DelivererDeps{
		Briefer:   briefer,
		Store:     store,
		Retention: testRetention(),
		Logger:    testLogger(),
	})

	ctx := context.Background()

	if err := collector.Run(ctx, testNow); err != nil {
		t.Fatalf("collect error: %v", err)
	}
	if err := collector.Run(ctx, testNow.Add(time.Hour)); err != nil {
		t.Fatalf("repeat collect error: %v", err)
	}

	if err := deliverer.Run(ctx, testNow.Add(2*time.Hour)); err != nil {
		t.Fatalf("brief error: %v", err)
	}
	if len(briefer.sent) != 1 {
		t.Fatalf("expected 1 briefing, got %d", len(briefer.sent))
	}
	first := briefer.sent[0]
	if len(first.ArxivPapers) != 1 || len(first.BlogPosts) != 0 || len(first.LinkedPapers) != 0 {
		t.Fatalf("expected 1 paper, 0 blogs, 0 linked; got %d/%d/%d",
			len(first.ArxivPapers), len(first.BlogPosts), len(first.LinkedPapers))
	}

	blob, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if snap := blob.DailyBuffer.Peek(state.DateKey(testNow)); snap.Total() != 0 {
		t.Fatalf("buffer should be empty after delivery, got %d items", snap.Total())
	}

	// A following brief run with nothing new sends all-empty sections.
	if err := deliverer.Run(ctx, testNow.Add(3*time.Hour)); err != nil {
		t.Fatalf("second brief error: %v", err)
	}
	if len(briefer.sent) != 2 || briefer.sent[1].Total() != 0 {
		t.Fatalf("expected a second, empty briefing; got %d sends", len(briefer.sent))
	}
}
