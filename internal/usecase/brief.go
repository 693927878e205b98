package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ResearchBriefing/internal/ports"
	"ResearchBriefing/internal/state"
)

// DelivererDeps wires the delivery coordinator.
type DelivererDeps struct {
	Briefer   ports.Briefer
	Store     ports.StateStore
	Retention state.Retention
	Location  *time.Location
	Logger    *slog.Logger
}

// Deliverer runs the peek/send/acknowledge protocol for one briefing day.
//
// The buffer entry for the day is cleared if and only if the briefer
// confirmed the send of the full snapshot taken at the peek. On any
// failure nothing is persisted, so the next scheduled run re-attempts
// with the same data plus whatever was collected in between. A false
// success from the transport can therefore produce a duplicate briefing,
// never a silently lost one.
type Deliverer struct {
	briefer   ports.Briefer
	store     ports.StateStore
	retention state.Retention
	location  *time.Location
	logger    *slog.Logger
}

// NewDeliverer constructs the deliver use case.
func NewDeliverer(deps DelivererDeps) *Deliverer {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Deliverer{
		briefer:   deps.Briefer,
		store:     deps.Store,
		retention: deps.Retention,
		location:  loc,
		logger:    deps.Logger,
	}
}

// Run executes one deliver invocation. An empty buffer still sends a
// zero-item briefing so the consumer sees a predictable daily cadence.
func (d *Deliverer) Run(ctx context.Context, now time.Time) error {
	blob, err := d.store.Load()
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	day := now.In(d.location)
	blob.Prune(day, d.retention)
	date := state.DateKey(day)

	snap := blob.DailyBuffer.Peek(date)
	d.logger.Info("building briefing",
		"date", date,
		"blogs", len(snap.BlogPosts),
		"arxiv", len(snap.ArxivPapers),
		"linked", len(snap.LinkedPapers),
	)

	if err := d.briefer.SendBriefing(ctx, day, snap); err != nil {
		// Buffer untouched, nothing saved; the next run retries.
		return fmt.Errorf("send briefing: %w", err)
	}

	blob.DailyBuffer.Clear(date)
	if err := d.store.Save(blob); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	d.logger.Info("brief done, state saved", "date", date)
	return nil
}
