package journal

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Runner wires the pipeline: feed paging → admission → archive, then
// aggregation and delivery. One sequential batch per invocation; nothing in
// the core runs concurrently.
type Runner struct {
	cfg      *Config
	world    *World
	state    *State
	archive  *Archive
	notifier *Notifier
	feed     Feed

	now func() time.Time
}

type runStats struct {
	PagesFetched int
	RecordsSeen  int
	Invalid      int
	EventsNew    int
	delivery     deliveryStats
}

// NewRunner validates the configuration and opens every collaborator. The
// archive is optional: an empty path disables it.
func NewRunner(cfg *Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	world, err := LoadWorld(cfg.World.Path, cfg.World.Roles)
	if err != nil {
		return nil, err
	}

	var archive *Archive
	if cfg.Archive.Path != "" {
		archive, err = OpenArchive(cfg.Archive.Path)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
	}

	router := NewRouter(DefaultRules(), ChannelEvents)
	sender := NewWebhookClient(cfg.Delivery.Timeout.Std())

	return &Runner{
		cfg:      cfg,
		world:    world,
		state:    LoadState(cfg.State.Dir, cfg.State.TTL.Std()),
		archive:  archive,
		notifier: NewNotifier(world, router, cfg.Webhooks, sender, cfg.Limits, cfg.Delivery, cfg.Debug),
		feed:     NewHTTPFeed(cfg.Feed.BaseURL, cfg.Feed.Timeout.Std()),
		now:      time.Now,
	}, nil
}

func (r *Runner) Close() error {
	return r.archive.Close()
}

func (r *Runner) debugf(format string, args ...any) {
	if r == nil || !r.cfg.Debug {
		return
	}
	log.Printf(format, args...)
}

// RunOnce executes one full batch: page through the feed admitting new
// events, persist the log and index, write the per-day finance snapshots,
// then deliver statistics and event notifications. Sent markers are
// persisted even when delivery aborts, so the next run resumes without
// re-sending what was confirmed.
func (r *Runner) RunOnce(ctx context.Context) error {
	start := r.now()
	stats := &runStats{}

	if err := r.ingest(ctx, stats); err != nil {
		return err
	}

	// Persist admission results before any delivery: a crash during
	// delivery must not lose admitted events.
	if err := r.state.Save(); err != nil {
		return err
	}

	for day, ledger := range BuildDailyLedgers(r.state.Events, r.world) {
		if err := r.state.WriteDailySnapshot(day, ledger); err != nil {
			return err
		}
	}

	deliverErr := r.deliver(ctx, stats)
	if err := r.state.SaveMarkers(); err != nil {
		return err
	}

	r.debugf("run: pages=%d records=%d invalid=%d new=%d eventPages=%d statsPages=%d days=%d financeSkips=%d elapsed=%s",
		stats.PagesFetched, stats.RecordsSeen, stats.Invalid, stats.EventsNew,
		stats.delivery.EventPages, stats.delivery.StatsPages, stats.delivery.DaysReported,
		stats.delivery.FinanceSkips, time.Since(start))
	return deliverErr
}

// ingest drives the paging state machine: fetch → parse → merge, stopping
// on a missing next reference, the page cap, or a run of pages that
// contribute nothing new (a looping or stable-tailed pagination guard).
func (r *Runner) ingest(ctx context.Context, stats *runStats) error {
	ref := ""
	emptyPages := 0

	for stats.PagesFetched < r.cfg.Feed.MaxPages {
		page, err := r.feed.Fetch(ctx, ref)
		if err != nil {
			return fmt.Errorf("ingest page %d: %w", stats.PagesFetched+1, err)
		}
		stats.PagesFetched++

		newCount := 0
		for _, raw := range page.Records {
			stats.RecordsSeen++
			if !raw.Valid() {
				stats.Invalid++
				continue
			}
			ev, accepted := r.state.Admit(raw.Event(r.world), r.now())
			if !accepted {
				continue
			}
			newCount++
			stats.EventsNew++
			if r.archive != nil {
				if err := r.archive.Record(ev); err != nil {
					log.Printf("archive: record %s: %v", ev.Key, err)
				}
			}
		}
		r.debugf("ingest: page %d → +%d", stats.PagesFetched, newCount)

		if newCount == 0 {
			emptyPages++
			if emptyPages >= r.cfg.Feed.MaxEmptyPages {
				r.debugf("ingest: %d pages without new events, stopping", emptyPages)
				break
			}
		} else {
			emptyPages = 0
		}

		if page.Next == "" {
			break
		}
		ref = page.Next
	}
	return nil
}

func (r *Runner) deliver(ctx context.Context, stats *runStats) error {
	tables := BuildDailyTables(r.state.Events)
	if err := r.notifier.ReportStats(ctx, r.state, tables, &stats.delivery); err != nil {
		return err
	}
	return r.notifier.NotifyEvents(ctx, r.state, r.state.Events, &stats.delivery)
}
