package journal

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"
)

// Notifier drives both delivery surfaces: the per-channel event stream and
// the per-day finance statistics report. It owns no state of its own; the
// sent-marker sets live in State and are persisted after confirmed sends.
type Notifier struct {
	world    *World
	router   *Router
	webhooks WebhooksConfig
	sender   WebhookSender
	limits   Limits

	eventPageDelay time.Duration
	statsPageDelay time.Duration
	excludeFinance bool
	debug          bool

	sleep func(ctx context.Context, d time.Duration) error
}

func NewNotifier(world *World, router *Router, webhooks WebhooksConfig, sender WebhookSender, limits Limits, delivery DeliveryConfig, debug bool) *Notifier {
	return &Notifier{
		world:          world,
		router:         router,
		webhooks:       webhooks,
		sender:         sender,
		limits:         limits,
		eventPageDelay: delivery.EventPageDelay.Std(),
		statsPageDelay: delivery.StatsPageDelay.Std(),
		excludeFinance: delivery.FinanceExcluded(),
		debug:          debug,
		sleep:          sleepCtx,
	}
}

func (n *Notifier) debugf(format string, args ...any) {
	if n == nil || !n.debug {
		return
	}
	log.Printf(format, args...)
}

type deliveryStats struct {
	EventPages   int
	StatsPages   int
	FinanceSkips int
	DaysReported int
	EventsMarked int
}

// NotifyEvents delivers every not-yet-reported event to its channel, grouped
// date → empire → channel. Keys are marked sent only after all pages of
// their group are confirmed, and the marker set is persisted group by group
// so an abort mid-run never rolls back confirmed deliveries.
func (n *Notifier) NotifyEvents(ctx context.Context, state *State, events []Event, stats *deliveryStats) error {
	var fresh []Event
	batch := make(map[string]struct{})
	for _, e := range events {
		if state.WasNotified(e.Key) {
			continue
		}
		// The log is append-only: a re-admitted fact appears twice under one
		// key and must be delivered once.
		if _, dup := batch[e.Key]; dup {
			continue
		}
		batch[e.Key] = struct{}{}
		if n.excludeFinance && ExtractFlow(e.Text) != nil {
			if stats != nil {
				stats.FinanceSkips++
			}
			continue
		}
		fresh = append(fresh, e)
	}
	if len(fresh) == 0 {
		return nil
	}
	SortEvents(fresh)

	type groupKey struct {
		date    string
		empire  string
		channel Channel
	}
	groups := make(map[groupKey][]Event)
	var order []groupKey
	for _, e := range fresh {
		ch := n.router.Route(e.Text)
		if !n.excludeFinance && ch == n.router.fallback && ExtractFlow(e.Text) != nil {
			// With the softer exclusion mode, financial facts still stay out
			// of the generic stream; they are aggregated instead.
			if stats != nil {
				stats.FinanceSkips++
			}
			continue
		}
		k := groupKey{date: e.Date, empire: e.Empire, channel: ch}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	for _, k := range order {
		evs := groups[k]
		url := n.webhooks.URL(k.channel)
		if url == "" {
			// Unconfigured channel: suppress rather than resurface the same
			// facts every run.
			n.debugf("notify: channel %s unconfigured, suppressing %d events", k.channel, len(evs))
			n.markGroup(state, evs, stats)
			continue
		}

		var mention string
		if !n.webhooks.IsSilent(k.channel) {
			mention = n.world.RoleMention(k.empire)
		}

		chunks := ChunkLines(EventLines(evs), n.limits.Description)
		for i, chunk := range chunks {
			title := fmt.Sprintf("📅 %s — %s", k.date, k.empire)
			if len(chunks) > 1 {
				title = fmt.Sprintf("%s (%d/%d)", title, i+1, len(chunks))
			}
			msg := Message{
				Content: mention,
				Embeds: []Embed{{
					Title:       truncate(title, n.limits.Title),
					Color:       n.world.EmpireColor(k.empire),
					Description: chunk,
					Footer:      &Footer{Text: fmt.Sprintf("journal-watch • %d événements", len(evs))},
				}},
			}
			if err := n.sender.Send(ctx, url, msg); err != nil {
				return fmt.Errorf("notify %s/%s: %w", k.date, k.channel, err)
			}
			if stats != nil {
				stats.EventPages++
			}
			if err := n.sleep(ctx, n.eventPageDelay); err != nil {
				return err
			}
		}

		n.markGroup(state, evs, stats)
		if err := state.SaveMarkers(); err != nil {
			return err
		}
		n.debugf("notify: %s %s → %s: %d events, %d pages", k.date, k.empire, k.channel, len(evs), len(chunks))
	}
	return nil
}

func (n *Notifier) markGroup(state *State, evs []Event, stats *deliveryStats) {
	for _, e := range evs {
		state.MarkNotified(e.Key)
		if stats != nil {
			stats.EventsMarked++
		}
	}
}

// ReportStats delivers the six ranking sections for every day that has not
// been reported yet. A day is marked and persisted as soon as its sections
// are confirmed; a crash mid-day re-sends that whole day (at-least-once).
func (n *Notifier) ReportStats(ctx context.Context, state *State, tables map[string]*DayTable, stats *deliveryStats) error {
	url := n.webhooks.URL(ChannelStats)

	days := make([]string, 0, len(tables))
	for day := range tables {
		if !state.DayReported(day) {
			days = append(days, day)
		}
	}
	sort.Strings(days)

	for _, day := range days {
		if url == "" {
			n.debugf("stats: channel unconfigured, suppressing day %s", day)
			state.MarkDayReported(day)
			continue
		}

		header := Message{Content: fmt.Sprintf("📅 **Rapport financier — %s**", day)}
		if err := n.sender.Send(ctx, url, header); err != nil {
			return fmt.Errorf("stats header %s: %w", day, err)
		}

		for _, section := range BuildDaySections(day, tables[day]) {
			if len(section.Fields) == 0 {
				n.debugf("stats: empty section skipped: %s", section.Title)
				continue
			}
			pages := PaginateFields(section.Fields, n.limits.FieldsPerEmbed)
			for i, fields := range pages {
				title := section.Title
				if len(pages) > 1 {
					title = fmt.Sprintf("%s (%d/%d)", title, i+1, len(pages))
				}
				msg := Message{Embeds: []Embed{{
					Title:  truncate(title, n.limits.Title),
					Color:  section.Color,
					Fields: fields,
				}}}
				if err := n.sender.Send(ctx, url, msg); err != nil {
					return fmt.Errorf("stats %s %q: %w", day, section.Title, err)
				}
				if stats != nil {
					stats.StatsPages++
				}
				if err := n.sleep(ctx, n.statsPageDelay); err != nil {
					return err
				}
			}
		}

		state.MarkDayReported(day)
		if err := state.SaveMarkers(); err != nil {
			return err
		}
		if stats != nil {
			stats.DaysReported++
		}
		n.debugf("stats: day %s reported", day)
	}
	return nil
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
