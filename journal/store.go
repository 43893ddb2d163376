package journal

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	eventsFile   = "events.json"
	indexFile    = "event_index.json"
	sentKeysFile = "sent_keys.json"
	sentDaysFile = "stats_sent_days.json"
	snapshotDir  = "daily_finances"
)

// DefaultTTL bounds how long a key suppresses re-admission. A fact still
// scraped after the TTL is deliberately re-admitted rather than silently
// lost forever.
const DefaultTTL = 30 * 24 * time.Hour

// State owns the cross-run documents: the append-only event log, the
// identity index, and the two sent-marker sets. Everything is held in
// memory during a run and flushed as whole JSON documents.
type State struct {
	dir string
	ttl time.Duration

	Events   []Event
	index    map[string]Event
	sentKeys map[string]struct{}
	sentDays map[string]struct{}
}

// LoadState reads the persisted documents from dir. A missing or corrupt
// document falls back to its empty default (first-run semantics) with a log
// line; load never fails.
func LoadState(dir string, ttl time.Duration) *State {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &State{
		dir:      dir,
		ttl:      ttl,
		index:    make(map[string]Event),
		sentKeys: make(map[string]struct{}),
		sentDays: make(map[string]struct{}),
	}

	loadJSONDoc(filepath.Join(dir, eventsFile), &s.Events)

	var entries []Event
	loadJSONDoc(filepath.Join(dir, indexFile), &entries)
	for _, e := range entries {
		if e.Key == "" {
			e.Key = EventKey(e)
		}
		s.index[e.Key] = e
	}

	var keys []string
	loadJSONDoc(filepath.Join(dir, sentKeysFile), &keys)
	for _, k := range keys {
		s.sentKeys[k] = struct{}{}
	}

	var days []string
	loadJSONDoc(filepath.Join(dir, sentDaysFile), &days)
	for _, d := range days {
		s.sentDays[d] = struct{}{}
	}

	return s
}

func loadJSONDoc(path string, out any) {
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("state: read %s: %v (starting empty)", path, err)
		}
		return
	}
	if err := json.Unmarshal(b, out); err != nil {
		log.Printf("state: parse %s: %v (starting empty)", path, err)
	}
}

// Admit runs the identity check for one event. Absent key: accepted with
// FirstSeen=now. Present but expired (now-firstSeen > TTL): re-admitted with
// a fresh FirstSeen, and the key is cleared from the notification sent-marker
// set so the fact may be reported again. Present and live: rejected with no
// state change. Accepted events are appended to the log and upsert the index.
func (s *State) Admit(ev Event, now time.Time) (Event, bool) {
	ev.Key = EventKey(ev)

	existing, ok := s.index[ev.Key]
	if ok && now.Sub(existing.FirstSeen) <= s.ttl {
		return existing, false
	}

	ev.FirstSeen = now
	if ok {
		// Re-admission after expiry: the prior entry is superseded and the
		// fact becomes eligible for delivery again.
		delete(s.sentKeys, ev.Key)
	}
	s.index[ev.Key] = ev
	s.Events = append(s.Events, ev)
	return ev, true
}

// Seen reports whether key is currently held by the index, expired or not.
func (s *State) Seen(key string) bool {
	_, ok := s.index[key]
	return ok
}

func (s *State) WasNotified(key string) bool {
	_, ok := s.sentKeys[key]
	return ok
}

func (s *State) MarkNotified(key string) { s.sentKeys[key] = struct{}{} }

func (s *State) DayReported(day string) bool {
	_, ok := s.sentDays[day]
	return ok
}

func (s *State) MarkDayReported(day string) { s.sentDays[day] = struct{}{} }

// Save flushes every document. Each document is written atomically as a
// whole (temp file + rename) so a crash never corrupts persisted history.
// A save failure is fatal to the run: losing admission or delivery history
// risks duplicate or missed notifications.
func (s *State) Save() error {
	SortEvents(s.Events)
	if err := s.saveJSONDoc(eventsFile, s.Events); err != nil {
		return err
	}
	entries := make([]Event, 0, len(s.index))
	for _, e := range s.index {
		entries = append(entries, e)
	}
	SortEvents(entries)
	if err := s.saveJSONDoc(indexFile, entries); err != nil {
		return err
	}
	return s.SaveMarkers()
}

// SaveMarkers persists only the two sent-marker sets. The delivery path
// calls this after confirmed sends so an abort later in the run cannot roll
// back what was actually delivered.
func (s *State) SaveMarkers() error {
	if err := s.saveJSONDoc(sentKeysFile, sortedSetSlice(s.sentKeys)); err != nil {
		return err
	}
	return s.saveJSONDoc(sentDaysFile, sortedSetSlice(s.sentDays))
}

func (s *State) saveJSONDoc(name string, data any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("state: mkdir: %w", err)
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("state: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("state: replace %s: %w", name, err)
	}
	return nil
}

// WriteDailySnapshot persists one day's finance ledger as a write-once
// cache. An existing snapshot is never overwritten; the event log remains
// the source of truth.
func (s *State) WriteDailySnapshot(day string, ledger any) error {
	dir := filepath.Join(s.dir, snapshotDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("state: mkdir snapshots: %w", err)
	}
	path := filepath.Join(dir, day+".json")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	b, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal snapshot %s: %w", day, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("state: write snapshot %s: %w", day, err)
	}
	return os.Rename(tmp, path)
}

func sortedSetSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	// Deterministic document content keeps diffs of the persisted state
	// readable across runs.
	sort.Strings(out)
	return out
}
