package journal

import (
	"sort"
	"strings"
	"time"
)

// Event is one reported occurrence from the world journal. Fields are kept
// in display form; Key is the folded canonical identity.
type Event struct {
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Empire    string    `json:"empire"`
	Province  string    `json:"province,omitempty"`
	City      string    `json:"city,omitempty"`
	Text      string    `json:"text"`
	Key       string    `json:"key"`
	FirstSeen time.Time `json:"first_seen"`
}

// EventKey derives the canonical identity of an event: the six descriptive
// fields folded through NormalizeKey and joined with a pipe. Accent, case and
// whitespace-width variants of the same fact collide to the same key.
func EventKey(e Event) string {
	parts := []string{
		NormalizeKey(e.Date),
		NormalizeKey(e.Time),
		NormalizeKey(e.Empire),
		NormalizeKey(e.Province),
		NormalizeKey(e.City),
		NormalizeKey(e.Text),
	}
	return strings.Join(parts, "|")
}

// RawRecord is what the external scraper yields for one table row. Empire
// carries the faction code (f0..f10), not the display name.
type RawRecord struct {
	ID       string `json:"id,omitempty"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Empire   string `json:"empire"`
	Province string `json:"province"`
	City     string `json:"city"`
	Text     string `json:"text"`
}

// Event converts a raw record into a normalized Event with the empire code
// resolved against the world registry. Key and FirstSeen are left for the
// admission path to fill in.
func (r RawRecord) Event(w *World) Event {
	return Event{
		Date:     Normalize(r.Date),
		Time:     Normalize(r.Time),
		Empire:   Normalize(w.EmpireName(r.Empire)),
		Province: Normalize(r.Province),
		City:     Normalize(r.City),
		Text:     Normalize(r.Text),
	}
}

// Valid reports whether the record carries the minimum required fields.
// Invalid records are filtered before admission, never treated as errors.
func (r RawRecord) Valid() bool {
	return strings.TrimSpace(r.Date) != "" && strings.TrimSpace(r.Text) != ""
}

func eventInstant(e Event) string {
	t := e.Time
	if t == "" {
		t = "00:00"
	}
	return e.Date + " " + t
}

// SortEvents orders events ascending by date then clock time. Events without
// a clock time sort at the start of their day. The sort is stable so equal
// instants keep scrape order.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return eventInstant(events[i]) < eventInstant(events[j])
	})
}
