package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testEvent(text string) Event {
	return Event{
		Date:   "2026-02-07",
		Time:   "12:00",
		Empire: "Empire Brun",
		Text:   text,
	}
}

func TestAdmitIdempotentWithinTTL(t *testing.T) {
	s := LoadState(t.TempDir(), DefaultTTL)
	now := time.Now()

	first, accepted := s.Admit(testEvent("un événement"), now)
	if !accepted {
		t.Fatal("first admission must accept")
	}
	if first.Key == "" || !first.FirstSeen.Equal(now) {
		t.Fatalf("record = %+v", first)
	}

	_, accepted = s.Admit(testEvent("un événement"), now.Add(29*24*time.Hour))
	if accepted {
		t.Fatal("duplicate within TTL must be rejected")
	}

	// Surface-formatting variants are the same fact.
	variant := testEvent("UN  ÉVÉNEMENT")
	if _, accepted = s.Admit(variant, now.Add(time.Hour)); accepted {
		t.Fatal("folded variant must be rejected as duplicate")
	}

	if len(s.Events) != 1 {
		t.Fatalf("log length = %d, want 1", len(s.Events))
	}
}

func TestAdmitReadmissionAfterTTL(t *testing.T) {
	s := LoadState(t.TempDir(), DefaultTTL)
	now := time.Now()

	first, _ := s.Admit(testEvent("fait persistant"), now)
	s.MarkNotified(first.Key)

	later := now.Add(31 * 24 * time.Hour)
	re, accepted := s.Admit(testEvent("fait persistant"), later)
	if !accepted {
		t.Fatal("expired entry must be re-admitted")
	}
	if !re.FirstSeen.Equal(later) {
		t.Fatalf("firstSeen = %v, want fresh %v", re.FirstSeen, later)
	}
	if s.WasNotified(re.Key) {
		t.Fatal("re-admission must clear the notification marker")
	}
	// Log is append-only: the superseded fact remains.
	if len(s.Events) != 2 {
		t.Fatalf("log length = %d, want 2", len(s.Events))
	}
}

func TestStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := LoadState(dir, DefaultTTL)
	now := time.Now().UTC().Truncate(time.Second)

	ev, _ := s.Admit(testEvent("persisté"), now)
	s.MarkNotified(ev.Key)
	s.MarkDayReported("2026-02-07")
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	// No leftover temp files from atomic writes.
	matches, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}

	reloaded := LoadState(dir, DefaultTTL)
	if len(reloaded.Events) != 1 || reloaded.Events[0].Key != ev.Key {
		t.Fatalf("events = %+v", reloaded.Events)
	}
	if !reloaded.WasNotified(ev.Key) {
		t.Fatal("sent key lost")
	}
	if !reloaded.DayReported("2026-02-07") {
		t.Fatal("sent day lost")
	}
	if _, accepted := reloaded.Admit(testEvent("persisté"), now.Add(time.Hour)); accepted {
		t.Fatal("reloaded index must reject the duplicate")
	}
}

func TestLoadStateCorruptDocumentFallsBackEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, eventsFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := LoadState(dir, DefaultTTL)
	if len(s.Events) != 0 {
		t.Fatalf("expected empty log, got %d events", len(s.Events))
	}
}

func TestWriteDailySnapshotWriteOnce(t *testing.T) {
	dir := t.TempDir()
	s := LoadState(dir, DefaultTTL)

	if err := s.WriteDailySnapshot("2026-02-07", map[string]int{"v": 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteDailySnapshot("2026-02-07", map[string]int{"v": 2}); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(filepath.Join(dir, snapshotDir, "2026-02-07.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]int
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got["v"] != 1 {
		t.Fatalf("snapshot overwritten: %v", got)
	}
}
