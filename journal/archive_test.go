package journal

import (
	"path/filepath"
	"testing"
	"time"
)

func TestArchiveRecordDuplicateKeyIsNoOp(t *testing.T) {
	a, err := OpenArchive(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	ev := testEvent("un fait archivé")
	ev.Key = EventKey(ev)
	ev.FirstSeen = time.Now().UTC()

	if err := a.Record(ev); err != nil {
		t.Fatal(err)
	}
	// Same key again: silent no-op, not a failure.
	if err := a.Record(ev); err != nil {
		t.Fatal(err)
	}

	n, err := a.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}

	other := testEvent("un autre fait")
	other.Key = EventKey(other)
	if err := a.Record(other); err != nil {
		t.Fatal(err)
	}
	if n, _ = a.Count(); n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}
