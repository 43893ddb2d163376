package journal

import "testing"

func TestEventKeyAccentAndWhitespaceInsensitive(t *testing.T) {
	a := Event{
		Date:     "2026-02-07",
		Time:     "12:00",
		Empire:   "Théocratie Seelienne",
		Province: "Sylvada",
		City:     "Sylvada-Ville",
		Text:     "La ville récolte 12 500 Co d'impôts",
	}
	b := a
	b.Empire = "theocratie  seelienne"
	b.Text = "la ville recolte 12 500 co d'impots"

	if EventKey(a) != EventKey(b) {
		t.Fatalf("keys differ:\n%q\n%q", EventKey(a), EventKey(b))
	}

	c := a
	c.Text = "La ville récolte 13 000 Co d'impôts"
	if EventKey(a) == EventKey(c) {
		t.Fatal("distinct texts must not collide")
	}
}

func TestRawRecordValid(t *testing.T) {
	if (RawRecord{Date: "2026-02-07", Text: "x"}).Valid() == false {
		t.Fatal("expected valid")
	}
	if (RawRecord{Date: "", Text: "x"}).Valid() {
		t.Fatal("missing date must be invalid")
	}
	if (RawRecord{Date: "2026-02-07", Text: "  "}).Valid() {
		t.Fatal("blank text must be invalid")
	}
}

func TestRawRecordEventResolvesEmpire(t *testing.T) {
	w := NewWorld(nil, nil)
	ev := RawRecord{Date: "2026-02-07", Empire: "f4", Text: " hello  world "}.Event(w)
	if ev.Empire != "Théocratie Seelienne" {
		t.Fatalf("empire = %q", ev.Empire)
	}
	if ev.Text != "hello world" {
		t.Fatalf("text = %q", ev.Text)
	}

	ev = RawRecord{Date: "2026-02-07", Empire: "", Text: "x"}.Event(w)
	if ev.Empire != "Inconnu" {
		t.Fatalf("empty code should resolve to Inconnu, got %q", ev.Empire)
	}
	ev = RawRecord{Date: "2026-02-07", Empire: "f99", Text: "x"}.Event(w)
	if ev.Empire != "f99" {
		t.Fatalf("unknown code should pass through, got %q", ev.Empire)
	}
}

func TestSortEvents(t *testing.T) {
	events := []Event{
		{Date: "2026-02-08", Time: "09:00", Text: "c"},
		{Date: "2026-02-07", Time: "23:59", Text: "b"},
		{Date: "2026-02-07", Time: "", Text: "a"},
		{Date: "2026-02-07", Time: "23:59", Text: "b2"},
	}
	SortEvents(events)

	order := []string{"a", "b", "b2", "c"}
	for i, want := range order {
		if events[i].Text != want {
			t.Fatalf("position %d = %q, want %q", i, events[i].Text, want)
		}
	}
}
