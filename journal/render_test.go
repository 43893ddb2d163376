package journal

import (
	"strings"
	"testing"
)

func TestChunkLinesRoundTrip(t *testing.T) {
	lines := []string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
	}
	chunks := ChunkLines(lines, 90)

	if len(chunks) < 2 {
		t.Fatalf("expected ≥2 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > 90 {
			t.Fatalf("chunk %d exceeds limit: %d", i, len([]rune(c)))
		}
	}
	if strings.Join(chunks, "\n") != strings.Join(lines, "\n") {
		t.Fatal("concatenated chunks must reproduce the input")
	}
}

func TestChunkLinesHardSplitsOversizedLine(t *testing.T) {
	long := strings.Repeat("x", 250)
	chunks := ChunkLines([]string{"short", long}, 100)

	var rejoined strings.Builder
	for _, c := range chunks {
		if len([]rune(c)) > 100 {
			t.Fatalf("chunk exceeds limit: %d", len([]rune(c)))
		}
		rejoined.WriteString(c)
	}
	if !strings.Contains(rejoined.String(), "short") {
		t.Fatal("short line lost")
	}
	if strings.Count(rejoined.String(), "x") != 250 {
		t.Fatal("hard split dropped content")
	}
}

func TestPaginateFieldsRepeatsHeader(t *testing.T) {
	fields := []Field{{Name: "🏰 Empire Brun", Value: "​", Inline: false}}
	for i := 0; i < 30; i++ {
		fields = append(fields, Field{Name: "entry", Value: "v", Inline: true})
	}
	pages := PaginateFields(fields, 25)

	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if len(pages[0]) != 25 {
		t.Fatalf("first page = %d fields", len(pages[0]))
	}
	// The orphaned group gets its empire banner back.
	if pages[1][0].Name != "🏰 Empire Brun" {
		t.Fatalf("second page starts with %q", pages[1][0].Name)
	}
}

func TestPaginateFieldsNoHeaderDuplicationAtBoundary(t *testing.T) {
	var fields []Field
	for i := 0; i < 25; i++ {
		fields = append(fields, Field{Name: "entry", Value: "v", Inline: true})
	}
	fields[0] = Field{Name: "🏰 A", Value: "​", Inline: false}
	// The next page begins with a fresh header; the previous one must not be
	// repeated in front of it.
	fields = append(fields, Field{Name: "🏰 B", Value: "​", Inline: false})
	fields = append(fields, Field{Name: "entry", Value: "v", Inline: true})

	pages := PaginateFields(fields, 25)
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if pages[1][0].Name != "🏰 B" {
		t.Fatalf("second page starts with %q, want the new header", pages[1][0].Name)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1 000",
		12500:   "12 500",
		1234567: "1 234 567",
	}
	for n, want := range cases {
		if got := formatAmount(n); got != want {
			t.Errorf("formatAmount(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestRankingFieldsShape(t *testing.T) {
	ranked := []Ranked{
		{Rank: 1, Name: "Empire Brun", Value: 200, Currency: "Co"},
		{Rank: 2, Name: "Khanat Elmérien", Value: 100, Currency: "MØ"},
	}
	fields := RankingFields(ranked, "💰 Revenus", 10)

	if len(fields) != 2 {
		t.Fatalf("fields = %d", len(fields))
	}
	if fields[0].Name != "1. 🏰 Empire Brun" {
		t.Fatalf("name = %q", fields[0].Name)
	}
	if !strings.Contains(fields[0].Value, "**200 Co**") {
		t.Fatalf("value = %q", fields[0].Value)
	}
	if !strings.Contains(fields[0].Value, "🥇") {
		t.Fatal("top rank must carry a medal")
	}
	if !fields[0].Inline {
		t.Fatal("ranking fields are inline")
	}
}

func TestBuildDaySectionsSkeletonAndEmptySections(t *testing.T) {
	table := &DayTable{
		Empire: []FlowRow{{Empire: "Empire Brun", Income: 100, Currency: "Co"}},
	}
	sections := BuildDaySections("2026-02-07", table)

	if len(sections) != 6 {
		t.Fatalf("sections = %d, want 6", len(sections))
	}
	if len(sections[0].Fields) == 0 {
		t.Fatal("empire income section must have fields")
	}
	// No expenses and no province/city rows: the other sections are empty.
	if len(sections[1].Fields) != 0 || len(sections[2].Fields) != 0 {
		t.Fatal("expected empty sections for missing data")
	}
	if !strings.Contains(sections[0].Title, "2026-02-07") {
		t.Fatalf("title = %q", sections[0].Title)
	}
}

func TestEventLines(t *testing.T) {
	lines := EventLines([]Event{
		{Time: "09:30", Text: "un discours"},
		{Time: "", Text: "sans heure"},
	})
	if lines[0] != "**09:30** — un discours" {
		t.Fatalf("line = %q", lines[0])
	}
	if lines[1] != "**--:--** — sans heure" {
		t.Fatalf("line = %q", lines[1])
	}
}
