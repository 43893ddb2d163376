package journal

import (
	"fmt"
	"strings"
)

// Limits are the sink's documented content ceilings. They are configuration
// constants, not protocol knowledge scattered through the renderer.
type Limits struct {
	Description      int
	FieldsPerEmbed   int
	Title            int
	EmbedsPerMessage int
}

func DefaultLimits() Limits {
	return Limits{
		Description:      4096,
		FieldsPerEmbed:   25,
		Title:            256,
		EmbedsPerMessage: 10,
	}
}

// Message is one unit submitted to the notification sink.
type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Footer struct {
	Text string `json:"text"`
}

// splitLongLine hard-splits a single over-long line at the character
// boundary. Content is never dropped to satisfy a size ceiling.
func splitLongLine(line string, max int) []string {
	var parts []string
	rest := []rune(line)
	for len(rest) > max {
		parts = append(parts, string(rest[:max]))
		rest = rest[max:]
	}
	if len(rest) > 0 {
		parts = append(parts, string(rest))
	}
	return parts
}

// ChunkLines greedily packs lines into pages of at most max characters,
// joined by newline. Joining every page with the same separator reproduces
// the input exactly.
func ChunkLines(lines []string, max int) []string {
	var chunks []string
	var current string

	for _, line := range lines {
		if len([]rune(line)) > max {
			if current != "" {
				chunks = append(chunks, current)
				current = ""
			}
			chunks = append(chunks, splitLongLine(line, max)...)
			continue
		}
		if current == "" {
			current = line
			continue
		}
		if len([]rune(current))+1+len([]rune(line)) > max {
			chunks = append(chunks, current)
			current = line
		} else {
			current += "\n" + line
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// headerField marks a non-inline section header (the per-empire banner rows
// in grouped rankings).
func headerField(f Field) bool {
	return !f.Inline && strings.HasPrefix(f.Name, "🏰")
}

// PaginateFields splits a field sequence into pages of at most max fields.
// When a page boundary would orphan a group from its section header, the
// most recent header is repeated at the top of the next page, unless the
// next field is itself a header.
func PaginateFields(fields []Field, max int) [][]Field {
	var pages [][]Field
	var current []Field
	var lastHeader *Field

	for _, f := range fields {
		f := f
		if headerField(f) {
			lastHeader = &f
		}
		if len(current) >= max {
			pages = append(pages, current)
			current = nil
			if lastHeader != nil && !headerField(f) {
				current = append(current, *lastHeader)
			}
		}
		current = append(current, f)
	}
	if len(current) > 0 {
		pages = append(pages, current)
	}
	return pages
}

// formatAmount groups digits by thousands with spaces, the way amounts
// appear on the source pages ("12 500").
func formatAmount(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(s[i : i+3])
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	return out
}

func amountWithCurrency(value int64, currency string) string {
	if currency == "" {
		return formatAmount(value)
	}
	return formatAmount(value) + " " + currency
}

// RankingFields renders a headline ranking (top entries of one level) as
// inline embed fields with proportional bars and podium medals.
func RankingFields(ranked []Ranked, label string, barWidth int) []Field {
	if len(ranked) == 0 {
		return nil
	}
	max := ranked[0].Value
	fields := make([]Field, 0, len(ranked))
	for _, r := range ranked {
		fields = append(fields, Field{
			Name: fmt.Sprintf("%d. 🏰 %s", r.Rank, r.Name),
			Value: fmt.Sprintf("%s : **%s**\n%s %s",
				label, amountWithCurrency(r.Value, r.Currency),
				ProgressBar(r.Value, max, barWidth), Medal(r.Rank)),
			Inline: true,
		})
	}
	return fields
}

// GroupedRankingFields renders the per-empire breakdown: a header field per
// empire followed by its globally-ranked entries. Bars are proportional to
// the global maximum so entries compare across empires. Medals only decorate
// the global podium.
func GroupedRankingFields(groups []RankedGroup, max int64, label string, barWidth int) []Field {
	var fields []Field
	for _, g := range groups {
		fields = append(fields, Field{
			Name:   "🏰 " + g.Empire,
			Value:  "​",
			Inline: false,
		})
		for _, r := range g.Entries {
			medal := ""
			if r.Rank <= 3 {
				medal = Medal(r.Rank)
			}
			fields = append(fields, Field{
				Name: fmt.Sprintf("%d. %s", r.Rank, r.Name),
				Value: fmt.Sprintf("%s : **%s**\n%s %s",
					label, amountWithCurrency(r.Value, r.Currency),
					ProgressBar(r.Value, max, barWidth), medal),
				Inline: true,
			})
		}
	}
	return fields
}

// Section is one stats report unit for a day: a titled, colored set of
// ranking fields.
type Section struct {
	Title  string
	Color  int
	Fields []Field
}

const (
	incomeColor  = 0x2ECC71
	expenseColor = 0xE74C3C
	barWidth     = 10
)

// BuildDaySections assembles the six ranking sections for one day's table:
// empires, provinces and cities, each by income and by expense. Empty
// sections are kept in the slice with nil fields; the delivery path skips
// them.
func BuildDaySections(day string, table *DayTable) []Section {
	empireTotals := AggregateRows(table.Empire, LevelEmpire)

	sections := []Section{
		{
			Title:  fmt.Sprintf("🏆 Empires — %s • Revenus", day),
			Color:  incomeColor,
			Fields: RankingFields(Rank(empireTotals, MetricIncome, HeadlineTopN), "💰 Revenus", barWidth),
		},
		{
			Title:  fmt.Sprintf("💸 Empires — %s • Dépenses", day),
			Color:  expenseColor,
			Fields: RankingFields(Rank(empireTotals, MetricExpense, HeadlineTopN), "💸 Dépenses", barWidth),
		},
	}

	type grouped struct {
		title  string
		color  int
		rows   []FlowRow
		metric Metric
		label  string
		level  Level
	}
	for _, g := range []grouped{
		{fmt.Sprintf("🏆 Provinces — %s • Revenus", day), incomeColor, table.Province, MetricIncome, "💰 Revenus", LevelProvince},
		{fmt.Sprintf("💸 Provinces — %s • Dépenses", day), expenseColor, table.Province, MetricExpense, "💸 Dépenses", LevelProvince},
		{fmt.Sprintf("🏆 Villes — %s • Revenus", day), incomeColor, table.City, MetricIncome, "💰 Revenus", LevelCity},
		{fmt.Sprintf("💸 Villes — %s • Dépenses", day), expenseColor, table.City, MetricExpense, "💸 Dépenses", LevelCity},
	} {
		groups, max := GroupedRank(g.rows, g.metric, g.level)
		sections = append(sections, Section{
			Title:  g.title,
			Color:  g.color,
			Fields: GroupedRankingFields(groups, max, g.label, barWidth),
		})
	}
	return sections
}

// EventLines renders one channel group's events as timeline lines.
func EventLines(events []Event) []string {
	lines := make([]string, 0, len(events))
	for _, e := range events {
		t := e.Time
		if t == "" {
			t = "--:--"
		}
		lines = append(lines, fmt.Sprintf("**%s** — %s", t, e.Text))
	}
	return lines
}
