package journal

import (
	"math"
	"sort"
	"strings"
)

// Level tags which entity a flow row is attributed to. Each row belongs to
// exactly one level, decided by which location fields the event carries.
type Level string

const (
	LevelEmpire   Level = "empire"
	LevelProvince Level = "province"
	LevelCity     Level = "city"
)

// FlowRow is one financial event flattened into the per-day table.
type FlowRow struct {
	Empire   string `json:"empire"`
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
	Income   int64  `json:"income"`
	Expense  int64  `json:"expense"`
	Currency string `json:"currency,omitempty"`
}

func (r FlowRow) Level() Level {
	switch {
	case r.Province == "" && r.City == "":
		return LevelEmpire
	case r.City == "":
		return LevelProvince
	default:
		return LevelCity
	}
}

// DayTable holds one day's flow rows bucketed by entity level.
type DayTable struct {
	Empire   []FlowRow `json:"empire"`
	Province []FlowRow `json:"province"`
	City     []FlowRow `json:"city"`
}

// BuildDailyTables derives the flat per-day tables from the event log: one
// row per financial event, attributed to exactly one level path.
func BuildDailyTables(events []Event) map[string]*DayTable {
	days := make(map[string]*DayTable)
	for _, e := range events {
		flow := ExtractFlow(e.Text)
		if flow == nil {
			continue
		}
		row := FlowRow{
			Empire:   e.Empire,
			Province: e.Province,
			City:     e.City,
			Income:   flow.Income,
			Expense:  flow.Expense,
			Currency: flow.Currency,
		}
		table := days[e.Date]
		if table == nil {
			table = &DayTable{}
			days[e.Date] = table
		}
		switch row.Level() {
		case LevelEmpire:
			table.Empire = append(table.Empire, row)
		case LevelProvince:
			table.Province = append(table.Province, row)
		case LevelCity:
			table.City = append(table.City, row)
		}
	}
	return days
}

// CityLedger, ProvinceLedger and EmpireLedger form the nested per-day
// rollup. A city-level flow contributes to its city, its province and its
// empire; it is never added twice at any level.
type CityLedger struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
}

type ProvinceLedger struct {
	Income  int64                  `json:"income"`
	Expense int64                  `json:"expense"`
	Cities  map[string]*CityLedger `json:"cities"`
}

type EmpireLedger struct {
	Currency  string                     `json:"currency,omitempty"`
	Income    int64                      `json:"income"`
	Expense   int64                      `json:"expense"`
	Provinces map[string]*ProvinceLedger `json:"provinces"`
}

type DayLedger struct {
	Date    string                   `json:"date"`
	Empires map[string]*EmpireLedger `json:"empires"`
}

// BuildDailyLedgers folds all financial events into nested day → empire →
// province → city ledgers. Empires absent from the territory registry are
// skipped (no currency, no topology to attribute to).
func BuildDailyLedgers(events []Event, world *World) map[string]*DayLedger {
	ledgers := make(map[string]*DayLedger)
	for _, e := range events {
		flow := ExtractFlow(e.Text)
		if flow == nil {
			continue
		}
		if !world.Known(e.Empire) {
			continue
		}

		day := ledgers[e.Date]
		if day == nil {
			day = &DayLedger{Date: e.Date, Empires: make(map[string]*EmpireLedger)}
			ledgers[e.Date] = day
		}

		empire := day.Empires[e.Empire]
		if empire == nil {
			empire = &EmpireLedger{
				Currency:  world.Currency(e.Empire),
				Provinces: make(map[string]*ProvinceLedger),
			}
			day.Empires[e.Empire] = empire
		}
		empire.Income += flow.Income
		empire.Expense += flow.Expense

		if e.Province == "" {
			continue
		}
		province := empire.Provinces[e.Province]
		if province == nil {
			province = &ProvinceLedger{Cities: make(map[string]*CityLedger)}
			empire.Provinces[e.Province] = province
		}
		province.Income += flow.Income
		province.Expense += flow.Expense

		if e.City == "" {
			continue
		}
		city := province.Cities[e.City]
		if city == nil {
			city = &CityLedger{}
			province.Cities[e.City] = city
		}
		city.Income += flow.Income
		city.Expense += flow.Expense
	}
	return ledgers
}

// Metric selects which magnitude a ranking is built on.
type Metric string

const (
	MetricIncome  Metric = "income"
	MetricExpense Metric = "expense"
)

func (m Metric) of(income, expense int64) int64 {
	if m == MetricExpense {
		return expense
	}
	return income
}

// Totals accumulates income/expense under one display label.
type Totals struct {
	Label    string
	Income   int64
	Expense  int64
	Currency string
}

// AggregateRows sums rows by label, preserving first-touch order so that
// later ranking ties break on original insertion order.
func AggregateRows(rows []FlowRow, level Level) []*Totals {
	byLabel := make(map[string]*Totals)
	var ordered []*Totals
	for _, r := range rows {
		label := rowLabel(r, level)
		t := byLabel[label]
		if t == nil {
			t = &Totals{Label: label, Currency: r.Currency}
			byLabel[label] = t
			ordered = append(ordered, t)
		}
		t.Income += r.Income
		t.Expense += r.Expense
	}
	return ordered
}

func rowLabel(r FlowRow, level Level) string {
	switch level {
	case LevelEmpire:
		return r.Empire
	case LevelProvince:
		return r.Empire + " :: " + r.Province
	default:
		return strings.Join([]string{r.Empire, r.Province, r.City}, " :: ")
	}
}

// Ranked is one row of a ranking: 1-based rank, label, metric value.
type Ranked struct {
	Rank     int
	Name     string
	Value    int64
	Currency string
}

// HeadlineTopN bounds headline rankings; full per-entity breakdowns stay
// unbounded.
const HeadlineTopN = 9

// Rank sorts totals descending on the metric, drops zero rows, and keeps the
// top N (unbounded when topN <= 0). The sort is stable: equal values keep
// insertion order.
func Rank(entries []*Totals, metric Metric, topN int) []Ranked {
	kept := make([]*Totals, 0, len(entries))
	for _, t := range entries {
		if metric.of(t.Income, t.Expense) > 0 {
			kept = append(kept, t)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return metric.of(kept[i].Income, kept[i].Expense) > metric.of(kept[j].Income, kept[j].Expense)
	})
	if topN > 0 && len(kept) > topN {
		kept = kept[:topN]
	}
	out := make([]Ranked, len(kept))
	for i, t := range kept {
		out[i] = Ranked{
			Rank:     i + 1,
			Name:     t.Label,
			Value:    metric.of(t.Income, t.Expense),
			Currency: t.Currency,
		}
	}
	return out
}

// RankedGroup holds one empire's globally-ranked entries for the grouped
// province/city breakdowns.
type RankedGroup struct {
	Empire  string
	Entries []Ranked
}

// GroupedRank ranks province- or city-level rows globally (stable, all
// entries kept), then groups them per empire in order of each empire's best
// rank. Max is the global maximum, for proportional bars.
func GroupedRank(rows []FlowRow, metric Metric, level Level) (groups []RankedGroup, max int64) {
	type flat struct {
		empire string
		name   string
		value  int64
		cur    string
	}
	var entries []flat
	for _, r := range rows {
		name := r.Province
		if level == LevelCity {
			name = r.City
		}
		value := metric.of(r.Income, r.Expense)
		if r.Empire == "" || name == "" || value <= 0 {
			continue
		}
		entries = append(entries, flat{empire: r.Empire, name: name, value: value, cur: r.Currency})
	}
	if len(entries) == 0 {
		return nil, 0
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].value > entries[j].value })
	max = entries[0].value

	index := make(map[string]int)
	for i, e := range entries {
		ranked := Ranked{Rank: i + 1, Name: e.name, Value: e.value, Currency: e.cur}
		gi, ok := index[e.empire]
		if !ok {
			gi = len(groups)
			index[e.empire] = gi
			groups = append(groups, RankedGroup{Empire: e.empire})
		}
		groups[gi].Entries = append(groups[gi].Entries, ranked)
	}
	return groups, max
}

// ProgressBar renders a proportional bar of fixed width: round(value/max *
// width) filled cells, clamped to [0, width].
func ProgressBar(value, max int64, width int) string {
	if width <= 0 {
		width = 10
	}
	if max <= 0 {
		return strings.Repeat("░", width)
	}
	filled := int(math.Round(float64(value) / float64(max) * float64(width)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Medal returns the podium glyph for ranks 1-3, empty otherwise.
func Medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return ""
	}
}
