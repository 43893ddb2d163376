package journal

import (
	"log"
	"regexp"
	"strconv"
	"strings"
)

// currencyPattern lists every currency glyph the journal uses.
const currencyPattern = `(Co|Éf|ÐE|¢¢|MØ|FK|PO)`

var (
	incomeRe   = regexp.MustCompile(`(?i)récolte\s+([\d\s]+)\s*` + currencyPattern)
	expenseRe  = regexp.MustCompile(`(?i)paie\s+([\d\s]+)\s*` + currencyPattern)
	ministryRe = regexp.MustCompile(`(?i)les impôts ont été distribués aux différents ministères`)
	// "Nom du ministère 120 Co" items after the colon, comma separated.
	ministryItemRe = regexp.MustCompile(`([^,]+?)\s+(\d+)\s*` + currencyPattern)
)

// Flow is the financial contribution extracted from one event's text.
// Income and Expense are non-negative magnitudes; Currency may be empty when
// no glyph was recognized for the matched amounts.
type Flow struct {
	Income   int64  `json:"income"`
	Expense  int64  `json:"expense"`
	Currency string `json:"currency,omitempty"`
}

// ExtractFlow parses an event's raw text for monetary flows. Three patterns
// are recognized: a harvest ("récolte N cur") adds income, a payment
// ("paie N cur") adds expense, and a ministry budget distribution sums every
// listed amount into expense. Returns nil when the text is not financial.
//
// When income and expense match with different currency glyphs, the first
// detected currency wins for the whole flow. The source text is ambiguous
// here; the misattribution is kept rather than guessed around.
func ExtractFlow(text string) *Flow {
	if text == "" {
		return nil
	}

	var flow Flow

	if m := incomeRe.FindStringSubmatch(text); m != nil {
		flow.Income = parseAmount(m[1], text)
		flow.Currency = m[2]
	}

	if m := expenseRe.FindStringSubmatch(text); m != nil {
		flow.Expense += parseAmount(m[1], text)
		if flow.Currency == "" {
			flow.Currency = m[2]
		}
	}

	if amount, currency, ok := extractMinistryExpense(text); ok {
		flow.Expense += amount
		if flow.Currency == "" {
			flow.Currency = currency
		}
	}

	if flow.Income == 0 && flow.Expense == 0 {
		return nil
	}
	return &flow
}

// extractMinistryExpense handles the multi-party disbursement sentence: a
// header introduced by a colon, followed by "name amount currency" items.
// The total of every recipient amount counts as a single expense.
func extractMinistryExpense(text string) (int64, string, bool) {
	if !ministryRe.MatchString(text) {
		return 0, "", false
	}
	_, after, found := strings.Cut(text, ":")
	if !found {
		return 0, "", false
	}

	var total int64
	var currency string
	for _, m := range ministryItemRe.FindAllStringSubmatch(after, -1) {
		total += parseAmount(m[2], text)
		if currency == "" {
			currency = m[3]
		}
	}
	return total, currency, true
}

// parseAmount converts a matched numeral run (possibly space-grouped, e.g.
// "12 500") to an integer. A malformed numeral contributes zero and is
// logged; extraction must never fail a run.
func parseAmount(raw string, context string) int64 {
	compact := strings.Join(strings.Fields(strings.ReplaceAll(raw, " ", " ")), "")
	n, err := strconv.ParseInt(compact, 10, 64)
	if err != nil {
		log.Printf("finance: unparseable amount %q in %q: %v", raw, context, err)
		return 0
	}
	return n
}
