package journal

import "testing"

func TestExtractFlowIncome(t *testing.T) {
	flow := ExtractFlow("La province récolte 12 500 Co grâce aux impôts")
	if flow == nil {
		t.Fatal("expected a flow")
	}
	if flow.Income != 12500 || flow.Expense != 0 || flow.Currency != "Co" {
		t.Fatalf("flow = %+v", flow)
	}
}

func TestExtractFlowExpense(t *testing.T) {
	flow := ExtractFlow("Le gouverneur paie 3 000 Éf de salaires")
	if flow == nil {
		t.Fatal("expected a flow")
	}
	if flow.Expense != 3000 || flow.Income != 0 || flow.Currency != "Éf" {
		t.Fatalf("flow = %+v", flow)
	}
}

func TestExtractFlowMinistryDistribution(t *testing.T) {
	text := "Les impôts ont été distribués aux différents ministères : " +
		"Ministère de la Guerre 120 Co, Ministère de la Science 80 Co, Ministère du Commerce 55 Co"
	flow := ExtractFlow(text)
	if flow == nil {
		t.Fatal("expected a flow")
	}
	if flow.Expense != 255 {
		t.Fatalf("expense = %d, want 255", flow.Expense)
	}
	if flow.Income != 0 {
		t.Fatalf("income = %d, want 0", flow.Income)
	}
	if flow.Currency != "Co" {
		t.Fatalf("currency = %q, want Co", flow.Currency)
	}
}

func TestExtractFlowMixedCurrencyFirstWins(t *testing.T) {
	flow := ExtractFlow("La ville récolte 100 Co puis paie 40 Éf")
	if flow == nil {
		t.Fatal("expected a flow")
	}
	if flow.Income != 100 || flow.Expense != 40 {
		t.Fatalf("flow = %+v", flow)
	}
	// First detected currency wins; the ambiguity is documented.
	if flow.Currency != "Co" {
		t.Fatalf("currency = %q, want Co", flow.Currency)
	}
}

func TestExtractFlowCaseInsensitive(t *testing.T) {
	if ExtractFlow("RÉCOLTE 10 Co") == nil {
		t.Fatal("uppercase verb should match")
	}
}

func TestExtractFlowNotFinancial(t *testing.T) {
	cases := []string{
		"",
		"Une rumeur court dans la capitale",
		"Le maire a prononcé un discours",
		"récolte sans montant Co",
	}
	for _, text := range cases {
		if flow := ExtractFlow(text); flow != nil {
			t.Errorf("ExtractFlow(%q) = %+v, want nil", text, flow)
		}
	}
}

func TestExtractFlowSpaceGroupedNumeral(t *testing.T) {
	flow := ExtractFlow("récolte 1 234 567 Co")
	if flow == nil || flow.Income != 1234567 {
		t.Fatalf("flow = %+v", flow)
	}
}
