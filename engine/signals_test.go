package engine

import "testing"

func TestParseAmountLocales(t *testing.T) {
	tests := []struct {
		text     string
		amount   float64
		currency Currency
	}{
		{"$1,234.56", 1234.56, CurrencyDollar},
		{"1.234,56 kr", 1234.56, CurrencyKrona},
		{"1 234,56 €", 1234.56, CurrencyEuro},
		{"£29", 29, CurrencyPound},
		{"¥1,000", 1000, CurrencyYen},
		{"$9.99/mo", 9.99, CurrencyDollar},
		{"Starts at €49 per month", 49, CurrencyEuro},
		{"299 kr", 299, CurrencyKrona},
	}

	for _, tt := range tests {
		amount, currency, ok := ParseAmount(tt.text)
		if !ok {
			t.Errorf("ParseAmount(%q): no match", tt.text)
			continue
		}
		if amount != tt.amount {
			t.Errorf("ParseAmount(%q): amount = %v, want %v", tt.text, amount, tt.amount)
		}
		if currency != tt.currency {
			t.Errorf("ParseAmount(%q): currency = %q, want %q", tt.text, currency, tt.currency)
		}
	}
}

func TestParseAmountNoMatch(t *testing.T) {
	for _, text := range []string{"", "contact sales", "unlimited seats", "krill"} {
		if _, _, ok := ParseAmount(text); ok {
			t.Errorf("ParseAmount(%q): expected no match", text)
		}
	}
}

func TestParseAmountIdempotent(t *testing.T) {
	a1, c1, _ := ParseAmount("$1,234.56")
	a2, c2, _ := ParseAmount("$1,234.56")
	if a1 != a2 || c1 != c2 {
		t.Errorf("ParseAmount not deterministic: (%v,%v) vs (%v,%v)", a1, c1, a2, c2)
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		text string
		want Period
	}{
		{"$29 per month", PeriodMonthly},
		{"$29/mo", PeriodMonthly},
		{"billed monthly", PeriodMonthly},
		{"99 kr per månad", PeriodMonthly},
		{"$290 per year", PeriodYearly},
		{"$290/yr", PeriodYearly},
		{"billed annually", PeriodYearly},
		{"990 kr per år", PeriodYearly},
		{"billed yearly, or $29/mo", PeriodYearly},
		{"one-time purchase", PeriodUnknown},
		{"", PeriodUnknown},
	}

	for _, tt := range tests {
		if got := ParsePeriod(tt.text); got != tt.want {
			t.Errorf("ParsePeriod(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestSignalMatchers(t *testing.T) {
	if !HasCurrency("only $5") || HasCurrency("five bucks") {
		t.Error("HasCurrency misbehaves")
	}
	if !HasAmount("pay 42 now") || HasAmount("pay now") {
		t.Error("HasAmount misbehaves")
	}
	if !HasPerSeat("billed per user") || !HasPerSeat("$5 / seat") || HasPerSeat("per month") {
		t.Error("HasPerSeat misbehaves")
	}
	if !HasCTA("Get started today") || !HasCTA("Contact sales") || HasCTA("our history") {
		t.Error("HasCTA misbehaves")
	}
	if !HasPlanName("the Enterprise tier") || HasPlanName("a plain paragraph") {
		t.Error("HasPlanName misbehaves")
	}
	if !HasFree("Free forever") || HasFree("freedom") {
		t.Error("HasFree misbehaves")
	}
}
