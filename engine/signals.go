package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// Currency is the symbol found next to an amount, or "unknown".
type Currency string

const (
	CurrencyDollar  Currency = "$"
	CurrencyEuro    Currency = "€"
	CurrencyPound   Currency = "£"
	CurrencyYen     Currency = "¥"
	CurrencyKrona   Currency = "kr"
	CurrencyUnknown Currency = "unknown"
)

// Period is the billing cadence detected in card text.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodUnknown Period = "unknown"
)

// Unit describes what a pricing document charges per.
type Unit string

const (
	UnitPerSeat  Unit = "per_seat"
	UnitPerMonth Unit = "per_month"
	UnitUnknown  Unit = "unknown"
)

var (
	currencyRe = regexp.MustCompile(`(?i)[$€£¥]|\bkr\b`)
	amountRe   = regexp.MustCompile(`\b[0-9]{1,3}(?:[.,\s][0-9]{3})*(?:[.,][0-9]{1,2})?\b`)
	priceRe    = regexp.MustCompile(`(?i)([$€£¥]|\bkr\b)\s*([0-9]{1,3}(?:[.,\s][0-9]{3})*(?:[.,][0-9]{1,2})?)|([0-9]{1,3}(?:[.,\s][0-9]{3})*(?:[.,][0-9]{1,2})?)\s*([$€£¥]|\bkr\b)`)
	periodRe   = regexp.MustCompile(`(?i)per\s*(month|year)|/\s*mo(nth)?\b|/\s*yr\b|/\s*year\b|\bmonthly\b|\bannual(ly)?\b|\byearly\b|per\s*månad|per\s*år|månadsvis|årsvis`)
	yearlyRe   = regexp.MustCompile(`(?i)per\s*year|/\s*yr\b|/\s*year\b|\bannual(ly)?\b|\byearly\b|per\s*år|årsvis`)
	monthlyRe  = regexp.MustCompile(`(?i)per\s*month|/\s*mo(nth)?\b|\bmonthly\b|per\s*månad|månadsvis`)
	perSeatRe  = regexp.MustCompile(`(?i)per\s*(user|seat)|/\s*user\b|/\s*seat\b`)
	ctaRe      = regexp.MustCompile(`(?i)\b(get started|start free|start trial|try for free|try now|buy now|subscribe|contact sales|contact us|choose plan|choose|select plan|select|upgrade now|upgrade|request (a )?(trial|demo)|get a demo|sign up|start deploying)\b`)
	planRe     = regexp.MustCompile(`(?i)\b(hobby|free|starter|basic|standard|team|pro|business|enterprise|plus|premium|growth)\b`)
	freeRe     = regexp.MustCompile(`(?i)\bfree\b`)

	cardClassRe   = regexp.MustCompile(`(?i)\b(price|pricing|plan|tier|package|card|panel)\b`)
	ascentClassRe = regexp.MustCompile(`(?i)\b(price|pricing|plan|tier|package|card|panel|hero|grid|column)\b`)
)

// HasCurrency reports whether text contains a recognized currency symbol or code.
func HasCurrency(text string) bool { return currencyRe.MatchString(text) }

// HasAmount reports whether text contains a numeric amount token.
func HasAmount(text string) bool { return amountRe.MatchString(text) }

// HasPeriod reports whether text contains a billing-period phrase.
func HasPeriod(text string) bool { return periodRe.MatchString(text) }

// HasPerSeat reports whether text contains a per-seat/per-user phrase.
func HasPerSeat(text string) bool { return perSeatRe.MatchString(text) }

// HasCTA reports whether text contains a call-to-action phrase.
func HasCTA(text string) bool { return ctaRe.MatchString(text) }

// HasPlanName reports whether text contains common plan-name vocabulary.
func HasPlanName(text string) bool { return planRe.MatchString(text) }

// HasFree reports whether text mentions a free plan.
func HasFree(text string) bool { return freeRe.MatchString(text) }

// ParsePeriod resolves the billing cadence mentioned in text. Yearly phrases
// win over monthly ones so "billed yearly, $X/mo equivalent" stays yearly.
func ParsePeriod(text string) Period {
	if yearlyRe.MatchString(text) {
		return PeriodYearly
	}
	if monthlyRe.MatchString(text) {
		return PeriodMonthly
	}
	return PeriodUnknown
}

// ParseAmount finds the first currency-adjacent amount in text and normalizes
// it to a dot-decimal value. It handles "1,234.56", "1.234,56" and "1 234,56"
// style separators. ok is false when no price token is present.
func ParseAmount(text string) (amount float64, currency Currency, ok bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, CurrencyUnknown, false
	}
	symbol, number := m[1], m[2]
	if symbol == "" {
		number, symbol = m[3], m[4]
	}
	v, err := strconv.ParseFloat(normalizeNumber(number), 64)
	if err != nil || v < 0 {
		return 0, CurrencyUnknown, false
	}
	return v, currencyFromSymbol(symbol), true
}

// normalizeNumber converts locale-specific separators to a plain dot-decimal
// string: "1.234,56" / "1,234.56" / "1 234,56" all become "1234.56".
func normalizeNumber(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: the later one is the decimal separator.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// Comma only: decimal when it has 1-2 trailing digits, thousands otherwise.
		if len(s)-lastComma-1 <= 2 {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		// Multiple dots: keep the last as decimal, drop the rest.
		head := strings.ReplaceAll(s[:lastDot], ".", "")
		s = head + s[lastDot:]
	}
	return s
}

func currencyFromSymbol(symbol string) Currency {
	switch strings.ToLower(strings.TrimSpace(symbol)) {
	case "$":
		return CurrencyDollar
	case "€":
		return CurrencyEuro
	case "£":
		return CurrencyPound
	case "¥":
		return CurrencyYen
	case "kr":
		return CurrencyKrona
	}
	return CurrencyUnknown
}
