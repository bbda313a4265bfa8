package engine

import (
	"strings"
	"testing"
)

func TestRunPinnedScope(t *testing.T) {
	e := New(DefaultOptions())
	res := e.Run(pricingFixture, ".pricing-card", 2, nil)

	if !strings.Contains(res.ScopedHTML, "Pro") || strings.Contains(res.ScopedHTML, "Starter") {
		t.Error("scoped HTML should contain only the pinned card")
	}
	if !strings.Contains(res.Text, "$29 per month") {
		t.Errorf("text projection missing the price: %q", res.Text)
	}
	if strings.Contains(res.Text, "<") {
		t.Errorf("text projection still contains markup: %q", res.Text)
	}

	if res.HTMLHash != HashString(res.ScopedHTML) {
		t.Error("html_hash does not match the scoped HTML")
	}
	if res.TextHash != HashString(res.Text) {
		t.Error("text_hash does not match the text projection")
	}
	if res.PricingHash != HashPricing(res.Pricing) {
		t.Error("pricing_hash does not match the pricing document")
	}

	if res.VisualHash != nil {
		t.Errorf("visual_hash = %q, want nil", *res.VisualHash)
	}
	if res.ScreenshotSHA256 != nil {
		t.Errorf("screenshot hash = %q without a screenshot", *res.ScreenshotSHA256)
	}

	if len(res.Pricing.Tiers) != 1 || res.Pricing.Tiers[0].Name != "Pro" {
		t.Errorf("pricing = %+v, want the single Pro tier", res.Pricing)
	}
}

func TestRunDeterministic(t *testing.T) {
	e := New(DefaultOptions())
	a := e.Run(pricingFixture, "", 0, nil)
	b := e.Run(pricingFixture, "", 0, nil)

	if a.HTMLHash != b.HTMLHash || a.TextHash != b.TextHash || a.PricingHash != b.PricingHash {
		t.Error("two runs over the same input produced different fingerprints")
	}
}

func TestRunWithScreenshot(t *testing.T) {
	e := New(DefaultOptions())
	shot := []byte("fake-png-bytes")
	res := e.Run(pricingFixture, "", 0, shot)

	if res.ScreenshotSHA256 == nil || *res.ScreenshotSHA256 != HashBytes(shot) {
		t.Error("screenshot hash missing or wrong")
	}
	if res.VisualHash != nil {
		t.Error("visual_hash must stay nil")
	}
}

func TestScopedHTML(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		index    int
		contains []string
		excludes []string
	}{
		{"no selector keeps full document", "", 0, []string{"Starter", "Pro", "Enterprise", "footer"}, nil},
		{"invalid selector falls back to full document", "div[unclosed", 1, []string{"Starter", "footer"}, nil},
		{"selector miss falls back to full document", ".does-not-exist", 1, []string{"Starter", "footer"}, nil},
		{"all matches joins every card", ".pricing-card", 0, []string{"Starter", "Pro", "Enterprise"}, []string{"footer"}},
		{"pinned index narrows to one card", ".pricing-card", 3, []string{"Enterprise"}, []string{"Starter", "Pro"}},
	}

	for _, tt := range tests {
		got := ScopedHTML(pricingFixture, tt.selector, tt.index)
		for _, want := range tt.contains {
			if !strings.Contains(got, want) {
				t.Errorf("%s: output missing %q", tt.name, want)
			}
		}
		for _, not := range tt.excludes {
			if strings.Contains(got, not) {
				t.Errorf("%s: output should not contain %q", tt.name, not)
			}
		}
	}
}

func TestRunSelectorMissStillFingerprints(t *testing.T) {
	e := New(DefaultOptions())
	res := e.Run(pricingFixture, ".does-not-exist", 1, nil)

	// Pricing reports the hard miss while the snapshot hashes still cover the
	// full page, so change detection keeps working until the hint is fixed.
	if res.Pricing.Reason != ReasonSelectorNotFound {
		t.Errorf("reason = %q, want %q", res.Pricing.Reason, ReasonSelectorNotFound)
	}
	if res.HTMLHash == "" || res.TextHash == "" || res.PricingHash == "" {
		t.Error("fingerprints missing on selector miss")
	}
	if res.ScopedHTML != pricingFixture {
		t.Error("scoped HTML should fall back to the full document")
	}
}
