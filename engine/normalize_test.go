package engine

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// pricingFixture is a typical three-card pricing grid with surrounding page
// chrome. Each card body sits inside the plausible card-text range while the
// grid as a whole exceeds it, so the ascent settles on the cards.
const pricingFixture = `<html><head><title>Pricing</title></head><body>
<header><nav><a href="/">Home</a><a href="/docs">Docs</a></nav></header>
<section id="pricing">
<h2>Simple, transparent pricing</h2>
<p>Pick a tariff that fits. No hidden fees.</p>
<div class="pricing-grid">
<div class="pricing-card">
<h3>Starter</h3>
<div class="price">$9 per month</div>
<p>For individuals trying things out on their own.</p>
<ul>
<li>Up to three projects with unlimited public pages and nightly exports to your own bucket</li>
<li>Community support with a searchable knowledge base and public issue tracker access</li>
<li>Single region deployments with automatic TLS and daily configuration backups</li>
<li>Usage analytics retained for thirty days across all of your projects</li>
<li>Webhook delivery with automatic retries and a dead letter queue for failures</li>
</ul>
<a href="/signup">Get started</a>
</div>
<div class="pricing-card">
<h3>Pro</h3>
<div class="price">$29 per month</div>
<p>For small groups shipping to production together.</p>
<ul>
<li>Unlimited projects with private pages and scheduled exports to any storage provider</li>
<li>Priority support with guaranteed response targets during business hours</li>
<li>Multi region deployments with automatic failover and point in time recovery</li>
<li>Usage analytics retained for one hundred days with custom dashboards</li>
<li>Role based access control with audit logging across your whole workspace</li>
</ul>
<a href="/signup">Get started</a>
</div>
<div class="pricing-card">
<h3>Enterprise</h3>
<div class="price">Custom</div>
<p>For large organizations with procurement requirements.</p>
<ul>
<li>Dedicated infrastructure with custom data residency and uptime commitments</li>
<li>A named account manager with onboarding assistance for your whole organization</li>
<li>Single sign on with directory sync and custom security reviews on request</li>
<li>Usage analytics with unlimited retention and raw event export on demand</li>
<li>Custom contracts, invoicing and purchase order support for procurement teams</li>
</ul>
<a href="/contact">Contact sales</a>
</div>
</div>
</section>
<footer><p>All the legal small print lives down here.</p></footer>
</body></html>`

func TestExtractHeuristicGrid(t *testing.T) {
	e := New(DefaultOptions())
	p := e.Extract(pricingFixture, "", 0)

	if p.Reason != "" {
		t.Fatalf("reason = %q, want none", p.Reason)
	}
	if p.Unit != UnitPerMonth {
		t.Errorf("unit = %q, want %q", p.Unit, UnitPerMonth)
	}
	if len(p.Tiers) != 3 {
		t.Fatalf("got %d tiers, want 3: %+v", len(p.Tiers), p.Tiers)
	}

	starter, pro, enterprise := p.Tiers[0], p.Tiers[1], p.Tiers[2]

	if starter.Name != "Starter" || pro.Name != "Pro" || enterprise.Name != "Enterprise" {
		t.Errorf("tier names = %q, %q, %q", starter.Name, pro.Name, enterprise.Name)
	}
	if starter.Amount == nil || *starter.Amount != 9 {
		t.Errorf("starter amount = %v, want 9", starter.Amount)
	}
	if pro.Amount == nil || *pro.Amount != 29 {
		t.Errorf("pro amount = %v, want 29", pro.Amount)
	}
	if enterprise.Amount != nil {
		t.Errorf("enterprise amount = %v, want nil for contact pricing", *enterprise.Amount)
	}
	if starter.Currency != CurrencyDollar || pro.Currency != CurrencyDollar {
		t.Errorf("currencies = %q, %q, want dollars", starter.Currency, pro.Currency)
	}
	if starter.Period != PeriodMonthly || pro.Period != PeriodMonthly {
		t.Errorf("periods = %q, %q, want monthly", starter.Period, pro.Period)
	}
	if enterprise.Period != PeriodUnknown {
		t.Errorf("enterprise period = %q, want unknown", enterprise.Period)
	}
	if len(starter.Features) != 5 {
		t.Errorf("starter has %d features, want 5", len(starter.Features))
	}
}

func TestExtractPinned(t *testing.T) {
	e := New(DefaultOptions())
	p := e.Extract(pricingFixture, ".pricing-card", 2)

	if len(p.Tiers) != 1 {
		t.Fatalf("pinned scope produced %d tiers, want 1", len(p.Tiers))
	}
	tier := p.Tiers[0]
	if tier.Name != "Pro" {
		t.Errorf("name = %q, want Pro", tier.Name)
	}
	if tier.Amount == nil || *tier.Amount != 29 {
		t.Errorf("amount = %v, want 29", tier.Amount)
	}
	if tier.Period != PeriodMonthly {
		t.Errorf("period = %q, want monthly", tier.Period)
	}
}

func TestExtractPinnedClampsOutOfRangeIndex(t *testing.T) {
	e := New(DefaultOptions())
	p := e.Extract(pricingFixture, ".pricing-card", 999)

	if len(p.Tiers) != 1 {
		t.Fatalf("got %d tiers, want 1", len(p.Tiers))
	}
	if p.Tiers[0].Name != "Enterprise" {
		t.Errorf("name = %q, want Enterprise (clamped to last match)", p.Tiers[0].Name)
	}
}

func TestExtractAllMatchesSplitsPricedChildren(t *testing.T) {
	e := New(DefaultOptions())
	p := e.Extract(pricingFixture, ".pricing-grid", 0)

	// Legacy all-matches mode keeps only children carrying a price token, so
	// the contact-us card drops out.
	if len(p.Tiers) != 2 {
		t.Fatalf("got %d tiers, want 2: %+v", len(p.Tiers), p.Tiers)
	}
	if p.Tiers[0].Name != "Starter" || p.Tiers[1].Name != "Pro" {
		t.Errorf("tier names = %q, %q", p.Tiers[0].Name, p.Tiers[1].Name)
	}
}

func TestExtractSelectorNotFound(t *testing.T) {
	e := New(DefaultOptions())
	p := e.Extract(pricingFixture, ".does-not-exist", 1)

	if p.Reason != ReasonSelectorNotFound {
		t.Errorf("reason = %q, want %q", p.Reason, ReasonSelectorNotFound)
	}
	if len(p.Tiers) != 0 || p.Unit != UnitUnknown {
		t.Errorf("selector miss must produce an empty document, got %+v", p)
	}
}

func TestExtractNoCardsFound(t *testing.T) {
	e := New(DefaultOptions())
	p := e.Extract(`<html><body><h1>About us</h1><p>We make software for people who like software.</p></body></html>`, "", 0)

	if p.Reason != ReasonNoCardsFound {
		t.Errorf("reason = %q, want %q", p.Reason, ReasonNoCardsFound)
	}
	if len(p.Tiers) != 0 {
		t.Errorf("got %d tiers from a page without pricing", len(p.Tiers))
	}
}

func TestExtractPerSeatUnit(t *testing.T) {
	e := New(DefaultOptions())
	p := e.Extract(pricingFixtureWithCard(`<div class="pricing-card"><h3>Team</h3><div class="price">$12 per user per month</div><p>Everything in Pro for every member of your growing workspace.</p><a href="/signup">Get started</a></div>`), ".pricing-card", 1)

	if len(p.Tiers) != 1 {
		t.Fatalf("got %d tiers, want 1", len(p.Tiers))
	}
	if p.Unit != UnitPerSeat {
		t.Errorf("unit = %q, want %q", p.Unit, UnitPerSeat)
	}
}

func pricingFixtureWithCard(card string) string {
	return `<html><body><section id="pricing">` + card + `</section></body></html>`
}

func arenaFromHTML(t *testing.T, htmlStr string) *arena {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return buildArena(doc.Find("body").Nodes, DefaultOptions())
}

func findTag(a *arena, tag string) int {
	for i := range a.nodes {
		if a.nodes[i].tag == tag {
			return i
		}
	}
	return -1
}

func TestScoreThreshold(t *testing.T) {
	// Currency+amount plus card-vocabulary class scores exactly the minimum
	// and survives the filter.
	kept := arenaFromHTML(t, `<html><body><div class="card">$49 once for lifetime access to everything</div></body></html>`)
	i := findTag(kept, "div")
	if score := kept.scoreCard(i); score != 5 {
		t.Fatalf("score = %d, want 5", score)
	}
	if !kept.keepCard(i, kept.scoreCard(i)) {
		t.Error("card scoring 5 must be kept")
	}

	// The same text without the class trades +2 for a +1 plan word and lands
	// one point short.
	dropped := arenaFromHTML(t, `<html><body><div>$49 once for the Basic lifetime bundle of everything</div></body></html>`)
	j := findTag(dropped, "div")
	if score := dropped.scoreCard(j); score != 4 {
		t.Fatalf("score = %d, want 4", score)
	}
	if dropped.keepCard(j, dropped.scoreCard(j)) {
		t.Error("card scoring 4 must be dropped")
	}
}

func TestKeepCardRequiresCommercialSignal(t *testing.T) {
	// High score but no CTA, no free mention and no priced amount: the final
	// acceptance gate rejects it regardless.
	a := arenaFromHTML(t, `<html><body><div class="pricing plan tier">Our Enterprise tier ships monthly with a Premium plan attached to it</div></body></html>`)
	i := findTag(a, "div")
	score := a.scoreCard(i)
	if score < 5 {
		t.Fatalf("fixture score = %d, expected at least 5", score)
	}
	if a.keepCard(i, score) {
		t.Error("card without CTA, free mention or price must be dropped")
	}
}
