package engine

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Tier is one normalized plan/card record.
type Tier struct {
	Name     string   `json:"name,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
	Currency Currency `json:"currency,omitempty"`
	Period   Period   `json:"period,omitempty"`
	Raw      string   `json:"raw,omitempty"`
	Features []string `json:"features,omitempty"`
}

// NormalizedPricing is the canonical representation of what a page charges.
// Tier order follows document discovery order and is significant: the diff
// aligns tiers by position, not by name.
type NormalizedPricing struct {
	Unit   Unit   `json:"unit"`
	Tiers  []Tier `json:"tiers"`
	Reason string `json:"reason,omitempty"`
}

// Reason tags for empty extraction results. Extraction never fails with an
// error; an unusable page produces an empty document with a reason.
const (
	ReasonSelectorNotFound = "selector_not_found"
	ReasonNoCardsFound     = "no_cards_found"
)

// Options are the tunable thresholds of the heuristic card classifier.
type Options struct {
	MaxAscent     int // parent levels climbed looking for a card boundary
	MinCardText   int // shortest plausible card body, in characters
	MaxCardText   int // longest plausible card body, in characters
	MinCardScore  int // plausibility score a card must reach to survive
	MaxFeatures   int // feature list entries kept per tier
	MaxFeatureLen int // characters kept per feature entry
}

// DefaultOptions returns the thresholds tuned against real pricing pages.
func DefaultOptions() Options {
	return Options{
		MaxAscent:     6,
		MinCardText:   30,
		MaxCardText:   1200,
		MinCardScore:  5,
		MaxFeatures:   50,
		MaxFeatureLen: 160,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxAscent <= 0 {
		o.MaxAscent = d.MaxAscent
	}
	if o.MinCardText <= 0 {
		o.MinCardText = d.MinCardText
	}
	if o.MaxCardText <= 0 {
		o.MaxCardText = d.MaxCardText
	}
	if o.MinCardScore <= 0 {
		o.MinCardScore = d.MinCardScore
	}
	if o.MaxFeatures <= 0 {
		o.MaxFeatures = d.MaxFeatures
	}
	if o.MaxFeatureLen <= 0 {
		o.MaxFeatureLen = d.MaxFeatureLen
	}
	return o
}

// Engine extracts pricing signals from HTML and turns them into
// NormalizedPricing documents. It is stateless and safe for concurrent use.
type Engine struct {
	opts Options
}

// New creates an Engine. Zero fields in opts fall back to defaults.
func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// scoreCard computes the additive plausibility score of the card rooted at i.
func (a *arena) scoreCard(i int) int {
	nd := &a.nodes[i]
	t := nd.text
	s := 0
	if HasCurrency(t) && HasAmount(t) {
		s += 3
	}
	if HasPeriod(t) {
		s += 2
	}
	if HasFree(t) {
		s++
	}
	if HasPlanName(t) {
		s++
	}
	if cardClassRe.MatchString(nd.classAttr()) {
		s += 2
	}
	if a.hasCTA(i) {
		s += 2
	}
	if a.countTag(i, "li") >= 3 {
		s++
	}
	if a.hasReplicatedSiblings(i) {
		s += 2
	}
	if a.hasOfferMicrodata(i) {
		s++
	}
	return s
}

// hasCTA reports whether the subtree at i contains an anchor or button whose
// text is a call-to-action phrase.
func (a *arena) hasCTA(i int) bool {
	for j := i; j < a.nodes[i].end; j++ {
		nd := &a.nodes[j]
		if (nd.tag == "a" || nd.tag == "button") && HasCTA(nd.text) {
			return true
		}
	}
	return false
}

// hasReplicatedSiblings reports whether node i sits in a row of structurally
// identical siblings, the shape of a card in a pricing grid.
func (a *arena) hasReplicatedSiblings(i int) bool {
	sig := a.nodes[i].classSig(4)
	if sig == "" {
		return false
	}
	parent := a.nodes[i].parent
	if parent < 0 {
		return false
	}
	same := 0
	for _, c := range a.children(parent) {
		if c != i && a.nodes[c].classSig(4) == sig {
			same++
		}
	}
	return same >= 2
}

func (a *arena) hasOfferMicrodata(i int) bool {
	for j := i; j < a.nodes[i].end; j++ {
		if a.nodes[j].microdata {
			return true
		}
	}
	return false
}

// keepCard applies the final acceptance filter from the classifier: enough
// score, card-sized body, and at least one strong commercial signal.
func (a *arena) keepCard(i, score int) bool {
	nd := &a.nodes[i]
	if score < a.opts.MinCardScore {
		return false
	}
	if len(nd.text) < a.opts.MinCardText || len(nd.text) > a.opts.MaxCardText {
		return false
	}
	return a.hasCTA(i) || HasFree(nd.text) || (HasCurrency(nd.text) && HasAmount(nd.text))
}

// tierFromCard converts the card rooted at i into a Tier record.
func (a *arena) tierFromCard(i int) Tier {
	nd := &a.nodes[i]
	raw := nd.text

	priceText := raw
	if j := a.firstPriceBearing(i); j >= 0 {
		priceText = a.nodes[j].text
	}

	tier := Tier{
		Name:     a.headingText(i),
		Currency: CurrencyUnknown,
		Period:   ParsePeriod(raw),
		Raw:      raw,
		Features: a.features(i),
	}
	if amount, currency, ok := ParseAmount(priceText); ok {
		v := amount
		tier.Amount = &v
		tier.Currency = currency
	}
	return tier
}

// firstPriceBearing returns the first descendant of i (document order) whose
// text carries a currency-adjacent amount, or -1.
func (a *arena) firstPriceBearing(i int) int {
	for j := i + 1; j < a.nodes[i].end; j++ {
		if _, _, ok := ParseAmount(a.nodes[j].text); ok {
			return j
		}
	}
	return -1
}

// headingText picks the plan name: the first heading or plan/tier-classed
// element, then the first strong/b, then the first six words of the card.
func (a *arena) headingText(i int) string {
	for j := i + 1; j < a.nodes[i].end; j++ {
		nd := &a.nodes[j]
		switch nd.tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if nd.text != "" {
				return nd.text
			}
		}
		cls := strings.ToLower(strings.Join(nd.classes, " "))
		if (strings.Contains(cls, "plan") || strings.Contains(cls, "tier")) && nd.text != "" {
			return nd.text
		}
	}
	for j := i + 1; j < a.nodes[i].end; j++ {
		nd := &a.nodes[j]
		if (nd.tag == "strong" || nd.tag == "b") && nd.text != "" {
			return nd.text
		}
	}
	words := strings.Fields(a.nodes[i].text)
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}

// features collects list-item text under the card, capped in count and in
// per-entry length.
func (a *arena) features(i int) []string {
	var out []string
	for j := i + 1; j < a.nodes[i].end && len(out) < a.opts.MaxFeatures; j++ {
		nd := &a.nodes[j]
		if nd.tag != "li" || nd.text == "" {
			continue
		}
		t := nd.text
		if len(t) > a.opts.MaxFeatureLen {
			cut := a.opts.MaxFeatureLen
			for cut > 0 && !utf8.RuneStart(t[cut]) {
				cut--
			}
			t = t[:cut]
		}
		out = append(out, t)
	}
	return out
}

type scoredCard struct {
	idx   int
	score int
}

// extractCards runs the full heuristic path: scan, cluster, filter, rank.
func (a *arena) extractCards() []scoredCard {
	selected := a.selectCluster(a.scanCandidates())

	// Prefer grids: when several selected nodes repeat a class signature,
	// stray one-off matches are dropped.
	counts := make(map[string]int)
	for _, i := range selected {
		counts[a.nodes[i].classSig(3)]++
	}
	var gridded []int
	for _, i := range selected {
		if counts[a.nodes[i].classSig(3)] >= 2 {
			gridded = append(gridded, i)
		}
	}
	if len(gridded) >= 2 {
		selected = gridded
	}

	var cards []scoredCard
	for _, i := range selected {
		score := a.scoreCard(i)
		if a.keepCard(i, score) {
			cards = append(cards, scoredCard{idx: i, score: score})
		}
	}
	sort.SliceStable(cards, func(x, y int) bool { return cards[x].score > cards[y].score })
	return cards
}

// Extract turns raw HTML into a NormalizedPricing document. When selector is
// empty the whole body is scanned heuristically; selector plus nodeIndex pins
// a single human-chosen card region and skips scanning entirely; selector
// without an index processes every match.
func (e *Engine) Extract(htmlStr, selector string, nodeIndex int) NormalizedPricing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return NormalizedPricing{Unit: UnitUnknown, Tiers: nil, Reason: ReasonNoCardsFound}
	}

	scope := ResolveScope(doc, selector, nodeIndex)
	if scope.Tag == ScopeSelectorNotFound {
		return NormalizedPricing{Unit: UnitUnknown, Tiers: nil, Reason: ReasonSelectorNotFound}
	}
	if scope.Empty() {
		return NormalizedPricing{Unit: UnitUnknown, Tiers: nil, Reason: ReasonNoCardsFound}
	}

	a := buildArena(scope.Selection.Nodes, e.opts)

	var tiers []Tier
	switch scope.Tag {
	case ScopePinned:
		// Low-ambiguity fast path: the pinned element is the sole card.
		if len(a.roots) > 0 {
			tiers = keepNamedOrPriced([]Tier{a.tierFromCard(a.roots[0])})
		}
	case ScopeAllMatches:
		for _, root := range a.roots {
			for _, card := range a.cardRootsIn(root) {
				tiers = append(tiers, a.tierFromCard(card))
			}
		}
		tiers = keepNamedOrPriced(tiers)
	default: // ScopeNoHint, ScopeInvalidSelector: heuristic whole-body scan
		for _, c := range a.extractCards() {
			tiers = append(tiers, a.tierFromCard(c.idx))
		}
	}

	p := assemblePricing(tiers)
	if len(p.Tiers) == 0 && p.Reason == "" {
		p.Reason = ReasonNoCardsFound
	}
	return p
}

// cardRootsIn splits a matched container into card roots: its direct
// children that carry a price, or the container itself when none do.
func (a *arena) cardRootsIn(root int) []int {
	var priced []int
	for _, c := range a.children(root) {
		if priceRe.MatchString(a.nodes[c].text) {
			priced = append(priced, c)
		}
	}
	if len(priced) > 0 {
		return priced
	}
	return []int{root}
}

func keepNamedOrPriced(tiers []Tier) []Tier {
	var out []Tier
	for _, t := range tiers {
		if t.Amount != nil || t.Name != "" {
			out = append(out, t)
		}
	}
	return out
}

// assemblePricing derives the document-level unit from the tiers. Unit is
// never set independently: per_seat when any tier's raw text says so, else
// per_month when any tier resolved a billing period.
func assemblePricing(tiers []Tier) NormalizedPricing {
	unit := UnitUnknown
	for _, t := range tiers {
		if HasPerSeat(t.Raw) {
			unit = UnitPerSeat
			break
		}
	}
	if unit == UnitUnknown {
		for _, t := range tiers {
			if t.Period != PeriodUnknown {
				unit = UnitPerMonth
				break
			}
		}
	}
	return NormalizedPricing{Unit: unit, Tiers: tiers}
}
