package engine

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Result is the complete output of one extraction run: the scoped HTML, its
// text projection, the canonical pricing document, and the content
// fingerprints a snapshot is made of. It is a pure function of the inputs;
// persistence and notification are the caller's concern, and a caller that
// fails to persist still holds everything it computed.
type Result struct {
	ScopedHTML       string            `json:"html"`
	Text             string            `json:"text"`
	Pricing          NormalizedPricing `json:"pricing"`
	HTMLHash         string            `json:"html_hash"`
	TextHash         string            `json:"text_hash"`
	PricingHash      string            `json:"pricing_hash"`
	VisualHash       *string           `json:"visual_hash"` // extension point, never computed
	ScreenshotSHA256 *string           `json:"screenshot_sha256"`
}

// Run resolves the scope, extracts pricing, and fingerprints every
// representation of the captured page. screenshot may be nil.
func (e *Engine) Run(htmlStr, selector string, nodeIndex int, screenshot []byte) Result {
	pricing := e.Extract(htmlStr, selector, nodeIndex)
	scoped := ScopedHTML(htmlStr, selector, nodeIndex)
	text := VisibleText(scoped)

	return Result{
		ScopedHTML:       scoped,
		Text:             text,
		Pricing:          pricing,
		HTMLHash:         HashString(scoped),
		TextHash:         HashString(text),
		PricingHash:      HashPricing(pricing),
		VisualHash:       nil,
		ScreenshotSHA256: HashScreenshot(screenshot),
	}
}

// ScopedHTML returns the HTML actually examined: the matched element(s) when
// the selector resolves, the full document otherwise. Selector errors and
// misses both fall back to the full input, matching how snapshots were
// stored before scoping existed.
func ScopedHTML(htmlStr, selector string, nodeIndex int) string {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return htmlStr
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return htmlStr
	}
	matches := doc.FindMatcher(matcher)
	if matches.Length() == 0 {
		return htmlStr
	}
	if nodeIndex > 0 {
		matches = matches.Eq(clampIndex(nodeIndex, matches.Length()))
	}

	var parts []string
	matches.Each(func(_ int, sel *goquery.Selection) {
		if h, err := goquery.OuterHtml(sel); err == nil {
			parts = append(parts, h)
		}
	})
	if len(parts) == 0 {
		return htmlStr
	}
	return strings.Join(parts, "\n")
}
