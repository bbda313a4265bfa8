package engine

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// ScopeTag classifies how a scope was resolved.
type ScopeTag string

const (
	// ScopeNoHint means no selector was supplied; scope is the document body.
	ScopeNoHint ScopeTag = "no_hint"
	// ScopeSelectorNotFound means a valid selector matched nothing. This is a
	// hard miss: the scope is empty and callers must not fall back to
	// heuristics silently.
	ScopeSelectorNotFound ScopeTag = "selector_not_found"
	// ScopeInvalidSelector means the selector failed to compile; scope
	// degrades to the document body.
	ScopeInvalidSelector ScopeTag = "invalid_selector"
	// ScopeAllMatches means the selector matched and no index narrowed it.
	ScopeAllMatches ScopeTag = "all_matches"
	// ScopePinned means selector plus index resolved exactly one element.
	ScopePinned ScopeTag = "pinned"
)

// ScopeResult is the outcome of narrowing a document to the subtree(s) the
// engine is permitted to examine.
type ScopeResult struct {
	Tag            ScopeTag
	Selection      *goquery.Selection
	EffectiveIndex int // 0-based index actually used, -1 when not pinned
}

// Pinned reports whether the scope is exactly one human-chosen element.
func (s ScopeResult) Pinned() bool { return s.Tag == ScopePinned }

// Empty reports whether the scope contains no elements.
func (s ScopeResult) Empty() bool {
	return s.Selection == nil || s.Selection.Length() == 0
}

// ResolveScope narrows doc down to the region named by selector and the
// 1-based index. Selector syntax errors degrade to the whole body; selector
// misses do not. An index outside [1,N] is clamped rather than rejected,
// because the page may have shifted between selector capture and check time.
func ResolveScope(doc *goquery.Document, selector string, index int) ScopeResult {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return ScopeResult{Tag: ScopeNoHint, Selection: doc.Find("body"), EffectiveIndex: -1}
	}

	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return ScopeResult{Tag: ScopeInvalidSelector, Selection: doc.Find("body"), EffectiveIndex: -1}
	}

	matches := doc.FindMatcher(matcher)
	if matches.Length() == 0 {
		return ScopeResult{Tag: ScopeSelectorNotFound, EffectiveIndex: -1}
	}

	if index <= 0 {
		return ScopeResult{Tag: ScopeAllMatches, Selection: matches, EffectiveIndex: -1}
	}

	idx := clampIndex(index, matches.Length())
	return ScopeResult{Tag: ScopePinned, Selection: matches.Eq(idx), EffectiveIndex: idx}
}

// clampIndex converts a 1-based match index into a 0-based position clamped
// to [0, n-1].
func clampIndex(index, n int) int {
	idx := index - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}
