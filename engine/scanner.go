package engine

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// arenaNode is one element in the flattened document. Traversal is done over
// indices, never over live node pointers: nodes are stored in preorder, so
// the descendants of node i occupy the half-open range (i, end).
type arenaNode struct {
	tag     string
	id      string
	classes []string
	text      string // collapsed visible text of the subtree
	parent    int    // arena index, -1 for a scope root
	depth     int
	end       int  // exclusive end of this node's subtree in the arena
	microdata bool // schema.org Offer/Product itemtype markup
}

// arena holds every visible element of the scoped document.
type arena struct {
	nodes []arenaNode
	roots []int
	opts  Options
}

// Tags whose subtrees never carry visible pricing copy.
var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"svg": true, "head": true, "link": true, "meta": true, "iframe": true,
}

func buildArena(roots []*html.Node, opts Options) *arena {
	a := &arena{opts: opts}
	for _, r := range roots {
		if r.Type != html.ElementNode || skipNode(r) {
			continue
		}
		a.roots = append(a.roots, len(a.nodes))
		a.addSubtree(r, -1, 0)
	}
	return a
}

// addSubtree appends n and its element descendants in preorder and returns
// the collapsed visible text of the subtree.
func (a *arena) addSubtree(n *html.Node, parent, depth int) string {
	idx := len(a.nodes)
	nd := arenaNode{tag: n.Data, parent: parent, depth: depth}
	for _, attr := range n.Attr {
		switch attr.Key {
		case "id":
			nd.id = attr.Val
		case "class":
			nd.classes = strings.Fields(attr.Val)
		case "itemtype":
			if strings.Contains(attr.Val, "Offer") || strings.Contains(attr.Val, "Product") {
				nd.microdata = true
			}
		}
	}
	a.nodes = append(a.nodes, nd)

	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
			sb.WriteByte(' ')
		case html.ElementNode:
			if skipNode(c) {
				continue
			}
			sb.WriteString(a.addSubtree(c, idx, depth+1))
			sb.WriteByte(' ')
		}
	}

	text := collapseSpace(sb.String())
	a.nodes[idx].text = text
	a.nodes[idx].end = len(a.nodes)
	return text
}

func skipNode(n *html.Node) bool {
	if skippedTags[n.Data] {
		return true
	}
	for _, attr := range n.Attr {
		switch attr.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if attr.Val == "true" {
				return true
			}
		case "style":
			v := strings.ReplaceAll(strings.ToLower(attr.Val), " ", "")
			if strings.Contains(v, "display:none") || strings.Contains(v, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// classAttr is the combined class/id string used for card-vocabulary tests.
func (nd *arenaNode) classAttr() string {
	return strings.Join(nd.classes, " ") + " " + nd.id
}

// classSig is the structural signature used to recognize repeated siblings:
// the first few class tokens, sorted.
func (nd *arenaNode) classSig(max int) string {
	if len(nd.classes) == 0 {
		return ""
	}
	tokens := append([]string(nil), nd.classes...)
	if len(tokens) > max {
		tokens = tokens[:max]
	}
	sort.Strings(tokens)
	return strings.Join(tokens, ".")
}

func (a *arena) children(i int) []int {
	var out []int
	for j := i + 1; j < a.nodes[i].end; j = a.nodes[j].end {
		out = append(out, j)
	}
	return out
}

func (a *arena) countTag(i int, tags ...string) int {
	n := 0
	for j := i; j < a.nodes[i].end; j++ {
		for _, t := range tags {
			if a.nodes[j].tag == t {
				n++
				break
			}
		}
	}
	return n
}

// hasCardSignals reports whether text trips any of the pricing signals that
// make an element worth ascending from.
func hasCardSignals(text string) bool {
	return (HasCurrency(text) && HasAmount(text)) ||
		HasPeriod(text) || HasPlanName(text) || HasCTA(text)
}

// scanCandidates flags every signal-bearing element in the arena and ascends
// each one to its enclosing card boundary. Results de-duplicate on the card
// root's arena index: two signals inside one card ascend to the same root and
// yield one candidate, while identically-classed sibling cards keep distinct
// roots.
func (a *arena) scanCandidates() []int {
	seen := make(map[int]bool)
	var out []int
	for i := range a.nodes {
		nd := &a.nodes[i]
		if nd.text == "" || !hasCardSignals(nd.text) {
			continue
		}
		root := a.ascendToCard(i)
		tag := a.nodes[root].tag
		if tag == "html" || tag == "body" || tag == "main" {
			continue
		}
		if seen[root] {
			continue
		}
		seen[root] = true
		out = append(out, root)
	}
	return out
}

// ascendToCard climbs from a flagged element toward the smallest enclosing
// card-shaped ancestor: card-ish class/id vocabulary, or an anchor/button,
// or a feature list, with total text inside the plausible card-body range.
// Climbing stops early once an ancestor is clearly larger than one card.
func (a *arena) ascendToCard(start int) int {
	best := start
	cur := start
	for step := 0; step < a.opts.MaxAscent && cur >= 0 && a.nodes[cur].parent >= 0; step++ {
		nd := &a.nodes[cur]
		looksCard := ascentClassRe.MatchString(nd.classAttr()) ||
			a.countTag(cur, "a", "button") > 0 ||
			a.countTag(cur, "li") >= 3
		if looksCard && len(nd.text) >= a.opts.MinCardText && len(nd.text) <= a.opts.MaxCardText {
			best = cur
		}
		if len(nd.text) > a.opts.MaxCardText*3/2 {
			break
		}
		cur = nd.parent
	}
	return best
}
