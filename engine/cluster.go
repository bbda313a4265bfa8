package engine

import "sort"

// selectCluster groups candidate card roots by parent container, scores each
// group, and returns the members of the most plausible pricing grid. Groups
// with a single member lose to any repeated group; when no group repeats, the
// raw candidate list is used as-is. The normalization by parent text length
// penalizes one giant container that happens to contain several matches over
// many small, clearly repeated sibling cards.
func (a *arena) selectCluster(cands []int) []int {
	if len(cands) == 0 {
		return nil
	}

	groups := make(map[int][]int)
	for _, c := range cands {
		p := a.nodes[c].parent
		if p < 0 {
			p = c
		}
		groups[p] = append(groups[p], c)
	}

	parents := make([]int, 0, len(groups))
	for p := range groups {
		parents = append(parents, p)
	}
	sort.Ints(parents)

	bestParent := -1
	bestScore := 0.0
	for _, p := range parents {
		members := groups[p]
		if len(members) < 2 {
			continue
		}
		sum := 0
		for _, m := range members {
			sum += a.scoreCard(m)
		}
		denom := float64(len(a.nodes[p].text))
		if denom < 600 {
			denom = 600
		}
		norm := float64(sum) / denom
		if bestParent == -1 || norm > bestScore {
			bestParent = p
			bestScore = norm
		}
	}

	if bestParent == -1 {
		return cands
	}

	// The winning group's parent may be one fused wrapper that the ascent
	// over-climbed into. If its direct children (or grandchildren) repeat a
	// structural signature, those repeats are the real card boundaries.
	if repeated := a.repeatedChildren(bestParent); len(repeated) >= 2 {
		return repeated
	}
	return groups[bestParent]
}

// repeatedChildren finds the majority structural signature among the direct
// children of root, falling back to grandchildren when the direct level has
// fewer than two repeats. Returns nil when nothing repeats.
func (a *arena) repeatedChildren(root int) []int {
	if picked := majoritySignature(a, a.children(root)); len(picked) >= 2 {
		return picked
	}
	var grand []int
	for _, c := range a.children(root) {
		grand = append(grand, a.children(c)...)
	}
	if picked := majoritySignature(a, grand); len(picked) >= 2 {
		return picked
	}
	return nil
}

func majoritySignature(a *arena, nodes []int) []int {
	if len(nodes) < 2 {
		return nil
	}
	counts := make(map[string]int)
	for _, n := range nodes {
		counts[signature(a, n)]++
	}
	best, bestCount := "", 0
	for _, n := range nodes { // iterate nodes, not the map, for determinism
		sig := signature(a, n)
		if counts[sig] > bestCount {
			best, bestCount = sig, counts[sig]
		}
	}
	if bestCount < 2 {
		return nil
	}
	var out []int
	for _, n := range nodes {
		if signature(a, n) == best {
			out = append(out, n)
		}
	}
	return out
}

// signature identifies repeated structure: tag name plus the first few
// sorted class tokens.
func signature(a *arena, i int) string {
	return a.nodes[i].tag + "." + a.nodes[i].classSig(4)
}
