package engine

// Tier change kinds.
const (
	ChangeAdded    = "added"
	ChangeRemoved  = "removed"
	ChangeModified = "modified"
)

// UnitChange records a document-level unit transition.
type UnitChange struct {
	From Unit `json:"from"`
	To   Unit `json:"to"`
}

// TextChange records a string-valued field transition.
type TextChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// AmountChange records an amount transition. A nil side means the price was
// absent ("contact us"), which is distinct from any number.
type AmountChange struct {
	From *float64 `json:"from"`
	To   *float64 `json:"to"`
}

// TierChange is one entry in a diff: a tier that appeared, disappeared, or
// changed in place at a given position.
type TierChange struct {
	Index    int           `json:"index"`
	Change   string        `json:"change"`
	From     *Tier         `json:"from,omitempty"`
	To       *Tier         `json:"to,omitempty"`
	Name     *TextChange   `json:"name,omitempty"`
	Currency *TextChange   `json:"currency,omitempty"`
	Period   *TextChange   `json:"period,omitempty"`
	Amount   *AmountChange `json:"amount,omitempty"`
}

// DiffResult is the structural comparison of two pricing documents. An empty
// result means no material change.
type DiffResult struct {
	Unit  *UnitChange  `json:"unit,omitempty"`
	Tiers []TierChange `json:"tiers,omitempty"`
}

// Changed reports whether the diff found any material difference.
func (d DiffResult) Changed() bool {
	return d.Unit != nil || len(d.Tiers) > 0
}

// Diff compares current against previous. Tiers are aligned strictly by
// position, not matched by name, so a pure reordering of identical tiers is
// reported as modifications at every affected index.
func Diff(current, previous NormalizedPricing) DiffResult {
	var res DiffResult

	if current.Unit != previous.Unit {
		res.Unit = &UnitChange{From: previous.Unit, To: current.Unit}
	}

	n := len(current.Tiers)
	if len(previous.Tiers) > n {
		n = len(previous.Tiers)
	}
	for i := 0; i < n; i++ {
		switch {
		case i >= len(current.Tiers):
			t := previous.Tiers[i]
			res.Tiers = append(res.Tiers, TierChange{Index: i, Change: ChangeRemoved, From: &t})
		case i >= len(previous.Tiers):
			t := current.Tiers[i]
			res.Tiers = append(res.Tiers, TierChange{Index: i, Change: ChangeAdded, To: &t})
		default:
			if tc, ok := diffTier(i, current.Tiers[i], previous.Tiers[i]); ok {
				res.Tiers = append(res.Tiers, tc)
			}
		}
	}
	return res
}

func diffTier(index int, cur, prev Tier) (TierChange, bool) {
	tc := TierChange{Index: index, Change: ChangeModified}
	changed := false

	if cur.Name != prev.Name {
		tc.Name = &TextChange{From: prev.Name, To: cur.Name}
		changed = true
	}
	if cur.Currency != prev.Currency {
		tc.Currency = &TextChange{From: string(prev.Currency), To: string(cur.Currency)}
		changed = true
	}
	if cur.Period != prev.Period {
		tc.Period = &TextChange{From: string(prev.Period), To: string(cur.Period)}
		changed = true
	}
	if !amountEqual(cur.Amount, prev.Amount) {
		tc.Amount = &AmountChange{From: prev.Amount, To: cur.Amount}
		changed = true
	}
	return tc, changed
}

func amountEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
