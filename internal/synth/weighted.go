package synth

// WeightedEntry pairs a value with its sampling weight.
type WeightedEntry struct {
	Value  string
	Weight int
}

// WeightedTable selects values from a discrete non-uniform distribution
// using a single uniform draw against cumulative weights.
type WeightedTable struct {
	entries []WeightedEntry
	total   int
}

// NewWeightedTable builds a weighted table. Entries with non-positive
// weights are ignored.
func NewWeightedTable(entries ...WeightedEntry) *WeightedTable {
	t := &WeightedTable{}
	for _, e := range entries {
		if e.Weight <= 0 {
			continue
		}
		t.entries = append(t.entries, e)
		t.total += e.Weight
	}
	return t
}

// Pick maps a uniform draw u in [0,1) to a value. The probability of
// each value is its weight divided by the table's total weight.
func (t *WeightedTable) Pick(u float64) string {
	target := u * float64(t.total)
	cum := 0.0
	for _, e := range t.entries {
		cum += float64(e.Weight)
		if target < cum {
			return e.Value
		}
	}
	// u is strictly below 1, so this is only reachable through
	// floating-point slack at the top edge.
	return t.entries[len(t.entries)-1].Value
}

// TotalWeight returns the sum of all entry weights.
func (t *WeightedTable) TotalWeight() int {
	return t.total
}
