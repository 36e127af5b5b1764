package dff

// RoutingTable maps a source-side input index — the position an edge held
// in the level-1 building block's input-leaf ordering, before projection —
// to the worker-local input index it holds in the projected farm
// (spec.md §4.5). Keys are unique. Every farm input leaf consumes a local
// index, so values are dense over [0, N) when every leaf has a source-side
// match; a leaf without one leaves its local index unmapped.
type RoutingTable struct {
	sourceToLocal map[int]int
}

// Lookup returns the worker-local index for a given source-side index.
func (t *RoutingTable) Lookup(sourceIndex int) (int, bool) {
	idx, ok := t.sourceToLocal[sourceIndex]
	return idx, ok
}

// Len reports how many entries the table holds.
func (t *RoutingTable) Len() int { return len(t.sourceToLocal) }

// Entries returns the table as a plain map, for inspection and testing.
func (t *RoutingTable) Entries() map[int]int {
	out := make(map[int]int, len(t.sourceToLocal))
	for k, v := range t.sourceToLocal {
		out[k] = v
	}
	return out
}

// sourceLeafOrder builds the pre-projection input-leaf ordering of
// spec.md §4.5: for an all-to-all, every input leaf of every first-set
// node in declaration order followed by every input leaf of every
// second-set node; for any other building block, the flat GetInNodes
// order.
func sourceLeafOrder(level1 Node) []Node {
	if level1.IsAllToAll() {
		a := level1.(*AllToAll)
		var out []Node
		for _, n := range a.GetFirstSet() {
			out = append(out, n.GetInNodes()...)
		}
		for _, n := range a.GetSecondSet() {
			out = append(out, n.GetInNodes()...)
		}
		return out
	}
	return level1.GetInNodes()
}

// leafMatches implements spec.md §4.5's match predicate: a leaf matches
// when it equals the wrapper or the wrapper's original, in either
// direction (one side may already have been substituted, the other not).
func leafMatches(a, b Node) bool {
	if a == b {
		return true
	}
	if OriginalOf(a) == b {
		return true
	}
	if a == OriginalOf(b) {
		return true
	}
	return OriginalOf(a) == OriginalOf(b)
}

// findSourceIndex scans order for a leaf matching target, incrementing the
// position on every element and returning as soon as one matches — the
// "increment always, return on match" semantics spec.md §9 calls for,
// resolving the source's ambiguous "else index++" path.
func findSourceIndex(order []Node, target Node) (int, bool) {
	for idx, leaf := range order {
		if leafMatches(leaf, target) {
			return idx, true
		}
	}
	return -1, false
}

// BuildRoutingTable implements spec.md §4.5: for every worker-local input
// leaf of farm, in worker declaration order and each worker's GetInNodes
// order, find its source-side index within level1's pre-projection
// input-leaf ordering and record the pair.
func BuildRoutingTable(level1 Node, farm *Farm) *RoutingTable {
	order := sourceLeafOrder(level1)
	table := &RoutingTable{sourceToLocal: make(map[int]int)}

	localIdx := 0
	for _, w := range farm.Workers() {
		for _, leaf := range w.GetInNodes() {
			if srcIdx, ok := findSourceIndex(order, leaf); ok {
				table.sourceToLocal[srcIdx] = localIdx
			}
			localIdx++
		}
	}

	return table
}
