package dff

import "testing"

func TestBuildRoutingTable_Sequential(t *testing.T) {
	a := NewSequentialNode("a", nil)
	top := NewPipeline("top", a)

	farm := NewFarm("f")
	farm.AddWorker(a)

	table := BuildRoutingTable(top, farm)
	if table.Len() != 1 {
		t.Fatalf("table has %d entries, want 1", table.Len())
	}
	idx, ok := table.Lookup(0)
	if !ok || idx != 0 {
		t.Errorf("Lookup(0) = (%d, %v), want (0, true)", idx, ok)
	}
}

func TestBuildRoutingTable_AllToAll_Bijection(t *testing.T) {
	f1 := NewSequentialNode("f1", nil)
	f2 := NewSequentialNode("f2", nil)
	f3 := NewSequentialNode("f3", nil)
	s1 := NewSequentialNode("s1", nil)

	a2a := NewAllToAll("a2a", []Node{f1, f2, f3}, []Node{s1})

	// The farm's worker-declaration order is deliberately not the same as
	// the first-set order, so the routing table must key off identity, not
	// position within the farm.
	farm := NewFarm("f")
	farm.AddWorker(f3)
	farm.AddWorker(f1)
	farm.AddWorker(f2)

	table := BuildRoutingTable(a2a, farm)
	if table.Len() != 3 {
		t.Fatalf("table has %d entries, want 3", table.Len())
	}

	// sourceLeafOrder(a2a) = [f1, f2, f3, s1] (first set, then second set).
	// farm workers in declaration order are f3, f1, f2, at local indices
	// 0, 1, 2 respectively.
	want := map[int]int{2: 0, 0: 1, 1: 2}
	for src, wantLocal := range want {
		gotLocal, ok := table.Lookup(src)
		if !ok || gotLocal != wantLocal {
			t.Errorf("Lookup(%d) = (%d, %v), want (%d, true)", src, gotLocal, ok, wantLocal)
		}
	}
}

func TestBuildRoutingTable_UnmatchedLeafStillAdvancesLocalIndex(t *testing.T) {
	f1 := NewSequentialNode("f1", nil)
	s1 := NewSequentialNode("s1", nil)
	a2a := NewAllToAll("a2a", []Node{f1}, []Node{s1})

	stray := NewSequentialNode("stray", nil)

	farm := NewFarm("f")
	farm.AddWorker(stray)
	farm.AddWorker(f1)

	table := BuildRoutingTable(a2a, farm)

	// stray doesn't match anything in sourceLeafOrder, so it consumes local
	// index 0 without an entry; f1 is recorded at local index 1, not 0 —
	// local indices advance for every farm input leaf, matched or not: an
	// implementation that advanced only on a match would wrongly map
	// source index 0 to local index 0.
	idx, ok := table.Lookup(0)
	if !ok || idx != 1 {
		t.Fatalf("Lookup(0) = (%d, %v), want (1, true)", idx, ok)
	}
	if table.Len() != 1 {
		t.Errorf("table has %d entries, want 1 (stray leaf has no entry)", table.Len())
	}
}

func TestLeafMatches_ThroughWrapper(t *testing.T) {
	orig := NewSequentialNode("orig", nil)
	w := NewWrapper("w", orig)

	if !leafMatches(w, orig) {
		t.Error("leafMatches should match a wrapper against its original")
	}
	if !leafMatches(orig, w) {
		t.Error("leafMatches should match in either direction")
	}
	other := NewSequentialNode("other", nil)
	if leafMatches(w, other) {
		t.Error("leafMatches should not match unrelated nodes")
	}
}
