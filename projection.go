package dff

import (
	"errors"
	"fmt"
)

// ErrNotProjected signals that processBB rejected a building block for a
// group — not a failure of the overall projection, just "try the next
// candidate" (spec.md §4.4 Step 2's all-to-all fallback).
var ErrNotProjected = errors.New("building block not projected for this group")

// changer is the common shape of Pipeline/AllToAll/Combine's change_node
// (spec.md §6).
type changer interface {
	ChangeNode(old, new Node, owned bool) error
}

// isComposite reports whether n is one of the three composite building
// block kinds (as opposed to a sequential leaf or an already-substituted
// wrapper/forwarder).
func isComposite(n Node) bool {
	return n.IsPipeline() || n.IsAllToAll() || n.IsComb()
}

// findEnclosingBB is get_bb(root, target) of spec.md §6: the immediate
// building-block ancestor of target within root, or nil if target isn't
// reachable under root at all. Matching is by pointer identity per
// spec.md §3.
func findEnclosingBB(root Node, target Node) Node {
	switch {
	case root.IsPipeline():
		p := root.(*Pipeline)
		for _, stage := range p.GetStages() {
			if stage == target {
				return root
			}
			if isComposite(stage) {
				if bb := findEnclosingBB(stage, target); bb != nil {
					return bb
				}
			}
		}
	case root.IsAllToAll():
		a := root.(*AllToAll)
		for _, c := range a.GetFirstSet() {
			if c == target {
				return root
			}
			if isComposite(c) {
				if bb := findEnclosingBB(c, target); bb != nil {
					return bb
				}
			}
		}
		for _, c := range a.GetSecondSet() {
			if c == target {
				return root
			}
			if isComposite(c) {
				if bb := findEnclosingBB(c, target); bb != nil {
					return bb
				}
			}
		}
	case root.IsComb():
		c := root.(*Combine)
		for _, child := range []Node{c.GetFirst(), c.GetLast()} {
			if child == target {
				return root
			}
			if isComposite(child) {
				if bb := findEnclosingBB(child, target); bb != nil {
					return bb
				}
			}
		}
	}
	return nil
}

// FindLevel1BB implements spec.md §4.4 Step 1: walk upward from parent
// through enclosing building blocks under top until the immediate child of
// top itself is reached.
func FindLevel1BB(top *Pipeline, parent Node) (Node, error) {
	current := parent
	for {
		if current == Node(top) {
			return nil, &TopologyError{Detail: "a group was created from a building block not included in the main pipeline"}
		}
		bb := findEnclosingBB(top, current)
		if bb == nil {
			return nil, &TopologyError{Detail: "a group was created from a building block not included in the main pipeline"}
		}
		if bb == Node(top) {
			return current, nil
		}
		current = bb
	}
}

// substituteWrapper implements spec.md §4.4 Step 4: locate the enclosing
// building block containing original as a stage/child within searchRoot
// and perform an in-place swap for replacement. Fails if the enclosing
// structure is not a pipeline, all-to-all, or combine.
func substituteWrapper(searchRoot Node, original, replacement Node) error {
	enclosing := findEnclosingBB(searchRoot, original)
	if enclosing == nil {
		return &TopologyError{Detail: fmt.Sprintf("no enclosing building block found for %s", original.ID())}
	}
	c, ok := enclosing.(changer)
	if !ok {
		return &TopologyError{Detail: fmt.Sprintf("enclosing building block for %s does not support substitution", original.ID())}
	}
	if err := c.ChangeNode(original, replacement, true); err != nil {
		return &TopologyError{Detail: "wrapper substitution failed", Cause: err}
	}
	return nil
}

// processBB implements spec.md §4.4 Step 3. top is the enclosing top-level
// pipeline, used only to locate bb's own container (anywhere under top)
// when bb is itself a sequential leaf being substituted; for a composite bb
// the substitutions happen within bb's own substructure.
func processBB(top *Pipeline, bb Node, g *Group) ([]Node, error) {
	inSet := g.Edges().InOnly()
	outSet := g.Edges().OutOnly()

	if bb.IsSequential() {
		if g.IsSource() {
			if rec, ok := outSet[bb]; ok {
				if err := substituteWrapper(top, bb, rec.Replacement); err != nil {
					return nil, err
				}
				return []Node{rec.Replacement}, nil
			}
		}
		if g.IsSink() {
			if rec, ok := inSet[bb]; ok {
				if err := substituteWrapper(top, bb, rec.Replacement); err != nil {
					return nil, err
				}
				return []Node{rec.Replacement}, nil
			}
		}
		return nil, fmt.Errorf("%w: sequential node %s is not an edge of group %s", ErrNotProjected, bb.ID(), g.Name())
	}

	inLeaves := bb.GetInNodes()
	outLeaves := bb.GetOutNodes()

	if !g.IsSource() {
		for _, leaf := range inLeaves {
			if _, ok := inSet[leaf]; !ok {
				return nil, fmt.Errorf("%w: input leaf %s of %s not covered by group %s", ErrNotProjected, leaf.ID(), bb.ID(), g.Name())
			}
		}
	}
	if !g.IsSink() {
		for _, leaf := range outLeaves {
			if _, ok := outSet[leaf]; !ok {
				return nil, fmt.Errorf("%w: output leaf %s of %s not covered by group %s", ErrNotProjected, leaf.ID(), bb.ID(), g.Name())
			}
		}
	}

	for _, leaf := range inLeaves {
		if rec, ok := inSet[leaf]; ok {
			if err := substituteWrapper(bb, leaf, rec.Replacement); err != nil {
				return nil, err
			}
		}
	}
	for _, leaf := range outLeaves {
		if rec, ok := outSet[leaf]; ok {
			if err := substituteWrapper(bb, leaf, rec.Replacement); err != nil {
				return nil, err
			}
		}
	}

	return []Node{bb}, nil
}

// ProjectionResult is the output of projecting one group: a runnable farm
// (without transport attached — that's the caller's job, per spec.md §1's
// "transport is an external collaborator") plus the routing table the
// caller hands to its receiver.
type ProjectionResult struct {
	Farm    *Farm
	Routing *RoutingTable
}

// ProjectGroup implements spec.md §4.4 Steps 2, 3, 5, 7 (Steps 4 and 6 are
// substituteWrapper and the caller's transport attachment, respectively)
// plus §4.5's routing table.
func ProjectGroup(g *Group, top *Pipeline, handlers ...EventHandler) (*ProjectionResult, error) {
	emit := MultiEventHandler(handlers...)
	emit(NewEvent(EventProjectionStarted, g.Name()))

	level1, err := FindLevel1BB(top, g.Parent())
	if err != nil {
		return nil, err
	}

	var workers []Node

	if level1.IsAllToAll() {
		a := level1.(*AllToAll)
		if ws, err := processBB(top, a, g); err == nil {
			workers = append(workers, ws...)
		} else {
			for _, child := range a.GetFirstSet() {
				if ws, cerr := processBB(top, child, g); cerr == nil {
					workers = append(workers, ws...)
				}
			}
			for _, child := range a.GetSecondSet() {
				if ws, cerr := processBB(top, child, g); cerr == nil {
					workers = append(workers, ws...)
				}
			}
		}
	} else {
		ws, err := processBB(top, level1, g)
		if err != nil {
			return nil, err
		}
		workers = append(workers, ws...)
	}

	// Step 5: INOUT entries attach directly as workers, self-contained.
	for _, rec := range g.Edges().INOUT() {
		workers = append(workers, rec.Replacement)
	}

	farm := NewFarm(g.Name() + "#farm")
	for _, w := range workers {
		farm.AddWorker(w)
	}

	// Step 7: validation.
	if len(farm.Workers()) == 0 {
		return nil, &TopologyError{Detail: fmt.Sprintf("projected farm for group %s has no workers", g.Name())}
	}

	routing := BuildRoutingTable(level1, farm)

	emit(NewEvent(EventFarmBuilt, g.Name()).WithPayload("workers", len(farm.Workers())))

	return &ProjectionResult{Farm: farm, Routing: routing}, nil
}
