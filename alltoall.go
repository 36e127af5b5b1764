package dff

import "fmt"

// AllToAll is a composite building block connecting every node of a first
// set to every node of a second set. It implements the
// AllToAll.get_first_set/get_second_set/change_node interfaces of
// spec.md §6.
type AllToAll struct {
	BaseNode
	firstSet  []Node
	secondSet []Node
}

// NewAllToAll creates an all-to-all connector between firstSet and
// secondSet, identified by id.
func NewAllToAll(id string, firstSet, secondSet []Node) *AllToAll {
	return &AllToAll{
		BaseNode:  NewBaseNode(id),
		firstSet:  append([]Node(nil), firstSet...),
		secondSet: append([]Node(nil), secondSet...),
	}
}

func (a *AllToAll) IsAllToAll() bool { return true }

func (a *AllToAll) GetFirstSet() []Node  { return a.firstSet }
func (a *AllToAll) GetSecondSet() []Node { return a.secondSet }

func (a *AllToAll) GetInNodes() []Node {
	var out []Node
	for _, n := range a.firstSet {
		out = append(out, n.GetInNodes()...)
	}
	return out
}

func (a *AllToAll) GetOutNodes() []Node {
	var out []Node
	for _, n := range a.secondSet {
		out = append(out, n.GetOutNodes()...)
	}
	return out
}

// ChangeNode substitutes old with new in either set.
func (a *AllToAll) ChangeNode(old, new Node, owned bool) error {
	for i, n := range a.firstSet {
		if n == old {
			a.firstSet[i] = new
			return nil
		}
	}
	for i, n := range a.secondSet {
		if n == old {
			a.secondSet[i] = new
			return nil
		}
	}
	return fmt.Errorf("%w: child not found in all-to-all %q", ErrSubstitutionTarget, a.ID())
}

var _ Node = (*AllToAll)(nil)
