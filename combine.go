package dff

import "fmt"

// Combine is a composite building block pairing exactly two nodes, first
// feeding last. It implements the Combine.get_first/get_last/change_node
// interfaces of spec.md §6.
type Combine struct {
	BaseNode
	first Node
	last  Node
}

// NewCombine creates a combine of first and last, identified by id.
func NewCombine(id string, first, last Node) *Combine {
	return &Combine{BaseNode: NewBaseNode(id), first: first, last: last}
}

func (c *Combine) IsComb() bool { return true }

func (c *Combine) GetFirst() Node { return c.first }
func (c *Combine) GetLast() Node  { return c.last }

func (c *Combine) GetInNodes() []Node  { return c.first.GetInNodes() }
func (c *Combine) GetOutNodes() []Node { return c.last.GetOutNodes() }

// ChangeNode substitutes old with new as whichever of first/last it is.
func (c *Combine) ChangeNode(old, new Node, owned bool) error {
	switch old {
	case c.first:
		c.first = new
		return nil
	case c.last:
		c.last = new
		return nil
	default:
		return fmt.Errorf("%w: child not found in combine %q", ErrSubstitutionTarget, c.ID())
	}
}

var _ Node = (*Combine)(nil)
