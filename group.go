package dff

// Endpoint is a network address (spec.md §3 "address, port").
type Endpoint struct {
	Address string
	Port    int
}

// Group is the subset of a single dataflow graph that runs in one process
// of a distributed deployment (spec.md §3).
type Group struct {
	name   string
	parent Node
	edges  *EdgeRegistry

	endpoint     *Endpoint
	destinations []Endpoint

	expectedInboundConnections int
}

// NewGroup creates a group named name, declared against parent (the
// building block the group's edges are attached to).
func NewGroup(name string, parent Node) *Group {
	return &Group{name: name, parent: parent, edges: NewEdgeRegistry(name)}
}

// OnEvent installs h as this group's edge registry's event handler.
func (g *Group) OnEvent(h EventHandler) { g.edges.OnEvent(h) }

func (g *Group) Name() string   { return g.name }
func (g *Group) Parent() Node   { return g.parent }
func (g *Group) Edges() *EdgeRegistry { return g.edges }

// Endpoint returns the group's listen endpoint, or nil if it has none (a
// pure source).
func (g *Group) Endpoint() *Endpoint { return g.endpoint }

// SetEndpoint sets the group's listen endpoint, as computed by the
// configuration loader.
func (g *Group) SetEndpoint(ep Endpoint) { g.endpoint = &ep }

// Destinations returns the group's outbound destination endpoints in the
// order they were appended.
func (g *Group) Destinations() []Endpoint { return g.destinations }

// AddDestination appends an outbound destination endpoint.
func (g *Group) AddDestination(ep Endpoint) {
	g.destinations = append(g.destinations, ep)
}

// ExpectedInboundConnections returns the number of other groups whose
// outgoing list names this group (spec.md §4.2).
func (g *Group) ExpectedInboundConnections() int { return g.expectedInboundConnections }

// SetExpectedInboundConnections sets the value computed by the
// configuration loader.
func (g *Group) SetExpectedInboundConnections(n int) { g.expectedInboundConnections = n }

// IsSource reports whether the group has no inbound edges: IN_only and
// INOUT are both empty (spec.md §3).
func (g *Group) IsSource() bool {
	return len(g.edges.InOnly()) == 0 && len(g.edges.INOUT()) == 0
}

// IsSink reports whether the group has no outbound edges: OUT_only and
// INOUT are both empty (spec.md §3).
func (g *Group) IsSink() bool {
	return len(g.edges.OutOnly()) == 0 && len(g.edges.INOUT()) == 0
}

// In returns the group's input-edge declaration handle.
func (g *Group) In() InHandle { return InHandle{g: g} }

// Out returns the group's output-edge declaration handle.
func (g *Group) Out() OutHandle { return OutHandle{g: g} }

// InHandle is the surface by which a node is attached to a group's input
// set (spec.md §9: named methods replacing the "<<"/"<<=" operators).
type InHandle struct{ g *Group }

// AddSerialized declares n as a serializing input edge (the "<<" operator
// in the original notation).
func (h InHandle) AddSerialized(n Node) *Group {
	h.g.edges.AppendIn(n, true, nil)
	return h.g
}

// AddRaw declares n as a non-serializing input edge (the "<<=" operator).
// finalizer, if provided, is the user hook run on the in-process payload
// after the wrapper's input step.
func (h InHandle) AddRaw(n Node, finalizer ...func(any) any) *Group {
	var f func(any) any
	if len(finalizer) > 0 {
		f = finalizer[0]
	}
	h.g.edges.AppendIn(n, false, f)
	return h.g
}

// OutHandle is the symmetric output-side declaration handle.
type OutHandle struct{ g *Group }

// AddSerialized declares n as a serializing output edge.
func (h OutHandle) AddSerialized(n Node) *Group {
	h.g.edges.AppendOut(n, true, nil)
	return h.g
}

// AddRaw declares n as a non-serializing output edge. transform, if
// provided, is the user hook run on the in-process payload before the
// wrapper's output step.
func (h OutHandle) AddRaw(n Node, transform ...func(any) any) *Group {
	var t func(any) any
	if len(transform) > 0 {
		t = transform[0]
	}
	h.g.edges.AppendOut(n, false, t)
	return h.g
}
