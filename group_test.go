package dff

import "testing"

func TestGroup_IsSourceIsSink(t *testing.T) {
	parent := NewSequentialNode("parent", nil)
	g := NewGroup("G", parent)

	if !g.IsSource() || !g.IsSink() {
		t.Fatal("a group with no edges should be both source and sink")
	}

	a := NewSequentialNode("a", nil)
	g.In().AddSerialized(a)
	if g.IsSource() {
		t.Error("a group with an IN edge should not be a source")
	}
	if !g.IsSink() {
		t.Error("a group with only an IN edge should still be a sink")
	}

	b := NewSequentialNode("b", nil)
	g.Out().AddSerialized(b)
	if g.IsSink() {
		t.Error("a group with an OUT edge should not be a sink")
	}
}

func TestGroup_InOutHandles(t *testing.T) {
	g := NewGroup("G", NewSequentialNode("parent", nil))

	serialized := NewSequentialNode("s", nil)
	g.In().AddSerialized(serialized)
	if rec, ok := g.Edges().InOnly()[serialized]; !ok || !rec.Serialize {
		t.Error("AddSerialized should register a serializing IN edge")
	}

	raw := NewSequentialNode("r", nil)
	g.In().AddRaw(raw)
	if rec, ok := g.Edges().InOnly()[raw]; !ok || rec.Serialize {
		t.Error("AddRaw should register a non-serializing IN edge")
	}

	rawWithFinalizer := NewSequentialNode("rf", nil)
	g.In().AddRaw(rawWithFinalizer, func(v any) any { return v })
	rec := g.Edges().InOnly()[rawWithFinalizer]
	w := rec.Replacement.(*Wrapper)
	if w.Finalizer == nil {
		t.Error("AddRaw with a finalizer argument should carry it into the wrapper")
	}
}

func TestGroup_EndpointAndDestinations(t *testing.T) {
	g := NewGroup("G", NewSequentialNode("parent", nil))
	if g.Endpoint() != nil {
		t.Fatal("a freshly created group should have no endpoint")
	}

	g.SetEndpoint(Endpoint{Address: "10.0.0.1", Port: 5000})
	if g.Endpoint() == nil || g.Endpoint().Port != 5000 {
		t.Error("SetEndpoint did not take effect")
	}

	g.AddDestination(Endpoint{Address: "10.0.0.2", Port: 5001})
	g.AddDestination(Endpoint{Address: "10.0.0.3", Port: 5002})
	if len(g.Destinations()) != 2 {
		t.Errorf("Destinations() has %d entries, want 2", len(g.Destinations()))
	}

	g.SetExpectedInboundConnections(2)
	if g.ExpectedInboundConnections() != 2 {
		t.Errorf("ExpectedInboundConnections() = %d, want 2", g.ExpectedInboundConnections())
	}
}
