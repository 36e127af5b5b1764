package dff

import "testing"

func TestPipeline_GetInOutNodes(t *testing.T) {
	a := NewSequentialNode("a", nil)
	b := NewSequentialNode("b", nil)
	c := NewSequentialNode("c", nil)
	p := NewPipeline("P", a, b, c)

	if !p.IsPipeline() {
		t.Error("IsPipeline() = false, want true")
	}
	if len(p.GetInNodes()) != 1 || p.GetInNodes()[0] != a {
		t.Error("GetInNodes() should delegate to the first stage")
	}
	if len(p.GetOutNodes()) != 1 || p.GetOutNodes()[0] != c {
		t.Error("GetOutNodes() should delegate to the last stage")
	}
}

func TestPipeline_ChangeNode(t *testing.T) {
	a := NewSequentialNode("a", nil)
	b := NewSequentialNode("b", nil)
	p := NewPipeline("P", a, b)

	replacement := NewSequentialNode("a2", nil)
	if err := p.ChangeNode(a, replacement, true); err != nil {
		t.Fatalf("ChangeNode returned error: %v", err)
	}
	if p.GetStages()[0] != replacement {
		t.Error("ChangeNode did not swap the stage in place")
	}
}

func TestPipeline_ChangeNode_NotFound(t *testing.T) {
	a := NewSequentialNode("a", nil)
	p := NewPipeline("P", a)

	other := NewSequentialNode("x", nil)
	err := p.ChangeNode(other, NewSequentialNode("y", nil), true)
	if err == nil {
		t.Fatal("ChangeNode should fail when old is not a stage of the pipeline")
	}
}
