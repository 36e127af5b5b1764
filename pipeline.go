package dff

import "fmt"

// Pipeline is a composite building block whose stages run in sequence, the
// output of each feeding the input of the next. It implements the
// Pipeline.change_node / get_stages interfaces named in spec.md §6.
type Pipeline struct {
	BaseNode
	stages []Node
}

// NewPipeline creates a pipeline of stages, identified by id.
func NewPipeline(id string, stages ...Node) *Pipeline {
	return &Pipeline{BaseNode: NewBaseNode(id), stages: append([]Node(nil), stages...)}
}

func (p *Pipeline) IsPipeline() bool { return true }

// GetStages returns the pipeline's stages in order.
func (p *Pipeline) GetStages() []Node { return p.stages }

func (p *Pipeline) GetInNodes() []Node {
	if len(p.stages) == 0 {
		return nil
	}
	return p.stages[0].GetInNodes()
}

func (p *Pipeline) GetOutNodes() []Node {
	if len(p.stages) == 0 {
		return nil
	}
	return p.stages[len(p.stages)-1].GetOutNodes()
}

// ChangeNode substitutes old with new in place among the pipeline's stages.
// owned indicates whether the pipeline should be considered the owner of
// new for lifecycle purposes (spec.md §6); this implementation does not
// itself need to act on ownership, since Go's GC reclaims old.
func (p *Pipeline) ChangeNode(old, new Node, owned bool) error {
	for i, s := range p.stages {
		if s == old {
			p.stages[i] = new
			return nil
		}
	}
	return fmt.Errorf("%w: stage not found in pipeline %q", ErrSubstitutionTarget, p.ID())
}

var _ Node = (*Pipeline)(nil)
