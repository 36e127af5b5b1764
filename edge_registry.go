package dff

import "log/slog"

// Side identifies which side of a group boundary an edge is declared on.
type Side int

const (
	SideIn Side = iota
	SideOut
)

func (s Side) String() string {
	if s == SideIn {
		return "in"
	}
	return "out"
}

// EdgeRecord pairs a replacement node (a Wrapper, or a two-stage Pipeline
// for the multi-output/multi-input special case) with the serialize flag
// that produced it (spec.md §3).
type EdgeRecord struct {
	Replacement Node
	Serialize   bool
}

// EdgeRegistry holds, per group, the three disjoint mappings of spec.md §3:
// every original node referenced by an edge declaration appears in exactly
// one of inOnly/outOnly/inout, keyed by pointer identity.
type EdgeRegistry struct {
	inOnly  map[Node]*EdgeRecord
	outOnly map[Node]*EdgeRecord
	inout   map[Node]*EdgeRecord

	groupName string
	logger    *slog.Logger
	onEvent   EventHandler
}

// NewEdgeRegistry creates an empty registry for the group named groupName.
func NewEdgeRegistry(groupName string) *EdgeRegistry {
	return &EdgeRegistry{
		inOnly:    make(map[Node]*EdgeRecord),
		outOnly:   make(map[Node]*EdgeRecord),
		inout:     make(map[Node]*EdgeRecord),
		groupName: groupName,
		logger:    slog.Default(),
	}
}

// OnEvent installs h as the registry's event handler.
func (r *EdgeRegistry) OnEvent(h EventHandler) { r.onEvent = h }

func (r *EdgeRegistry) emit(e Event) {
	if r.onEvent != nil {
		r.onEvent(e)
	}
}

func (r *EdgeRegistry) InOnly() map[Node]*EdgeRecord  { return r.inOnly }
func (r *EdgeRegistry) OutOnly() map[Node]*EdgeRecord { return r.outOnly }
func (r *EdgeRegistry) INOUT() map[Node]*EdgeRecord   { return r.inout }

// AppendIn declares n as an input edge with the given serialize flag,
// implementing spec.md §4.1's append algorithm for side=IN. finalizer, if
// non-nil, is the user hook carried by a non-serializing wrapper.
func (r *EdgeRegistry) AppendIn(n Node, serialize bool, finalizer func(any) any) {
	r.append(n, SideIn, serialize, finalizer, nil)
}

// AppendOut declares n as an output edge with the given serialize flag.
// transform, if non-nil, is the user hook carried by a non-serializing
// wrapper.
func (r *EdgeRegistry) AppendOut(n Node, serialize bool, transform func(any) any) {
	r.append(n, SideOut, serialize, nil, transform)
}

func (r *EdgeRegistry) append(n Node, side Side, serialize bool, finalizer, transform func(any) any) {
	// Step 1: already finalized on both sides, idempotent no-op.
	if _, ok := r.inout[n]; ok {
		return
	}

	same, opposite := r.inOnly, r.outOnly
	if side == SideOut {
		same, opposite = r.outOnly, r.inOnly
	}

	// Step 2/3: check the opposite side for a prior declaration of n.
	if prior, ok := opposite[n]; ok {
		delete(opposite, n)

		var inSerialize, outSerialize bool
		var priorFinalizer, priorTransform func(any) any
		if pw, ok := prior.Replacement.(*Wrapper); ok {
			priorFinalizer = pw.Finalizer
			priorTransform = pw.Transform
		}

		if side == SideIn {
			inSerialize = serialize
			outSerialize = prior.Serialize
			if !prior.Serialize {
				transform = priorTransform
			}
		} else {
			outSerialize = serialize
			inSerialize = prior.Serialize
			if !prior.Serialize {
				finalizer = priorFinalizer
			}
		}

		w := NewWrapper(n.ID()+"#inout", n)
		w.InputWrapping = true
		w.OutputWrapping = true
		w.InputSerialize = inSerialize
		w.OutputSerialize = outSerialize
		w.Finalizer = finalizer
		w.Transform = transform

		r.inout[n] = &EdgeRecord{Replacement: w, Serialize: serialize}
		r.logger.Info("edge promoted to INOUT", "node", n.ID())
		r.emit(NewEvent(EventEdgePromoted, r.groupName).WithPayload("node", n.ID()))
		return
	}

	// Step 4: fresh single-sided declaration, honoring the multi-output/
	// multi-input special case of spec.md §4.1.
	if _, exists := same[n]; exists {
		// Re-declaring on the same side with no opposite record: idempotent,
		// matching spec.md §8's "projection is idempotent" property.
		return
	}

	same[n] = &EdgeRecord{Replacement: r.buildSingleSided(n, side, serialize, finalizer, transform), Serialize: serialize}
	r.logger.Info("edge appended", "node", n.ID(), "side", side.String(), "serialize", serialize)
	r.emit(NewEvent(EventEdgeAppended, r.groupName).WithPayload("node", n.ID()).WithPayload("side", side.String()))
}

func (r *EdgeRegistry) buildSingleSided(n Node, side Side, serialize bool, finalizer, transform func(any) any) Node {
	if side == SideIn {
		if mo, ok := n.(MultiOutput); ok && mo.MultiOutput() {
			fwd := NewForwarder(n.ID()+"#fwd-in", nil)
			w := NewWrapper(n.ID()+"#in", fwd)
			w.InputWrapping = true
			w.InputSerialize = serialize
			w.Finalizer = finalizer
			return NewPipeline(n.ID()+"#in-split", w, n)
		}
		w := NewWrapper(n.ID()+"#in", n)
		w.InputWrapping = true
		w.InputSerialize = serialize
		w.Finalizer = finalizer
		return w
	}

	if mi, ok := n.(MultiInput); ok && mi.MultiInput() {
		fwd := NewForwarder(n.ID()+"#fwd-out", nil)
		w := NewWrapper(n.ID()+"#out", fwd)
		w.OutputWrapping = true
		w.OutputSerialize = serialize
		w.Transform = transform
		return NewPipeline(n.ID()+"#out-split", n, w)
	}
	w := NewWrapper(n.ID()+"#out", n)
	w.OutputWrapping = true
	w.OutputSerialize = serialize
	w.Transform = transform
	return w
}
