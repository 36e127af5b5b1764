package dff

import "context"

// Wrapper is the adapter node that sits on an edge crossing a group
// boundary (spec.md §3). The four-dimensional wrapper family (input-
// wrapping x output-wrapping x input-serialize x output-serialize) is
// collapsed, per spec.md §9's design note, into this one concrete node
// configured by a small set of booleans plus optional Transform/Finalizer
// hooks.
type Wrapper struct {
	BaseNode

	// Original is the user node this wrapper sits in front of / behind.
	// Retrievable via OriginalOf for routing-table computation even after
	// the wrapper has replaced it in the running graph (spec.md §3).
	Original Node

	// InputWrapping is set when the wrapped node is an input edge: the
	// wrapper deserializes incoming bytes (or passes through, if
	// InputSerialize is false) before invoking Original.
	InputWrapping bool

	// OutputWrapping is set when the wrapped node is an output edge: the
	// wrapper serializes Original's result (or passes through) after
	// invoking it.
	OutputWrapping bool

	// InputSerialize selects whether the input step actually invokes Codec
	// (true) or bypasses it for in-process same-type hand-off (false).
	InputSerialize bool

	// OutputSerialize is the output-side analogue of InputSerialize.
	OutputSerialize bool

	// Finalizer is the user hook carried by a non-serializing input
	// wrapper, run on the payload after deserialization/pass-through and
	// before Original executes.
	Finalizer func(any) any

	// Transform is the user hook carried by a non-serializing output
	// wrapper, run on Original's result before serialization/pass-through.
	Transform func(any) any

	// Codec is used when InputSerialize/OutputSerialize is true. Defaults
	// to JSONCodec when nil.
	Codec WireCodec
}

// NewWrapper creates a wrapper over original, identified by id.
func NewWrapper(id string, original Node) *Wrapper {
	return &Wrapper{BaseNode: NewBaseNode(id), Original: original, Codec: JSONCodec{}}
}

func (w *Wrapper) IsSequential() bool { return true }

func (w *Wrapper) GetInNodes() []Node  { return []Node{w} }
func (w *Wrapper) GetOutNodes() []Node { return []Node{w} }

// OriginalOf returns n's original node if n is a wrapper, or n itself
// otherwise. Used by routing-table computation, which must match against
// either the wrapper or the original (spec.md §4.5).
func OriginalOf(n Node) Node {
	if w, ok := n.(*Wrapper); ok && w.Original != nil {
		return w.Original
	}
	return n
}

func (w *Wrapper) codec() WireCodec {
	if w.Codec != nil {
		return w.Codec
	}
	return JSONCodec{}
}

// Run executes the wrapper: optional input deserialization/finalization,
// the original's Run (if Original implements the runner shape), then
// optional output transform/serialization.
func (w *Wrapper) Run(ctx context.Context, in *Envelope) (*Envelope, error) {
	env := in
	if w.InputWrapping {
		payload := env.Payload
		if w.InputSerialize {
			if raw, ok := payload.([]byte); ok {
				decoded, err := w.codec().Unmarshal(raw, nil)
				if err != nil {
					return nil, err
				}
				payload = decoded
			}
		}
		if w.Finalizer != nil {
			payload = w.Finalizer(payload)
		}
		env = env.Clone()
		env.Payload = payload
	}

	if r, ok := w.Original.(interface {
		Run(context.Context, *Envelope) (*Envelope, error)
	}); ok {
		result, err := r.Run(ctx, env)
		if err != nil {
			return nil, err
		}
		env = result
	}

	if w.OutputWrapping {
		payload := env.Payload
		if w.Transform != nil {
			payload = w.Transform(payload)
		}
		if w.OutputSerialize {
			encoded, err := w.codec().Marshal(payload)
			if err != nil {
				return nil, err
			}
			payload = encoded
		}
		env = env.Clone()
		env.Payload = payload
	}

	return env, nil
}

// Forwarder is the IN-side-of-multi-output / OUT-side-of-multi-input
// helper of spec.md §4.1's special case: a node placed immediately before
// (IN side) or after (OUT side) the user node to intercept an arity the
// wrapper alone can't observe.
type Forwarder struct {
	BaseNode
	forward func(ctx context.Context, in *Envelope) (*Envelope, error)
}

// NewForwarder creates a forwarder identified by id running fn.
func NewForwarder(id string, fn func(ctx context.Context, in *Envelope) (*Envelope, error)) *Forwarder {
	return &Forwarder{BaseNode: NewBaseNode(id), forward: fn}
}

func (f *Forwarder) IsSequential() bool { return true }
func (f *Forwarder) GetInNodes() []Node  { return []Node{f} }
func (f *Forwarder) GetOutNodes() []Node { return []Node{f} }

func (f *Forwarder) Run(ctx context.Context, in *Envelope) (*Envelope, error) {
	if f.forward == nil {
		return in, nil
	}
	return f.forward(ctx, in)
}

var (
	_ Node = (*Wrapper)(nil)
	_ Node = (*Forwarder)(nil)
)
