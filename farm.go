package dff

import (
	"context"
	"fmt"
	"sync"
)

// Emitter is implemented by a farm's source: something that produces a
// stream of envelopes with no upstream node of its own (typically a network
// receiver). Scheduling a farm with an emitter means every produced
// envelope is dispatched to the worker whose position in the farm equals
// the envelope's SourceInputIndex.
type Emitter interface {
	Node
	Emit(ctx context.Context) (<-chan *Envelope, error)
}

// Collector is implemented by a farm's sink: something that consumes the
// envelopes workers produce with no downstream node of its own (typically a
// network sender).
type Collector interface {
	Node
	Collect(ctx context.Context, in <-chan *Envelope) error
}

// Farm is a composite building block implementing the Farm.add_worker/
// add_emitter/add_collector/run/wait interfaces of spec.md §6. Run calls
// the workers from a single dispatch goroutine, one envelope at a time, so
// workers do not run concurrently with each other; the collector runs on a
// goroutine of its own. The channel shape is generalized from
// petalflow/runtime.go's executeGraphParallel.
type Farm struct {
	BaseNode
	workers         []Node
	emitter         Emitter
	collector       Collector
	collectorOwned  bool

	wg       sync.WaitGroup
	cancel   context.CancelFunc
	runErr   error
	runErrMu sync.Mutex
}

// NewFarm creates an empty farm identified by id. Workers, emitter, and
// collector are attached with AddWorker/AddEmitter/AddCollector.
func NewFarm(id string) *Farm {
	return &Farm{BaseNode: NewBaseNode(id)}
}

func (f *Farm) IsFarm() bool { return true }

// AddWorker appends a worker to the farm.
func (f *Farm) AddWorker(n Node) { f.workers = append(f.workers, n) }

// AddEmitter installs e as the farm's emitter.
func (f *Farm) AddEmitter(e Emitter) { f.emitter = e }

// AddCollector installs c as the farm's collector. owned records whether
// the farm is responsible for the collector's lifecycle (spec.md §6).
func (f *Farm) AddCollector(c Collector, owned bool) {
	f.collector = c
	f.collectorOwned = owned
}

// Workers returns the farm's workers in declaration order.
func (f *Farm) Workers() []Node { return f.workers }

func (f *Farm) HasEmitter() bool   { return f.emitter != nil }
func (f *Farm) HasCollector() bool { return f.collector != nil }

func (f *Farm) GetInNodes() []Node {
	var out []Node
	for _, w := range f.workers {
		out = append(out, w.GetInNodes()...)
	}
	return out
}

func (f *Farm) GetOutNodes() []Node {
	var out []Node
	for _, w := range f.workers {
		out = append(out, w.GetOutNodes()...)
	}
	return out
}

// Run starts the farm: each envelope the emitter produces is dispatched to
// the worker at its SourceInputIndex — the worker that, in the original
// single-process graph, would have received it (spec.md §4.5) — among
// workers that implement a Run(ctx, *Envelope) method, and worker output is
// fanned into the collector. Run returns once started; use Wait to block
// for completion.
func (f *Farm) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	type runner interface {
		Run(ctx context.Context, in *Envelope) (*Envelope, error)
	}

	out := make(chan *Envelope, len(f.workers)*2+1)
	dispatchDone := make(chan struct{})

	if f.emitter != nil {
		in, err := f.emitter.Emit(runCtx)
		if err != nil {
			cancel()
			close(dispatchDone)
			close(out)
			return err
		}

		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			defer close(dispatchDone)
			for env := range in {
				if len(f.workers) == 0 {
					continue
				}
				idx := env.SourceInputIndex
				if idx < 0 || idx >= len(f.workers) {
					f.recordErr(fmt.Errorf("farm %s: envelope source input index %d out of range [0,%d)", f.ID(), idx, len(f.workers)))
					continue
				}
				w, ok := f.workers[idx].(runner)
				if !ok {
					continue
				}
				result, err := w.Run(runCtx, env)
				if err != nil {
					f.recordErr(err)
					continue
				}
				select {
				case out <- result:
				case <-runCtx.Done():
					return
				}
			}
		}()
	} else {
		close(dispatchDone)
	}

	// out is only ever written by the dispatch goroutine above; closing it
	// once that goroutine (if any) finishes lets the collector/drain
	// goroutine below terminate instead of blocking forever.
	go func() {
		<-dispatchDone
		close(out)
	}()

	if f.collector != nil {
		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			if err := f.collector.Collect(runCtx, out); err != nil {
				f.recordErr(err)
			}
		}()
	} else {
		// Drain so the dispatch goroutine never blocks with no collector attached.
		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			for range out {
			}
		}()
	}

	return nil
}

// Wait blocks until the farm's goroutines have exited and returns the first
// recorded error, if any.
func (f *Farm) Wait() error {
	f.wg.Wait()
	return f.runErr
}

// Stop cancels the farm's run context.
func (f *Farm) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
}

func (f *Farm) recordErr(err error) {
	f.runErrMu.Lock()
	defer f.runErrMu.Unlock()
	if f.runErr == nil {
		f.runErr = err
	}
}

var _ Node = (*Farm)(nil)
