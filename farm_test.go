package dff

import (
	"context"
	"testing"
	"time"
)

type sliceEmitter struct {
	BaseNode
	values []int
}

func (e *sliceEmitter) GetInNodes() []Node  { return nil }
func (e *sliceEmitter) GetOutNodes() []Node { return []Node{e} }

func (e *sliceEmitter) Emit(ctx context.Context) (<-chan *Envelope, error) {
	out := make(chan *Envelope, len(e.values))
	for _, v := range e.values {
		out <- NewEnvelope(v)
	}
	close(out)
	return out, nil
}

type collectingCollector struct {
	BaseNode
	got chan *Envelope
}

func (c *collectingCollector) GetInNodes() []Node  { return []Node{c} }
func (c *collectingCollector) GetOutNodes() []Node { return nil }

func (c *collectingCollector) Collect(ctx context.Context, in <-chan *Envelope) error {
	for env := range in {
		c.got <- env
	}
	close(c.got)
	return nil
}

func TestFarm_RunDispatchesAndCollects(t *testing.T) {
	worker := NewSequentialNode("double", func(ctx context.Context, in *Envelope) (*Envelope, error) {
		out := in.Clone()
		out.Payload = in.Payload.(int) * 2
		return out, nil
	})

	farm := NewFarm("F")
	farm.AddWorker(worker)

	emitter := &sliceEmitter{BaseNode: NewBaseNode("emit"), values: []int{1, 2, 3}}
	farm.AddEmitter(emitter)

	collector := &collectingCollector{BaseNode: NewBaseNode("collect"), got: make(chan *Envelope, 3)}
	farm.AddCollector(collector, true)

	if err := farm.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if err := farm.Wait(); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}

	sum := 0
	timeout := time.After(time.Second)
	count := 0
	for count < 3 {
		select {
		case env, ok := <-collector.got:
			if !ok {
				t.Fatal("collector channel closed early")
			}
			sum += env.Payload.(int)
			count++
		case <-timeout:
			t.Fatal("timed out waiting for collected results")
		}
	}

	if sum != 12 { // (1+2+3)*2
		t.Errorf("sum of collected payloads = %d, want 12", sum)
	}
}

func TestFarm_Workers(t *testing.T) {
	farm := NewFarm("F")
	w1 := NewSequentialNode("w1", nil)
	w2 := NewSequentialNode("w2", nil)
	farm.AddWorker(w1)
	farm.AddWorker(w2)

	workers := farm.Workers()
	if len(workers) != 2 || workers[0] != w1 || workers[1] != w2 {
		t.Errorf("Workers() = %v, want [w1 w2]", workers)
	}
	if !farm.IsFarm() {
		t.Error("IsFarm() = false, want true")
	}
}

func TestFarm_HasEmitterCollector(t *testing.T) {
	farm := NewFarm("F")
	if farm.HasEmitter() || farm.HasCollector() {
		t.Fatal("a freshly created farm should have neither emitter nor collector")
	}

	farm.AddEmitter(&sliceEmitter{BaseNode: NewBaseNode("emit")})
	farm.AddCollector(&collectingCollector{BaseNode: NewBaseNode("collect"), got: make(chan *Envelope, 1)}, true)

	if !farm.HasEmitter() || !farm.HasCollector() {
		t.Error("HasEmitter/HasCollector should report true after AddEmitter/AddCollector")
	}
}
