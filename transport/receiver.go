package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/petal-labs/dff"
)

// Receiver is the network-level emitter spec.md §4.4 Step 6 installs on a
// non-source group's farm: it listens for TCP sessions, decodes each
// incoming WireMessage, resolves its source-side input index to a
// worker-local index via the routing table, and streams the result out as
// envelopes for the farm to dispatch.
//
// Each accepted connection is served by its own goroutine, and all of them
// write into one shared buffered output channel — a remote sender takes
// the place petalflow's bus.MemBus gives an in-process subscriber.
type Receiver struct {
	id       string
	endpoint Endpoint
	expected int
	routing  *dff.RoutingTable
	logger   *slog.Logger

	listener net.Listener
}

// NewReceiver creates a receiver for endpoint, using routing to translate
// source-side indices. expectedConnections is only reported in the log line
// for each accepted session: the receiver accepts any number of sessions
// and does not wait for that many before streaming.
func NewReceiver(id string, endpoint Endpoint, expectedConnections int, routing *dff.RoutingTable) *Receiver {
	return &Receiver{
		id:       id,
		endpoint: endpoint,
		expected: expectedConnections,
		routing:  routing,
		logger:   defaultLogger(),
	}
}

func (r *Receiver) ID() string          { return r.id }
func (r *Receiver) IsPipeline() bool    { return false }
func (r *Receiver) IsAllToAll() bool    { return false }
func (r *Receiver) IsComb() bool        { return false }
func (r *Receiver) IsFarm() bool        { return false }
func (r *Receiver) IsSequential() bool  { return true }
func (r *Receiver) GetInNodes() []dff.Node  { return nil }
func (r *Receiver) GetOutNodes() []dff.Node { return []dff.Node{r} }

// Emit starts listening on the receiver's endpoint and returns a channel
// that yields one envelope per inbound message, with SourceInputIndex
// already translated to the worker-local index. Canceling ctx stops
// accepting new sessions; the channel closes once every accepted session
// has also ended.
func (r *Receiver) Emit(ctx context.Context) (<-chan *dff.Envelope, error) {
	ln, err := net.Listen("tcp", r.endpoint.String())
	if err != nil {
		return nil, fmt.Errorf("transport: listening on %s: %w", r.endpoint, err)
	}
	r.listener = ln

	out := make(chan *dff.Envelope, 256)
	var wg sync.WaitGroup
	var connected int
	var mu sync.Mutex

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			connected++
			n := connected
			mu.Unlock()
			r.logger.Info("inbound connection accepted", "receiver", r.id, "count", n, "expected", r.expected)

			wg.Add(1)
			go r.serve(ctx, conn, out, &wg)
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out, nil
}

func (r *Receiver) serve(ctx context.Context, conn net.Conn, out chan<- *dff.Envelope, wg *sync.WaitGroup) {
	defer wg.Done()
	defer conn.Close()

	sessionID := uuid.NewString()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		var msg WireMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			r.logger.Warn("malformed wire message", "session", sessionID, "error", err)
			continue
		}

		localIdx, ok := r.routing.Lookup(msg.SourceInputIndex)
		if !ok {
			r.logger.Warn("no routing entry for source index", "session", sessionID, "index", msg.SourceInputIndex)
			continue
		}

		var payload any
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			r.logger.Warn("malformed payload", "session", sessionID, "error", err)
			continue
		}

		env := dff.NewEnvelope(payload)
		env.SourceInputIndex = localIdx

		select {
		case out <- env:
		case <-ctx.Done():
			return
		}
	}
}

var _ dff.Emitter = (*Receiver)(nil)
