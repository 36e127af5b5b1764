package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/petal-labs/dff"
)

// Sender is the network-level collector spec.md §4.4 Step 6 installs on a
// non-sink group's farm: it dials every destination endpoint and forwards
// each envelope the farm produces, encoded as a WireMessage.
type Sender struct {
	id           string
	destinations []Endpoint
	logger       *slog.Logger

	mu    sync.Mutex
	conns []net.Conn
}

// NewSender creates a sender that forwards to every endpoint in
// destinations, dialing lazily on first Collect.
func NewSender(id string, destinations []Endpoint) *Sender {
	return &Sender{id: id, destinations: destinations, logger: defaultLogger()}
}

func (s *Sender) ID() string          { return s.id }
func (s *Sender) IsPipeline() bool    { return false }
func (s *Sender) IsAllToAll() bool    { return false }
func (s *Sender) IsComb() bool        { return false }
func (s *Sender) IsFarm() bool        { return false }
func (s *Sender) IsSequential() bool  { return true }
func (s *Sender) GetInNodes() []dff.Node  { return []dff.Node{s} }
func (s *Sender) GetOutNodes() []dff.Node { return nil }

func (s *Sender) dial() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns != nil {
		return nil
	}
	conns := make([]net.Conn, 0, len(s.destinations))
	for _, ep := range s.destinations {
		conn, err := net.Dial("tcp", ep.String())
		if err != nil {
			for _, c := range conns {
				c.Close()
			}
			return fmt.Errorf("transport: dialing %s: %w", ep, err)
		}
		conns = append(conns, conn)
	}
	s.conns = conns
	return nil
}

// Collect implements dff.Collector: every envelope read from in is
// serialized and written to every destination connection.
func (s *Sender) Collect(ctx context.Context, in <-chan *dff.Envelope) error {
	if err := s.dial(); err != nil {
		return err
	}
	defer s.closeAll()

	for {
		select {
		case env, ok := <-in:
			if !ok {
				return nil
			}
			if err := s.send(env); err != nil {
				s.logger.Warn("send failed", "sender", s.id, "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Sender) send(env *dff.Envelope) error {
	payload, err := json.Marshal(env.Payload)
	if err != nil {
		return err
	}
	msg := WireMessage{SourceInputIndex: env.SourceInputIndex, Payload: payload}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, conn := range s.conns {
		if _, err := conn.Write(data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Sender) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		c.Close()
	}
}

var _ dff.Collector = (*Sender)(nil)
