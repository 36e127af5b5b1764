// Package transport provides the network-level receiver and sender nodes
// that sit at a group's cut edges — the "transport-level receiver/sender
// implementations" spec.md §1 names as an external collaborator exposing
// only the Emitter/Collector shape of the projection engine's farm. The
// receiver's buffered-channel fan-in is generalized from
// petal-labs-petalflow's bus.MemBus, with each remote connection playing
// the role MemBus gave an in-process subscriber.
package transport

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// WireMessage is the framed unit exchanged between a sender and a
// receiver: the payload plus the source-side input index the receiver's
// routing table resolves to a worker-local index (spec.md §4.5).
type WireMessage struct {
	SourceInputIndex int             `json:"source_input_index"`
	Payload          json.RawMessage `json:"payload"`
}

// Endpoint is a dialable/listenable network address.
type Endpoint struct {
	Address string
	Port    int
}

func (e Endpoint) String() string { return fmt.Sprintf("%s:%d", e.Address, e.Port) }

func defaultLogger() *slog.Logger { return slog.Default().With("component", "transport") }
