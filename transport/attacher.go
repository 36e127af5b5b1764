package transport

import (
	"context"
	"fmt"

	"github.com/petal-labs/dff"
)

// Attacher implements dff.TransportAttacher: it installs a Receiver as a
// non-source group's emitter and a Sender as a non-sink group's collector,
// per spec.md §4.4 Step 6.
type Attacher struct{}

func (Attacher) Attach(ctx context.Context, g *dff.Group, result *dff.ProjectionResult) error {
	if !g.IsSource() {
		ep := g.Endpoint()
		if ep == nil {
			return fmt.Errorf("transport: group %s is not a source but has no endpoint", g.Name())
		}
		recv := NewReceiver(g.Name()+"#receiver", Endpoint{Address: ep.Address, Port: ep.Port}, g.ExpectedInboundConnections(), result.Routing)
		result.Farm.AddEmitter(recv)
	}

	if !g.IsSink() {
		var dests []Endpoint
		for _, d := range g.Destinations() {
			dests = append(dests, Endpoint{Address: d.Address, Port: d.Port})
		}
		sender := NewSender(g.Name()+"#sender", dests)
		result.Farm.AddCollector(sender, true)
	}

	return nil
}

var _ dff.TransportAttacher = Attacher{}
