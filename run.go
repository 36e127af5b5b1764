package dff

import "context"

// TransportAttacher installs a receiver as a farm's emitter and/or a
// sender as its collector. It is implemented by the transport package,
// kept out of this package to honor spec.md §1's "transport-level
// receiver/sender implementations" being an external collaborator exposing
// only the Emitter/Collector interfaces of farm.go.
type TransportAttacher interface {
	Attach(ctx context.Context, g *Group, result *ProjectionResult) error
}

// Run implements spec.md §6's group.run(top_pipeline): parse the
// configuration document the registry was pointed at, project this
// group's farm out of top, attach transport, and hand off to the farm's
// Run. If attacher is nil, the farm is run with no transport (useful for
// single-process testing of the projection itself).
func (g *Group) Run(ctx context.Context, reg *GroupRegistry, top *Pipeline, attacher TransportAttacher, handlers ...EventHandler) (*Farm, error) {
	if reg.ConfigFile() != "" {
		if err := reg.ParseConfig(reg.ConfigFile()); err != nil {
			return nil, err
		}
	}

	result, err := ProjectGroup(g, top, handlers...)
	if err != nil {
		return nil, err
	}

	if attacher != nil {
		if err := attacher.Attach(ctx, g, result); err != nil {
			return nil, err
		}
		MultiEventHandler(handlers...)(NewEvent(EventTransportAttached, g.Name()))
	}

	reg.MarkMaterialized()

	if err := result.Farm.Run(ctx); err != nil {
		return nil, err
	}
	reg.MarkRunning()

	return result.Farm, nil
}
