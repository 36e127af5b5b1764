package dff

import "time"

// EventKind identifies the type of event emitted during startup and
// projection, adapted from petalflow's runtime event kinds to the
// distributed-execution lifecycle of spec.md §2's data-flow-at-startup
// sequence.
type EventKind string

const (
	// EventArgsParsed marks the startup argument parser having extracted
	// the config path and running group name. ParseArgs takes no event
	// handler and does not emit it itself.
	EventArgsParsed EventKind = "args_parsed"

	// EventGroupDeclared is emitted when a group is registered with the
	// GroupRegistry.
	EventGroupDeclared EventKind = "group_declared"

	// EventEdgeAppended is emitted when a node is attached to a group's
	// input or output set.
	EventEdgeAppended EventKind = "edge_appended"

	// EventEdgePromoted is emitted when an edge is promoted to INOUT.
	EventEdgePromoted EventKind = "edge_promoted"

	// EventConfigLoaded is emitted once the configuration document has been
	// parsed and cross-referenced.
	EventConfigLoaded EventKind = "config_loaded"

	// EventProjectionStarted is emitted before FindLevel1BB runs.
	EventProjectionStarted EventKind = "projection_started"

	// EventFarmBuilt is emitted once a group's farm has been assembled,
	// before transport attachment.
	EventFarmBuilt EventKind = "farm_built"

	// EventTransportAttached is emitted once the caller has installed the
	// receiver/sender onto the projected farm.
	EventTransportAttached EventKind = "transport_attached"
)

func (k EventKind) String() string { return string(k) }

// Event is a structured, streamable record of what happened during startup
// and projection (spec.md §5's "all projection, registration, and
// configuration activity happens single-threaded on the calling thread").
type Event struct {
	Kind    EventKind
	Group   string
	Time    time.Time
	Payload map[string]any
}

// NewEvent creates an event of the given kind for group, timestamped now.
func NewEvent(kind EventKind, group string) Event {
	return Event{Kind: kind, Group: group, Time: time.Now(), Payload: make(map[string]any)}
}

// WithPayload adds a key-value pair to the event payload.
func (e Event) WithPayload(key string, value any) Event {
	if e.Payload == nil {
		e.Payload = make(map[string]any)
	}
	e.Payload[key] = value
	return e
}

// EventHandler consumes an Event; implementations can log, store, or
// forward it.
type EventHandler func(Event)

// MultiEventHandler combines multiple handlers into one.
func MultiEventHandler(handlers ...EventHandler) EventHandler {
	return func(e Event) {
		for _, h := range handlers {
			if h != nil {
				h(e)
			}
		}
	}
}

// ChannelEventHandler returns a handler that sends events to ch, dropping
// them if the channel is full rather than blocking startup. Like any Go
// channel send, sending to a closed ch panics.
func ChannelEventHandler(ch chan<- Event) EventHandler {
	return func(e Event) {
		select {
		case ch <- e:
		default:
		}
	}
}
