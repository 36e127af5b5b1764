package dff

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// RegistryState is the GroupRegistry lifecycle of spec.md §3/§4.6.
type RegistryState int

const (
	StateUninitialized RegistryState = iota
	StateConfigured
	StateMaterialized
	StateRunning
	StateShutDown
)

func (s RegistryState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfigured:
		return "configured"
	case StateMaterialized:
		return "materialized"
	case StateRunning:
		return "running"
	case StateShutDown:
		return "shut down"
	default:
		return "unknown"
	}
}

// GroupRegistry is the process-wide directory mapping group name to group
// descriptor (spec.md §3/§4.6). Per spec.md §9's design note, the hidden
// process singleton of the original system is replaced by an explicit
// value that the caller threads through group construction and startup —
// this type has no package-level mutable state; WithRegistry/
// RegistryFromContext below are the convenience for callers that do want to
// carry it on a context.Context, which is the idiomatic Go analogue of "one
// value with the process's lifecycle".
type GroupRegistry struct {
	mu sync.RWMutex

	groups       map[string]*Group
	configPath   string
	runningGroup string
	state        RegistryState

	logger  *slog.Logger
	onEvent EventHandler
}

// OnEvent installs h as the registry's event handler; subsequent
// AddGroup/ParseConfig calls notify h.
func (r *GroupRegistry) OnEvent(h EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvent = h
}

func (r *GroupRegistry) emit(e Event) {
	if r.onEvent != nil {
		r.onEvent(e)
	}
}

// NewGroupRegistry creates an empty, uninitialized registry.
func NewGroupRegistry() *GroupRegistry {
	return &GroupRegistry{
		groups: make(map[string]*Group),
		state:  StateUninitialized,
		logger: slog.Default(),
	}
}

// SetConfigFile records the path to the cluster configuration document.
func (r *GroupRegistry) SetConfigFile(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configPath = path
	if r.state == StateUninitialized {
		r.state = StateConfigured
	}
}

// ConfigFile returns the configured path.
func (r *GroupRegistry) ConfigFile() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.configPath
}

// SetRunningGroup records which group this process is running as.
func (r *GroupRegistry) SetRunningGroup(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runningGroup = name
	if r.state == StateUninitialized {
		r.state = StateConfigured
	}
}

// AddGroup registers label -> group. Re-registering the same label is
// rejected with ErrGroupAlreadyRegistered (spec.md §4.6's "at most one
// descriptor per label").
func (r *GroupRegistry) AddGroup(label string, g *Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.groups[label]; exists {
		return fmt.Errorf("%w: %s", ErrGroupAlreadyRegistered, label)
	}
	r.groups[label] = g
	r.logger.Info("group registered", "name", label)
	r.emit(NewEvent(EventGroupDeclared, label))
	return nil
}

// Group returns the registered group for label.
func (r *GroupRegistry) Group(label string) (*Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[label]
	return g, ok
}

// Groups returns every registered group, unordered.
func (r *GroupRegistry) Groups() map[string]*Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Group, len(r.groups))
	for k, v := range r.groups {
		out[k] = v
	}
	return out
}

// GetRunningGroup returns the descriptor for the group this process is
// running as. Returns ErrRunningGroupUnset if SetRunningGroup was never
// called, and ErrGroupNotFound if the running name has no registered
// descriptor (spec.md §4.6's invariant).
func (r *GroupRegistry) GetRunningGroup() (*Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.runningGroup == "" {
		return nil, ErrRunningGroupUnset
	}
	g, ok := r.groups[r.runningGroup]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, r.runningGroup)
	}
	return g, nil
}

// State returns the registry's current lifecycle state.
func (r *GroupRegistry) State() RegistryState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// MarkMaterialized transitions the registry to "materialized", called once
// projection has produced a runnable farm.
func (r *GroupRegistry) MarkMaterialized() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateMaterialized
}

// MarkRunning transitions the registry to "running".
func (r *GroupRegistry) MarkRunning() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateRunning
}

// MarkShutDown transitions the registry to "shut down".
func (r *GroupRegistry) MarkShutDown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateShutDown
}

// ParseConfig loads path into the registry's groups, resolving endpoints,
// destinations, and expected inbound connection counts (spec.md §4.2).
func (r *GroupRegistry) ParseConfig(path string) error {
	doc, err := LoadConfigDoc(path)
	if err != nil {
		return err
	}
	return r.applyConfig(doc)
}

func (r *GroupRegistry) applyConfig(doc *ConfigDoc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := doc.resolve(r.groups); err != nil {
		return err
	}
	r.state = StateConfigured
	r.logger.Info("configuration parsed", "groups", len(doc.Groups))
	r.emit(NewEvent(EventConfigLoaded, r.runningGroup).WithPayload("groups", len(doc.Groups)))
	return nil
}

// CreateGroup registers and returns a new group named name, declared
// against parent. It is the rewrite form of the create_group(name) method
// spec.md §6 exposes on pipeline/all-to-all building blocks.
func (r *GroupRegistry) CreateGroup(name string, parent Node) (*Group, error) {
	g := NewGroup(name, parent)
	if err := r.AddGroup(name, g); err != nil {
		return nil, err
	}
	return g, nil
}

type registryContextKey struct{}

// WithRegistry returns a context carrying reg, the idiomatic Go analogue
// of spec.md §9's "replace the hidden singleton with an explicit context
// value threaded through group construction and startup".
func WithRegistry(ctx context.Context, reg *GroupRegistry) context.Context {
	return context.WithValue(ctx, registryContextKey{}, reg)
}

// RegistryFromContext returns the registry carried by ctx, if any.
func RegistryFromContext(ctx context.Context) (*GroupRegistry, bool) {
	reg, ok := ctx.Value(registryContextKey{}).(*GroupRegistry)
	return reg, ok
}
