// Package registry is the process-wide, name-keyed table of registered agent
// classes (spec §2.8, §3, §5): every class a host process hosts is built once
// by schemabuild and registered under its unversioned identifier, then looked
// up by the dispatcher and by rpcproxy for the lifetime of the process.
package registry

import (
	"log/slog"
	"sync"

	"github.com/golemcloud/golem-agent-sdk/golemerr"
	"github.com/golemcloud/golem-agent-sdk/internal/logging"
	"github.com/golemcloud/golem-agent-sdk/internal/ordered"
	"github.com/golemcloud/golem-agent-sdk/schemabuild"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

// Registry maps a class's unversioned identifier string to its
// ClassRegistration, preserving registration order (internal/ordered) so
// Keys/Schemas report classes in the order a host process registered them.
// Safe for concurrent use: registration typically happens once at process
// startup, but Lookup is called from every incoming call.
type Registry struct {
	mu      sync.RWMutex
	classes ordered.Map[string, *schemabuild.ClassRegistration]
	log     *slog.Logger
}

// New returns an empty Registry that logs to the given logger. A nil logger
// is replaced with logging.DiscardLogger().
func New(log *slog.Logger) *Registry {
	if log == nil {
		log = logging.DiscardLogger()
	}
	return &Registry{log: log}
}

// Register adds reg under its schema's unversioned identifier. It is an
// error to register the same class key twice.
func (r *Registry) Register(reg *schemabuild.ClassRegistration) error {
	key := reg.Schema.Ident.UnversionedString()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes.GetOK(key); exists {
		return golemerr.New(golemerr.SchemaConstruction, "registry: class %q is already registered", key)
	}
	r.classes.Set(key, reg)
	r.log.Debug("registered agent class", "class", key, "methods", len(reg.Methods))
	return nil
}

// Lookup returns the registration for ident's unversioned identifier.
func (r *Registry) Lookup(ident wit.Ident) (*schemabuild.ClassRegistration, bool) {
	return r.LookupByKey(ident.UnversionedString())
}

// LookupByKey returns the registration stored under the unversioned
// identifier string key.
func (r *Registry) LookupByKey(key string) (*schemabuild.ClassRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classes.GetOK(key)
}

// Method resolves a registered class's kebab-cased method name to its cached
// parameter/return TypeInfo, the entry the serializer/deserializer and
// rpcproxy consult before packing or unpacking a call's DataValue.
func (r *Registry) Method(classKey, method string) (schemabuild.MethodRegistration, bool) {
	reg, ok := r.LookupByKey(classKey)
	if !ok {
		return schemabuild.MethodRegistration{}, false
	}
	mr, ok := reg.Methods[method]
	return mr, ok
}

// Schemas returns the published AgentClassSchema of every registered class,
// used to answer get-definition calls and to build an OCI schema bundle, in
// registration order.
func (r *Registry) Schemas() []wit.AgentClassSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]wit.AgentClassSchema, 0, r.classes.Len())
	for _, reg := range r.classes.All() {
		out = append(out, reg.Schema)
	}
	return out
}

// Keys returns every registered class's unversioned identifier string, in
// registration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classes.Keys()
}
