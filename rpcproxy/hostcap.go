// Package rpcproxy implements spec §2.9/§4.8's remote-agent proxy: a
// per-instance client that turns an agent method into a callable
// call/trigger/schedule triple over the host's WasmRpc transport, the RPC
// counterpart to the local schemabuild/marshal/registry stack.
//
// The interfaces in this file name capabilities the host platform supplies —
// agent-type resolution, the RPC transport itself, randomness, the pollable
// continuation primitive — and are only ever consumed here, never
// implemented, per spec.md §6/§Non-goals. The one local implementation is
// DefaultUUIDSource, the fallback for a nil HostCapabilities.RandomUUID.
package rpcproxy

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/golemcloud/golem-agent-sdk/cm"
)

// AgentTypeResolver locates a registered agent-type implementation by its
// unversioned class name (spec §3's "agentTypeName"), the host-side analogue
// of this module's registry.Registry.
type AgentTypeResolver interface {
	GetAgentType(agentTypeName string) (AgentType, bool)
}

// AgentType opens an RPC channel to one instance of a registered agent type.
type AgentType interface {
	NewRpc(ctx context.Context, agentTypeName string, ctor cm.DataValue, phantomID *uuid.UUID) (WasmRpc, error)
}

// AgentIdMaker renders the (agentTypeName, constructor, phantomID) triple
// into the stable agent-id string the platform actually routes on (spec §3:
// "Produced and reparsed by the host capability; treated as opaque by the
// core").
type AgentIdMaker interface {
	MakeAgentId(agentTypeName string, ctor cm.DataValue, phantomID *uuid.UUID) (string, error)
}

// UUIDSource supplies a fresh phantom-id UUID. The host exposes this as
// randomUuid(); HostCapabilities.RandomUUID may be nil, in which case
// DefaultUUIDSource is used so a proxy can still be built without requiring
// every embedder to wire host-side randomness for this narrow purpose.
type UUIDSource func() (uuid.UUID, error)

// DefaultUUIDSource generates a phantom id locally via google/uuid, used
// whenever HostCapabilities.RandomUUID is nil.
func DefaultUUIDSource() (uuid.UUID, error) { return uuid.NewRandom() }

// HostCapabilities bundles the host surface a Proxy drives. RandomUUID may be
// left nil to fall back to DefaultUUIDSource.
type HostCapabilities struct {
	Agents     AgentTypeResolver
	AgentIds   AgentIdMaker
	RandomUUID UUIDSource
}

func (h HostCapabilities) randomUUID() (uuid.UUID, error) {
	if h.RandomUUID != nil {
		return h.RandomUUID()
	}
	return DefaultUUIDSource()
}

// WasmRpc is the host-provided RPC transport bound to one remote agent
// instance (spec §6's "WasmRpc.new/invoke/asyncInvokeAndAwait/
// scheduleInvocation/scheduleCancelableInvocation").
type WasmRpc interface {
	// Invoke fires a method call without waiting for its result (trigger).
	Invoke(ctx context.Context, method string, args cm.DataValue) error

	// AsyncInvokeAndAwait starts a method call and returns a handle on its
	// eventual result (call).
	AsyncInvokeAndAwait(ctx context.Context, method string, args cm.DataValue) (FutureInvokeResult, error)

	// ScheduleInvocation registers a fire-and-forget call for future delivery.
	ScheduleInvocation(ctx context.Context, at time.Time, method string, args cm.DataValue) error

	// ScheduleCancelableInvocation is ScheduleInvocation plus a token the
	// caller can use to cancel delivery before at.
	ScheduleCancelableInvocation(ctx context.Context, at time.Time, method string, args cm.DataValue) (CancellationToken, error)
}

// FutureInvokeResult is the host-provided handle on a call's eventual
// result (spec §6's "FutureInvokeResult.subscribe/get").
type FutureInvokeResult interface {
	// Subscribe returns the Pollable the caller awaits before calling Get.
	Subscribe() Pollable

	// Get returns the call's outcome. isErr distinguishes a remote-raised
	// error (preserved in err) from a successful result. Calling Get before
	// the subscribed Pollable is ready is a caller error.
	Get() (result cm.DataValue, isErr bool, err error)
}

// Pollable is the host-provided suspension point a call awaits (spec §6's
// "Pollable.promise()").
type Pollable interface {
	// Block suspends the calling goroutine until the awaited result is
	// ready, or ctx is done.
	Block(ctx context.Context) error
}

// CancellationToken cancels a previously scheduled invocation.
type CancellationToken interface {
	Cancel(ctx context.Context) error
}
