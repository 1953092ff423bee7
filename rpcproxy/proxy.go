package rpcproxy

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/golemcloud/golem-agent-sdk/golemerr"
	"github.com/golemcloud/golem-agent-sdk/internal/logging"
	"github.com/golemcloud/golem-agent-sdk/marshal"
	"github.com/golemcloud/golem-agent-sdk/reflectx"
	"github.com/golemcloud/golem-agent-sdk/registry"
	"github.com/golemcloud/golem-agent-sdk/schemabuild"
)

// Proxy is a remote-agent client for one agent instance (spec §2.9, §4.8).
// Any member beyond the built-in initialize/get-definition pair is memoised
// into a callable {Call, Trigger, Schedule} triple on first use; the
// memoised entry caches the method's parameter/return TypeInfo so later
// calls skip the registry lookup.
type Proxy struct {
	id       AgentId
	classKey string
	registry *registry.Registry
	mapper   *reflectx.Mapper
	rpc      WasmRpc
	log      *slog.Logger

	mu      sync.Mutex
	methods map[string]schemabuild.MethodRegistration
}

// RandomPhantomID draws a fresh phantom id from host (or DefaultUUIDSource if
// host.RandomUUID is nil), for callers that want §4.8's "freshly generated
// UUID (phantomId variant)" rather than an unqualified or caller-supplied id.
func RandomPhantomID(host HostCapabilities) (uuid.UUID, error) {
	return host.randomUUID()
}

// NewProxy resolves agentTypeName against host and reg, serializes ctorArgs
// per the class's registered constructor schema, opens a WasmRpc channel via
// the host-resolved AgentType, and mints a stable agent id via the host's
// AgentIdMaker. phantomID may be nil to construct an unqualified id, or the
// result of RandomPhantomID / a caller-supplied value otherwise.
func NewProxy(ctx context.Context, host HostCapabilities, reg *registry.Registry, mapper *reflectx.Mapper, agentTypeName string, ctorArgs []reflect.Value, phantomID *uuid.UUID, log *slog.Logger) (*Proxy, error) {
	if log == nil {
		log = logging.DiscardLogger()
	}
	clsReg, ok := reg.LookupByKey(agentTypeName)
	if !ok {
		return nil, golemerr.NewRPC(golemerr.RpcNotFound, "rpcproxy: no registered class %q", agentTypeName)
	}
	agentType, ok := host.Agents.GetAgentType(agentTypeName)
	if !ok {
		return nil, golemerr.NewRPC(golemerr.RpcNotFound, "rpcproxy: host has no agent type %q", agentTypeName)
	}

	ctorDV, err := marshal.SerializeArgs(ctorArgs, clsReg.ConstructorParams)
	if err != nil {
		return nil, golemerr.Wrap(golemerr.TypeMismatch, err, "rpcproxy: %s: serializing constructor arguments", agentTypeName)
	}

	wireID, err := host.AgentIds.MakeAgentId(agentTypeName, ctorDV, phantomID)
	if err != nil {
		return nil, golemerr.NewRPC(golemerr.RpcProtocol, "rpcproxy: %s: making agent id: %v", agentTypeName, err)
	}

	rpc, err := agentType.NewRpc(ctx, agentTypeName, ctorDV, phantomID)
	if err != nil {
		return nil, golemerr.NewRPC(golemerr.RpcProtocol, "rpcproxy: %s: opening rpc channel: %v", agentTypeName, err)
	}

	return &Proxy{
		id: AgentId{
			AgentTypeName: agentTypeName,
			Constructor:   ctorDV,
			PhantomID:     phantomID,
			wire:          wireID,
		},
		classKey: agentTypeName,
		registry: reg,
		mapper:   mapper,
		rpc:      rpc,
		log:      log,
		methods:  make(map[string]schemabuild.MethodRegistration),
	}, nil
}

// GetID returns the proxy's agent id.
func (p *Proxy) GetID() AgentId { return p.id }

// GetAgentType returns the proxy's class's unversioned identifier.
func (p *Proxy) GetAgentType() string { return p.classKey }

// resolveMethod returns method's cached MethodRegistration, consulting the
// registry and memoising the result on first use (spec §4.8: "method
// descriptors... are cached on first use per proxy instance").
func (p *Proxy) resolveMethod(method string) (schemabuild.MethodRegistration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if mr, ok := p.methods[method]; ok {
		return mr, nil
	}
	mr, ok := p.registry.Method(p.classKey, method)
	if !ok {
		return schemabuild.MethodRegistration{}, golemerr.New(golemerr.UnresolvedMethod, "rpcproxy: %s.%s: no registered method", p.classKey, method)
	}
	p.methods[method] = mr
	return mr, nil
}

// Call invokes method on the remote agent and blocks for its result (spec
// §4.8's call semantics): serialize args, asyncInvokeAndAwait, subscribe and
// block on the returned Pollable, then unwrap the ok/err outcome and
// deserialize the ok payload via the method's cached return TypeInfo. A
// remote-raised error is wrapped and returned as an *golemerr.Error of kind
// RpcError/RpcRemoteAgent.
func (p *Proxy) Call(ctx context.Context, method string, target reflect.Type, args ...reflect.Value) (reflect.Value, error) {
	mr, err := p.resolveMethod(method)
	if err != nil {
		return reflect.Value{}, err
	}
	dv, err := marshal.SerializeArgs(args, mr.Params)
	if err != nil {
		return reflect.Value{}, golemerr.Wrap(golemerr.TypeMismatch, err, "rpcproxy: %s.%s: serializing arguments", p.classKey, method)
	}

	fut, err := p.rpc.AsyncInvokeAndAwait(ctx, method, dv)
	if err != nil {
		p.log.Error("rpc call failed", "class", p.classKey, "method", method, "error", err)
		return reflect.Value{}, golemerr.NewRPC(golemerr.RpcProtocol, "rpcproxy: %s.%s: %v", p.classKey, method, err)
	}
	if err := fut.Subscribe().Block(ctx); err != nil {
		p.log.Error("rpc call failed", "class", p.classKey, "method", method, "error", err)
		return reflect.Value{}, golemerr.NewRPC(golemerr.RpcProtocol, "rpcproxy: %s.%s: awaiting result: %v", p.classKey, method, err)
	}
	result, isErr, err := fut.Get()
	if isErr {
		p.log.Error("remote agent raised an error", "class", p.classKey, "method", method, "error", err)
		remoteErr := golemerr.Wrap(golemerr.RpcError, err, "rpcproxy: %s.%s: remote agent raised an error", p.classKey, method)
		remoteErr.RpcSub = golemerr.RpcRemoteAgent
		return reflect.Value{}, remoteErr
	}
	if err != nil {
		p.log.Error("rpc call failed", "class", p.classKey, "method", method, "error", err)
		return reflect.Value{}, golemerr.NewRPC(golemerr.RpcRemoteInternal, "rpcproxy: %s.%s: %v", p.classKey, method, err)
	}

	return marshal.DeserializeResult(p.mapper, result, mr.Return, target)
}

// Trigger fires method without waiting for its result (spec §4.8's
// fire-and-forget semantics: "may raise on local serialization failure but
// not on remote failure").
func (p *Proxy) Trigger(ctx context.Context, method string, args ...reflect.Value) error {
	mr, err := p.resolveMethod(method)
	if err != nil {
		return err
	}
	dv, err := marshal.SerializeArgs(args, mr.Params)
	if err != nil {
		return golemerr.Wrap(golemerr.TypeMismatch, err, "rpcproxy: %s.%s: serializing arguments", p.classKey, method)
	}
	if err := p.rpc.Invoke(ctx, method, dv); err != nil {
		p.log.Error("rpc trigger failed", "class", p.classKey, "method", method, "error", err)
		return golemerr.NewRPC(golemerr.RpcProtocol, "rpcproxy: %s.%s: %v", p.classKey, method, err)
	}
	return nil
}

// Schedule registers method for fire-and-forget delivery at at (spec §4.8).
func (p *Proxy) Schedule(ctx context.Context, at time.Time, method string, args ...reflect.Value) error {
	mr, err := p.resolveMethod(method)
	if err != nil {
		return err
	}
	dv, err := marshal.SerializeArgs(args, mr.Params)
	if err != nil {
		return golemerr.Wrap(golemerr.TypeMismatch, err, "rpcproxy: %s.%s: serializing arguments", p.classKey, method)
	}
	if err := p.rpc.ScheduleInvocation(ctx, at, method, dv); err != nil {
		p.log.Error("rpc schedule failed", "class", p.classKey, "method", method, "error", err)
		return golemerr.NewRPC(golemerr.RpcProtocol, "rpcproxy: %s.%s: %v", p.classKey, method, err)
	}
	return nil
}

// ScheduleCancelable is Schedule but returns a token the caller can use to
// cancel delivery before at.
func (p *Proxy) ScheduleCancelable(ctx context.Context, at time.Time, method string, args ...reflect.Value) (CancellationToken, error) {
	mr, err := p.resolveMethod(method)
	if err != nil {
		return nil, err
	}
	dv, err := marshal.SerializeArgs(args, mr.Params)
	if err != nil {
		return nil, golemerr.Wrap(golemerr.TypeMismatch, err, "rpcproxy: %s.%s: serializing arguments", p.classKey, method)
	}
	token, err := p.rpc.ScheduleCancelableInvocation(ctx, at, method, dv)
	if err != nil {
		p.log.Error("rpc schedule-cancelable failed", "class", p.classKey, "method", method, "error", err)
		return nil, golemerr.NewRPC(golemerr.RpcProtocol, "rpcproxy: %s.%s: %v", p.classKey, method, err)
	}
	return token, nil
}

// LoadSnapshot is unsupported on a remote proxy: durable snapshotting is a
// property of the agent's own worker, not of a client handle to it.
func (p *Proxy) LoadSnapshot(ctx context.Context, _ []byte) error {
	return golemerr.NewRPC(golemerr.RpcDenied, "rpcproxy: %s: load-snapshot is not supported on a remote proxy", p.classKey)
}

// SaveSnapshot is unsupported on a remote proxy, the mirror of LoadSnapshot.
func (p *Proxy) SaveSnapshot(ctx context.Context) ([]byte, error) {
	return nil, golemerr.NewRPC(golemerr.RpcDenied, "rpcproxy: %s: save-snapshot is not supported on a remote proxy", p.classKey)
}
