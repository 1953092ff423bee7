package rpcproxy

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/golemcloud/golem-agent-sdk/cm"
	"github.com/golemcloud/golem-agent-sdk/reflectx"
	"github.com/golemcloud/golem-agent-sdk/registry"
	"github.com/golemcloud/golem-agent-sdk/schemabuild"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

type fakeResolver struct{ agentType *fakeAgentType }

func (r *fakeResolver) GetAgentType(name string) (AgentType, bool) {
	if r.agentType == nil {
		return nil, false
	}
	return r.agentType, true
}

type fakeAgentType struct {
	rpc *fakeRpc
	err error
}

func (a *fakeAgentType) NewRpc(ctx context.Context, agentTypeName string, ctor cm.DataValue, phantomID *uuid.UUID) (WasmRpc, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.rpc, nil
}

type fakeIdMaker struct{ id string }

func (m *fakeIdMaker) MakeAgentId(agentTypeName string, ctor cm.DataValue, phantomID *uuid.UUID) (string, error) {
	return m.id, nil
}

type fakePollable struct{ err error }

func (p *fakePollable) Block(ctx context.Context) error { return p.err }

type fakeFuture struct {
	result cm.DataValue
	isErr  bool
	getErr error
	subErr error
}

func (f *fakeFuture) Subscribe() Pollable { return &fakePollable{err: f.subErr} }
func (f *fakeFuture) Get() (cm.DataValue, bool, error) { return f.result, f.isErr, f.getErr }

type fakeRpc struct {
	invokeErr      error
	asyncFuture    *fakeFuture
	asyncErr       error
	scheduleErr    error
	scheduleCancel CancellationToken
	scheduleCanErr error
	invokedMethod  string
	invokedArgs    cm.DataValue
}

func (r *fakeRpc) Invoke(ctx context.Context, method string, args cm.DataValue) error {
	r.invokedMethod, r.invokedArgs = method, args
	return r.invokeErr
}

func (r *fakeRpc) AsyncInvokeAndAwait(ctx context.Context, method string, args cm.DataValue) (FutureInvokeResult, error) {
	r.invokedMethod, r.invokedArgs = method, args
	if r.asyncErr != nil {
		return nil, r.asyncErr
	}
	return r.asyncFuture, nil
}

func (r *fakeRpc) ScheduleInvocation(ctx context.Context, at time.Time, method string, args cm.DataValue) error {
	r.invokedMethod, r.invokedArgs = method, args
	return r.scheduleErr
}

func (r *fakeRpc) ScheduleCancelableInvocation(ctx context.Context, at time.Time, method string, args cm.DataValue) (CancellationToken, error) {
	r.invokedMethod, r.invokedArgs = method, args
	if r.scheduleCanErr != nil {
		return nil, r.scheduleCanErr
	}
	return r.scheduleCancel, nil
}

func setupProxy(t *testing.T, rpc *fakeRpc) (*Proxy, *registry.Registry) {
	t.Helper()
	id, err := wit.ParseIdent("golem:weather-agent")
	if err != nil {
		t.Fatal(err)
	}
	mapper := reflectx.NewMapper()
	b := schemabuild.NewBuilder(mapper)
	reg, err := b.Build(schemabuild.ClassMetadata{
		Ident: id,
		Methods: []schemabuild.MethodMeta{
			{
				Name:   "GetWeather",
				Params: []schemabuild.ParamMeta{{Name: "days", Type: reflect.TypeOf(int32(0))}},
				Return: schemabuild.ReturnMeta{Type: reflect.TypeOf(int32(0))},
			},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r := registry.New(nil)
	if err := r.Register(reg); err != nil {
		t.Fatal(err)
	}

	host := HostCapabilities{
		Agents:   &fakeResolver{agentType: &fakeAgentType{rpc: rpc}},
		AgentIds: &fakeIdMaker{id: "golem:weather-agent/abc123"},
	}
	p, err := NewProxy(context.Background(), host, r, mapper, "golem:weather-agent", nil, nil, nil)
	if err != nil {
		t.Fatalf("NewProxy: %v", err)
	}
	return p, r
}

func wireResult(t *testing.T, n int32) cm.DataValue {
	t.Helper()
	wv, err := cm.ToWitValue(cm.S32Value{V: n})
	if err != nil {
		t.Fatal(err)
	}
	return cm.TupleDataValue{Elements: []cm.ElementValue{cm.ComponentModelElementValue{Value: wv}}}
}

func TestNewProxySetsIdentity(t *testing.T) {
	p, _ := setupProxy(t, &fakeRpc{})
	if p.GetAgentType() != "golem:weather-agent" {
		t.Errorf("GetAgentType() = %q", p.GetAgentType())
	}
	if p.GetID().String() != "golem:weather-agent/abc123" {
		t.Errorf("GetID().String() = %q", p.GetID().String())
	}
}

func TestNewProxyUnregisteredClassIsError(t *testing.T) {
	r := registry.New(nil)
	host := HostCapabilities{Agents: &fakeResolver{}, AgentIds: &fakeIdMaker{}}
	if _, err := NewProxy(context.Background(), host, r, reflectx.NewMapper(), "golem:missing-agent", nil, nil, nil); err == nil {
		t.Error("NewProxy with unregistered class: expected error")
	}
}

func TestCallSuccess(t *testing.T) {
	rpc := &fakeRpc{asyncFuture: &fakeFuture{result: wireResult(t, 7)}}
	p, _ := setupProxy(t, rpc)
	got, err := p.Call(context.Background(), "get-weather", reflect.TypeOf(int32(0)), reflect.ValueOf(int32(3)))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.Interface().(int32) != 7 {
		t.Errorf("Call result = %v, want 7", got.Interface())
	}
	if rpc.invokedMethod != "get-weather" {
		t.Errorf("invoked method = %q", rpc.invokedMethod)
	}
}

func TestCallUnresolvedMethodIsError(t *testing.T) {
	p, _ := setupProxy(t, &fakeRpc{})
	if _, err := p.Call(context.Background(), "no-such-method", reflect.TypeOf(int32(0))); err == nil {
		t.Error("Call with unregistered method: expected error")
	}
}

func TestCallAsyncInvokeFailurePropagates(t *testing.T) {
	rpc := &fakeRpc{asyncErr: errors.New("transport down")}
	p, _ := setupProxy(t, rpc)
	if _, err := p.Call(context.Background(), "get-weather", reflect.TypeOf(int32(0)), reflect.ValueOf(int32(1))); err == nil {
		t.Error("Call with failing AsyncInvokeAndAwait: expected error")
	}
}

func TestCallRemoteErrorIsReported(t *testing.T) {
	rpc := &fakeRpc{asyncFuture: &fakeFuture{isErr: true}}
	p, _ := setupProxy(t, rpc)
	if _, err := p.Call(context.Background(), "get-weather", reflect.TypeOf(int32(0)), reflect.ValueOf(int32(1))); err == nil {
		t.Error("Call with remote-raised error: expected error")
	}
}

func TestTriggerFireAndForget(t *testing.T) {
	rpc := &fakeRpc{}
	p, _ := setupProxy(t, rpc)
	if err := p.Trigger(context.Background(), "get-weather", reflect.ValueOf(int32(2))); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if rpc.invokedMethod != "get-weather" {
		t.Errorf("invoked method = %q", rpc.invokedMethod)
	}
}

func TestTriggerTransportFailureIsError(t *testing.T) {
	rpc := &fakeRpc{invokeErr: errors.New("boom")}
	p, _ := setupProxy(t, rpc)
	if err := p.Trigger(context.Background(), "get-weather", reflect.ValueOf(int32(2))); err == nil {
		t.Error("Trigger with transport error: expected error")
	}
}

func TestScheduleAndScheduleCancelable(t *testing.T) {
	token := &fakeToken{}
	rpc := &fakeRpc{scheduleCancel: token}
	p, _ := setupProxy(t, rpc)
	at := time.Now().Add(time.Hour)

	if err := p.Schedule(context.Background(), at, "get-weather", reflect.ValueOf(int32(2))); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	got, err := p.ScheduleCancelable(context.Background(), at, "get-weather", reflect.ValueOf(int32(2)))
	if err != nil {
		t.Fatalf("ScheduleCancelable: %v", err)
	}
	if got != token {
		t.Errorf("ScheduleCancelable token = %v, want %v", got, token)
	}
}

type fakeToken struct{ canceled bool }

func (t *fakeToken) Cancel(ctx context.Context) error {
	t.canceled = true
	return nil
}

func TestLoadAndSaveSnapshotAreDenied(t *testing.T) {
	p, _ := setupProxy(t, &fakeRpc{})
	if err := p.LoadSnapshot(context.Background(), nil); err == nil {
		t.Error("LoadSnapshot on a remote proxy: expected error")
	}
	if _, err := p.SaveSnapshot(context.Background()); err == nil {
		t.Error("SaveSnapshot on a remote proxy: expected error")
	}
}
