package rpcproxy

import (
	"github.com/google/uuid"

	"github.com/golemcloud/golem-agent-sdk/cm"
)

// AgentId is this SDK's in-process handle on the (agentTypeName,
// constructorDataValue, phantomId?) triple spec §3 defines (the same triple
// the host's AgentIdMaker renders into the opaque wire string). A Proxy keeps
// one around so GetID and GetAgentType can answer without another host
// round trip.
type AgentId struct {
	AgentTypeName string
	Constructor   cm.DataValue
	PhantomID     *uuid.UUID
	wire          string
}

// String returns the wire agent-id string produced by the host's
// AgentIdMaker at construction time.
func (id AgentId) String() string { return id.wire }

// HasPhantomID reports whether id carries a disambiguating phantom id.
func (id AgentId) HasPhantomID() bool { return id.PhantomID != nil }
