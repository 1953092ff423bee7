//go:build wasip1 || wasip2 || tinygo

package golemoci

import (
	"context"
	"errors"

	"github.com/golemcloud/golem-agent-sdk/wit"
)

var errUnsupported = errors.New("oci publish/pull is not supported on wasi or tinygo targets")

// PublishSchema is unsupported in a guest-side build: the OCI registry
// client needs a real network stack, unavailable inside the component.
func PublishSchema(ctx context.Context, path, hostCredentialsPath string, schema wit.AgentClassSchema) error {
	return errUnsupported
}

// PullSchema is unsupported in a guest-side build, the mirror of PublishSchema.
func PullSchema(ctx context.Context, path, hostCredentialsPath string) (wit.AgentClassSchema, error) {
	return wit.AgentClassSchema{}, errUnsupported
}
