// Package golemoci adapts the teacher's WIT-document OCI puller into a
// schema-bundle publisher/puller (spec.md §6 "Published artefacts"): it
// pushes a registered agent class's constructor DataSchema and AgentMethod
// catalog as an OCI artifact, annotated with the class's wit.Ident, and pulls
// one back given a reference string.
package golemoci

import (
	"os"

	"github.com/regclient/regclient/types/ref"
)

// ArtifactMediaType identifies a golem agent-class schema bundle layer, the
// same role a WASM component's layer media type plays for wasm-tools.
const ArtifactMediaType = "application/vnd.golem.agent-schema.v1+json"

// ArtifactConfigMediaType identifies the (empty) config blob every OCI image
// manifest requires, analogous to an empty Docker image config.
const ArtifactConfigMediaType = "application/vnd.golem.agent-schema.config.v1+json"

// IsOCIPath reports whether path names an OCI registry reference rather than
// a local filesystem path.
func IsOCIPath(path string) bool {
	if _, err := os.Stat(path); err == nil {
		return false
	}
	_, err := ref.New(path)
	return err == nil
}
