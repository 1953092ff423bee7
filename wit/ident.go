package wit

import (
	"errors"
	"strings"

	"github.com/coreos/go-semver/semver"
)

// Ident identifies a published agent-type schema bundle, such as
// "golem:chat-agent@1.2.0" or "golem:chat-agent/variant-b@1.2.0".
//
// An Ident carries a namespace and package name, an optional extension
// (distinguishing multiple agent classes published from the same package),
// and an optional [SemVer] version. A published DataSchema/AgentMethod
// catalog records it in its bundle and in a manifest annotation (see package
// golemoci); the OCI reference itself is supplied separately.
//
// [SemVer]: https://semver.org/
type Ident struct {
	// Namespace is the publishing namespace, such as "golem" in "golem:chat-agent".
	Namespace string

	// Package is the name of the agent-type package.
	Package string

	// Extension optionally names a specific agent class within the package.
	Extension string

	// Version optionally specifies the published version.
	Version *semver.Version
}

// ParseIdent parses an identifier string of the form
// "namespace:package[/extension][@version]" into an [Ident].
func ParseIdent(s string) (Ident, error) {
	var id Ident
	name, ver, hasVer := strings.Cut(s, "@")
	base, ext, hasExt := strings.Cut(name, "/")
	ns, pkg, _ := strings.Cut(base, ":")
	id.Namespace, id.Package = ns, pkg
	if hasVer {
		var err error
		id.Version, err = semver.NewVersion(ver)
		if err != nil {
			return id, err
		}
	}
	if hasExt {
		id.Extension = ext
	}
	return id, id.Validate()
}

// Validate validates id, returning any errors.
func (id *Ident) Validate() error {
	switch {
	case id.Namespace == "":
		return errors.New("missing namespace")
	case id.Package == "":
		return errors.New("missing package name")
	}
	return nil
}

// String implements [fmt.Stringer], returning the canonical representation of id.
func (id *Ident) String() string {
	if id.Version == nil {
		return id.UnversionedString()
	}
	if id.Extension == "" {
		return id.Namespace + ":" + id.Package + "@" + id.Version.String()
	}
	return id.Namespace + ":" + id.Package + "/" + id.Extension + "@" + id.Version.String()
}

// UnversionedString returns the string representation of id without version information.
func (id *Ident) UnversionedString() string {
	if id.Extension == "" {
		return id.Namespace + ":" + id.Package
	}
	return id.Namespace + ":" + id.Package + "/" + id.Extension
}
