// Package golemerr defines the closed set of error kinds produced across the
// schema-build, serialize, deserialize, and RPC-proxy boundaries (spec §7).
// Every error returned by this module's conversion and schema functions can
// be tested for one of these kinds with [Is].
package golemerr

import "fmt"

// Kind is one of the closed set of error kinds this module produces.
type Kind string

const (
	// TypeMismatch: a host value does not fit its declared type.
	TypeMismatch Kind = "type-mismatch"
	// UnresolvedMethod: no reflection/registry metadata for the requested method.
	UnresolvedMethod Kind = "unresolved-method"
	// UnresolvedParameter: no reflection/registry metadata for a parameter.
	UnresolvedParameter Kind = "unresolved-parameter"
	// UnionAmbiguityOrMiss: no variant case matches a value, or an unknown tag.
	UnionAmbiguityOrMiss Kind = "union-ambiguity-or-miss"
	// UnstructuredCast: a malformed url/inline payload for text or binary.
	UnstructuredCast Kind = "unstructured-cast"
	// MultimodalShape: not an array, an unknown tag, or a nested multimodal.
	MultimodalShape Kind = "multimodal-shape"
	// SchemaConstruction: an unsupported type was encountered while building a schema.
	SchemaConstruction Kind = "schema-construction"
	// RpcError: wraps a host-side RPC error.
	RpcError Kind = "rpc-error"
	// ReservedOrInvalidMethodName: method name is reserved or contains '$'.
	ReservedOrInvalidMethodName Kind = "reserved-or-invalid-method-name"
)

// RpcSubKind enumerates the host-side RPC failure reasons an [Error] of kind
// [RpcError] may wrap.
type RpcSubKind string

const (
	RpcProtocol       RpcSubKind = "protocol"
	RpcDenied         RpcSubKind = "denied"
	RpcNotFound       RpcSubKind = "not-found"
	RpcRemoteInternal RpcSubKind = "remote-internal"
	RpcRemoteAgent    RpcSubKind = "remote-agent"
)

// Error is the error type returned (never panicked) across the schema-build,
// serialize, and deserialize boundary, and the type any error raised by the
// proxy boundary wraps. Context names the offending class/method/parameter
// and, where useful, the offending value.
type Error struct {
	Kind    Kind
	RpcSub  RpcSubKind // only meaningful when Kind == RpcError
	Context string
	Err     error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Context)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an [Error] of kind with the given context, formatted like fmt.Sprintf.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Context: fmt.Sprintf(format, args...)}
}

// Wrap constructs an [Error] of kind wrapping cause, with context formatted
// like fmt.Sprintf.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Context: fmt.Sprintf(format, args...), Err: cause}
}

// NewRPC constructs an [Error] of kind RpcError with the given sub-kind.
func NewRPC(sub RpcSubKind, format string, args ...any) *Error {
	return &Error{Kind: RpcError, RpcSub: sub, Context: fmt.Sprintf(format, args...)}
}

// Is reports whether err (or any error in its chain) is a golemerr *Error of kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
