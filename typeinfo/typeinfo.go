// Package typeinfo defines TypeInfoInternal, the discriminated handle tying a
// reflected host type (a Go struct field, constructor argument, or method
// parameter/return type) to one of the kinds the rest of the SDK dispatches
// on: an ordinary component-model value, unstructured text, unstructured
// binary, a multimodal group, the auto-injected Principal, or the
// auto-injected Config. It caches the AnalysedType derived from the
// reflected type so the type mapper runs once per class registration.
package typeinfo

import "github.com/golemcloud/golem-agent-sdk/wit"

// Kind discriminates the tag of a [TypeInfo].
type Kind string

const (
	KindAnalysed           Kind = "analysed"
	KindUnstructuredText   Kind = "unstructured-text"
	KindUnstructuredBinary Kind = "unstructured-binary"
	KindMultimodal         Kind = "multimodal"
	KindPrincipal          Kind = "principal"
	KindConfig             Kind = "config"
)

// MultimodalCase names one arm of a multimodal parameter's tagged-union list.
type MultimodalCase struct {
	Name string // the case's UnionTag literal, as given (not kebab-cased)
	Info TypeInfo
}

// TypeInfo is the discriminated handle described above. Exactly one field
// group is populated, selected by Kind.
type TypeInfo struct {
	Kind Kind

	// Populated when Kind == KindAnalysed.
	Analysed wit.AnalysedType

	// Populated when Kind == KindUnstructuredText. Nil allow-list means any
	// language code is accepted.
	AllowedLanguageCodes []string

	// Populated when Kind == KindUnstructuredBinary. Nil allow-list means any
	// mime type is accepted.
	AllowedMimeTypes []string

	// Populated when Kind == KindMultimodal. Cases are named by their tags,
	// which reflectx.Mapper.RegisterUnion keeps pairwise distinct; the names
	// are not kebab-cased, and an empty case list is not rejected.
	MultimodalCases []MultimodalCase
}

// Analysed constructs a TypeInfo for an ordinary component-model value.
func Analysed(t wit.AnalysedType) TypeInfo {
	return TypeInfo{Kind: KindAnalysed, Analysed: t}
}

// UnstructuredText constructs a TypeInfo for an unstructured-text parameter.
func UnstructuredText(allowedLanguageCodes []string) TypeInfo {
	return TypeInfo{Kind: KindUnstructuredText, AllowedLanguageCodes: allowedLanguageCodes}
}

// UnstructuredBinary constructs a TypeInfo for an unstructured-binary parameter.
func UnstructuredBinary(allowedMimeTypes []string) TypeInfo {
	return TypeInfo{Kind: KindUnstructuredBinary, AllowedMimeTypes: allowedMimeTypes}
}

// Multimodal constructs a TypeInfo for a multimodal parameter.
func Multimodal(cases []MultimodalCase) TypeInfo {
	return TypeInfo{Kind: KindMultimodal, MultimodalCases: cases}
}

// Principal constructs a TypeInfo for the auto-injected caller identity.
func Principal() TypeInfo { return TypeInfo{Kind: KindPrincipal} }

// Config constructs a TypeInfo for the auto-injected configuration tree.
func Config() TypeInfo { return TypeInfo{Kind: KindConfig} }

// ConsumesWireSlot reports whether a parameter of this TypeInfo occupies a
// positional element in a [cm.DataValue] tuple. Principal and Config are
// auto-injected on the receive side and never occupy a wire slot.
func (t TypeInfo) ConsumesWireSlot() bool {
	return t.Kind != KindPrincipal && t.Kind != KindConfig
}
