package wit

// ElementSchema describes the wire shape of a single parameter or multimodal
// element: either a component-model value (governed by an AnalysedType), or
// one of the two unstructured shapes.
type ElementSchema interface {
	isElementSchema()
}

type _elementSchema struct{}

func (_elementSchema) isElementSchema() {}

// ComponentModelElementSchema is an element carried as a component-model value.
type ComponentModelElementSchema struct {
	_elementSchema
	Type AnalysedType
}

// UnstructuredTextElementSchema is an element carried as a [TextReference].
// LanguageCodes is nil when any language is accepted, or the declared
// tuple-literal allow-list otherwise.
type UnstructuredTextElementSchema struct {
	_elementSchema
	LanguageCodes []string
}

// UnstructuredBinaryElementSchema is an element carried as a [BinaryReference].
// MimeTypes is nil when any mime type is accepted.
type UnstructuredBinaryElementSchema struct {
	_elementSchema
	MimeTypes []string
}

// NamedElement pairs a parameter/element name with its schema. Order matches
// declaration order and is semantically significant for multimodal schemas.
type NamedElement struct {
	Name   string
	Schema ElementSchema
}

// DataSchema is the externally published descriptor of a call's parameter
// shape: either a positional tuple or a multimodal group.
type DataSchema interface {
	isDataSchema()
}

type _dataSchema struct{}

func (_dataSchema) isDataSchema() {}

// TupleDataSchema describes an ordered, positional parameter list.
type TupleDataSchema struct {
	_dataSchema
	Elements []NamedElement
}

// MultimodalDataSchema describes a single tagged-union-list parameter whose
// cases are named elements.
type MultimodalDataSchema struct {
	_dataSchema
	Elements []NamedElement
}

// HTTPEndpoint optionally describes how an agent method is exposed over HTTP.
// Mounting and validating this endpoint is out of scope for this module (see
// spec.md Non-goals); only the descriptor is carried.
type HTTPEndpoint struct {
	Method string
	Path   string
}

// AgentMethod is one published entry in a registered agent class's method
// catalog.
type AgentMethod struct {
	Name        string
	Description string
	PromptHint  string
	HTTPEndpoint *HTTPEndpoint
	Input       DataSchema
	Output      DataSchema
}

// AgentClassSchema is the full published artefact for one registered agent
// class: its constructor's parameter schema plus its method catalog.
type AgentClassSchema struct {
	Ident       Ident
	Constructor DataSchema
	Methods     []AgentMethod
}
