package golemoci

import (
	"encoding/json"

	"github.com/golemcloud/golem-agent-sdk/golemerr"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

// bundleJSON is the on-the-wire shape of a published schema bundle: a
// class's identifier, its constructor DataSchema, and its AgentMethod
// catalog (spec.md §6 "Published artefacts"). Encoded with encoding/json
// rather than a pack library: wit.AgentClassSchema's AnalysedType/DataSchema
// trees are closed sums with no natural YAML/JSON-tagged shape of their own,
// so this package defines one explicitly and (de)serializes it with the
// standard library, the same way the teacher's own internal/oci never
// round-trips its WIT payload through a structured format — it only moves
// opaque bytes. gopkg.in/yaml.v3 is used only for the credentials file read
// in credentials.go.
type bundleJSON struct {
	Ident       string         `json:"ident"`
	Constructor dataSchemaJSON `json:"constructor"`
	Methods     []methodJSON   `json:"methods"`
}

type methodJSON struct {
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	PromptHint   string            `json:"promptHint,omitempty"`
	HTTPEndpoint *httpEndpointJSON `json:"httpEndpoint,omitempty"`
	Input        dataSchemaJSON    `json:"input"`
	Output       dataSchemaJSON    `json:"output"`
}

type httpEndpointJSON struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

type dataSchemaJSON struct {
	Kind     string        `json:"kind"` // "tuple" | "multimodal"
	Elements []elementJSON `json:"elements"`
}

type elementJSON struct {
	Name          string            `json:"name"`
	Kind          string            `json:"kind"` // "value" | "text" | "binary"
	Type          *analysedTypeJSON `json:"type,omitempty"`
	LanguageCodes []string          `json:"languageCodes,omitempty"`
	MimeTypes     []string          `json:"mimeTypes,omitempty"`
}

type fieldJSON struct {
	Name string           `json:"name"`
	Type analysedTypeJSON `json:"type"`
}

type variantCaseJSON struct {
	Name string            `json:"name"`
	Type *analysedTypeJSON `json:"type,omitempty"`
}

// analysedTypeJSON mirrors wit.AnalysedType's closed sum with a Kind
// discriminator, recursing into nested types. A variant's TaggedTypes are
// not encoded.
type analysedTypeJSON struct {
	Kind string `json:"kind"`

	Inner      *analysedTypeJSON `json:"inner,omitempty"`
	OptionForm string            `json:"optionForm,omitempty"`

	TypedArray string             `json:"typedArray,omitempty"`
	MapKey     *analysedTypeJSON  `json:"mapKey,omitempty"`
	MapValue   *analysedTypeJSON  `json:"mapValue,omitempty"`

	Items []analysedTypeJSON `json:"items,omitempty"`

	Fields []fieldJSON `json:"fields,omitempty"`

	Cases []variantCaseJSON `json:"cases,omitempty"`

	EnumCases []string `json:"enumCases,omitempty"`

	ResultKind   string             `json:"resultKind,omitempty"`
	OK           *analysedTypeJSON  `json:"ok,omitempty"`
	Err          *analysedTypeJSON  `json:"err,omitempty"`
	OKEmptyKind  string             `json:"okEmptyKind,omitempty"`
	ErrEmptyKind string             `json:"errEmptyKind,omitempty"`
}

// EncodeBundle renders schema as the published OCI artifact payload.
func EncodeBundle(schema wit.AgentClassSchema) ([]byte, error) {
	ctor, err := encodeDataSchema(schema.Constructor)
	if err != nil {
		return nil, err
	}
	methods := make([]methodJSON, 0, len(schema.Methods))
	for _, m := range schema.Methods {
		in, err := encodeDataSchema(m.Input)
		if err != nil {
			return nil, err
		}
		out, err := encodeDataSchema(m.Output)
		if err != nil {
			return nil, err
		}
		mj := methodJSON{Name: m.Name, Description: m.Description, PromptHint: m.PromptHint, Input: in, Output: out}
		if m.HTTPEndpoint != nil {
			mj.HTTPEndpoint = &httpEndpointJSON{Method: m.HTTPEndpoint.Method, Path: m.HTTPEndpoint.Path}
		}
		methods = append(methods, mj)
	}
	bj := bundleJSON{Ident: schema.Ident.String(), Constructor: ctor, Methods: methods}
	data, err := json.MarshalIndent(bj, "", "  ")
	if err != nil {
		return nil, golemerr.Wrap(golemerr.SchemaConstruction, err, "encoding schema bundle")
	}
	return data, nil
}

// DecodeBundle parses an OCI artifact payload produced by EncodeBundle.
func DecodeBundle(data []byte) (wit.AgentClassSchema, error) {
	var bj bundleJSON
	if err := json.Unmarshal(data, &bj); err != nil {
		return wit.AgentClassSchema{}, golemerr.Wrap(golemerr.SchemaConstruction, err, "decoding schema bundle")
	}
	ident, err := wit.ParseIdent(bj.Ident)
	if err != nil {
		return wit.AgentClassSchema{}, golemerr.Wrap(golemerr.SchemaConstruction, err, "decoding schema bundle: ident %q", bj.Ident)
	}
	ctor, err := decodeDataSchema(bj.Constructor)
	if err != nil {
		return wit.AgentClassSchema{}, err
	}
	methods := make([]wit.AgentMethod, 0, len(bj.Methods))
	for _, mj := range bj.Methods {
		in, err := decodeDataSchema(mj.Input)
		if err != nil {
			return wit.AgentClassSchema{}, err
		}
		out, err := decodeDataSchema(mj.Output)
		if err != nil {
			return wit.AgentClassSchema{}, err
		}
		am := wit.AgentMethod{Name: mj.Name, Description: mj.Description, PromptHint: mj.PromptHint, Input: in, Output: out}
		if mj.HTTPEndpoint != nil {
			am.HTTPEndpoint = &wit.HTTPEndpoint{Method: mj.HTTPEndpoint.Method, Path: mj.HTTPEndpoint.Path}
		}
		methods = append(methods, am)
	}
	return wit.AgentClassSchema{Ident: ident, Constructor: ctor, Methods: methods}, nil
}

func encodeDataSchema(ds wit.DataSchema) (dataSchemaJSON, error) {
	switch s := ds.(type) {
	case wit.TupleDataSchema:
		elems, err := encodeNamedElements(s.Elements)
		if err != nil {
			return dataSchemaJSON{}, err
		}
		return dataSchemaJSON{Kind: "tuple", Elements: elems}, nil
	case wit.MultimodalDataSchema:
		elems, err := encodeNamedElements(s.Elements)
		if err != nil {
			return dataSchemaJSON{}, err
		}
		return dataSchemaJSON{Kind: "multimodal", Elements: elems}, nil
	default:
		return dataSchemaJSON{}, golemerr.New(golemerr.SchemaConstruction, "encode bundle: unsupported DataSchema %T", ds)
	}
}

func decodeDataSchema(dj dataSchemaJSON) (wit.DataSchema, error) {
	elems, err := decodeNamedElements(dj.Elements)
	if err != nil {
		return nil, err
	}
	switch dj.Kind {
	case "tuple":
		return wit.TupleDataSchema{Elements: elems}, nil
	case "multimodal":
		return wit.MultimodalDataSchema{Elements: elems}, nil
	default:
		return nil, golemerr.New(golemerr.SchemaConstruction, "decode bundle: unsupported data schema kind %q", dj.Kind)
	}
}

func encodeNamedElements(elements []wit.NamedElement) ([]elementJSON, error) {
	out := make([]elementJSON, 0, len(elements))
	for _, e := range elements {
		ej := elementJSON{Name: e.Name}
		switch es := e.Schema.(type) {
		case wit.ComponentModelElementSchema:
			t, err := encodeType(es.Type)
			if err != nil {
				return nil, err
			}
			ej.Kind, ej.Type = "value", &t
		case wit.UnstructuredTextElementSchema:
			ej.Kind, ej.LanguageCodes = "text", es.LanguageCodes
		case wit.UnstructuredBinaryElementSchema:
			ej.Kind, ej.MimeTypes = "binary", es.MimeTypes
		default:
			return nil, golemerr.New(golemerr.SchemaConstruction, "encode bundle: unsupported ElementSchema %T", e.Schema)
		}
		out = append(out, ej)
	}
	return out, nil
}

func decodeNamedElements(elements []elementJSON) ([]wit.NamedElement, error) {
	out := make([]wit.NamedElement, 0, len(elements))
	for _, ej := range elements {
		var schema wit.ElementSchema
		switch ej.Kind {
		case "value":
			if ej.Type == nil {
				return nil, golemerr.New(golemerr.SchemaConstruction, "decode bundle: element %q missing type", ej.Name)
			}
			t, err := decodeType(*ej.Type)
			if err != nil {
				return nil, err
			}
			schema = wit.ComponentModelElementSchema{Type: t}
		case "text":
			schema = wit.UnstructuredTextElementSchema{LanguageCodes: ej.LanguageCodes}
		case "binary":
			schema = wit.UnstructuredBinaryElementSchema{MimeTypes: ej.MimeTypes}
		default:
			return nil, golemerr.New(golemerr.SchemaConstruction, "decode bundle: unsupported element kind %q", ej.Kind)
		}
		out = append(out, wit.NamedElement{Name: ej.Name, Schema: schema})
	}
	return out, nil
}

func encodeType(t wit.AnalysedType) (analysedTypeJSON, error) {
	switch tt := t.(type) {
	case wit.BoolType:
		return analysedTypeJSON{Kind: "bool"}, nil
	case wit.U8Type:
		return analysedTypeJSON{Kind: "u8"}, nil
	case wit.U16Type:
		return analysedTypeJSON{Kind: "u16"}, nil
	case wit.U32Type:
		return analysedTypeJSON{Kind: "u32"}, nil
	case wit.U64Type:
		return analysedTypeJSON{Kind: "u64"}, nil
	case wit.S8Type:
		return analysedTypeJSON{Kind: "s8"}, nil
	case wit.S16Type:
		return analysedTypeJSON{Kind: "s16"}, nil
	case wit.S32Type:
		return analysedTypeJSON{Kind: "s32"}, nil
	case wit.S64Type:
		return analysedTypeJSON{Kind: "s64"}, nil
	case wit.F32Type:
		return analysedTypeJSON{Kind: "f32"}, nil
	case wit.F64Type:
		return analysedTypeJSON{Kind: "f64"}, nil
	case wit.StringType:
		return analysedTypeJSON{Kind: "string"}, nil
	case wit.HandleType:
		return analysedTypeJSON{Kind: "handle"}, nil
	case wit.OptionType:
		inner, err := encodeType(tt.Inner)
		if err != nil {
			return analysedTypeJSON{}, err
		}
		return analysedTypeJSON{Kind: "option", Inner: &inner, OptionForm: string(tt.Form)}, nil
	case wit.ListType:
		inner, err := encodeType(tt.Inner)
		if err != nil {
			return analysedTypeJSON{}, err
		}
		j := analysedTypeJSON{Kind: "list", Inner: &inner, TypedArray: string(tt.TypedArray)}
		if tt.MapType != nil {
			k, err := encodeType(tt.MapType.KeyType)
			if err != nil {
				return analysedTypeJSON{}, err
			}
			v, err := encodeType(tt.MapType.ValueType)
			if err != nil {
				return analysedTypeJSON{}, err
			}
			j.MapKey, j.MapValue = &k, &v
		}
		return j, nil
	case wit.TupleType:
		items := make([]analysedTypeJSON, 0, len(tt.Items))
		for _, it := range tt.Items {
			ij, err := encodeType(it)
			if err != nil {
				return analysedTypeJSON{}, err
			}
			items = append(items, ij)
		}
		return analysedTypeJSON{Kind: "tuple", Items: items}, nil
	case wit.RecordType:
		fields := make([]fieldJSON, 0, len(tt.Fields))
		for _, f := range tt.Fields {
			fj, err := encodeType(f.Type)
			if err != nil {
				return analysedTypeJSON{}, err
			}
			fields = append(fields, fieldJSON{Name: f.Name, Type: fj})
		}
		return analysedTypeJSON{Kind: "record", Fields: fields}, nil
	case wit.VariantType:
		cases := make([]variantCaseJSON, 0, len(tt.Cases))
		for _, c := range tt.Cases {
			cj := variantCaseJSON{Name: c.Name}
			if c.Type != nil {
				tj, err := encodeType(c.Type)
				if err != nil {
					return analysedTypeJSON{}, err
				}
				cj.Type = &tj
			}
			cases = append(cases, cj)
		}
		return analysedTypeJSON{Kind: "variant", Cases: cases}, nil
	case wit.EnumType:
		return analysedTypeJSON{Kind: "enum", EnumCases: tt.Cases}, nil
	case wit.ResultType:
		j := analysedTypeJSON{Kind: "result", ResultKind: string(tt.Kind), OKEmptyKind: string(tt.OKEmptyKind), ErrEmptyKind: string(tt.ErrEmptyKind)}
		if tt.OK != nil {
			ok, err := encodeType(tt.OK)
			if err != nil {
				return analysedTypeJSON{}, err
			}
			j.OK = &ok
		}
		if tt.Err != nil {
			e, err := encodeType(tt.Err)
			if err != nil {
				return analysedTypeJSON{}, err
			}
			j.Err = &e
		}
		return j, nil
	default:
		return analysedTypeJSON{}, golemerr.New(golemerr.SchemaConstruction, "encode bundle: unsupported AnalysedType %T", t)
	}
}

func decodeType(j analysedTypeJSON) (wit.AnalysedType, error) {
	switch j.Kind {
	case "bool":
		return wit.BoolType{}, nil
	case "u8":
		return wit.U8Type{}, nil
	case "u16":
		return wit.U16Type{}, nil
	case "u32":
		return wit.U32Type{}, nil
	case "u64":
		return wit.U64Type{}, nil
	case "s8":
		return wit.S8Type{}, nil
	case "s16":
		return wit.S16Type{}, nil
	case "s32":
		return wit.S32Type{}, nil
	case "s64":
		return wit.S64Type{}, nil
	case "f32":
		return wit.F32Type{}, nil
	case "f64":
		return wit.F64Type{}, nil
	case "string":
		return wit.StringType{}, nil
	case "handle":
		return wit.HandleType{}, nil
	case "option":
		if j.Inner == nil {
			return nil, golemerr.New(golemerr.SchemaConstruction, "decode bundle: option missing inner type")
		}
		inner, err := decodeType(*j.Inner)
		if err != nil {
			return nil, err
		}
		return wit.OptionType{Inner: inner, Form: wit.OptionForm(j.OptionForm)}, nil
	case "list":
		if j.Inner == nil {
			return nil, golemerr.New(golemerr.SchemaConstruction, "decode bundle: list missing inner type")
		}
		inner, err := decodeType(*j.Inner)
		if err != nil {
			return nil, err
		}
		lt := wit.ListType{Inner: inner, TypedArray: wit.TypedArrayKind(j.TypedArray)}
		if j.MapKey != nil && j.MapValue != nil {
			k, err := decodeType(*j.MapKey)
			if err != nil {
				return nil, err
			}
			v, err := decodeType(*j.MapValue)
			if err != nil {
				return nil, err
			}
			lt.MapType = &wit.MapShape{KeyType: k, ValueType: v}
		}
		return lt, nil
	case "tuple":
		items := make([]wit.AnalysedType, 0, len(j.Items))
		for _, ij := range j.Items {
			it, err := decodeType(ij)
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
		return wit.TupleType{Items: items}, nil
	case "record":
		fields := make([]wit.Field, 0, len(j.Fields))
		for _, fj := range j.Fields {
			ft, err := decodeType(fj.Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, wit.Field{Name: fj.Name, Type: ft})
		}
		return wit.RecordType{Fields: fields}, nil
	case "variant":
		cases := make([]wit.VariantCase, 0, len(j.Cases))
		for _, cj := range j.Cases {
			vc := wit.VariantCase{Name: cj.Name}
			if cj.Type != nil {
				ct, err := decodeType(*cj.Type)
				if err != nil {
					return nil, err
				}
				vc.Type = ct
			}
			cases = append(cases, vc)
		}
		return wit.VariantType{Cases: cases}, nil
	case "enum":
		return wit.EnumType{Cases: j.EnumCases}, nil
	case "result":
		rt := wit.ResultType{Kind: wit.ResultKind(j.ResultKind), OKEmptyKind: wit.EmptyKind(j.OKEmptyKind), ErrEmptyKind: wit.EmptyKind(j.ErrEmptyKind)}
		if j.OK != nil {
			ok, err := decodeType(*j.OK)
			if err != nil {
				return nil, err
			}
			rt.OK = ok
		}
		if j.Err != nil {
			e, err := decodeType(*j.Err)
			if err != nil {
				return nil, err
			}
			rt.Err = e
		}
		return rt, nil
	default:
		return nil, golemerr.New(golemerr.SchemaConstruction, "decode bundle: unsupported type kind %q", j.Kind)
	}
}
