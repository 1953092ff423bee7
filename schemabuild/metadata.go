// Package schemabuild reflects a Go agent class's constructor and methods
// into a wit.AgentClassSchema and a registry of per-parameter TypeInfo,
// realizing spec §4.4's schema builder over Go's own reflection rather than a
// TypeScript compiler's symbol table.
package schemabuild

import (
	"reflect"
	"strings"

	"github.com/golemcloud/golem-agent-sdk/golemerr"
	"github.com/golemcloud/golem-agent-sdk/reflectx"
	"github.com/golemcloud/golem-agent-sdk/typeinfo"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

// ParamMeta describes one constructor argument or method parameter as
// supplied by the class author. AllowList restricts UnstructuredText (by
// language code) or UnstructuredBinary (by mime type); nil means unrestricted.
// Go constructors and methods carry no equivalent of a TypeScript generic
// literal type parameter, so this allow-list is supplied explicitly rather
// than mined from the type.
type ParamMeta struct {
	Name      string
	Type      reflect.Type
	Optional  bool
	AllowList []string
}

// ReturnMeta describes a method's return type. A nil Type denotes void.
type ReturnMeta struct {
	Type      reflect.Type
	AllowList []string
}

// MethodMeta describes one agent method.
type MethodMeta struct {
	Name         string // PascalCase Go method name; kebab-cased for the wire
	Description  string
	PromptHint   string
	HTTPEndpoint *wit.HTTPEndpoint
	Params       []ParamMeta
	Return       ReturnMeta
}

// ClassMetadata describes one agent class: its identifier, constructor
// parameters, and methods.
type ClassMetadata struct {
	Ident       wit.Ident
	Constructor []ParamMeta
	Methods     []MethodMeta
}

// MethodRegistration is the per-method registry entry: the cached TypeInfo
// for each parameter (in declared order) and for the return type.
type MethodRegistration struct {
	Params []typeinfo.TypeInfo
	Return typeinfo.TypeInfo
}

// ClassRegistration is the result of building a class's schema: the published
// DataSchema-bearing AgentClassSchema, plus the registry entries the
// serializer/deserializer and proxy consult at call time.
type ClassRegistration struct {
	Schema            wit.AgentClassSchema
	ConstructorParams []typeinfo.TypeInfo
	Methods           map[string]MethodRegistration // keyed by kebab-cased method name
}

// reservedMethodNames collides with the two built-in operations every agent
// class exposes; a user method kebab-casing to one of these is rejected.
var reservedMethodNames = map[string]bool{
	"initialize":     true,
	"get-definition": true,
}

// Builder builds ClassRegistrations using a shared [reflectx.Mapper], so
// tagged-union registrations made for one class remain visible to classes
// built afterward.
type Builder struct {
	Mapper *reflectx.Mapper
}

// NewBuilder returns a Builder driven by mapper.
func NewBuilder(mapper *reflectx.Mapper) *Builder {
	return &Builder{Mapper: mapper}
}

// Build reflects meta into a ClassRegistration, or returns a *golemerr.Error
// of kind SchemaConstruction, ReservedOrInvalidMethodName, or MultimodalShape.
func (b *Builder) Build(meta ClassMetadata) (*ClassRegistration, error) {
	reg := &ClassRegistration{
		Methods: make(map[string]MethodRegistration, len(meta.Methods)),
	}

	ctorInfos := make([]typeinfo.TypeInfo, 0, len(meta.Constructor))
	ctorElements := make([]wit.NamedElement, 0, len(meta.Constructor))
	for _, p := range meta.Constructor {
		info, err := b.paramTypeInfo(meta.Ident.String(), "new", p)
		if err != nil {
			return nil, err
		}
		ctorInfos = append(ctorInfos, info)
		if info.ConsumesWireSlot() {
			ctorElements = append(ctorElements, wit.NamedElement{Name: p.Name, Schema: elementSchemaOf(info)})
		}
	}
	reg.ConstructorParams = ctorInfos

	methods := make([]wit.AgentMethod, 0, len(meta.Methods))
	seen := make(map[string]bool, len(meta.Methods))
	for _, mm := range meta.Methods {
		if strings.Contains(mm.Name, "$") {
			return nil, golemerr.New(golemerr.ReservedOrInvalidMethodName, "%s.%s: method names may not contain '$'", meta.Ident.String(), mm.Name)
		}
		kebab := toKebabCase(mm.Name)
		if reservedMethodNames[kebab] {
			return nil, golemerr.New(golemerr.ReservedOrInvalidMethodName, "%s.%s: %q collides with a built-in operation", meta.Ident.String(), mm.Name, kebab)
		}
		if seen[kebab] {
			return nil, golemerr.New(golemerr.SchemaConstruction, "%s: duplicate method name %q", meta.Ident.String(), kebab)
		}
		seen[kebab] = true

		paramInfos := make([]typeinfo.TypeInfo, 0, len(mm.Params))
		paramElements := make([]wit.NamedElement, 0, len(mm.Params))
		for _, p := range mm.Params {
			info, err := b.paramTypeInfo(meta.Ident.String(), kebab, p)
			if err != nil {
				return nil, err
			}
			paramInfos = append(paramInfos, info)
			if info.ConsumesWireSlot() {
				paramElements = append(paramElements, wit.NamedElement{Name: p.Name, Schema: elementSchemaOf(info)})
			}
		}

		if len(mm.Params) != 1 {
			for i, info := range paramInfos {
				if info.Kind == typeinfo.KindMultimodal {
					return nil, golemerr.New(golemerr.MultimodalShape, "%s.%s: multimodal parameter %q is only valid as the sole parameter", meta.Ident.String(), kebab, mm.Params[i].Name)
				}
			}
		}

		retInfo, err := b.returnTypeInfo(meta.Ident.String(), kebab, mm.Return)
		if err != nil {
			return nil, err
		}

		var inputSchema wit.DataSchema
		if len(mm.Params) == 1 && paramInfos[0].Kind == typeinfo.KindMultimodal {
			inputSchema = wit.MultimodalDataSchema{Elements: namedElementsOf(paramInfos[0].MultimodalCases)}
		} else {
			inputSchema = wit.TupleDataSchema{Elements: paramElements}
		}

		methods = append(methods, wit.AgentMethod{
			Name:         kebab,
			Description:  mm.Description,
			PromptHint:   mm.PromptHint,
			HTTPEndpoint: mm.HTTPEndpoint,
			Input:        inputSchema,
			Output:       outputSchemaOf(retInfo),
		})
		reg.Methods[kebab] = MethodRegistration{Params: paramInfos, Return: retInfo}
	}

	reg.Schema = wit.AgentClassSchema{
		Ident:       meta.Ident,
		Constructor: wit.TupleDataSchema{Elements: ctorElements},
		Methods:     methods,
	}
	return reg, nil
}

// paramTypeInfo routes one parameter through the TypeInfoInternal
// classification rules of spec §4.4: principal/config by reflected type
// name, multimodal for a lone Array<TaggedUnion> parameter, unstructured
// text/binary by marker type, otherwise the general type mapper.
func (b *Builder) paramTypeInfo(className, memberName string, p ParamMeta) (typeinfo.TypeInfo, error) {
	if kind, ok := typeInfoKindByName(p.Type); ok {
		if kind == typeinfo.KindPrincipal {
			return typeinfo.Principal(), nil
		}
		return typeinfo.Config(), nil
	}

	if isUnstructuredText(p.Type) {
		return typeinfo.UnstructuredText(p.AllowList), nil
	}
	if isUnstructuredBinary(p.Type) {
		return typeinfo.UnstructuredBinary(p.AllowList), nil
	}

	if p.Type.Kind() == reflect.Slice && p.Type.Elem().Kind() == reflect.Interface {
		cases, err := b.multimodalCases(className, memberName, p.Name, p.Type.Elem())
		if err != nil {
			return typeinfo.TypeInfo{}, err
		}
		return typeinfo.Multimodal(cases), nil
	}

	analysed, err := b.Mapper.Map(p.Type, reflectx.Scope{
		Kind: paramScopeKind(memberName), ClassName: className, MemberName: memberName, ParamName: p.Name, Optional: p.Optional,
	})
	if err != nil {
		return typeinfo.TypeInfo{}, err
	}
	return typeinfo.Analysed(analysed), nil
}

func paramScopeKind(memberName string) reflectx.ScopeKind {
	if memberName == "new" {
		return reflectx.ScopeConstructorArg
	}
	return reflectx.ScopeMethodParam
}

func (b *Builder) returnTypeInfo(className, memberName string, r ReturnMeta) (typeinfo.TypeInfo, error) {
	if r.Type == nil {
		return typeinfo.Analysed(wit.TupleType{}), nil
	}
	if isUnstructuredText(r.Type) {
		return typeinfo.UnstructuredText(r.AllowList), nil
	}
	if isUnstructuredBinary(r.Type) {
		return typeinfo.UnstructuredBinary(r.AllowList), nil
	}
	if r.Type.Kind() == reflect.Slice && r.Type.Elem().Kind() == reflect.Interface {
		cases, err := b.multimodalCases(className, memberName, "return", r.Type.Elem())
		if err != nil {
			return typeinfo.TypeInfo{}, err
		}
		return typeinfo.Multimodal(cases), nil
	}
	analysed, err := b.Mapper.Map(r.Type, reflectx.Scope{Kind: reflectx.ScopeMethodReturn, ClassName: className, MemberName: memberName})
	if err != nil {
		return typeinfo.TypeInfo{}, err
	}
	return typeinfo.Analysed(analysed), nil
}

func (b *Builder) multimodalCases(className, memberName, paramName string, iface reflect.Type) ([]typeinfo.MultimodalCase, error) {
	cases, ok := b.Mapper.UnionCases(iface)
	if !ok {
		return nil, golemerr.New(golemerr.SchemaConstruction, "%s.%s(%s): interface %s has no registered union cases", className, memberName, paramName, iface)
	}
	out := make([]typeinfo.MultimodalCase, 0, len(cases))
	for _, c := range cases {
		tag, payload := b.Mapper.CaseTagAndPayload(c)
		if payload != nil && payload.Kind() == reflect.Slice && payload.Elem().Kind() == reflect.Interface {
			return nil, golemerr.New(golemerr.MultimodalShape, "%s.%s(%s): nested multimodal is not supported (case %q)", className, memberName, paramName, tag)
		}
		var info typeinfo.TypeInfo
		var err error
		if payload == nil {
			info = typeinfo.Analysed(wit.TupleType{})
		} else {
			info, err = b.paramTypeInfo(className, memberName, ParamMeta{Name: tag, Type: payload})
		}
		if err != nil {
			return nil, err
		}
		out = append(out, typeinfo.MultimodalCase{Name: tag, Info: info})
	}
	return out, nil
}
