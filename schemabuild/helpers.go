package schemabuild

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/golemcloud/golem-agent-sdk/cm"
	"github.com/golemcloud/golem-agent-sdk/internal/go/gen"
	"github.com/golemcloud/golem-agent-sdk/typeinfo"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

// typeInfoKindByName recognises Principal/Config by reflected type name, the
// Go realization of spec §4.4's "recognised by reflected type name" rule.
func typeInfoKindByName(t reflect.Type) (typeinfo.Kind, bool) {
	switch t.Name() {
	case "Principal":
		return typeinfo.KindPrincipal, true
	case "Config":
		return typeinfo.KindConfig, true
	}
	return "", false
}

var (
	unstructuredTextType   = reflect.TypeOf(UnstructuredText{})
	unstructuredBinaryType = reflect.TypeOf(UnstructuredBinary{})
)

// UnstructuredText marks a constructor/method parameter or return type as
// free-form text content carried as a [cm.TextReference] rather than a
// component-model value.
type UnstructuredText struct {
	Reference cm.TextReference
}

// UnstructuredBinary marks a parameter or return type as free-form binary
// content carried as a [cm.BinaryReference].
type UnstructuredBinary struct {
	Reference cm.BinaryReference
}

func isUnstructuredText(t reflect.Type) bool   { return t == unstructuredTextType }
func isUnstructuredBinary(t reflect.Type) bool { return t == unstructuredBinaryType }

func elementSchemaOf(info typeinfo.TypeInfo) wit.ElementSchema {
	switch info.Kind {
	case typeinfo.KindUnstructuredText:
		return wit.UnstructuredTextElementSchema{LanguageCodes: info.AllowedLanguageCodes}
	case typeinfo.KindUnstructuredBinary:
		return wit.UnstructuredBinaryElementSchema{MimeTypes: info.AllowedMimeTypes}
	default:
		return wit.ComponentModelElementSchema{Type: info.Analysed}
	}
}

func namedElementsOf(cases []typeinfo.MultimodalCase) []wit.NamedElement {
	out := make([]wit.NamedElement, 0, len(cases))
	for _, c := range cases {
		out = append(out, wit.NamedElement{Name: c.Name, Schema: elementSchemaOf(c.Info)})
	}
	return out
}

// outputSchemaOf builds a method's return DataSchema: a single-element tuple
// wrapping the return type's element schema, or a multimodal schema for a
// multimodal return type. Void returns as an empty tuple (no elements).
func outputSchemaOf(info typeinfo.TypeInfo) wit.DataSchema {
	if info.Kind == typeinfo.KindMultimodal {
		return wit.MultimodalDataSchema{Elements: namedElementsOf(info.MultimodalCases)}
	}
	if info.Kind == typeinfo.KindAnalysed {
		if t, ok := info.Analysed.(wit.TupleType); ok && len(t.Items) == 0 {
			return wit.TupleDataSchema{}
		}
	}
	return wit.TupleDataSchema{Elements: []wit.NamedElement{{Name: "result", Schema: elementSchemaOf(info)}}}
}

// toKebabCase converts a PascalCase Go identifier (e.g. "GetWeather",
// "ListHTTPRoutes") into the kebab-cased wire name ("get-weather",
// "list-http-routes"), treating runs of capitals from [gen.Initialisms] as a
// single word.
func toKebabCase(name string) string {
	var words []string
	runes := []rune(name)
	start := 0
	for i := 1; i <= len(runes); i++ {
		atBoundary := i == len(runes) || (unicode.IsUpper(runes[i]) && !unicode.IsUpper(runes[i-1]))
		if atBoundary {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = splitInitialisms(words)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "-")
}

// splitInitialisms further breaks up a run of capitals: the caller's boundary
// rule leaves "HTTPRoutes" as one word, and this re-homes a leading
// all-capitals initialism such as "ID", "URL", or "HTTP" to its own word when
// glued to the next one ("HTTP", "Routes").
func splitInitialisms(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		lower := strings.ToLower(w)
		if len(w) > 1 && gen.Initialisms[lower] {
			out = append(out, w)
			continue
		}
		matched := false
		for n := len(w) - 1; n >= 2; n-- {
			head := strings.ToLower(w[:n])
			if gen.Initialisms[head] && strings.ToUpper(w[:n]) == w[:n] {
				out = append(out, w[:n], w[n:])
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, w)
		}
	}
	return out
}
