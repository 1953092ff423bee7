// Package gen generates typed Go client-wrapper source for one registered
// agent class (spec.md §9 "languages without general proxies should expose a
// call(method, args) entry point plus generated type-safe wrappers"). Go has
// no dynamic proxy objects, so this package is the Go-native form of that
// requirement: two generated methods per registered agent method, a blocking
// call and a Trigger variant, each delegating to the underlying
// *rpcproxy.Proxy.
package gen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	gogen "github.com/golemcloud/golem-agent-sdk/internal/go/gen"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

// Options configures GenerateClient.
type Options struct {
	// PackageName is the Go package name of the generated file.
	PackageName string
	// ProxyImport is the import path of the rpcproxy package, usually
	// "github.com/golemcloud/golem-agent-sdk/rpcproxy".
	ProxyImport string
}

type clientMethod struct {
	GoName   string
	WireName string
	Docs     string
}

type clientData struct {
	PackageName string
	ProxyImport string
	ClientName  string
	ClassKey    string
	Methods     []clientMethod
}

// GenerateClient renders a typed client wrapper struct named clientName for
// schema's class (as published by schemabuild or pulled back via golemoci),
// formatted and import-resolved via golang.org/x/tools/imports the same way
// the teacher's own bindgen output is formatted before being written to
// disk.
func GenerateClient(clientName string, schema wit.AgentClassSchema, opts Options) ([]byte, error) {
	methods := make([]clientMethod, 0, len(schema.Methods))
	for _, m := range schema.Methods {
		goName := kebabToPascal(m.Name)
		docs := ""
		if m.Description != "" {
			docs = gogen.FormatDocComments(goName+" "+m.Description, false)
		}
		methods = append(methods, clientMethod{GoName: goName, WireName: m.Name, Docs: docs})
	}

	data := clientData{
		PackageName: opts.PackageName,
		ProxyImport: opts.ProxyImport,
		ClientName:  clientName,
		ClassKey:    schema.Ident.UnversionedString(),
		Methods:     methods,
	}

	var buf bytes.Buffer
	if err := clientTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("gen: rendering client template: %w", err)
	}

	formatted, err := imports.Process(strings.ToLower(clientName)+"_client.go", buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("gen: formatting generated source: %w", err)
	}
	return formatted, nil
}

// kebabToPascal converts a kebab-cased wire method name ("get-balance") into
// an exported Go identifier ("GetBalance").
func kebabToPascal(name string) string {
	parts := strings.Split(name, "-")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

var clientTemplate = template.Must(template.New("client").Parse(`package {{.PackageName}}

import (
	"context"
	"reflect"

	"{{.ProxyImport}}"
)

// {{.ClientName}} is a generated typed wrapper around a *rpcproxy.Proxy bound
// to the "{{.ClassKey}}" agent class.
type {{.ClientName}} struct {
	Proxy *rpcproxy.Proxy
}
{{range .Methods}}
{{if .Docs}}{{.Docs}}{{else}}// {{.GoName}} calls the "{{.WireName}}" method on the remote agent and
// blocks for its result.
{{end}}func (c *{{$.ClientName}}) {{.GoName}}(ctx context.Context, target reflect.Type, args ...reflect.Value) (reflect.Value, error) {
	return c.Proxy.Call(ctx, "{{.WireName}}", target, args...)
}

// Trigger{{.GoName}} fires the "{{.WireName}}" method without waiting for a result.
func (c *{{$.ClientName}}) Trigger{{.GoName}}(ctx context.Context, args ...reflect.Value) error {
	return c.Proxy.Trigger(ctx, "{{.WireName}}", args...)
}
{{end}}
`))
