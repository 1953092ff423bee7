package main

import (
	"context"
	"fmt"
	"os"

	"github.com/golemcloud/golem-agent-sdk/internal/golemoci"
	"github.com/golemcloud/golem-agent-sdk/wit"
)

// loadSchema reads a schema bundle from source: an OCI registry reference
// (pulled via golemoci.PullSchema) or a local file produced by a prior
// `pull`/export (decoded via golemoci.DecodeBundle). credentialsPath is
// forwarded to golemoci for registry auth and may be empty.
func loadSchema(ctx context.Context, source, credentialsPath string) (wit.AgentClassSchema, error) {
	if golemoci.IsOCIPath(source) {
		return golemoci.PullSchema(ctx, source, credentialsPath)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return wit.AgentClassSchema{}, fmt.Errorf("reading %s: %w", source, err)
	}
	return golemoci.DecodeBundle(data)
}

func describeDataSchema(indent string, ds wit.DataSchema) {
	switch s := ds.(type) {
	case wit.TupleDataSchema:
		for _, e := range s.Elements {
			fmt.Printf("%s%s: %s\n", indent, e.Name, describeElementSchema(e.Schema))
		}
	case wit.MultimodalDataSchema:
		fmt.Printf("%smultimodal:\n", indent)
		for _, e := range s.Elements {
			fmt.Printf("%s  %s: %s\n", indent, e.Name, describeElementSchema(e.Schema))
		}
	}
}

func describeElementSchema(es wit.ElementSchema) string {
	switch e := es.(type) {
	case wit.ComponentModelElementSchema:
		return fmt.Sprintf("%T", e.Type)
	case wit.UnstructuredTextElementSchema:
		return "unstructured-text"
	case wit.UnstructuredBinaryElementSchema:
		return "unstructured-binary"
	default:
		return "?"
	}
}
