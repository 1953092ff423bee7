// Command golemagentctl is the operator CLI for golem agent classes: it
// describes a published schema, generates a typed Go client wrapper for one,
// and round-trips schema bundles through an OCI registry (spec.md §6
// "Published artefacts", §9 "generated type-safe wrappers"). It continues the
// teacher's cmd/wit-bindgen-go CLI shape (a root command with describe/
// generate/publish/pull verbs) over this module's own domain.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

var (
	version  = ""
	revision = ""
)

func init() {
	build, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = build.Main.Version
	for _, s := range build.Settings {
		if s.Key == "vcs.revision" {
			revision = s.Value
		}
	}
	if version == "" {
		version = revision
	}
	if version == "" {
		version = "(none)"
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "golemagentctl",
		Usage:   "inspect, generate, and publish golem agent-class schemas",
		Version: version,
		Commands: []*cli.Command{
			describeCommand,
			generateCommand,
			publishCommand,
			pullCommand,
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
