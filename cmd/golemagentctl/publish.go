package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/golemcloud/golem-agent-sdk/internal/golemoci"
)

var publishCommand = &cli.Command{
	Name:      "publish",
	Usage:     "push a local schema bundle file to an OCI registry",
	ArgsUsage: "<bundle-file> <oci-ref>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "credentials", Aliases: []string{"c"}, Usage: "path to an OCI registry credentials file"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		bundleFile := cmd.Args().Get(0)
		ref := cmd.Args().Get(1)
		if bundleFile == "" || ref == "" {
			return fmt.Errorf("publish: usage: publish <bundle-file> <oci-ref>")
		}

		data, err := os.ReadFile(bundleFile)
		if err != nil {
			return fmt.Errorf("publish: reading %s: %w", bundleFile, err)
		}
		schema, err := golemoci.DecodeBundle(data)
		if err != nil {
			return err
		}

		if err := golemoci.PublishSchema(ctx, ref, cmd.String("credentials"), schema); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "published %s to %s\n", schema.Ident.String(), ref)
		return nil
	},
}
