package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/golemcloud/golem-agent-sdk/internal/golemoci"
)

var pullCommand = &cli.Command{
	Name:      "pull",
	Usage:     "fetch a schema bundle from an OCI registry and save it locally",
	ArgsUsage: "<oci-ref>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "credentials", Aliases: []string{"c"}, Usage: "path to an OCI registry credentials file"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output bundle file; defaults to stdout"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		ref := cmd.Args().First()
		if ref == "" {
			return fmt.Errorf("pull: missing oci-ref argument")
		}

		schema, err := golemoci.PullSchema(ctx, ref, cmd.String("credentials"))
		if err != nil {
			return err
		}
		data, err := golemoci.EncodeBundle(schema)
		if err != nil {
			return err
		}

		out := cmd.String("out")
		if out == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(out, data, 0o644)
	},
}
