package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

var describeCommand = &cli.Command{
	Name:      "describe",
	Usage:     "print a registered agent class's constructor and method schema",
	ArgsUsage: "<oci-ref-or-bundle-file>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "credentials", Aliases: []string{"c"}, Usage: "path to an OCI registry credentials file"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		source := cmd.Args().First()
		if source == "" {
			return fmt.Errorf("describe: missing source argument")
		}
		schema, err := loadSchema(ctx, source, cmd.String("credentials"))
		if err != nil {
			return err
		}

		fmt.Printf("agent class: %s\n", schema.Ident.String())
		fmt.Println("constructor:")
		describeDataSchema("  ", schema.Constructor)
		for _, m := range schema.Methods {
			fmt.Printf("method %s:\n", m.Name)
			if m.Description != "" {
				fmt.Printf("  description: %s\n", m.Description)
			}
			if m.HTTPEndpoint != nil {
				fmt.Printf("  http: %s %s\n", m.HTTPEndpoint.Method, m.HTTPEndpoint.Path)
			}
			fmt.Println("  input:")
			describeDataSchema("    ", m.Input)
			fmt.Println("  output:")
			describeDataSchema("    ", m.Output)
		}
		return nil
	},
}
