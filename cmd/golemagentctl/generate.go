package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/golemcloud/golem-agent-sdk/internal/gen"
	gogen "github.com/golemcloud/golem-agent-sdk/internal/go/gen"
)

var generateCommand = &cli.Command{
	Name:      "generate",
	Aliases:   []string{"go"},
	Usage:     "generate a typed Go client wrapper for a registered agent class",
	ArgsUsage: "<oci-ref-or-bundle-file>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "credentials", Aliases: []string{"c"}, Usage: "path to an OCI registry credentials file"},
		&cli.StringFlag{Name: "package", Value: "agentclient", Usage: "Go package name of the generated file"},
		&cli.StringFlag{Name: "client-name", Value: "Client", Usage: "Go type name of the generated client struct"},
		&cli.StringFlag{Name: "proxy-import", Value: "github.com/golemcloud/golem-agent-sdk/rpcproxy", Usage: "import path of the rpcproxy package"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file; defaults to stdout"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		source := cmd.Args().First()
		if source == "" {
			return fmt.Errorf("generate: missing source argument")
		}
		schema, err := loadSchema(ctx, source, cmd.String("credentials"))
		if err != nil {
			return err
		}

		proxyImport := cmd.String("proxy-import")
		if !cmd.IsSet("proxy-import") {
			// When a go.mod encloses the working directory, use the working
			// directory's package path plus "/rpcproxy" instead of the flag's
			// hardcoded default. Which module that go.mod declares is not checked.
			if wd, err := os.Getwd(); err == nil {
				if modPath, err := gogen.PackagePath(wd); err == nil {
					proxyImport = modPath + "/rpcproxy"
				}
			}
		}

		src, err := gen.GenerateClient(cmd.String("client-name"), schema, gen.Options{
			PackageName: cmd.String("package"),
			ProxyImport: proxyImport,
		})
		if err != nil {
			return err
		}

		out := cmd.String("out")
		if out == "" {
			_, err = os.Stdout.Write(src)
			return err
		}
		return os.WriteFile(out, src, 0o644)
	},
}
