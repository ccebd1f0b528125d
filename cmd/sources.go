package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

func sourcesCmd() *cli.Command {
	return &cli.Command{
		Name:  "sources",
		Usage: "List the configured sources",
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			return printSources(ctx.App.Writer, cfg.Sources)
		},
	}
}

func printSources(w io.Writer, sources map[string]string) error {
	names := lo.Keys(sources)
	slices.Sort(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", name, sources[name]); err != nil {
			return err
		}
	}
	return nil
}
