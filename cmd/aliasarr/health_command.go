package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe every configured tracker database",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			type probe struct {
				label string
				check func(context.Context) error
			}
			var probes []probe
			if app.series != nil {
				probes = append(probes, probe{"series", app.series.Health})
			}
			if app.movies != nil {
				probes = append(probes, probe{"movies", app.movies.Health})
			}

			out := cmd.OutOrStdout()
			var firstErr error
			for _, p := range probes {
				if err := p.check(cmd.Context()); err != nil {
					fmt.Fprintf(out, "%s: unavailable (%v)\n", p.label, err)
					if firstErr == nil {
						firstErr = fmt.Errorf("%s tracker unavailable: %w", p.label, err)
					}
					continue
				}
				fmt.Fprintf(out, "%s: ok\n", p.label)
			}
			return firstErr
		},
	}
}
