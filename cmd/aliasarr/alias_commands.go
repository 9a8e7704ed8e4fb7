package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"aliasarr/internal/alias"
)

func newAliasCommand(ctx *commandContext) *cobra.Command {
	aliasCmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage manual aliases",
	}

	aliasCmd.AddCommand(newAliasAddCommand(ctx))
	aliasCmd.AddCommand(newAliasRemoveCommand(ctx))

	return aliasCmd
}

func newAliasAddCommand(ctx *commandContext) *cobra.Command {
	var (
		seriesRef  int64
		movieRef   int64
		season     int
		network    string
		searchTerm string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Register a manual alias for a series or movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (seriesRef == 0) == (movieRef == 0) {
				return errors.New("exactly one of --series or --movie is required")
			}

			app, err := ctx.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			if movieRef != 0 {
				if network != "" || searchTerm != "" || cmd.Flags().Changed("season") {
					return errors.New("--season, --network, and --search-term apply to series aliases only")
				}
				if app.movies == nil {
					return errors.New("movie tracker is not configured")
				}
				entry, err := app.movies.InsertManual(cmd.Context(), alias.NewAlias{
					MediaRef: movieRef,
					Title:    args[0],
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Added alias %q (key %s) to movie %d\n", entry.Title, entry.CanonicalKey, movieRef)
				return nil
			}

			if app.series == nil {
				return errors.New("series tracker is not configured")
			}
			req := alias.NewAlias{
				MediaRef:   seriesRef,
				Title:      args[0],
				SearchTerm: searchTerm,
				Network:    network,
			}
			if cmd.Flags().Changed("season") {
				req.Season = &season
			}
			created, err := app.series.InsertManual(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, entry := range created {
				fmt.Fprintf(out, "Added alias %q (key %s) to series %d\n", entry.Title, entry.CanonicalKey, seriesRef)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&seriesRef, "series", 0, "Target series id (TVDB)")
	cmd.Flags().Int64Var(&movieRef, "movie", 0, "Target movie metadata id")
	cmd.Flags().IntVar(&season, "season", 0, "Scope the alias to one season")
	cmd.Flags().StringVar(&network, "network", "", "Also register \"<title> <network>\" as a linked alias")
	cmd.Flags().StringVar(&searchTerm, "search-term", "", "Search term shown to the tracker (defaults to the title)")
	return cmd
}

func newAliasRemoveCommand(ctx *commandContext) *cobra.Command {
	var (
		fromSeries bool
		fromMovies bool
	)

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a manual alias by row id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromSeries == fromMovies {
				return errors.New("exactly one of --series or --movie is required")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse alias id %q: %w", args[0], err)
			}

			app, err := ctx.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if fromSeries {
				if app.series == nil {
					return errors.New("series tracker is not configured")
				}
				err = app.series.DeleteManual(cmd.Context(), id)
			} else {
				if app.movies == nil {
					return errors.New("movie tracker is not configured")
				}
				err = app.movies.DeleteManual(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed alias %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromSeries, "series", false, "Remove a series alias")
	cmd.Flags().BoolVar(&fromMovies, "movie", false, "Remove a movie alias")
	return cmd
}
