package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"aliasarr/internal/alias"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search configured trackers by title or alias key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			items, err := app.aggregator().Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No matches")
				return nil
			}

			if !writerIsTerminal(out) {
				for _, item := range items {
					fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n",
						item.MediaRef, item.Title, yearString(item.Year), item.Status, describeAliases(item.Aliases, ", "))
				}
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					strconv.FormatInt(item.MediaRef, 10),
					item.Title,
					yearString(item.Year),
					item.Status,
					describeAliases(item.Aliases, "\n"),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Ref", "Title", "Year", "Status", "Aliases"}, rows))
			return nil
		},
	}
}

func yearString(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}

func describeAliases(entries []alias.Entry, sep string) string {
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, describeAlias(entry))
	}
	return strings.Join(parts, sep)
}

func describeAlias(entry alias.Entry) string {
	var notes []string
	if entry.Manual() {
		notes = append(notes, fmt.Sprintf("manual #%d", entry.ID))
	}
	if entry.Season != nil {
		notes = append(notes, fmt.Sprintf("season %d", *entry.Season))
	}
	if entry.Network != "" {
		notes = append(notes, entry.Network)
	}
	if len(notes) == 0 {
		return entry.Title
	}
	return fmt.Sprintf("%s (%s)", entry.Title, strings.Join(notes, ", "))
}
