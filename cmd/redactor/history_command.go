package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"redactor/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent export attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				entries, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if entries == nil {
						entries = []history.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No exports recorded yet")
					return nil
				}
				fmt.Fprintln(out, renderTable("", []tableColumn{
					{Header: "ID"},
					{Header: "Status"},
					{Header: "Video"},
					{Header: "Output"},
					{Header: "Redactions", Align: alignRight},
					{Header: "Effects"},
					{Header: "Size", Align: alignRight},
					{Header: "Took", Align: alignRight},
					{Header: "Finished"},
				}, historyRows(entries)))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")

	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history entries older than a duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			return withHistory(ctx, func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entr%s\n", removed, pluralY(removed))
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age cutoff")
	return cmd
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func historyRows(entries []history.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		id := e.ID
		if len(id) > 8 {
			id = id[:8]
		}
		status := displayName(string(e.Status))
		if e.Status == history.StatusError && e.ErrorMessage != "" {
			status += ": " + e.ErrorMessage
		}
		size := "-"
		if e.OutputBytes > 0 {
			size = humanize.Bytes(uint64(e.OutputBytes))
		}
		rows = append(rows, []string{
			id,
			status,
			e.VideoName,
			e.Filename,
			strconv.Itoa(e.Redactions),
			displayList(e.Effects),
			size,
			e.Elapsed().Round(time.Millisecond).String(),
			humanize.Time(e.FinishedAt),
		})
	}
	return rows
}

func pluralY(n int64) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
