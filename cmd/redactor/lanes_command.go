package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"redactor/internal/redaction"
	"redactor/internal/timeline"
)

type laneRow struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Lane     int     `json:"lane"`
	Effect   string  `json:"effect"`
	Strength string  `json:"strength"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Enabled  bool    `json:"enabled"`
}

func newLanesCommand(ctx *commandContext) *cobra.Command {
	var flags planFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "lanes [video]",
		Short: "Show how a plan's redactions are laid out on timeline lanes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := flags.planSession(cmd.Context(), ctx, args)
			if err != nil {
				return err
			}
			defer s.Reset()

			cfg := ctx.configValue()
			redactions := s.Redactions()
			assignment := timeline.AssignLanes(redactions)
			display := timeline.DisplayLanes(assignment.Count, cfg.Timeline.MinLanes, cfg.Timeline.MaxLanes)
			rows := laneRows(redactions, assignment)

			if jsonOutput {
				return writeJSON(cmd, struct {
					Count      int       `json:"count"`
					Display    int       `json:"display"`
					Redactions []laneRow `json:"redactions"`
				}{assignment.Count, display, rows})
			}

			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				table = append(table, []string{
					strconv.Itoa(r.Lane + 1),
					r.Label,
					displayName(r.Effect),
					displayName(r.Strength),
					formatTimestamp(r.Start),
					formatTimestamp(r.End),
					yesNo(r.Enabled),
				})
			}
			title := fmt.Sprintf("%d lane(s), %d shown", assignment.Count, display)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(title, []tableColumn{
				{Header: "Lane", Align: alignRight},
				{Header: "Label"},
				{Header: "Effect"},
				{Header: "Strength"},
				{Header: "Start", Align: alignRight},
				{Header: "End", Align: alignRight},
				{Header: "Enabled"},
			}, table))
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

// laneRows orders redactions by lane, then start time.
func laneRows(redactions []redaction.Redaction, assignment timeline.Assignment) []laneRow {
	rows := make([]laneRow, 0, len(redactions))
	for _, r := range redactions {
		lane, _ := assignment.Lane(r.ID)
		rows = append(rows, laneRow{
			ID:       r.ID,
			Label:    r.Label,
			Lane:     lane,
			Effect:   string(r.Effect),
			Strength: string(r.Strength),
			Start:    r.Start,
			End:      r.End,
			Enabled:  r.Enabled,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Lane != rows[j].Lane {
			return rows[i].Lane < rows[j].Lane
		}
		return rows[i].Start < rows[j].Start
	})
	return rows
}
