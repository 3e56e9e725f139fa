package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"redactor/internal/filtergraph"
)

type graphStatement struct {
	Kind   string `json:"kind"`
	Index  int    `json:"index"`
	Filter string `json:"filter"`
}

type graphOutput struct {
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Graph      string           `json:"graph"`
	Effects    []string         `json:"effects"`
	Composites int              `json:"composites"`
	Statements []graphStatement `json:"statements"`
}

func newGraphCommand(ctx *commandContext) *cobra.Command {
	var flags planFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "graph [video]",
		Short: "Print the processing graph a plan compiles to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, asset, err := flags.planSession(cmd.Context(), ctx, args)
			if err != nil {
				return err
			}
			defer s.Reset()

			compiled, err := filtergraph.Compile(s.Redactions(), asset.Width, asset.Height)
			if err != nil {
				return err
			}
			if !jsonOutput {
				fmt.Fprintln(cmd.OutOrStdout(), compiled.String())
				return nil
			}

			out := graphOutput{
				Width:      asset.Width,
				Height:     asset.Height,
				Graph:      compiled.String(),
				Effects:    compiled.Effects,
				Composites: len(compiled.Graph.Composites()),
			}
			for _, st := range compiled.Graph.Statements {
				out.Statements = append(out.Statements, graphStatement{
					Kind:   st.Kind.String(),
					Index:  st.Index,
					Filter: st.String(),
				})
			}
			return writeJSON(cmd, out)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON with per-statement detail")
	return cmd
}
