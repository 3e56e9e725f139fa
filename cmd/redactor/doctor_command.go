package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"redactor/internal/config"
	"redactor/internal/deps"
	"redactor/internal/engine"
	"redactor/internal/staging"
)

func doctorChecks(cfg *config.Config) []deps.Status {
	statuses := deps.CheckBinaries(deps.EngineRequirements(cfg.Engine.FFmpegBinary, cfg.Engine.FFprobeBinary))
	statuses = append(statuses,
		deps.CheckWritableDir("Staging dir", cfg.Paths.StagingDir),
		deps.CheckWritableDir("State dir", cfg.Paths.StateDir),
		deps.CheckWritableDir("Output dir", cfg.Paths.OutputDir),
	)
	return statuses
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the engine binaries and working directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := doctorChecks(cfg)
			missing := deps.Missing(statuses)

			if jsonOutput {
				if err := writeJSON(cmd, statuses); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, sectionHeader("Dependencies", colorize))
				for _, s := range statuses {
					kind, message := statusOK, s.Path
					if s.Version != "" {
						message += " (" + s.Version + ")"
					}
					if !s.Available {
						kind, message = statusError, s.Detail
						if s.Optional {
							kind = statusWarn
						}
					}
					fmt.Fprintln(out, statusLine(s.Name, kind, message, colorize))
				}
				if entries, err := staging.List(cfg.Paths.StagingDir, stagingPrefixes); err == nil {
					var total int64
					for _, e := range entries {
						total += e.Size
					}
					n := int64(len(entries))
					fmt.Fprintln(out, statusLine("Staged", statusInfo, fmt.Sprintf("%d entr%s, %s", n, pluralY(n), humanize.Bytes(uint64(total))), colorize))
				}
				if len(missing) == 0 {
					eng := engine.NewCLI(engine.WithBinary(cfg.Engine.FFmpegBinary))
					if err := eng.Load(cmd.Context()); err != nil {
						fmt.Fprintln(out, statusLine("Engine", statusError, err.Error(), colorize))
						return err
					}
					fmt.Fprintln(out, statusLine("Engine", statusInfo, eng.Version(), colorize))
				}
			}

			if len(missing) > 0 {
				return fmt.Errorf("%d required dependency check(s) failed", len(missing))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}
