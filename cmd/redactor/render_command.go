package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"redactor/internal/redaction"
	"redactor/internal/session"
	"redactor/internal/textutil"
)

const exportExt = ".mp4"

type renderSummary struct {
	ID         string   `json:"id"`
	Video      string   `json:"video"`
	Output     string   `json:"output"`
	Bytes      int64    `json:"bytes"`
	Redactions int      `json:"redactions"`
	Effects    []string `json:"effects"`
	ElapsedMs  int64    `json:"elapsedMs"`
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var flags planFlags
	var (
		outputPath string
		filename   string
		preset     string
		crf        int
		noAudio    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "render [video]",
		Short: "Render a redaction plan into a new video",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.loadPlan()
			if err != nil {
				return err
			}
			source, err := videoPath(args, p)
			if err != nil {
				return err
			}

			ws, err := openWorkspace(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			asset, err := ws.loadVideo(cmd.Context(), source)
			if err != nil {
				return err
			}
			applied, err := ws.applyPlan(cmd.Context(), p)
			if err != nil {
				return fmt.Errorf("apply plan: %w", err)
			}

			patch := session.ExportSettingsPatch{}
			if cmd.Flags().Changed("filename") {
				patch.Filename = &filename
			}
			if cmd.Flags().Changed("preset") {
				value := redaction.Preset(strings.ToLower(strings.TrimSpace(preset)))
				patch.Preset = &value
			}
			if cmd.Flags().Changed("crf") {
				patch.CRF = &crf
			}
			if noAudio {
				include := false
				patch.IncludeAudio = &include
			}
			err = ws.loop.Do(cmd.Context(), func(s *session.Session) error {
				_, err := s.SetExportSettings(patch)
				return err
			})
			if err != nil {
				return err
			}

			result, err := ws.orchestrator.Export(cmd.Context())
			if err != nil {
				return fmt.Errorf("render %s: %w", asset.Name, err)
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = filepath.Join(ws.cfg.Paths.OutputDir, textutil.ExportFileName(result.Filename, ws.cfg.Export.Filename, exportExt))
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			written, err := result.Output.CopyTo(target)
			if err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}

			summary := renderSummary{
				ID:         result.ID,
				Video:      asset.Name,
				Output:     target,
				Bytes:      written,
				Redactions: len(applied.Redactions),
				Effects:    result.Effects,
				ElapsedMs:  result.Elapsed.Milliseconds(),
			}
			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rendered %s -> %s\n", summary.Video, summary.Output)
			fmt.Fprintf(out, "  %d redaction(s), effects: %s\n", summary.Redactions, displayList(summary.Effects))
			fmt.Fprintf(out, "  %s in %s\n", humanize.Bytes(uint64(max(written, 0))), result.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (default: paths.output_dir/<filename>)")
	cmd.Flags().StringVar(&filename, "filename", "", "Override the export filename")
	cmd.Flags().StringVar(&preset, "preset", "", "Override the encoder preset (veryfast, faster, medium)")
	cmd.Flags().IntVar(&crf, "crf", 0, "Override the quality factor (0-51)")
	cmd.Flags().BoolVar(&noAudio, "no-audio", false, "Drop the audio track")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}
