package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"redactor/internal/config"
	"redactor/internal/media"
)

type probeOutput struct {
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	Duration  float64 `json:"duration"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frameRate"`
	HasAudio  bool    `json:"hasAudio"`
	Bytes     int64   `json:"bytes"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "probe <video>",
		Short: "Show the duration, frame size and streams redactor reads from a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			asset, err := media.NewProber(cfg.Engine.FFprobeBinary).Open(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer asset.Source.Release()

			out := probeOutput{
				Name:      asset.Name,
				Path:      path,
				Duration:  asset.Duration,
				Width:     asset.Width,
				Height:    asset.Height,
				FrameRate: asset.FrameRate,
				HasAudio:  asset.HasAudio,
			}
			if file, ok := asset.Source.(*media.File); ok {
				if size, err := file.Size(); err == nil {
					out.Bytes = size
				}
			}
			if jsonOutput {
				return writeJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Name:       %s\n", out.Name)
			fmt.Fprintf(w, "Duration:   %s\n", formatTimestamp(out.Duration))
			fmt.Fprintf(w, "Resolution: %dx%d\n", out.Width, out.Height)
			fmt.Fprintf(w, "Frame rate: %s\n", formatFrameRate(out.FrameRate))
			fmt.Fprintf(w, "Audio:      %s\n", yesNo(out.HasAudio))
			fmt.Fprintf(w, "Size:       %s\n", humanize.Bytes(uint64(max(out.Bytes, 0))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func formatFrameRate(fps float64) string {
	if fps <= 0 {
		return "unknown"
	}
	return strconv.FormatFloat(math.Round(fps*100)/100, 'f', -1, 64) + " fps"
}
