package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"redactor/internal/config"
)

var noConfig = map[string]string{"skipConfigLoad": "true"}

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		path      string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: noConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := configTarget(path)
			if err != nil {
				return err
			}
			if !overwrite {
				switch _, err := os.Stat(target); {
				case err == nil:
					return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
				case !errors.Is(err, fs.ErrNotExist):
					return fmt.Errorf("stat %s: %w", target, err)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintf(out, "Next: redactor doctor --config %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "Where to write the file (default ~/.config/redactor/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// configTarget expands an explicit path or falls back to the default
// location.
func configTarget(path string) (string, error) {
	if path = strings.TrimSpace(path); path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("default config path: %w", err)
		}
		return p, nil
	}
	p, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return p, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration, create its directories and report the effective settings",
		Annotations: noConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var explicit string
			if ctx.configFlag != nil {
				explicit = *ctx.configFlag
			}
			cfg, resolved, found, err := config.Load(strings.TrimSpace(explicit))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("create directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !found {
				fmt.Fprintln(out, "No file found there; built-in defaults apply")
			}
			fmt.Fprintf(out, "Engine: %s (probe: %s, timeout %ds)\n", cfg.Engine.FFmpegBinary, cfg.Engine.FFprobeBinary, cfg.Engine.TimeoutSeconds)
			fmt.Fprintf(out, "Export defaults: %s, preset %s, crf %d, audio %s\n",
				cfg.Export.Filename, cfg.Export.Preset, cfg.Export.CRF, yesNo(cfg.Export.IncludeAudio))
			fmt.Fprintf(out, "Notifications: %s\n", notifyState(cfg.Notifications.NtfyTopic))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func notifyState(topic string) string {
	if strings.TrimSpace(topic) == "" {
		return "disabled"
	}
	return topic
}
