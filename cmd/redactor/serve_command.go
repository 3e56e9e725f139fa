package main

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"redactor/internal/api"
	"redactor/internal/deps"
	"redactor/internal/logging"
)

const shutdownGrace = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local editing API",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ws, err := openWorkspace(runCtx, ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			addr := ws.cfg.Paths.APIBind
			if strings.TrimSpace(bind) != "" {
				addr = strings.TrimSpace(bind)
			}
			if ws.cfg.Paths.APIToken == "" && !strings.HasPrefix(addr, "127.0.0.1:") && !strings.HasPrefix(addr, "localhost:") {
				logging.WarnWithContext(ws.logger, "api exposed without a token", "api_unauthenticated",
					logging.String("bind", addr),
					logging.String(logging.FieldErrorHint, "set paths.api_token or REDACTOR_API_TOKEN"),
					logging.String(logging.FieldImpact, "anyone who can reach the port can edit and export"),
				)
			}

			var historyReader api.HistoryReader
			if ws.history != nil {
				historyReader = ws.history
			}
			server := api.NewServer(api.ServerConfig{
				Bind:        addr,
				Token:       ws.cfg.Paths.APIToken,
				Loop:        ws.loop,
				Videos:      ws.prober,
				Exporter:    ws.orchestrator,
				History:     historyReader,
				Doctor:      func() []deps.Status { return doctorChecks(ws.cfg) },
				MinLanes:    ws.cfg.Timeline.MinLanes,
				MaxLanes:    ws.cfg.Timeline.MaxLanes,
				Logger:      ws.logger,
				BaseContext: runCtx,
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-runCtx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(runCtx), shutdownGrace)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override paths.api_bind")
	return cmd
}
