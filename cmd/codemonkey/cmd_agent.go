package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codemonkey-cli/codemonkey/internal/backend"
	"github.com/codemonkey-cli/codemonkey/internal/executorsvc"
	"github.com/codemonkey-cli/codemonkey/internal/logging"
	"github.com/codemonkey-cli/codemonkey/internal/script"
)

// newAgentCmd creates the "codemonkey agent" subcommand, run on the demo
// machine.
func newAgentCmd() *cobra.Command {
	var port uint16
	var logFile string

	cmd := &cobra.Command{
		Use:   "agent <script>",
		Short: "Start the demo agent (run on the demo machine)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			if _, err := script.ParseScript(string(content)); err != nil {
				return err
			}

			logger, err := logging.New("agent", logFile)
			if err != nil {
				return fmt.Errorf("set up logging: %w", err)
			}

			b := backend.NewAppleScriptBackend(time.Now().UnixNano())
			exec := executorsvc.New(b, port, logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return exec.Run(ctx)
		},
	}

	cmd.Flags().Uint16Var(&port, "port", 9876, "TCP port to listen on")
	cmd.Flags().StringVar(&logFile, "log-file", "", "path to an append-only JSON log file")
	return cmd
}
