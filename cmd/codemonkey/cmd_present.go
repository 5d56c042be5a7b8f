package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/codemonkey-cli/codemonkey/internal/controller"
	"github.com/codemonkey-cli/codemonkey/internal/dryrun"
	"github.com/codemonkey-cli/codemonkey/internal/exitcode"
	"github.com/codemonkey-cli/codemonkey/internal/notify"
	"github.com/codemonkey-cli/codemonkey/internal/script"
	"github.com/codemonkey-cli/codemonkey/internal/tui"
)

// newPresentCmd creates the "codemonkey present" subcommand, run on the
// presenter's laptop.
func newPresentCmd() *cobra.Command {
	var agentAddr string
	var dryRun bool
	var watch bool

	cmd := &cobra.Command{
		Use:   "present <script>",
		Short: "Run a presentation (run on the presenter's laptop)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			parsed, err := script.ParseScript(string(content))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			if dryRun {
				blocks := script.GroupIntoBlocks(parsed)
				dryrun.Write(w, path, blocks)
				return nil
			}

			if agentAddr == "" {
				return fmt.Errorf("--agent <ip:port> is required when not using --dry-run")
			}

			ctrl := controller.New(parsed, agentAddr)

			fmt.Fprintf(w, "Connecting to agent at %s...\n", agentAddr)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			err = ctrl.Connect(ctx)
			cancel()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not connect to agent: %v. Will show disconnected state.\n", err)
			} else {
				fmt.Fprintln(w, "Connected!")
			}

			if !isatty.IsTerminal(os.Stdout.Fd()) {
				return runPlain(ctrl)
			}

			return runTUI(cmd.Context(), ctrl, path, watch)
		},
	}

	cmd.Flags().StringVar(&agentAddr, "agent", "", "agent address (ip:port)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show actions without connecting or executing")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the script on edit, preserving cursor position")
	return cmd
}

// runTUI drives the bubbletea presenter loop. When watch is set, a
// filesystem watcher on the script file triggers a live Controller.Reload
// and a forced redraw without disturbing the cursor.
func runTUI(ctx context.Context, ctrl *controller.Controller, path string, watch bool) error {
	model := tui.New(ctrl)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create script watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}

		go func() {
			for event := range watcher.Events {
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				content, err := os.ReadFile(path)
				if err != nil {
					continue
				}
				parsed, err := script.ParseScript(string(content))
				if err != nil {
					continue
				}
				ctrl.Reload(parsed)
				program.Send(tui.RefreshMsg{})
			}
		}()
	}

	_, err := program.Run()
	return err
}

// runPlain drives the presentation without a terminal: it auto-advances
// every block, printing each step's outcome, for CI logs and piped output
// where an interactive TUI can't run.
func runPlain(ctrl *controller.Controller) error {
	for {
		result, err := ctrl.Step()
		if err != nil {
			return err
		}

		switch result.Kind {
		case controller.StepExecuted:
			fmt.Fprintln(os.Stdout, "executed block")
		case controller.StepNarrationOnly:
			fmt.Fprintln(os.Stdout, "narration only")
		case controller.StepPaused:
			if result.PauseSeconds == nil {
				fmt.Fprintln(os.Stdout, "pause (no TTY to wait for Enter, continuing)")
			} else {
				fmt.Fprintf(os.Stdout, "pausing %d seconds\n", *result.PauseSeconds)
				time.Sleep(time.Duration(*result.PauseSeconds) * time.Second)
			}
		case controller.StepAgentError:
			fmt.Fprintf(os.Stderr, "agent error: %s\n", result.ErrorMessage)
			return exitcode.Protocol(fmt.Errorf("agent error: %s", result.ErrorMessage))
		case controller.StepConnectionLost:
			return exitcode.Protocol(fmt.Errorf("connection to agent lost"))
		case controller.StepFinished:
			fmt.Fprintln(os.Stdout, "presentation complete")
			if err := notify.Send("Code Monkey", "Presentation complete"); err != nil {
				fmt.Fprintf(os.Stderr, "warning: notification failed: %v\n", err)
			}
			return nil
		}
	}
}
