package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codemonkey-cli/codemonkey/internal/script"
)

// newCheckCmd creates the "codemonkey check" subcommand.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <script>",
		Short: "Parse and validate a script without running it",
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
			blocks := script.GroupIntoBlocks(parsed)
			actionBlocks := 0
			for _, b := range blocks {
				if b.Kind == script.BlockAction {
					actionBlocks++
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Script '%s' is valid: %d directives, %d action blocks\n",
				path, len(parsed.Lines), actionBlocks)
			if parsed.FrontMatter.Title != nil {
				fmt.Fprintf(w, "Title: %s\n", *parsed.FrontMatter.Title)
			}
			return nil
		},
	}
}
