// Package dryrun renders a grouped block list as the human-readable
// preview shown by `codemonkey present --dry-run`.
package dryrun

import (
	"fmt"
	"io"
	"strings"

	"github.com/codemonkey-cli/codemonkey/internal/script"
)

// Write renders every block in order to w, in the `--- Block N ---` format
// the original tool used: section line (if any), one `[SAY] <line>` per
// narration line, then the block's own rendering.
func Write(w io.Writer, scriptPath string, blocks []script.Block) {
	fmt.Fprintf(w, "=== Dry Run: %s ===\n\n", scriptPath)

	for i, block := range blocks {
		fmt.Fprintf(w, "--- Block %d ---\n", i+1)
		if block.Section != nil {
			fmt.Fprintf(w, "  Section: %s\n", *block.Section)
		}
		if block.Narration != nil {
			for _, line := range strings.Split(*block.Narration, "\n") {
				fmt.Fprintf(w, "  [SAY] %s\n", line)
			}
		}

		switch block.Kind {
		case script.BlockAction:
			for _, action := range block.Actions {
				fmt.Fprintf(w, "  %s\n", action.String())
			}
		case script.BlockPause:
			if block.PauseSeconds == nil {
				fmt.Fprintln(w, "  [PAUSE] (wait for Enter)")
			} else {
				fmt.Fprintf(w, "  [PAUSE %d] (auto-continue)\n", *block.PauseSeconds)
			}
		case script.BlockNarrationOnly:
			fmt.Fprintln(w, "  (narration only)")
		}

		fmt.Fprintln(w)
	}
}
