package dryrun

import (
	"bytes"
	"strings"
	"testing"

	"github.com/codemonkey-cli/codemonkey/internal/script"
)

func TestWriteActionBlock(t *testing.T) {
	var buf bytes.Buffer
	section := "Intro"
	narration := "Welcome"
	Write(&buf, "demo.cm", []script.Block{
		{
			Section:   &section,
			Narration: &narration,
			Kind:      script.BlockAction,
			Actions: []script.Directive{
				{Kind: script.KindFocus, FocusApp: "Terminal"},
				{Kind: script.KindRun},
			},
		},
	})

	out := buf.String()
	for _, want := range []string{
		"=== Dry Run: demo.cm ===",
		"--- Block 1 ---",
		"Section: Intro",
		"[SAY] Welcome",
		"[FOCUS] Terminal",
		"[RUN]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWritePauseBlocks(t *testing.T) {
	three := uint64(3)
	var buf bytes.Buffer
	Write(&buf, "demo.cm", []script.Block{
		{Kind: script.BlockPause},
		{Kind: script.BlockPause, PauseSeconds: &three},
	})
	out := buf.String()
	if !strings.Contains(out, "[PAUSE] (wait for Enter)") {
		t.Errorf("missing indefinite pause rendering:\n%s", out)
	}
	if !strings.Contains(out, "[PAUSE 3] (auto-continue)") {
		t.Errorf("missing timed pause rendering:\n%s", out)
	}
}

func TestWriteNarrationOnlyBlock(t *testing.T) {
	var buf bytes.Buffer
	narration := "bye"
	Write(&buf, "demo.cm", []script.Block{
		{Kind: script.BlockNarrationOnly, Narration: &narration},
	})
	out := buf.String()
	if !strings.Contains(out, "(narration only)") {
		t.Errorf("missing narration-only marker:\n%s", out)
	}
}
