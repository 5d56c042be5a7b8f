package script

import "strings"

// BlockKind discriminates the three shapes a grouped Block can take.
type BlockKind string

const (
	BlockAction        BlockKind = "action"
	BlockPause         BlockKind = "pause"
	BlockNarrationOnly BlockKind = "narration_only"
)

// Block is one presentation step: zero or more narration lines, optionally
// a section label, and either a run of actions, a pause, or nothing
// (narration-only). This is what the controller steps through and what the
// executor receives one Execute message per Action block.
type Block struct {
	Narration    *string
	Actions      []Directive
	Section      *string
	Kind         BlockKind
	PauseSeconds *uint64 // only meaningful when Kind == BlockPause
}

// GroupIntoBlocks turns an ordered directive stream into Blocks. Say lines
// accumulate as pending narration until they are attached to the next
// emitted Action or Pause block (a section header flushes pending actions
// but leaves pending narration in place); pause directives always flush first and form
// their own standalone block; section headers carry forward onto every
// later block until reassigned; any input produces at most one trailing
// block (Action, if actions are pending, else NarrationOnly if only
// narration is pending).
func GroupIntoBlocks(s Script) []Block {
	var blocks []Block
	var narration []string
	var actions []Directive
	var section *string

	flushNarration := func() *string {
		if len(narration) == 0 {
			return nil
		}
		text := strings.Join(narration, "\n")
		narration = nil
		return &text
	}

	flushAction := func() {
		if len(actions) == 0 {
			return
		}
		blocks = append(blocks, Block{
			Narration: flushNarration(),
			Actions:   actions,
			Section:   section,
			Kind:      BlockAction,
		})
		actions = nil
	}

	for _, pl := range s.Lines {
		switch pl.Directive.Kind {
		case KindSay:
			flushAction()
			narration = append(narration, pl.Directive.Text)
		case KindSection:
			flushAction()
			name := pl.Directive.SectionName
			section = &name
		case KindPause:
			flushAction()
			blocks = append(blocks, Block{
				Narration:    flushNarration(),
				Section:      section,
				Kind:         BlockPause,
				PauseSeconds: pl.Directive.PauseSeconds,
			})
		default:
			actions = append(actions, pl.Directive)
		}
	}

	if len(actions) > 0 {
		blocks = append(blocks, Block{
			Narration: flushNarration(),
			Actions:   actions,
			Section:   section,
			Kind:      BlockAction,
		})
	} else if len(narration) > 0 {
		blocks = append(blocks, Block{
			Narration: flushNarration(),
			Section:   section,
			Kind:      BlockNarrationOnly,
		})
	}

	return blocks
}
