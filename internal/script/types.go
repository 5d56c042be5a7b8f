// Package script parses Code Monkey presentation scripts (.cm files) into
// a typed directive stream and groups that stream into executable blocks.
package script

import "fmt"

// DirectiveKind discriminates the Directive sum type on the wire and in
// memory. Every Directive carries one of these as its "type" field when
// marshaled to JSON.
type DirectiveKind string

const (
	KindSay     DirectiveKind = "say"
	KindType    DirectiveKind = "type"
	KindRun     DirectiveKind = "run"
	KindPause   DirectiveKind = "pause"
	KindFocus   DirectiveKind = "focus"
	KindSlide   DirectiveKind = "slide"
	KindKey     DirectiveKind = "key"
	KindClear   DirectiveKind = "clear"
	KindWait    DirectiveKind = "wait"
	KindExec    DirectiveKind = "exec"
	KindSection DirectiveKind = "section"
)

// SlideDirection distinguishes the three shapes [SLIDE NEXT], [SLIDE PREV]
// and [SLIDE n] can take.
type SlideDirection string

const (
	SlideNext SlideDirection = "next"
	SlidePrev SlideDirection = "prev"
	SlideGoto SlideDirection = "goto"
)

// Directive is a single parsed instruction from a script line. Exactly one
// of the typed fields below is meaningful for a given Kind; the others are
// left at their zero value. This mirrors a tagged union rather than an
// interface hierarchy because directives are serialized wholesale across
// the wire (see internal/wire) and need a stable, inspectable shape.
type Directive struct {
	Kind DirectiveKind `json:"type"`

	Text string `json:"text,omitempty"` // Say, Type, Exec (shell command)

	PauseSeconds *uint64 `json:"pause_seconds,omitempty"` // Pause; nil means "wait for Enter"

	FocusApp string `json:"focus_app,omitempty"` // Focus

	SlideDir  SlideDirection `json:"slide_dir,omitempty"`  // Slide
	SlideGoto uint64         `json:"slide_goto,omitempty"` // Slide(Goto)

	Combo string `json:"combo,omitempty"` // Key

	WaitSeconds uint64 `json:"wait_seconds,omitempty"` // Wait

	SectionName string `json:"section_name,omitempty"` // Section
}

// IsAction reports whether the directive causes the executor to do
// something on the demo machine, as opposed to being purely presentational
// (Say, Section) or a presenter-side pause.
func (d Directive) IsAction() bool {
	switch d.Kind {
	case KindType, KindRun, KindFocus, KindSlide, KindKey, KindClear, KindWait, KindExec:
		return true
	default:
		return false
	}
}

// String renders a Directive back to (approximately) its own script syntax,
// used by dry-run output and controller log lines.
func (d Directive) String() string {
	switch d.Kind {
	case KindSay:
		return fmt.Sprintf("[SAY] %s", d.Text)
	case KindType:
		return fmt.Sprintf("[TYPE] %s", d.Text)
	case KindRun:
		return "[RUN]"
	case KindPause:
		if d.PauseSeconds == nil {
			return "[PAUSE]"
		}
		return fmt.Sprintf("[PAUSE %d]", *d.PauseSeconds)
	case KindFocus:
		return fmt.Sprintf("[FOCUS] %s", d.FocusApp)
	case KindSlide:
		switch d.SlideDir {
		case SlideNext:
			return "[SLIDE next]"
		case SlidePrev:
			return "[SLIDE prev]"
		default:
			return fmt.Sprintf("[SLIDE %d]", d.SlideGoto)
		}
	case KindKey:
		return fmt.Sprintf("[KEY %s]", d.Combo)
	case KindClear:
		return "[CLEAR]"
	case KindWait:
		return fmt.Sprintf("[WAIT %d]", d.WaitSeconds)
	case KindExec:
		return fmt.Sprintf("[EXEC %s]", d.Text)
	case KindSection:
		return fmt.Sprintf("## Section: %s", d.SectionName)
	default:
		return fmt.Sprintf("[UNKNOWN %s]", d.Kind)
	}
}

// FrontMatter holds the optional `---`-delimited metadata block at the top
// of a script file.
type FrontMatter struct {
	Title            *string `yaml:"title"`
	TypingSpeedMs    uint64  `yaml:"typing_speed"`
	TypingVarianceMs uint64  `yaml:"typing_variance"`
	AgentPort        uint16  `yaml:"agent_port"`
}

// DefaultFrontMatter matches the original implementation's defaults: a
// comfortable typing cadence with a little jitter, and the conventional
// agent port.
func DefaultFrontMatter() FrontMatter {
	return FrontMatter{
		TypingSpeedMs:    40,
		TypingVarianceMs: 15,
		AgentPort:        9876,
	}
}

// ParsedLine pairs a Directive with its 1-based source line number, for
// error messages and dry-run output.
type ParsedLine struct {
	LineNumber int
	Directive  Directive
}

// Script is a fully parsed .cm file: its front matter plus the ordered
// directive stream.
type Script struct {
	FrontMatter FrontMatter
	Lines       []ParsedLine
}
