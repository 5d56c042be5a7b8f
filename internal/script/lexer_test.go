package script

import (
	"strings"
	"testing"
)

func TestParseLineEmptyAndComments(t *testing.T) {
	cases := []string{"", "   ", "# just a comment"}
	for _, line := range cases {
		pl, err := parseLine(line, 1)
		if err != nil {
			t.Fatalf("parseLine(%q) returned error: %v", line, err)
		}
		if pl != nil {
			t.Fatalf("parseLine(%q) = %+v, want nil", line, pl)
		}
	}
}

func TestParseLineDirectives(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Directive
	}{
		{"say", "[SAY] Hello world", Directive{Kind: KindSay, Text: "Hello world"}},
		{"type", "[TYPE] cargo build", Directive{Kind: KindType, Text: "cargo build"}},
		{"run", "[RUN]", Directive{Kind: KindRun}},
		{"pause no arg", "[PAUSE]", Directive{Kind: KindPause}},
		{"focus", "[FOCUS] Terminal", Directive{Kind: KindFocus, FocusApp: "Terminal"}},
		{"slide next", "[SLIDE next]", Directive{Kind: KindSlide, SlideDir: SlideNext}},
		{"slide prev", "[SLIDE prev]", Directive{Kind: KindSlide, SlideDir: SlidePrev}},
		{"slide number", "[SLIDE 5]", Directive{Kind: KindSlide, SlideDir: SlideGoto, SlideGoto: 5}},
		{"key", "[KEY cmd+s]", Directive{Kind: KindKey, Combo: "cmd+s"}},
		{"clear", "[CLEAR]", Directive{Kind: KindClear}},
		{"wait", "[WAIT 2]", Directive{Kind: KindWait, WaitSeconds: 2}},
		{"exec", "[EXEC cargo build --release]", Directive{Kind: KindExec, Text: "cargo build --release"}},
		{"section", "## Section: Intro", Directive{Kind: KindSection, SectionName: "Intro"}},
		{"case insensitive tag", "[say] hello", Directive{Kind: KindSay, Text: "hello"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pl, err := parseLine(tc.line, 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pl == nil {
				t.Fatal("expected a directive, got nil")
			}
			if pl.Directive != tc.want {
				t.Errorf("parseLine(%q) = %+v, want %+v", tc.line, pl.Directive, tc.want)
			}
		})
	}
}

func TestParseLinePauseWithSeconds(t *testing.T) {
	pl, err := parseLine("[PAUSE 3]", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pl.Directive.Kind != KindPause || pl.Directive.PauseSeconds == nil || *pl.Directive.PauseSeconds != 3 {
		t.Errorf("got %+v, want Pause(3)", pl.Directive)
	}
}

func TestParseLineSayPreservesInnerWhitespaceButTrimsEnds(t *testing.T) {
	pl, err := parseLine("[SAY]   spaced out  ", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pl.Directive.Text != "spaced out" {
		t.Errorf("got %q, want %q", pl.Directive.Text, "spaced out")
	}
}

func TestParseLineUnknownDirective(t *testing.T) {
	_, err := parseLine("[BOGUS]", 5)
	if err == nil {
		t.Fatal("expected an error for an unknown directive")
	}
	if !strings.Contains(err.Error(), "5") || !strings.Contains(err.Error(), "BOGUS") {
		t.Errorf("error %q missing line number or directive name", err.Error())
	}
}

func TestParseLineMissingClosingBracket(t *testing.T) {
	_, err := parseLine("[SAY hello", 1)
	if err == nil {
		t.Fatal("expected an error for a missing closing bracket")
	}
}

func TestParseLineInvalidNumericArgs(t *testing.T) {
	for _, line := range []string{"[PAUSE abc]", "[WAIT abc]", "[SLIDE abc]"} {
		if _, err := parseLine(line, 1); err == nil {
			t.Errorf("parseLine(%q) should have failed", line)
		}
	}
}

func TestParseLineRejectsArgumentsOnBareDirectives(t *testing.T) {
	for _, line := range []string{"[RUN foo]", "[CLEAR foo]"} {
		if _, err := parseLine(line, 1); err == nil {
			t.Errorf("parseLine(%q) should have failed, this directive takes no argument", line)
		}
	}
}
