package backend

import (
	"fmt"
	"math/rand"
	"os/exec"
	"sync"
	"time"

	"github.com/codemonkey-cli/codemonkey/internal/script"
)

// ActionBackend is the single capability the executor depends on: run a
// whole action block, in order, and report the first failure. Production
// wires AppleScriptBackend; tests substitute Recording.
type ActionBackend interface {
	Execute(actions []script.Directive, typingSpeedMs, typingVarianceMs uint64) error
}

// AppleScriptBackend dispatches directives to osascript and the shell, the
// way a real demo machine does.
type AppleScriptBackend struct {
	// rng is not thread-safe by construction (math/rand.Rand isn't); the
	// executor guarantees at most one Execute call in flight at a time,
	// so a single shared generator is safe here.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewAppleScriptBackend builds a backend whose typing jitter generator is
// seeded with seed (the agent command passes the current time). The
// invariant that lets an unsynchronized *rand.Rand be safe here is the
// executor's single-in-flight discipline (see internal/executorsvc).
func NewAppleScriptBackend(seed int64) *AppleScriptBackend {
	return &AppleScriptBackend{rng: rand.New(rand.NewSource(seed))}
}

func (b *AppleScriptBackend) Execute(actions []script.Directive, typingSpeedMs, typingVarianceMs uint64) error {
	for _, action := range actions {
		if err := b.executeOne(action, typingSpeedMs, typingVarianceMs); err != nil {
			return fmt.Errorf("%s: %w", action.String(), err)
		}
	}
	return nil
}

func (b *AppleScriptBackend) executeOne(action script.Directive, typingSpeedMs, typingVarianceMs uint64) error {
	switch action.Kind {
	case script.KindFocus:
		_, err := RunAppleScript(FocusAppScript(action.FocusApp))
		return err
	case script.KindType:
		b.mu.Lock()
		rng := b.rng
		b.mu.Unlock()
		return ExecuteTypewriter(action.Text, typingSpeedMs, typingVarianceMs, rng)
	case script.KindRun:
		_, err := RunAppleScript(KeystrokeScript("return"))
		return err
	case script.KindSlide:
		var s string
		switch action.SlideDir {
		case script.SlideNext:
			s = SlideNextScript()
		case script.SlidePrev:
			s = SlidePrevScript()
		default:
			s = SlideGotoScript(action.SlideGoto)
		}
		_, err := RunAppleScript(s)
		return err
	case script.KindKey:
		_, err := RunAppleScript(KeystrokeScript(action.Combo))
		return err
	case script.KindClear:
		_, err := RunAppleScript(ClearScript())
		return err
	case script.KindWait:
		time.Sleep(time.Duration(action.WaitSeconds) * time.Second)
		return nil
	case script.KindExec:
		// Fire-and-forget: detach from the protocol loop and return
		// immediately, matching the spec's Exec semantics.
		return exec.Command("sh", "-c", action.Text).Start()
	case script.KindSay, script.KindPause, script.KindSection:
		// Presenter-side only; the executor never sees these in
		// practice because the grouper strips them out of action
		// blocks, but treat them as no-ops defensively.
		return nil
	default:
		return fmt.Errorf("unhandled directive kind %q", action.Kind)
	}
}

// Recording is a test double that records every Execute call instead of
// touching the OS, mirroring the corpus's mock-executor test pattern.
type Recording struct {
	mu       sync.Mutex
	Calls    [][]script.Directive
	FailWith error
}

func (r *Recording) Execute(actions []script.Directive, typingSpeedMs, typingVarianceMs uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, actions)
	return r.FailWith
}
