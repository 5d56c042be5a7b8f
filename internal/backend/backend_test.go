package backend

import (
	"errors"
	"testing"

	"github.com/codemonkey-cli/codemonkey/internal/script"
)

func TestRecordingBackendRecordsCalls(t *testing.T) {
	rec := &Recording{}
	actions := []script.Directive{{Kind: script.KindFocus, FocusApp: "Terminal"}, {Kind: script.KindRun}}

	if err := rec.Execute(actions, 40, 15); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.Calls) != 1 || len(rec.Calls[0]) != 2 {
		t.Fatalf("got %+v", rec.Calls)
	}
}

func TestRecordingBackendPropagatesFailure(t *testing.T) {
	rec := &Recording{FailWith: errors.New("no accessibility permission")}
	err := rec.Execute([]script.Directive{{Kind: script.KindRun}}, 40, 15)
	if err == nil {
		t.Fatal("expected an error")
	}
}
