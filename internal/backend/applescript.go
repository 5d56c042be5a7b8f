// Package backend turns Directives into AppleScript strings and runs them
// via osascript. Script generation is pure and deterministic so it can be
// tested without a display; only Run (which actually shells out) touches
// the OS.
package backend

import (
	"fmt"
	"os/exec"
	"strings"
)

// FocusAppScript activates the named application by name.
func FocusAppScript(appName string) string {
	escaped := strings.ReplaceAll(appName, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return fmt.Sprintf(`tell application "%s" to activate`, escaped)
}

// SlideNextScript, SlidePrevScript and SlideGotoScript target Keynote.
// Supporting other presentation software is a future backend concern; Key
// combos remain the documented workaround in the meantime.
func SlideNextScript() string {
	return "tell application \"Keynote\" to show next slide"
}

func SlidePrevScript() string {
	return "tell application \"Keynote\" to show previous slide"
}

func SlideGotoScript(n uint64) string {
	return fmt.Sprintf("tell application \"Keynote\" to show slide %d of document 1", n)
}

var keyCodes = map[string]int{
	"return": 36, "enter": 36,
	"tab":   48,
	"space": 49,
	"delete": 51, "backspace": 51,
	"escape": 53, "esc": 53,
	"left":  123,
	"right": 124,
	"down":  125,
	"up":    126,
}

// KeystrokeScript parses combo as mod(+mod)*+key, case-insensitive, and
// renders either a `key code N` form (for reserved key names) or a
// `keystroke "c"` form, with an optional `using ... down` modifier clause.
func KeystrokeScript(combo string) string {
	modifiers, key := parseKeyCombo(combo)

	modifierStr := ""
	if len(modifiers) > 0 {
		rendered := make([]string, len(modifiers))
		for i, m := range modifiers {
			switch m {
			case "cmd", "command":
				rendered[i] = "command down"
			case "ctrl", "control":
				rendered[i] = "control down"
			case "shift":
				rendered[i] = "shift down"
			case "alt", "opt", "option":
				rendered[i] = "option down"
			default:
				rendered[i] = m
			}
		}
		if len(rendered) == 1 {
			modifierStr = " using " + rendered[0]
		} else {
			modifierStr = " using {" + strings.Join(rendered, ", ") + "}"
		}
	}

	if code, ok := keyCodes[key]; ok {
		return fmt.Sprintf(`tell application "System Events" to key code %d%s`, code, modifierStr)
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s"%s`, key, modifierStr)
}

// TypeCharScript sends a single character as a keystroke, escaping the two
// characters AppleScript string literals care about.
func TypeCharScript(ch rune) string {
	switch ch {
	case '"':
		return `tell application "System Events" to keystroke "\""`
	case '\\':
		return `tell application "System Events" to keystroke "\\"`
	default:
		return fmt.Sprintf(`tell application "System Events" to keystroke "%c"`, ch)
	}
}

// ClearScript sends control-L, the conventional "clear the terminal"
// keystroke.
func ClearScript() string {
	return KeystrokeScript("ctrl+l")
}

func parseKeyCombo(combo string) ([]string, string) {
	parts := strings.Split(strings.ToLower(combo), "+")
	if len(parts) == 1 {
		return nil, parts[0]
	}
	return parts[:len(parts)-1], parts[len(parts)-1]
}

// RunAppleScript shells the given script out to osascript and returns its
// trimmed stdout.
func RunAppleScript(script string) (string, error) {
	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}
