package backend

import (
	"math/rand"
	"time"
)

// CharDelay pairs a per-character AppleScript snippet with how long to wait
// after running it.
type CharDelay struct {
	Script string
	DelayMs uint64
}

// TypewriterToAppleScript decomposes text into one keystroke script per
// rune, each with its own jittered delay: speedMs plus a uniform random
// value in [0, varianceMs] when varianceMs > 0, else exactly speedMs.
func TypewriterToAppleScript(text string, speedMs, varianceMs uint64, rng *rand.Rand) []CharDelay {
	runes := []rune(text)
	pairs := make([]CharDelay, len(runes))
	for i, ch := range runes {
		delay := speedMs
		if varianceMs > 0 {
			delay += uint64(rng.Int63n(int64(varianceMs) + 1))
		}
		pairs[i] = CharDelay{Script: TypeCharScript(ch), DelayMs: delay}
	}
	return pairs
}

// ExecuteTypewriter runs each character script in sequence, sleeping the
// jittered delay after every keystroke, the last one included.
func ExecuteTypewriter(text string, speedMs, varianceMs uint64, rng *rand.Rand) error {
	for _, pair := range TypewriterToAppleScript(text, speedMs, varianceMs, rng) {
		if _, err := RunAppleScript(pair.Script); err != nil {
			return err
		}
		time.Sleep(time.Duration(pair.DelayMs) * time.Millisecond)
	}
	return nil
}
