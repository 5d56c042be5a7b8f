package script

import (
	"fmt"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// decodeScalar decodes value as a YAML scalar into T, getting numeric
// bounds checking (overflow, sign, non-numeric text) from the yaml.v3
// decoder instead of hand-rolling it on top of strconv.
func decodeScalar[T any](value string) (T, error) {
	var out T
	if err := yaml.Unmarshal([]byte(value), &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// extractFrontMatter looks for a leading `---`-delimited block and parses
// its `key: value` lines into a FrontMatter. It returns the parsed front
// matter and the index of the first line of the directive body (0 if there
// was no front matter block at all).
func extractFrontMatter(lines []string) (FrontMatter, int, error) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return DefaultFrontMatter(), 0, nil
	}

	closingIdx := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			closingIdx = i
			break
		}
	}
	if closingIdx == -1 {
		return FrontMatter{}, 0, &ParseError{
			LineNumber: 1,
			LineText:   "---",
			Message:    "front matter opened but never closed with '---'",
		}
	}

	fm := DefaultFrontMatter()

	for i := 1; i < closingIdx; i++ {
		lineNumber := i + 1 // 1-indexed, offset by the opening ---
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		withoutComment := trimmed
		if hashPos := strings.Index(trimmed, "#"); hashPos >= 0 {
			withoutComment = strings.TrimSpace(trimmed[:hashPos])
		}

		key, value, ok := strings.Cut(withoutComment, ":")
		if !ok {
			return FrontMatter{}, 0, &ParseError{
				LineNumber: lineNumber,
				LineText:   line,
				Message:    "expected 'key: value' format in front matter",
			}
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "title":
			fm.Title = &value
		case "typing_speed":
			v, err := decodeScalar[uint64](value)
			if err != nil {
				return FrontMatter{}, 0, &ParseError{
					LineNumber: lineNumber,
					LineText:   line,
					Message:    fmt.Sprintf("invalid typing_speed value: %q", value),
				}
			}
			fm.TypingSpeedMs = v
		case "typing_variance":
			v, err := decodeScalar[uint64](value)
			if err != nil {
				return FrontMatter{}, 0, &ParseError{
					LineNumber: lineNumber,
					LineText:   line,
					Message:    fmt.Sprintf("invalid typing_variance value: %q", value),
				}
			}
			fm.TypingVarianceMs = v
		case "agent_port":
			v, err := decodeScalar[uint16](value)
			if err != nil {
				return FrontMatter{}, 0, &ParseError{
					LineNumber: lineNumber,
					LineText:   line,
					Message:    fmt.Sprintf("invalid agent_port value: %q", value),
				}
			}
			fm.AgentPort = v
		default:
			// Unknown keys are silently ignored.
		}
	}

	return fm, closingIdx + 1, nil
}
