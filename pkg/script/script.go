// Package script builds prompts for ASMR script generation and normalizes
// the speaker annotations the TTS endpoint expects.
package script

import (
	"fmt"
	"strings"
)

// wordCounts maps a length preset to the approximate word count requested
// from the model.
var wordCounts = map[string]int{
	"short":     150,
	"medium":    300,
	"long":      600,
	"very long": 1000,
}

const defaultWordCount = 300

// WordCount returns the target word count for a length preset, defaulting to
// medium for unknown presets.
func WordCount(length string) int {
	if n, ok := wordCounts[strings.ToLower(length)]; ok {
		return n
	}
	return defaultWordCount
}

// Lengths lists the supported length presets.
func Lengths() []string {
	return []string{"short", "medium", "long", "very long"}
}

// Prompt builds the generation prompt for a theme and length preset.
func Prompt(theme, length string) string {
	return fmt.Sprintf(`Create an ASMR daddy script with a warm, comforting tone on the theme of "%s".

The script should be approximately %d words long and formatted as a dialogue
with a single speaker (Speaker 1) who is the "daddy" character.

Format the script with "Speaker 1:" prefix before each paragraph of dialogue.

The tone should be gentle, reassuring, and caring - typical of ASMR "daddy" content.
Include appropriate pauses indicated by "[pause]" and soft sounds like "[soft laugh]"
or "[gentle sigh]" where appropriate.

Make sure the content is soothing, appropriate for relaxation, and follows a natural
conversational flow as if speaking directly to the listener.`, theme, WordCount(length))
}

// Annotate ensures every non-empty line of text carries a "Speaker 1:"
// prefix so the multi-speaker TTS endpoint can attribute the dialogue. Text
// that already contains the annotation is returned unchanged.
func Annotate(text string) string {
	if text == "" || strings.Contains(text, "Speaker 1:") {
		return text
	}

	lines := strings.Split(text, "\n")
	formatted := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			formatted = append(formatted, line)
			continue
		}
		formatted = append(formatted, "Speaker 1: "+line)
	}
	return strings.Join(formatted, "\n")
}
