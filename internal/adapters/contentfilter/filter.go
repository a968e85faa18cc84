package contentfilter

import (
	"strings"
	"unicode"

	"fable/internal/domain/story"
)

// Substitutions applied to generated text before it reaches a young
// writer. The youngest band gets the full table; the middle band only
// the harsher entries; teens get text as generated.
var youngSubstitutions = map[string]string{
	"dark":       "shadowy",
	"scary":      "surprising",
	"monster":    "friendly creature",
	"frightened": "amazed",
	"afraid":     "curious",
	"terrible":   "tricky",
	"died":       "went away",
	"dead":       "sleeping",
	"kill":       "stop",
	"blood":      "red paint",
	"weapon":     "magic wand",
}

var middleSubstitutions = map[string]string{
	"kill":   "defeat",
	"blood":  "mud",
	"weapon": "tool",
	"dead":   "defeated",
	"died":   "was defeated",
}

// Filter transforms AI-generated text per the writer's age band.
// Deterministic and pure: the same input always maps to the same
// output.
type Filter struct{}

// New creates a content filter.
func New() *Filter {
	return &Filter{}
}

// FilterResponse applies the age band's substitutions to text.
func (f *Filter) FilterResponse(text string, userAge int) string {
	switch story.BandFor(userAge) {
	case story.BandYoung:
		return substituteWords(text, youngSubstitutions)
	case story.BandMiddle:
		return substituteWords(text, middleSubstitutions)
	default:
		return text
	}
}

// EnsurePositiveTone rewrites flat-negative openers into encouraging
// ones. Used on assessment feedback before it is shown to a child.
func (f *Filter) EnsurePositiveTone(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "Great work on your story!"
	}

	lower := strings.ToLower(trimmed)
	for _, negative := range []string{"this is bad", "this is wrong", "you failed", "not good"} {
		if strings.HasPrefix(lower, negative) {
			return "You're making great progress! " + trimmed
		}
	}

	return trimmed
}

// PositiveAlternative returns the substitution for a single word, or
// the word itself if no alternative is configured.
func (f *Filter) PositiveAlternative(word string, userAge int) string {
	table := youngSubstitutions
	if story.BandFor(userAge) != story.BandYoung {
		table = middleSubstitutions
	}
	if alt, ok := table[strings.ToLower(word)]; ok {
		return alt
	}
	return word
}

// substituteWords replaces whole words using the table, preserving a
// leading capital on the replacement.
func substituteWords(text string, table map[string]string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	word := strings.Builder{}
	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		if alt, ok := table[strings.ToLower(w)]; ok {
			sb.WriteString(matchCase(w, alt))
		} else {
			sb.WriteString(w)
		}
		word.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || r == '\'' {
			word.WriteRune(r)
			continue
		}
		flush()
		sb.WriteRune(r)
	}
	flush()

	return sb.String()
}

func matchCase(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	if unicode.IsUpper([]rune(original)[0]) {
		runes := []rune(replacement)
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	}
	return replacement
}
