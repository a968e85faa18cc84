package ai

import (
	"fmt"
	"sort"
	"strings"

	"fable/internal/domain/story"
)

// encouragingFallback is substituted when a vendor returns an empty
// completion. The cascade above handles real failures; this only
// covers a successful call with no content.
const encouragingFallback = "What a wonderful idea! What do you think happens next in your story?"

// systemInstruction returns the age-banded writing instruction shared
// by all vendor clients.
func systemInstruction(age int) string {
	base := "You are a friendly writing companion helping a child write a story together. " +
		"Continue their story with 2-3 sentences, then gently invite them to add the next part."

	switch story.BandFor(age) {
	case story.BandYoung:
		return base + " Use very simple words and short sentences. Keep everything positive and playful. No scary themes of any kind."
	case story.BandMiddle:
		return base + " Keep the story engaging and imaginative, but never frightening. Age-appropriate vocabulary for a 7-12 year old."
	default:
		return base + " The writer is a teenager: sophisticated vocabulary and plot turns are welcome, but keep content appropriate for young adults."
	}
}

// buildStoryPrompt assembles the user-facing prompt from the story so
// far, the chosen elements, and the writer's latest contribution.
func buildStoryPrompt(req story.AIRequest) string {
	var sb strings.Builder

	if len(req.StoryElements) > 0 {
		sb.WriteString("Story elements: ")
		sb.WriteString(formatElements(req.StoryElements))
		sb.WriteString("\n\n")
	}

	if req.Context != "" {
		sb.WriteString("The story so far:\n")
		sb.WriteString(req.Context)
		sb.WriteString("\n\n")
	}

	sb.WriteString("The child just wrote:\n")
	sb.WriteString(req.Prompt)

	return sb.String()
}

// formatElements renders elements in a stable order so prompts are
// reproducible across calls.
func formatElements(elements story.StoryElements) string {
	keys := make([]string, 0, len(elements))
	for k := range elements {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, elements[k]))
	}
	return strings.Join(parts, ", ")
}

// assessmentPrompt asks the vendor for a structured JSON rubric result.
func assessmentPrompt(content string, age int) string {
	return fmt.Sprintf(`You are assessing a story written by a %d-year-old child. Be warm and encouraging.

Story:
%s

Reply with ONLY a JSON object in exactly this shape:
{"grammarScore": <0-100>, "creativityScore": <0-100>, "overallScore": <0-100>, "feedback": "<one encouraging paragraph>", "suggestions": ["<suggestion>", ...], "strengths": ["<strength>", ...]}`, age, content)
}
