package costoptimizer

import (
	"fable/internal/domain/story"
)

// Pre-written plans served when plan generation fails or returns an
// incomplete document. One per age band, each covering a full session.
var fallbackPlans = map[story.AgeBand]story.StoryPlan{
	story.BandYoung: {
		Opening: "Once upon a time, in a land full of sunshine and rainbows, a little hero set off on a big adventure. What does your hero look like?",
		Prompts: []string{
			"What does your hero find first?",
			"A friendly animal appears! Who is it?",
			"Your hero hears a funny sound. What could it be?",
			"It's time for a yummy snack. What do they eat?",
			"Your hero finds something shiny. What is it?",
			"How does your hero get home for bedtime?",
		},
		AssessmentCriteria: "Celebrate imagination and effort. Focus on the happy ideas in the story.",
		EstimatedTurns:     story.DefaultEstimatedTurns,
	},
	story.BandMiddle: {
		Opening: "The old map had been hidden in the attic for a hundred years, and today it finally chose someone to find it. What does the map show?",
		Prompts: []string{
			"Where does the first clue lead?",
			"A mysterious helper joins the journey. Who are they?",
			"Something unexpected blocks the path. What is it?",
			"Your character discovers a secret. What do they learn?",
			"A tough choice must be made. What are the options?",
			"How does the adventure end, and what was the real treasure?",
		},
		AssessmentCriteria: "Look at plot development, character choices and descriptive language. Keep feedback encouraging.",
		EstimatedTurns:     story.DefaultEstimatedTurns,
	},
	story.BandTeen: {
		Opening: "The message arrived at exactly midnight, from a sender who should not have known the address existed. What does it say?",
		Prompts: []string{
			"What does your protagonist decide to do about the message?",
			"Introduce a character whose motives are unclear.",
			"A piece of the mystery turns out to be personal. How?",
			"Raise the stakes: what does your protagonist stand to lose?",
			"Force a confrontation. How does it unfold?",
			"Resolve the story. What has changed for your protagonist?",
		},
		AssessmentCriteria: "Assess narrative structure, tension, voice and originality. Be specific and constructive.",
		EstimatedTurns:     story.DefaultEstimatedTurns,
	},
}

// FallbackPlan returns the pre-written plan for a writer's age band.
func FallbackPlan(userAge int) story.StoryPlan {
	return fallbackPlans[story.BandFor(userAge)]
}
