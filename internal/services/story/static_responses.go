package story

// Canned continuations served when every vendor in the cascade has
// failed. Generic enough to follow any story and always hand the next
// turn back to the writer.
var staticResponses = []string{
	"What an exciting story! I wonder what your hero will discover next. What do you think happens?",
	"That's a wonderful twist! Your characters are about to find something amazing. Can you tell me what it is?",
	"Great storytelling! Suddenly, something surprising happens. What could it be?",
	"I love where this is going! Your character takes a deep breath and steps forward. What do they see?",
	"Amazing! The adventure continues as a new friend appears. Who do you think it is?",
}
