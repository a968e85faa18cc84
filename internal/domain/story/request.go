package story

import (
	"fable/pkg/errors"
)

// Request defaults applied by the provider manager when the caller
// leaves a field zero.
const (
	DefaultMaxTokens   = 150
	DefaultTemperature = 0.7
	DefaultUserAge     = 8

	MinUserAge = 2
	MaxUserAge = 18
)

// Element categories for StoryElements keys.
const (
	ElementGenre     = "genre"
	ElementSetting   = "setting"
	ElementCharacter = "character"
	ElementMood      = "mood"
	ElementConflict  = "conflict"
	ElementTheme     = "theme"
)

// StoryElements maps an element category to the value the young writer
// picked for their story (e.g. genre -> "space adventure").
type StoryElements map[string]string

// AIRequest is the input to a generation call. Provider and Model are
// abstract identifiers resolved by the provider manager, not vendor
// model strings.
type AIRequest struct {
	Provider      string
	Model         string
	Prompt        string
	MaxTokens     int
	Temperature   float64
	Context       string
	UserAge       int
	StoryElements StoryElements
}

// ApplyDefaults fills zero-valued tuning fields.
func (r *AIRequest) ApplyDefaults() {
	if r.MaxTokens <= 0 {
		r.MaxTokens = DefaultMaxTokens
	}
	if r.Temperature <= 0 {
		r.Temperature = DefaultTemperature
	}
	if r.UserAge == 0 {
		r.UserAge = DefaultUserAge
	}
}

// Validate checks the request invariants. UserAge drives every
// downstream filtering and prompt-shaping decision, so it must be in
// range.
func (r AIRequest) Validate() error {
	if r.UserAge < MinUserAge || r.UserAge > MaxUserAge {
		return errors.Wrapf(errors.ErrInvalidInput, "user age %d out of range [%d,%d]", r.UserAge, MinUserAge, MaxUserAge)
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return errors.Wrapf(errors.ErrInvalidInput, "temperature %.2f out of range [0,2]", r.Temperature)
	}
	return nil
}

// AgeBand is one of three content/complexity tiers driving prompt
// tone, vocabulary and filtering strictness.
type AgeBand string

const (
	BandYoung  AgeBand = "young"  // ages <= 6
	BandMiddle AgeBand = "middle" // ages 7-12
	BandTeen   AgeBand = "teen"   // ages 13+
)

// BandFor returns the age band for a writer's age.
func BandFor(age int) AgeBand {
	switch {
	case age <= 6:
		return BandYoung
	case age <= 12:
		return BandMiddle
	default:
		return BandTeen
	}
}
