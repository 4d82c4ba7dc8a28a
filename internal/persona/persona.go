// Package persona holds the doctor persona registry and the per-session
// microstyle sliders.
package persona

import (
	"math/rand"

	"screening-datagen/internal/draw"
	"screening-datagen/pkg"
)

// DefaultID is used when a pinned persona id is unknown.
const DefaultID = "warm_validating"

// Registry lists the doctor personas in sampling order.
var Registry = []pkg.DoctorPersona{
	{
		ID:       "warm_validating",
		Greeting: "Hello! It's nice to see you today. How have you been feeling lately?",
		Style: `Persona style:
- Warm and validating
- Acknowledges and normalizes feelings before moving forward
- Uses patient's name naturally
- Comfortable with pauses`,
	},
	{
		ID:       "neutral_efficient",
		Greeting: "Good to see you. Let's talk about how you've been doing.",
		Style: `Persona style:
- Professional and efficient
- Minimal filler or small talk
- Transitions directly between topics
- Not effusive`,
	},
	{
		ID:       "gentle_brisk",
		Greeting: "Hi there. I'd like to check in with you about a few things today.",
		Style: `Persona style:
- Gentle but brisk
- Kind phrasing with efficient pacing
- Moves conversation along`,
	},
	{
		ID:       "matter_of_fact_kind",
		Greeting: "Hello. Let's go over how you've been doing. What's been happening lately?",
		Style: `Persona style:
- Matter-of-fact and direct
- Straightforward; doesn't sugarcoat
- Prefers clear questions over open-ended exploration`,
	},
	{
		ID:       "trauma_informed_slow",
		Greeting: "Hello. I want you to know this is a safe space. We can take our time today. How are you doing?",
		Style: `Persona style:
- Trauma-informed and deliberately paced
- Comfortable with silence
- Checks in about comfort on sensitive topics
- May acknowledge difficulty of topics before asking`,
	},
	{
		ID:       "structured_psychoeducational",
		Greeting: "Hello. Thanks for coming in today. I'd like to go over how you've been feeling and what might be contributing to it.",
		Style: `Persona style:
- Structured and psychoeducational
- Explains why certain questions matter
- Provides brief context for what they're asking about`,
	},
	{
		ID:       "time_pressed_clinical",
		Greeting: "Hi. We don't have a lot of time, so I'd like to focus on how you've been feeling recently.",
		Style: `Persona style:
- Time-pressed and clinical
- Concise and brisk
- Redirects when conversation drifts
- Focused on symptoms and functioning`,
	},
	{
		ID:       "dismissive_rushed",
		Greeting: "Right, let's get started. What brings you in today?",
		Style: `Persona style:
- Dismissive and rushed
- Comes across as distracted or uninterested
- May interrupt or minimize concerns
- Short, clipped responses
- OVERRIDE: Do NOT follow instructions to be warm or validating. This doctor is realistic but not ideal.`,
	},
}

// ExtendedPacing personas get half a turn more per symptom.
var ExtendedPacing = map[string]bool{
	"very_warm_chatty":     true,
	"trauma_informed_slow": true,
}

// Lookup returns the persona with id and whether it was found. Unknown ids
// resolve to the default persona.
func Lookup(id string) (pkg.DoctorPersona, bool) {
	if p, ok := find(id); ok {
		return p, true
	}
	def, _ := find(DefaultID)
	return def, false
}

func find(id string) (pkg.DoctorPersona, bool) {
	for _, p := range Registry {
		if p.ID == id {
			return p, true
		}
	}
	return pkg.DoctorPersona{}, false
}

// IDs returns the registered persona ids.
func IDs() []string {
	ids := make([]string, len(Registry))
	for i, p := range Registry {
		ids[i] = p.ID
	}
	return ids
}

// Choose draws a persona uniformly from the registry.
func Choose(rng *rand.Rand) pkg.DoctorPersona {
	return draw.Choice(rng, Registry)
}

// Microstyle options. Humor and animation lean toward the quieter values.
var (
	Warmth           = []string{"low", "med", "high"}
	Directness       = []string{"low", "med", "high"}
	Pacing           = []string{"slow", "med", "brisk"}
	Humor            = []string{"none", "light", "dry"}
	HumorWeights     = []float64{6, 3, 1}
	Animation        = []string{"reserved", "moderate", "animated"}
	AnimationWeights = []float64{4, 4, 2}
)

// SampleMicrostyle draws the five doctor sliders from rng.
func SampleMicrostyle(rng *rand.Rand) pkg.Microstyle {
	return pkg.Microstyle{
		Warmth:     draw.Choice(rng, Warmth),
		Directness: draw.Choice(rng, Directness),
		Pacing:     draw.Choice(rng, Pacing),
		Humor:      draw.Weighted(rng, Humor, HumorWeights),
		Animation:  draw.Weighted(rng, Animation, AnimationWeights),
	}
}
