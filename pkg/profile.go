package pkg

// Frequency is the ordinal symptom frequency over the last 14 days.
type Frequency string

const (
	FreqNone  Frequency = "NONE"
	FreqRare  Frequency = "RARE"
	FreqSome  Frequency = "SOME"
	FreqOften Frequency = "OFTEN"
)

// Rank orders frequencies NONE < RARE < SOME < OFTEN. Unknown values rank -1.
func (f Frequency) Rank() int {
	switch f {
	case FreqNone:
		return 0
	case FreqRare:
		return 1
	case FreqSome:
		return 2
	case FreqOften:
		return 3
	}
	return -1
}

// Density is the episode density controlling overall symptom sparsity.
type Density string

const (
	DensityUltraLow Density = "ULTRA_LOW"
	DensityLow      Density = "LOW"
	DensityMed      Density = "MED"
	DensityHigh     Density = "HIGH"
)

// Level is the LOW/MED/HIGH scale used for patient pacing and symptom
// intensity.
type Level string

const (
	LevelLow  Level = "LOW"
	LevelMed  Level = "MED"
	LevelHigh Level = "HIGH"
)

// VoiceStyle holds the independently sampled speaking dimensions of a patient.
type VoiceStyle struct {
	Verbosity      string `json:"verbosity" yaml:"verbosity"`
	Expressiveness string `json:"expressiveness" yaml:"expressiveness"`
	Trust          string `json:"trust" yaml:"trust"`
	Intellect      string `json:"intellect" yaml:"intellect"`
	Humor          string `json:"humor" yaml:"humor"`
}

// BackgroundTags are the light personal context anchors of a patient. Empty
// fields were dropped during sampling.
type BackgroundTags struct {
	LivingSituation  string `json:"living_situation,omitempty" yaml:"living_situation"`
	WorkRole         string `json:"work_role,omitempty" yaml:"work_role"`
	RoutineStability string `json:"routine_stability,omitempty" yaml:"routine_stability"`
	SupportLevel     string `json:"support_level,omitempty" yaml:"support_level"`
}

// Tag is a single retained key/value pair of BackgroundTags.
type Tag struct {
	Key   string
	Value string
}

// Pairs returns the retained tags in fixed field order.
func (b BackgroundTags) Pairs() []Tag {
	all := []Tag{
		{"living_situation", b.LivingSituation},
		{"work_role", b.WorkRole},
		{"routine_stability", b.RoutineStability},
		{"support_level", b.SupportLevel},
	}
	out := make([]Tag, 0, len(all))
	for _, t := range all {
		if t.Value != "" {
			out = append(out, t)
		}
	}
	return out
}

// PatientProfile is the hidden ground truth for one simulated patient. It is
// created once per session by the profile sampler and never mutated.
type PatientProfile struct {
	TemplateID          string               `json:"template_id"`
	AffectiveStyle      string               `json:"affective_style"`
	CognitiveStyle      string               `json:"cognitive_style"`
	SomaticStyle        string               `json:"somatic_style"`
	SpecifierHint       string               `json:"specifier_hint"`
	EmphasizedSymptoms  []string             `json:"emphasized_symptoms"`
	Modifiers           []string             `json:"modifiers"`
	Pacing              Level                `json:"pacing"`
	ContextDomains      []string             `json:"context_domains"`
	EpisodeDensity      Density              `json:"episode_density"`
	VoiceStyle          VoiceStyle           `json:"voice_style"`
	PersonalBackground  BackgroundTags       `json:"personal_background"`
	AgeRange            string               `json:"age_range"`
	EmphasizedIntensity map[string]Level     `json:"emphasized_intensity"`
	ExtraElevated       []string             `json:"extra_elevated_symptoms"`
	SymptomFrequency    map[string]Frequency `json:"symptom_frequency"`
}

// IsEmphasized reports whether symptom belongs to the template's emphasized set.
func (p *PatientProfile) IsEmphasized(symptom string) bool {
	for _, s := range p.EmphasizedSymptoms {
		if s == symptom {
			return true
		}
	}
	return false
}

// Salience is how central a life facet is to the patient's current life.
type Salience string

const (
	SalienceLow  Salience = "low"
	SalienceMed  Salience = "med"
	SalienceHigh Salience = "high"
)

// LifeFacet is one small biographical hook the patient may mention.
type LifeFacet struct {
	Category    string   `json:"category"`
	Salience    Salience `json:"salience"`
	Description string   `json:"description"`
}

// LifeBackground is the optional biographical enrichment of a profile.
type LifeBackground struct {
	Name                string      `json:"name"`
	AgeRange            string      `json:"age_range"`
	Pronouns            string      `json:"pronouns"`
	CoreRoles           []string    `json:"core_roles"`
	CoreRelationships   []string    `json:"core_relationships"`
	CoreStressorSummary string      `json:"core_stressor_summary"`
	Facets              []LifeFacet `json:"life_facets"`
	RequiredFacets      []string    `json:"required_facets"`
	Severity            string      `json:"severity"`
}

// DoctorPersona is a fixed doctor communication style.
type DoctorPersona struct {
	ID       string `json:"id"`
	Greeting string `json:"first_greeting"`
	Style    string `json:"style"`
}

// Microstyle holds the per-session doctor style sliders.
type Microstyle struct {
	Warmth     string `json:"warmth"`
	Directness string `json:"directness"`
	Pacing     string `json:"pacing"`
	Humor      string `json:"humor"`
	Animation  string `json:"animation"`
}
