// Package profile samples the latent patient profile that every generated
// dialogue must stay consistent with.
package profile

import (
	"fmt"
	"math/rand"

	"screening-datagen/internal/catalog"
	"screening-datagen/internal/draw"
	"screening-datagen/pkg"
)

// Overrides pins individual profile fields. Zero values, and nil slices or
// maps, leave a field to the weighted sampling rules. A non-nil empty slice
// pins the field to empty.
type Overrides struct {
	TemplateID          string               `json:"template_id,omitempty" yaml:"template_id"`
	Modifiers           []string             `json:"modifiers,omitempty" yaml:"modifiers"`
	Pacing              pkg.Level            `json:"pacing,omitempty" yaml:"pacing"`
	ContextDomains      []string             `json:"context_domains,omitempty" yaml:"context_domains"`
	EpisodeDensity      pkg.Density          `json:"episode_density,omitempty" yaml:"episode_density"`
	VoiceStyle          *pkg.VoiceStyle      `json:"voice_style,omitempty" yaml:"voice_style"`
	VoicePartial        map[string]string    `json:"voice_style_partial,omitempty" yaml:"voice_style_partial"`
	PersonalBackground  *pkg.BackgroundTags  `json:"personal_background,omitempty" yaml:"personal_background"`
	AgeRange            string               `json:"age_range,omitempty" yaml:"age_range"`
	EmphasizedIntensity map[string]pkg.Level `json:"emphasized_intensity,omitempty" yaml:"emphasized_intensity"`
	ExtraElevated       []string             `json:"extra_elevated,omitempty" yaml:"extra_elevated"`
}

// Sampler draws patient profiles from a single injected random source.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a Sampler that consumes rng. The caller owns rng and
// must not reset it between sessions of one run.
func NewSampler(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Sample draws one profile. The steps below consume the RNG in a fixed order;
// reordering them changes what a given seed produces.
func (s *Sampler) Sample(o Overrides) (*pkg.PatientProfile, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	rng := s.rng

	templateID := o.TemplateID
	if templateID == "" {
		templateID = draw.Choice(rng, catalog.TemplateIDs())
	}
	tmpl, _ := catalog.TemplateByID(templateID)
	for _, sym := range o.ExtraElevated {
		if catalog.Contains(tmpl.Emphasized, sym) {
			return nil, fmt.Errorf("extra elevated symptom %q is emphasized by %s", sym, tmpl.ID)
		}
	}

	p := &pkg.PatientProfile{
		TemplateID:         tmpl.ID,
		AffectiveStyle:     tmpl.Affective,
		CognitiveStyle:     tmpl.Cognitive,
		SomaticStyle:       tmpl.Somatic,
		SpecifierHint:      tmpl.Specifier,
		EmphasizedSymptoms: append([]string(nil), tmpl.Emphasized...),
	}

	if o.Modifiers != nil {
		p.Modifiers = append([]string{}, o.Modifiers...)
	} else {
		p.Modifiers = draw.Sample(rng, tmpl.Modifiers, draw.IntBetween(rng, 0, 2))
	}

	p.Pacing = o.Pacing
	if p.Pacing == "" {
		p.Pacing = draw.Choice(rng, catalog.PacingLevels)
	}

	if o.ContextDomains != nil {
		p.ContextDomains = append([]string{}, o.ContextDomains...)
	} else {
		n := draw.IntBetween(rng, 0, catalog.MaxContextDomains)
		p.ContextDomains = draw.Sample(rng, catalog.ContextDomains, n)
	}

	p.EpisodeDensity = o.EpisodeDensity
	if p.EpisodeDensity == "" {
		p.EpisodeDensity = draw.Weighted(rng, catalog.DensityLevels, catalog.DensityWeights)
	}

	if o.VoiceStyle != nil {
		p.VoiceStyle = *o.VoiceStyle
	} else {
		p.VoiceStyle = pkg.VoiceStyle{
			Verbosity:      draw.Choice(rng, catalog.Verbosity),
			Expressiveness: draw.Choice(rng, catalog.Expressiveness),
			Trust:          draw.Choice(rng, catalog.Trust),
			Intellect:      draw.Choice(rng, catalog.Intellect),
			Humor:          draw.Weighted(rng, catalog.PatientHumor, catalog.HumorWeights),
		}
	}
	applyVoicePartial(&p.VoiceStyle, o.VoicePartial)

	// The age bracket follows the sampled work role even when that tag is
	// dropped from the retained background.
	var role string
	if o.PersonalBackground != nil {
		p.PersonalBackground = *o.PersonalBackground
		role = p.PersonalBackground.WorkRole
		if role == "" {
			role = defaultWorkRole
		}
	} else {
		p.PersonalBackground, role = sampleBackgroundTags(rng)
	}

	p.AgeRange = o.AgeRange
	if p.AgeRange == "" {
		p.AgeRange = draw.Weighted(rng, catalog.AgeRanges, catalog.AgeWeights(role))
	}

	p.EmphasizedIntensity = make(map[string]pkg.Level, len(tmpl.Emphasized))
	for _, sym := range tmpl.Emphasized {
		if o.EmphasizedIntensity != nil {
			lvl, ok := o.EmphasizedIntensity[sym]
			if !ok {
				lvl = pkg.LevelMed
			}
			p.EmphasizedIntensity[sym] = lvl
			continue
		}
		p.EmphasizedIntensity[sym] = draw.Weighted(rng, catalog.IntensityLevels, catalog.IntensityWeights)
	}

	if o.ExtraElevated != nil {
		p.ExtraElevated = append([]string{}, o.ExtraElevated...)
	} else {
		p.ExtraElevated = draw.Sample(rng, nonEmphasized(tmpl.Emphasized), draw.IntBetween(rng, 0, 1))
	}

	p.SymptomFrequency = FrequencyProfile(rng, tmpl.Emphasized, p.EpisodeDensity, p.EmphasizedIntensity, p.ExtraElevated)
	return p, nil
}

// defaultWorkRole conditions the age of a pinned background without a role.
const defaultWorkRole = "employed"

// sampleBackgroundTags draws all four tags, then drops one or two of them.
// The sampled work role is returned even when its tag was dropped.
func sampleBackgroundTags(rng *rand.Rand) (pkg.BackgroundTags, string) {
	tags := pkg.BackgroundTags{
		WorkRole:         draw.Choice(rng, catalog.WorkRoles),
		LivingSituation:  draw.Choice(rng, catalog.LivingSituations),
		RoutineStability: draw.Choice(rng, catalog.RoutineStabilities),
		SupportLevel:     draw.Choice(rng, catalog.SupportLevels),
	}
	role := tags.WorkRole
	fields := []string{"living_situation", "work_role", "routine_stability", "support_level"}
	for _, f := range draw.Sample(rng, fields, draw.IntBetween(rng, 1, 2)) {
		switch f {
		case "living_situation":
			tags.LivingSituation = ""
		case "work_role":
			tags.WorkRole = ""
		case "routine_stability":
			tags.RoutineStability = ""
		case "support_level":
			tags.SupportLevel = ""
		}
	}
	return tags, role
}

func applyVoicePartial(vs *pkg.VoiceStyle, partial map[string]string) {
	for dim, v := range partial {
		switch dim {
		case "verbosity":
			vs.Verbosity = v
		case "expressiveness":
			vs.Expressiveness = v
		case "trust":
			vs.Trust = v
		case "intellect":
			vs.Intellect = v
		case "humor":
			vs.Humor = v
		}
	}
}

func nonEmphasized(emphasized []string) []string {
	out := make([]string, 0, catalog.NumDSMItems)
	for _, item := range catalog.DSMItems {
		if !catalog.Contains(emphasized, item) {
			out = append(out, item)
		}
	}
	return out
}

// Validate rejects overrides that name unknown templates or enum values, and
// extra-elevated symptoms that overlap the emphasized set.
func (o Overrides) Validate() error {
	var tmpl catalog.Template
	if o.TemplateID != "" {
		t, ok := catalog.TemplateByID(o.TemplateID)
		if !ok {
			return fmt.Errorf("unknown template %q", o.TemplateID)
		}
		tmpl = t
	}
	if o.Pacing != "" && !validLevel(o.Pacing) {
		return fmt.Errorf("invalid pacing %q", o.Pacing)
	}
	if o.EpisodeDensity != "" {
		ok := false
		for _, d := range catalog.DensityLevels {
			ok = ok || d == o.EpisodeDensity
		}
		if !ok {
			return fmt.Errorf("invalid episode density %q", o.EpisodeDensity)
		}
	}
	if o.AgeRange != "" && !catalog.Contains(catalog.AgeRanges, o.AgeRange) {
		return fmt.Errorf("invalid age range %q", o.AgeRange)
	}
	for dim, v := range o.VoicePartial {
		pool, ok := voicePools[dim]
		if !ok {
			return fmt.Errorf("unknown voice style dimension %q", dim)
		}
		if !catalog.Contains(pool, v) {
			return fmt.Errorf("invalid %s %q", dim, v)
		}
	}
	for sym, lvl := range o.EmphasizedIntensity {
		if !catalog.IsDSMItem(sym) {
			return fmt.Errorf("unknown symptom %q in intensity override", sym)
		}
		if !validLevel(lvl) {
			return fmt.Errorf("invalid intensity %q for %q", lvl, sym)
		}
	}
	for _, sym := range o.ExtraElevated {
		if !catalog.IsDSMItem(sym) {
			return fmt.Errorf("unknown symptom %q in extra elevated override", sym)
		}
		if tmpl.ID != "" && catalog.Contains(tmpl.Emphasized, sym) {
			return fmt.Errorf("extra elevated symptom %q is emphasized by %s", sym, tmpl.ID)
		}
	}
	return nil
}

var voicePools = map[string][]string{
	"verbosity":      catalog.Verbosity,
	"expressiveness": catalog.Expressiveness,
	"trust":          catalog.Trust,
	"intellect":      catalog.Intellect,
	"humor":          catalog.PatientHumor,
}

func validLevel(l pkg.Level) bool {
	return l == pkg.LevelLow || l == pkg.LevelMed || l == pkg.LevelHigh
}
