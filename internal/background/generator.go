// Package background generates the optional biographical enrichment of a
// sampled patient with a single structured-output call.
package background

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/sirupsen/logrus"

	"screening-datagen/internal/catalog"
	"screening-datagen/internal/draw"
	"screening-datagen/internal/llm"
	"screening-datagen/pkg"
)

// AgentName labels the writer's prompt trace and token usage.
const AgentName = "background_writer"

// Severity levels derived from the frequency profile.
const (
	SeverityMinimal  = "minimal"
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

const (
	minRequired     = 5
	maxRequired     = 8
	maxTrauma       = 2
	maxDrawAttempts = 100

	defaultPronouns    = "they/them"
	placeholderFacet   = "No specific detail provided."
	defaultFacetWeight = 1.0
)

// ErrMissingFields is returned by Parse when name or life_facets is absent.
var ErrMissingFields = errors.New("background output missing name or life_facets")

// Severity classifies a frequency profile by how many symptoms are SOME or
// OFTEN.
func Severity(freq map[string]pkg.Frequency) string {
	var significant, often int
	for _, f := range freq {
		switch f {
		case pkg.FreqOften:
			often++
			significant++
		case pkg.FreqSome:
			significant++
		}
	}
	switch {
	case significant == 0:
		return SeverityMinimal
	case significant <= 2 || (significant <= 4 && often == 0):
		return SeverityMild
	case significant <= 5 || often <= 3:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// facetWeights builds the category weights, in FacetCategories order, for the
// given domains and severity.
func facetWeights(domains []string, severity string) []float64 {
	w := make(map[string]float64, len(catalog.FacetCategories))
	for _, c := range catalog.FacetCategories {
		w[c] = defaultFacetWeight
	}
	traumaBoost := severity == SeverityModerate || severity == SeveritySevere
	for _, d := range domains {
		if strings.Contains(d, "work") || strings.Contains(d, "role") {
			w["work_or_study_pressure"] = 3
			w["sense_of_achievement"] = 2
			w["role_conflicts"] = 2
			w["responsibility_load"] = 2
		}
		if strings.Contains(d, "relationship") {
			w["family_relationship_pattern"] = 2.5
			w["closest_friend_or_confidant"] = 2
			w["key_partner_or_love_interest"] = 2
			w["conflictual_relationship"] = 2
		}
		if strings.Contains(d, "health") {
			w["physical_health_constraints"] = 3
			w["sleep_pattern_tendency"] = 2
			w["body_image_concerns_or_comfort"] = 1.5
		}
		if strings.Contains(d, "self-worth") || strings.Contains(d, "identity") {
			w["self_view"] = 2.5
			w["beliefs_about_self_worth"] = 2.5
			w["identity_stage"] = 2
		}
		if strings.Contains(d, "transition") {
			w["significant_move_or_transition"] = 2.5
			w["stalled_goal"] = 2
			w["loss_or_change"] = 2
		}
		if strings.Contains(d, "grief") || strings.Contains(d, "bereavement") {
			w["loss_or_change"] = 3
			w["unresolved_issue"] = 2
		}
		if d == "grief/bereavement" || d == "major life transition" {
			traumaBoost = true
		}
	}
	w["current_primary_stressor"] = 4
	w["coping_style"] = 2.5

	factor := 0.5
	if traumaBoost {
		factor = 1.5
	}
	for _, c := range catalog.TraumaFacets {
		w[c] *= factor
	}

	out := make([]float64, len(catalog.FacetCategories))
	for i, c := range catalog.FacetCategories {
		out[i] = w[c]
	}
	return out
}

// SelectRequiredFacets draws 5-8 distinct facet categories, at most two of
// them trauma categories.
func SelectRequiredFacets(rng *rand.Rand, domains []string, severity string) []string {
	weights := facetWeights(domains, severity)
	n := draw.IntBetween(rng, minRequired, maxRequired)

	selected := make([]string, 0, n)
	seen := make(map[string]bool, n)
	trauma := 0
	for attempts := 0; len(selected) < n && attempts < maxDrawAttempts; attempts++ {
		c := draw.Weighted(rng, catalog.FacetCategories, weights)
		if seen[c] {
			continue
		}
		if catalog.IsTraumaFacet(c) {
			if trauma >= maxTrauma {
				continue
			}
			trauma++
		}
		seen[c] = true
		selected = append(selected, c)
	}
	return selected
}

// BuildInput renders the writer's user message.
func BuildInput(p *pkg.PatientProfile, required []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Age range: %s\n\n", p.AgeRange)

	b.WriteString("Personality summary:\n")
	fmt.Fprintf(&b, "template_id: %s\n", p.TemplateID)
	fmt.Fprintf(&b, "modifiers: [%s]\n", strings.Join(p.Modifiers, ", "))
	v := p.VoiceStyle
	fmt.Fprintf(&b, "voice_style: verbosity=%s, expressiveness=%s, trust=%s, intellect=%s\n",
		v.Verbosity, v.Expressiveness, v.Trust, v.Intellect)
	fmt.Fprintf(&b, "pacing: %s\n", p.Pacing)
	fmt.Fprintf(&b, "episode_density: %s\n\n", p.EpisodeDensity)

	b.WriteString("Depression symptom profile:\n")
	for _, sym := range catalog.DSMItems {
		if f, ok := p.SymptomFrequency[sym]; ok {
			fmt.Fprintf(&b, "%s: %s\n", sym, f)
		}
	}

	b.WriteString("\nBasic background tags:\n")
	for _, t := range p.PersonalBackground.Pairs() {
		fmt.Fprintf(&b, "%s: %s\n", t.Key, t.Value)
	}

	domains := "none specified"
	if len(p.ContextDomains) > 0 {
		domains = strings.Join(p.ContextDomains, ", ")
	}
	fmt.Fprintf(&b, "\nContext domains:\n%s\n\n", domains)

	b.WriteString("Required facets (you must fill all of these):\n")
	for _, c := range required {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nAll available facets (you may add 2-5 extra from this list):\n")
	for _, c := range catalog.FacetCategories {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nTask: Generate the patient life background and output JSON only.")
	return b.String()
}

// Parse decodes writer output. Markdown fences are stripped first; name and
// life_facets must be present.
func Parse(output string) (*pkg.LifeBackground, error) {
	cleaned := llm.StripFences(output)
	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &keys); err != nil {
		return nil, fmt.Errorf("decode background: %w", err)
	}
	if _, ok := keys["name"]; !ok {
		return nil, ErrMissingFields
	}
	if _, ok := keys["life_facets"]; !ok {
		return nil, ErrMissingFields
	}
	var bg pkg.LifeBackground
	if err := json.Unmarshal([]byte(cleaned), &bg); err != nil {
		return nil, fmt.Errorf("decode background: %w", err)
	}
	return &bg, nil
}

// Normalize enforces the facet rules on a parsed background: one entry per
// required category (placeholders for missing ones), no unknown categories,
// and at most one extra high-salience trauma facet.
func Normalize(bg *pkg.LifeBackground, required []string, ageRange string) {
	isRequired := make(map[string]bool, len(required))
	for _, c := range required {
		isRequired[c] = true
	}

	seen := make(map[string]bool, len(bg.Facets))
	facets := make([]pkg.LifeFacet, 0, len(bg.Facets)+len(required))
	extraHighTrauma := 0
	for _, f := range bg.Facets {
		if !catalog.IsFacetCategory(f.Category) || seen[f.Category] {
			continue
		}
		switch f.Salience {
		case pkg.SalienceLow, pkg.SalienceMed, pkg.SalienceHigh:
		default:
			f.Salience = pkg.SalienceMed
		}
		if !isRequired[f.Category] && catalog.IsTraumaFacet(f.Category) && f.Salience == pkg.SalienceHigh {
			if extraHighTrauma >= 1 {
				continue
			}
			extraHighTrauma++
		}
		seen[f.Category] = true
		facets = append(facets, f)
	}
	for _, c := range required {
		if !seen[c] {
			facets = append(facets, pkg.LifeFacet{Category: c, Salience: pkg.SalienceLow, Description: placeholderFacet})
		}
	}
	bg.Facets = facets
	bg.RequiredFacets = append([]string(nil), required...)

	if bg.Pronouns == "" {
		bg.Pronouns = defaultPronouns
	}
	if bg.AgeRange == "" {
		bg.AgeRange = ageRange
	}
}

// Params are the sampling parameters of the writer call.
type Params struct {
	Temperature *float64
	MaxTokens   int
}

// Result is the outcome of one generation. Background is nil on any failure;
// Trace is always populated.
type Result struct {
	Background *pkg.LifeBackground
	Trace      pkg.PromptTrace
	Usage      pkg.TokenUsage
}

// Generator produces life backgrounds.
type Generator struct {
	client llm.Client
	params Params
	log    logrus.FieldLogger
}

// NewGenerator constructs a Generator.
func NewGenerator(client llm.Client, params Params, log logrus.FieldLogger) *Generator {
	return &Generator{client: client, params: params, log: log}
}

// Generate selects the required facets from rng, calls the writer once and
// parses the result. Failures are logged and yield a nil background.
func (g *Generator) Generate(ctx context.Context, rng *rand.Rand, p *pkg.PatientProfile) Result {
	severity := Severity(p.SymptomFrequency)
	required := SelectRequiredFacets(rng, p.ContextDomains, severity)
	input := BuildInput(p, required)

	res := Result{Trace: pkg.PromptTrace{
		Agent:        AgentName,
		SystemPrompt: SystemPrompt,
		Input:        input,
	}}

	out, err := g.client.Complete(ctx, llm.Request{
		System:      SystemPrompt,
		Input:       input,
		Temperature: g.params.Temperature,
		MaxTokens:   g.params.MaxTokens,
		JSON:        true,
	})
	if err != nil {
		g.log.WithError(err).Warn("background writer call failed")
		res.Trace.Output = "ERROR: " + err.Error()
		return res
	}
	res.Trace.Output = out.Text
	res.Usage = pkg.TokenUsage{
		InputTokens:  out.Usage.InputTokens,
		OutputTokens: out.Usage.OutputTokens,
		TotalTokens:  out.Usage.TotalTokens,
	}

	bg, err := Parse(out.Text)
	if err != nil {
		g.log.WithError(err).Warn("failed to parse background writer output")
		return res
	}
	Normalize(bg, required, p.AgeRange)
	bg.Severity = severity
	res.Background = bg
	g.log.WithFields(logrus.Fields{
		"name":     bg.Name,
		"severity": severity,
		"facets":   len(bg.Facets),
	}).Debug("background generated")
	return res
}
