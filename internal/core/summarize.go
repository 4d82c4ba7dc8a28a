package core

import (
	"strings"

	"screening-datagen/internal/catalog"
	"screening-datagen/pkg"
)

// Risk summaries handed to the doctor managers.
const (
	RiskHigh     = "high risk: recent suicidal thoughts"
	RiskModerate = "moderate depression, monitor closely"
	RiskMild     = "mild to moderate depression, no immediate risk"
	RiskLow      = "low risk, minimal symptoms"

	noBackground = "no specific background provided"
)

// PatientSummary is the condensed view of the patient shared with the doctor
// managers. The managers never see the full frequency profile.
type PatientSummary struct {
	Risk       string
	Background string
}

// Summarize condenses a profile for the doctor managers.
func Summarize(p *pkg.PatientProfile) PatientSummary {
	return PatientSummary{
		Risk:       RiskSummary(p.SymptomFrequency),
		Background: BackgroundSummary(p.PersonalBackground),
	}
}

// RiskSummary grades risk from the suicidal-ideation and depressed-mood
// frequencies.
func RiskSummary(freq map[string]pkg.Frequency) string {
	suicide := freq[catalog.ThoughtsOfDeath]
	mood := freq[catalog.DepressedMood]
	switch {
	case suicide == pkg.FreqSome || suicide == pkg.FreqOften:
		return RiskHigh
	case mood == pkg.FreqOften || suicide == pkg.FreqRare:
		return RiskModerate
	case mood == pkg.FreqSome:
		return RiskMild
	default:
		return RiskLow
	}
}

// BackgroundSummary joins the retained background tag values.
func BackgroundSummary(tags pkg.BackgroundTags) string {
	pairs := tags.Pairs()
	if len(pairs) == 0 {
		return noBackground
	}
	vals := make([]string, len(pairs))
	for i, t := range pairs {
		vals[i] = t.Value
	}
	return strings.Join(vals, ", ")
}
