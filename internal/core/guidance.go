package core

import (
	"screening-datagen/internal/llm"
	"screening-datagen/pkg"
)

// PatientManagerAgent labels the patient guidance step in traces.
const PatientManagerAgent = "patient_manager"

const (
	defaultEmotionalState = "neutral"
	defaultToneTag        = "cooperative"
	defaultPatientGuide   = "Answer in a way consistent with your profile, moderately direct, and do not overshare."
)

// InitialDisclosure derives the opening disclosure stage from the voice
// style.
func InitialDisclosure(v pkg.VoiceStyle) pkg.DisclosureStage {
	switch {
	case v.Trust == "guarded" || v.Verbosity == "terse":
		return pkg.DisclosureMinimize
	case v.Trust == "open" && (v.Verbosity == "moderate" || v.Verbosity == "detailed"):
		return pkg.DisclosureOpen
	default:
		return pkg.DisclosurePartial
	}
}

// DefaultGuidance is the guidance used when the patient manager gives
// nothing usable. It keeps the current disclosure stage.
func DefaultGuidance(v pkg.VoiceStyle, stage pkg.DisclosureStage) pkg.PatientGuidance {
	length := "MEDIUM"
	switch v.Verbosity {
	case "terse":
		length = "SHORT"
	case "detailed":
		length = "LONG"
	}
	directness := "MED"
	switch v.Trust {
	case "guarded":
		directness = "LOW"
	case "open":
		directness = "HIGH"
	}
	return pkg.PatientGuidance{
		Directness:         directness,
		DisclosureStage:    stage,
		TargetLength:       length,
		EmotionalState:     defaultEmotionalState,
		ToneTags:           []string{defaultToneTag},
		KeyPointsToReveal:  []string{},
		KeyPointsToAvoid:   []string{},
		PatientInstruction: defaultPatientGuide,
	}
}

// ParseGuidance decodes patient manager output, filling every missing field
// from the defaults. An unknown disclosure stage keeps the current one. The
// boolean is false when the output could not be decoded at all.
func ParseGuidance(output string, v pkg.VoiceStyle, stage pkg.DisclosureStage) (pkg.PatientGuidance, bool) {
	g := DefaultGuidance(v, stage)
	var raw pkg.PatientGuidance
	if output == "" || llm.DecodeJSON(output, &raw) != nil {
		return g, false
	}
	if raw.Directness != "" {
		g.Directness = raw.Directness
	}
	if raw.DisclosureStage.Valid() {
		g.DisclosureStage = raw.DisclosureStage
	}
	if raw.TargetLength != "" {
		g.TargetLength = raw.TargetLength
	}
	if raw.EmotionalState != "" {
		g.EmotionalState = raw.EmotionalState
	}
	if len(raw.ToneTags) > 0 {
		g.ToneTags = raw.ToneTags
	}
	if raw.KeyPointsToReveal != nil {
		g.KeyPointsToReveal = raw.KeyPointsToReveal
	}
	if raw.KeyPointsToAvoid != nil {
		g.KeyPointsToAvoid = raw.KeyPointsToAvoid
	}
	if raw.PatientInstruction != "" {
		g.PatientInstruction = raw.PatientInstruction
	}
	return g, true
}
