package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"screening-datagen/pkg"
)

// AgentID is a stable fingerprint of every generation lever of a session:
// the patient profile, the persona and the microstyle. It does not depend on
// draw order or map iteration.
func AgentID(p *pkg.PatientProfile, personaID string, ms pkg.Microstyle) string {
	v := p.VoiceStyle
	parts := []string{
		"TEMPLATE=" + p.TemplateID,
		"P_PACING=" + string(p.Pacing),
		"DENSITY=" + string(p.EpisodeDensity),
		"AGE=" + p.AgeRange,
		"TRUST=" + v.Trust,
		"VERBOSITY=" + v.Verbosity,
		"EXPRESSIVENESS=" + v.Expressiveness,
		"INTELLECT=" + v.Intellect,
		"P_HUMOR=" + v.Humor,
		"MODS=" + sortedJoin(p.Modifiers),
		"CONTEXT=" + sortedJoin(p.ContextDomains),
	}

	var bg []string
	for _, t := range p.PersonalBackground.Pairs() {
		bg = append(bg, t.Key+":"+t.Value)
	}
	parts = append(parts, "BG="+sortedJoin(bg))

	var intensity []string
	for sym, lvl := range p.EmphasizedIntensity {
		intensity = append(intensity, fmt.Sprintf("%s:%s", sym, lvl))
	}
	parts = append(parts,
		"INTENSITY="+sortedJoin(intensity),
		"EXTRA="+sortedJoin(p.ExtraElevated),
		"PERSONA="+personaID,
		"D_WARMTH="+ms.Warmth,
		"D_DIRECT="+ms.Directness,
		"D_PACING="+ms.Pacing,
		"D_HUMOR="+ms.Humor,
		"D_ANIMATION="+ms.Animation,
	)

	symptoms := make([]string, 0, len(p.SymptomFrequency))
	for sym := range p.SymptomFrequency {
		symptoms = append(symptoms, sym)
	}
	sort.Strings(symptoms)
	for _, sym := range symptoms {
		parts = append(parts, fmt.Sprintf("%s=%s", sym, p.SymptomFrequency[sym]))
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return "AGENT_" + hex.EncodeToString(sum[:])[:16]
}

func sortedJoin(items []string) string {
	s := append([]string(nil), items...)
	sort.Strings(s)
	return strings.Join(s, ",")
}
