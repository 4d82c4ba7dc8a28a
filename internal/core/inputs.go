package core

import (
	"fmt"
	"strings"

	"screening-datagen/internal/catalog"
	"screening-datagen/pkg"
)

// Directive tags wrapping the doctor's per-turn instruction.
const (
	TagNextQuestion = "NEXT_QUESTION"
	TagFollowUp     = "FOLLOW_UP"
	TagRapport      = "RAPPORT"
)

// managerContext is the fixed part of every doctor manager input.
type managerContext struct {
	persona    pkg.DoctorPersona
	microstyle pkg.Microstyle
	profile    *pkg.PatientProfile
	summary    PatientSummary
}

func (c managerContext) personaBlock(b *strings.Builder) {
	fmt.Fprintf(b, "Doctor persona:\nid: %s\nstyle: %s\nmicrostyle: warmth=%s, directness=%s, pacing=%s\n\n",
		c.persona.ID, PersonaSummary(c.persona), c.microstyle.Warmth, c.microstyle.Directness, c.microstyle.Pacing)
}

func (c managerContext) profileBlock(b *strings.Builder) {
	p := c.profile
	fmt.Fprintf(b, "Patient profile:\ntemplate_id: %s\ntrust: %s\nverbosity: %s\npacing: %s\nmodifiers: %s\nepisode_density: %s\n\n",
		p.TemplateID, p.VoiceStyle.Trust, p.VoiceStyle.Verbosity, p.Pacing, listString(p.Modifiers), p.EpisodeDensity)
}

// decisionInput builds the NORMAL and LOW_TURNS manager input.
func (c managerContext) decisionInput(pool []string, history []pkg.Message) string {
	var b strings.Builder
	c.personaBlock(&b)
	fmt.Fprintf(&b, "Patient background: %s\nPatient risk summary: %s\n\n", c.summary.Background, c.summary.Risk)
	c.profileBlock(&b)
	b.WriteString("DSM symptom keys:\n")
	for _, k := range pool {
		fmt.Fprintf(&b, "- %s\n", k)
	}
	fmt.Fprintf(&b, "\nConversation so far:\n%s\n\n\nTask: Decide next_action and output JSON only.", FormatConversation(history))
	return b.String()
}

// postCoverageInput builds the POST_DSM manager input.
func (c managerContext) postCoverageInput(history []pkg.Message) string {
	var b strings.Builder
	c.personaBlock(&b)
	fmt.Fprintf(&b, "Patient background: %s\nPatient risk summary: %s\n\n", c.summary.Background, c.summary.Risk)
	c.profileBlock(&b)
	fmt.Fprintf(&b, "Conversation so far:\n%s\n\n\nTask: Decide next_action and output JSON only.", FormatConversation(history))
	return b.String()
}

// forcedInput builds the FORCE_DSM manager input for a fixed key.
func (c managerContext) forcedInput(key, lastPatient string) string {
	var b strings.Builder
	c.personaBlock(&b)
	fmt.Fprintf(&b, "Patient background: %s\n\n", c.summary.Background)
	fmt.Fprintf(&b, "Patient profile:\ntemplate_id: %s\ntrust: %s\nverbosity: %s\n\n",
		c.profile.TemplateID, c.profile.VoiceStyle.Trust, c.profile.VoiceStyle.Verbosity)
	fmt.Fprintf(&b, "Required DSM symptom key to ask about: %s\n\n", key)
	fmt.Fprintf(&b, "Last patient message:\n%s\n\n", lastPatient)
	fmt.Fprintf(&b, "Task: Provide guidance for how this doctor would smoothly transition to asking about %s. Output JSON only.", key)
	return b.String()
}

// PatientManagerInput builds the patient guidance input.
func PatientManagerInput(p *pkg.PatientProfile, stage pkg.DisclosureStage, move pkg.Action, history []pkg.Message, doctorMsg string) string {
	var b strings.Builder
	v := p.VoiceStyle
	fmt.Fprintf(&b, "Patient profile:\ntemplate_id: %s\n", p.TemplateID)
	fmt.Fprintf(&b, "voice_style: trust=%s, verbosity=%s, expressiveness=%s, intellect=%s\n", v.Trust, v.Verbosity, v.Expressiveness, v.Intellect)
	fmt.Fprintf(&b, "pacing: %s\nepisode_density: %s\nmodifiers: %s\nemphasized_symptoms: %s\n\n",
		p.Pacing, p.EpisodeDensity, listString(p.Modifiers), listString(p.EmphasizedSymptoms))
	fmt.Fprintf(&b, "Current disclosure_state: %s\n\n", stage)
	b.WriteString("Depression profile (DSM symptoms):\n")
	for _, sym := range catalog.DSMItems {
		if f, ok := p.SymptomFrequency[sym]; ok {
			fmt.Fprintf(&b, "%s: %s\n", sym, f)
		}
	}
	fmt.Fprintf(&b, "\nDoctor last move type: %s\n\n", move)
	fmt.Fprintf(&b, "Full conversation so far:\n%s\n\n", FormatConversation(history))
	fmt.Fprintf(&b, "Doctor last message to respond to:\n%s\n\n", doctorMsg)
	b.WriteString("Task:\nDecide how the patient should respond next and output JSON only.")
	return b.String()
}

// DoctorTurnInput wraps the manager instruction for the doctor speaker.
func DoctorTurnInput(patientReply string, action pkg.Action, instruction string) string {
	tag := TagFollowUp
	switch action {
	case pkg.ActionDSM:
		tag = TagNextQuestion
	case pkg.ActionRapport:
		tag = TagRapport
	}
	return fmt.Sprintf("Patient just said:\n\"%s\"\n\n<%s>\n%s\n</%s>", patientReply, tag, instruction, tag)
}

// PatientTurnInput wraps the guidance and doctor message for the patient
// speaker.
func PatientTurnInput(g pkg.PatientGuidance, doctorMsg string) string {
	var b strings.Builder
	b.WriteString("PATIENT_GUIDANCE:\n")
	fmt.Fprintf(&b, "directness: %s\n", g.Directness)
	fmt.Fprintf(&b, "disclosure_stage: %s\n", g.DisclosureStage)
	fmt.Fprintf(&b, "target_length: %s\n", g.TargetLength)
	fmt.Fprintf(&b, "emotional_state: %s\n", g.EmotionalState)
	fmt.Fprintf(&b, "tone_tags: %s\n", strings.Join(g.ToneTags, ", "))
	fmt.Fprintf(&b, "key_points_to_reveal: %s\n", strings.Join(g.KeyPointsToReveal, "; "))
	fmt.Fprintf(&b, "key_points_to_avoid: %s\n", strings.Join(g.KeyPointsToAvoid, "; "))
	fmt.Fprintf(&b, "instruction: %s\n\n", g.PatientInstruction)
	fmt.Fprintf(&b, "DOCTOR_MESSAGE:\n%s", doctorMsg)
	return b.String()
}

// FormatConversation renders the transcript as "Doctor: ..." / "Patient: ..."
// lines.
func FormatConversation(history []pkg.Message) string {
	lines := make([]string, len(history))
	for i, m := range history {
		speaker := "Patient"
		if m.Role == pkg.RoleDoctor {
			speaker = "Doctor"
		}
		lines[i] = speaker + ": " + m.Content
	}
	return strings.Join(lines, "\n")
}

func listString(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
