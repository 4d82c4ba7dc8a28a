package core

import (
	"fmt"
	"math"
	"math/rand"

	"screening-datagen/internal/draw"
	"screening-datagen/internal/llm"
	"screening-datagen/pkg"
)

// Mode selects the doctor manager variant for a turn.
type Mode int

const (
	ModeNormal Mode = iota
	ModeLowTurns
	ModeForceDSM
	ModePostDSM
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeLowTurns:
		return "LOW_TURNS"
	case ModeForceDSM:
		return "FORCE_DSM"
	case ModePostDSM:
		return "POST_DSM"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Agent is the prompt-trace label of the mode's manager.
func (m Mode) Agent() string {
	switch m {
	case ModeLowTurns:
		return "doctor_manager_low_turns"
	case ModeForceDSM:
		return "doctor_manager_force_dsm"
	case ModePostDSM:
		return "doctor_manager_post_dsm"
	}
	return "doctor_manager_normal"
}

// SystemPrompt returns the mode's manager instructions.
func (m Mode) SystemPrompt() string {
	switch m {
	case ModeLowTurns:
		return DoctorManagerLowTurnsPrompt
	case ModeForceDSM:
		return DoctorManagerForceDSMPrompt
	case ModePostDSM:
		return DoctorManagerPostDSMPrompt
	}
	return DoctorManagerNormalPrompt
}

// Allowed lists the actions the mode's manager may choose.
func (m Mode) Allowed() []pkg.Action {
	switch m {
	case ModeForceDSM:
		return []pkg.Action{pkg.ActionDSM}
	case ModePostDSM:
		return []pkg.Action{pkg.ActionFollowUp, pkg.ActionRapport, pkg.ActionEnd}
	}
	return []pkg.Action{pkg.ActionFollowUp, pkg.ActionRapport, pkg.ActionDSM}
}

func (m Mode) allows(a pkg.Action) bool {
	for _, x := range m.Allowed() {
		if x == a {
			return true
		}
	}
	return false
}

// SelectMode picks the manager mode for the next doctor turn and reports
// the remaining-budget ratio used for the NORMAL/LOW_TURNS split.
func SelectMode(plan pkg.TurnPlan, elapsed, remainingItems int) (Mode, float64) {
	if remainingItems == 0 {
		return ModePostDSM, 0
	}
	if plan.MaxDoctorTurns-elapsed <= remainingItems {
		return ModeForceDSM, 0
	}
	ratio := math.Max(0, float64(plan.DSMTurnBudget-elapsed)) / float64(remainingItems)
	if ratio < plan.TargetTurnsPerSymptom {
		return ModeLowTurns, ratio
	}
	return ModeNormal, ratio
}

// Fallback reasons recorded in the decision trace.
const (
	ReasonInvalidFallback    = "Doctor manager returned invalid JSON, using fallback"
	ReasonFollowUpFallback   = "Doctor manager returned invalid JSON, using follow-up fallback"
	ReasonPostDSMFallback    = "Post-DSM manager returned invalid JSON, defaulting to END"
	ReasonForceDSMFallback   = "Force-DSM manager returned invalid JSON, using required key"
	ReasonInvalidKeyFallback = "Doctor manager chose a DSM key outside the remaining pool, using oldest pending item"
	defaultFollowUpGuidance  = "Follow up on what the patient just said."
	defaultWrapUpGuidance    = "Wrap up the visit warmly."
)

type rawDecision struct {
	NextAction        string `json:"next_action"`
	Reason            string `json:"reason"`
	DoctorInstruction string `json:"doctor_instruction"`
	DSMSymptomKey     string `json:"dsm_symptom_key"`
}

// ParseDecision turns manager output into a decision for mode. pool holds
// the uncovered items in FIFO order; for FORCE_DSM the key is always pool[0].
// Malformed output, an empty response or a disallowed action yields the
// mode's fallback, drawn from rng where a random item is needed.
func ParseDecision(mode Mode, output string, pool []string, rng *rand.Rand) pkg.DoctorDecision {
	var raw rawDecision
	if output == "" || llm.DecodeJSON(output, &raw) != nil {
		return FallbackDecision(mode, pool, rng)
	}

	action := pkg.Action(raw.NextAction)
	if action == "" {
		action = pkg.ActionDSM
		if mode == ModePostDSM {
			action = pkg.ActionEnd
		}
	}
	if mode == ModeForceDSM {
		action = pkg.ActionDSM
		raw.DSMSymptomKey = pool[0]
	}
	if !mode.allows(action) {
		return FallbackDecision(mode, pool, rng)
	}

	d := pkg.DoctorDecision{
		Mode:              mode.String(),
		NextAction:        action,
		Reason:            raw.Reason,
		DoctorInstruction: raw.DoctorInstruction,
	}
	if action == pkg.ActionDSM {
		d.DSMSymptomKey = raw.DSMSymptomKey
	}
	if d.DoctorInstruction == "" {
		d.DoctorInstruction = defaultInstruction(mode, action, d.DSMSymptomKey)
	}
	return d
}

// FallbackDecision is the decision used when a manager call fails or its
// output cannot be used.
func FallbackDecision(mode Mode, pool []string, rng *rand.Rand) pkg.DoctorDecision {
	d := pkg.DoctorDecision{Mode: mode.String(), Fallback: true}
	switch {
	case mode == ModePostDSM:
		d.NextAction = pkg.ActionEnd
		d.Reason = ReasonPostDSMFallback
		d.DoctorInstruction = defaultWrapUpGuidance
	case mode == ModeForceDSM && len(pool) > 0:
		d.NextAction = pkg.ActionDSM
		d.Reason = ReasonForceDSMFallback
		d.DSMSymptomKey = pool[0]
		d.DoctorInstruction = askNaturally(pool[0])
	case len(pool) > 0:
		key := draw.Choice(rng, pool)
		d.NextAction = pkg.ActionDSM
		d.Reason = ReasonInvalidFallback
		d.DSMSymptomKey = key
		d.DoctorInstruction = fmt.Sprintf("Ask about %s.", key)
	default:
		d.NextAction = pkg.ActionFollowUp
		d.Reason = ReasonFollowUpFallback
		d.DoctorInstruction = defaultFollowUpGuidance
	}
	return d
}

func defaultInstruction(mode Mode, action pkg.Action, key string) string {
	switch action {
	case pkg.ActionDSM:
		return fmt.Sprintf("Transition naturally to asking about %s.", key)
	case pkg.ActionRapport:
		if mode == ModePostDSM {
			return "Respond with empathy."
		}
		return "Connect with the patient as a person."
	case pkg.ActionEnd:
		return defaultWrapUpGuidance
	}
	return defaultFollowUpGuidance
}

func askNaturally(key string) string {
	return fmt.Sprintf("Ask about %s in a natural, conversational way.", key)
}
