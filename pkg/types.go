package pkg

import "time"

// MessageRole describes who authored a transcript line.
type MessageRole string

const (
	RoleDoctor  MessageRole = "doctor"
	RolePatient MessageRole = "patient"
)

// Message is one transcript line.
type Message struct {
	Role    MessageRole `json:"speaker"`
	Content string      `json:"text"`
}

// DisclosureStage is the patient's current willingness to reveal symptom
// detail.
type DisclosureStage string

const (
	DisclosureMinimize DisclosureStage = "MINIMIZE"
	DisclosurePartial  DisclosureStage = "PARTIAL"
	DisclosureOpen     DisclosureStage = "OPEN"
)

// Valid reports whether s is one of the three known stages.
func (s DisclosureStage) Valid() bool {
	return s == DisclosureMinimize || s == DisclosurePartial || s == DisclosureOpen
}

// Action is a doctor move chosen by a decision step.
type Action string

const (
	ActionDSM      Action = "DSM"
	ActionFollowUp Action = "FOLLOW_UP"
	ActionRapport  Action = "RAPPORT"
	ActionEnd      Action = "END"
)

// DoctorDecision is one entry of the doctor decision trace.
type DoctorDecision struct {
	Turn              int    `json:"turn"`
	Mode              string `json:"manager_type"`
	NextAction        Action `json:"next_action"`
	Reason            string `json:"reason"`
	DoctorInstruction string `json:"doctor_instruction"`
	DSMSymptomKey     string `json:"dsm_symptom_key"`
	Fallback          bool   `json:"fallback,omitempty"`
}

// PatientGuidance is the structured output of the patient guidance step.
type PatientGuidance struct {
	Directness         string          `json:"directness"`
	DisclosureStage    DisclosureStage `json:"disclosure_stage"`
	TargetLength       string          `json:"target_length"`
	EmotionalState     string          `json:"emotional_state"`
	ToneTags           []string        `json:"tone_tags"`
	KeyPointsToReveal  []string        `json:"key_points_to_reveal"`
	KeyPointsToAvoid   []string        `json:"key_points_to_avoid"`
	PatientInstruction string          `json:"patient_instruction"`
}

// GuidanceTrace is one entry of the patient guidance trace.
type GuidanceTrace struct {
	Turn       int             `json:"turn"`
	DoctorMove Action          `json:"doctor_move"`
	Guidance   PatientGuidance `json:"guidance"`
	Fallback   bool            `json:"fallback,omitempty"`
}

// PromptTrace records a single LLM call for audit.
type PromptTrace struct {
	Agent        string `json:"agent"`
	TurnIndex    int    `json:"turn_index"`
	SystemPrompt string `json:"system_prompt"`
	Input        string `json:"input"`
	Output       string `json:"output"`
}

// TokenUsage accumulates token counts for one agent role.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add returns the sum of two usages.
func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
		TotalTokens:  u.TotalTokens + o.TotalTokens,
	}
}

// TurnPlan is the frozen turn budget of a session.
type TurnPlan struct {
	TargetTurnsPerSymptom float64 `json:"target_turns_per_symptom"`
	DSMTurnBudget         int     `json:"dsm_turn_budget"`
	MaxDoctorTurns        int     `json:"max_doctor_turns"`
}

// CallParameters records the generation settings used for a session.
type CallParameters struct {
	Provider           string  `json:"provider"`
	Model              string  `json:"model"`
	DoctorTemperature  float64 `json:"doctor_temperature"`
	PatientTemperature float64 `json:"patient_temperature"`
	MaxTokens          int     `json:"max_tokens"`
}

// SessionRecord is the immutable result of one generated session.
type SessionRecord struct {
	RunID           string                `json:"run_id"`
	AgentID         string                `json:"agent_id"`
	CreatedAt       time.Time             `json:"run_timestamp_utc"`
	Seed            int64                 `json:"seed"`
	Profile         PatientProfile        `json:"profile"`
	LifeBackground  *LifeBackground       `json:"life_background"`
	Persona         DoctorPersona         `json:"persona"`
	Microstyle      Microstyle            `json:"microstyle"`
	GroundTruth     map[string]Frequency  `json:"depression_profile_ground_truth"`
	Plan            TurnPlan              `json:"turn_plan"`
	AskedOrder      []string              `json:"asked_question_order"`
	DoctorDecisions []DoctorDecision      `json:"doctor_manager_decisions"`
	PatientGuidance []GuidanceTrace       `json:"patient_manager_decisions"`
	PromptTraces    []PromptTrace         `json:"prompt_traces"`
	FinalDisclosure DisclosureStage       `json:"final_disclosure_state"`
	DoctorTurns     int                   `json:"doctor_turns_elapsed"`
	Transcript      []Message             `json:"conversation"`
	TokenUsage      map[string]TokenUsage `json:"token_usage"`
	CallParameters  CallParameters        `json:"call_parameters"`
}

// SessionPreview is returned in record listings.
type SessionPreview struct {
	RunID      string    `json:"run_id"`
	AgentID    string    `json:"agent_id"`
	TemplateID string    `json:"template_id"`
	PersonaID  string    `json:"persona_id"`
	Turns      int       `json:"doctor_turns"`
	CreatedAt  time.Time `json:"created_at"`
}

// Preview summarises a record for listings.
func (r *SessionRecord) Preview() SessionPreview {
	return SessionPreview{
		RunID:      r.RunID,
		AgentID:    r.AgentID,
		TemplateID: r.Profile.TemplateID,
		PersonaID:  r.Persona.ID,
		Turns:      r.DoctorTurns,
		CreatedAt:  r.CreatedAt,
	}
}
