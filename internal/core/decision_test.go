package core

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"screening-datagen/internal/catalog"
	"screening-datagen/pkg"
)

func TestParseDecision(t *testing.T) {
	pool := []string{catalog.Sleep, catalog.Fatigue}
	tests := []struct {
		name         string
		mode         Mode
		output       string
		wantAction   pkg.Action
		wantKey      string
		wantInstr    string
		wantFallback bool
	}{
		{
			name:       "valid dsm",
			mode:       ModeNormal,
			output:     `{"next_action":"DSM","reason":"r","doctor_instruction":"ask gently","dsm_symptom_key":"Fatigue or loss of energy"}`,
			wantAction: pkg.ActionDSM, wantKey: catalog.Fatigue, wantInstr: "ask gently",
		},
		{
			name:       "fenced follow up",
			mode:       ModeLowTurns,
			output:     "```json\n{\"next_action\":\"FOLLOW_UP\",\"dsm_symptom_key\":\"Sleep disturbances\"}\n```",
			wantAction: pkg.ActionFollowUp, wantInstr: defaultFollowUpGuidance,
		},
		{
			name:       "missing action defaults to dsm",
			mode:       ModeNormal,
			output:     `{"dsm_symptom_key":"Sleep disturbances"}`,
			wantAction: pkg.ActionDSM, wantKey: catalog.Sleep, wantInstr: "Transition naturally to asking about Sleep disturbances.",
		},
		{
			name:       "rapport default instruction",
			mode:       ModeNormal,
			output:     `{"next_action":"RAPPORT"}`,
			wantAction: pkg.ActionRapport, wantInstr: "Connect with the patient as a person.",
		},
		{
			name:       "post rapport default instruction",
			mode:       ModePostDSM,
			output:     `{"next_action":"RAPPORT"}`,
			wantAction: pkg.ActionRapport, wantInstr: "Respond with empathy.",
		},
		{
			name:       "post missing action ends",
			mode:       ModePostDSM,
			output:     `{"reason":"done"}`,
			wantAction: pkg.ActionEnd, wantInstr: defaultWrapUpGuidance,
		},
		{
			name:       "end not allowed in normal mode",
			mode:       ModeNormal,
			output:     `{"next_action":"END"}`,
			wantAction: pkg.ActionDSM, wantFallback: true,
		},
		{
			name:       "unknown action",
			mode:       ModeNormal,
			output:     `{"next_action":"DIAGNOSE"}`,
			wantAction: pkg.ActionDSM, wantFallback: true,
		},
		{
			name:       "garbage in post mode",
			mode:       ModePostDSM,
			output:     "sure, let's wrap up",
			wantAction: pkg.ActionEnd, wantInstr: defaultWrapUpGuidance, wantFallback: true,
		},
		{
			name:       "force pins key",
			mode:       ModeForceDSM,
			output:     `{"next_action":"FOLLOW_UP","doctor_instruction":"bridge","dsm_symptom_key":"Fatigue or loss of energy"}`,
			wantAction: pkg.ActionDSM, wantKey: catalog.Sleep, wantInstr: "bridge",
		},
		{
			name:       "force garbage",
			mode:       ModeForceDSM,
			output:     "{",
			wantAction: pkg.ActionDSM, wantKey: catalog.Sleep, wantInstr: "Ask about Sleep disturbances in a natural, conversational way.", wantFallback: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseDecision(tt.mode, tt.output, pool, rand.New(rand.NewSource(1)))
			if d.NextAction != tt.wantAction {
				t.Fatalf("expected action %s, got %s", tt.wantAction, d.NextAction)
			}
			if d.Fallback != tt.wantFallback {
				t.Fatalf("expected fallback=%v, got %v (%s)", tt.wantFallback, d.Fallback, d.Reason)
			}
			if tt.wantKey != "" && d.DSMSymptomKey != tt.wantKey {
				t.Fatalf("expected key %q, got %q", tt.wantKey, d.DSMSymptomKey)
			}
			if tt.wantInstr != "" && d.DoctorInstruction != tt.wantInstr {
				t.Fatalf("expected instruction %q, got %q", tt.wantInstr, d.DoctorInstruction)
			}
			if d.Mode != tt.mode.String() {
				t.Fatalf("expected mode %s, got %s", tt.mode, d.Mode)
			}
		})
	}
}

func TestFallbackDecisionDrawsFromPool(t *testing.T) {
	pool := []string{catalog.Sleep, catalog.Fatigue, catalog.Concentration}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		d := FallbackDecision(ModeNormal, pool, rng)
		if d.NextAction != pkg.ActionDSM || d.Reason != ReasonInvalidFallback {
			t.Fatalf("unexpected fallback %+v", d)
		}
		if indexOf(pool, d.DSMSymptomKey) < 0 {
			t.Fatalf("fallback key %q not in pool", d.DSMSymptomKey)
		}
		if d.DoctorInstruction != "Ask about "+d.DSMSymptomKey+"." {
			t.Fatalf("unexpected instruction %q", d.DoctorInstruction)
		}
	}
	d := FallbackDecision(ModeNormal, nil, rng)
	if d.NextAction != pkg.ActionFollowUp || d.Reason != ReasonFollowUpFallback {
		t.Fatalf("expected follow-up fallback for empty pool, got %+v", d)
	}
}

func TestInitialDisclosure(t *testing.T) {
	tests := []struct {
		trust, verbosity string
		want             pkg.DisclosureStage
	}{
		{"guarded", "detailed", pkg.DisclosureMinimize},
		{"open", "terse", pkg.DisclosureMinimize},
		{"open", "moderate", pkg.DisclosureOpen},
		{"open", "detailed", pkg.DisclosureOpen},
		{"neutral", "detailed", pkg.DisclosurePartial},
	}
	for _, tt := range tests {
		got := InitialDisclosure(pkg.VoiceStyle{Trust: tt.trust, Verbosity: tt.verbosity})
		if got != tt.want {
			t.Errorf("InitialDisclosure(%s, %s) = %s, want %s", tt.trust, tt.verbosity, got, tt.want)
		}
	}
}

func TestParseGuidance(t *testing.T) {
	v := pkg.VoiceStyle{Trust: "guarded", Verbosity: "terse"}

	g, ok := ParseGuidance("nonsense", v, pkg.DisclosurePartial)
	if ok {
		t.Fatal("expected invalid output to report !ok")
	}
	if g.Directness != "LOW" || g.TargetLength != "SHORT" || g.DisclosureStage != pkg.DisclosurePartial {
		t.Fatalf("unexpected defaults %+v", g)
	}
	if g.EmotionalState != "neutral" || len(g.ToneTags) != 1 || g.ToneTags[0] != "cooperative" {
		t.Fatalf("unexpected default tone %+v", g)
	}

	g, ok = ParseGuidance(`{"disclosure_stage":"OVERSHARE","target_length":"LONG","tone_tags":["wry"]}`, v, pkg.DisclosureMinimize)
	if !ok {
		t.Fatal("expected valid output")
	}
	if g.DisclosureStage != pkg.DisclosureMinimize {
		t.Fatalf("expected invalid stage to keep current, got %s", g.DisclosureStage)
	}
	if g.TargetLength != "LONG" || g.ToneTags[0] != "wry" || g.Directness != "LOW" {
		t.Fatalf("unexpected merge %+v", g)
	}

	g, _ = ParseGuidance(`{"disclosure_stage":"OPEN"}`, v, pkg.DisclosureMinimize)
	if g.DisclosureStage != pkg.DisclosureOpen {
		t.Fatalf("expected OPEN, got %s", g.DisclosureStage)
	}
}

func TestDoctorTurnInput(t *testing.T) {
	got := DoctorTurnInput("I'm tired", pkg.ActionDSM, "Ask about sleep.")
	want := "Patient just said:\n\"I'm tired\"\n\n<NEXT_QUESTION>\nAsk about sleep.\n</NEXT_QUESTION>"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if !strings.Contains(DoctorTurnInput("x", pkg.ActionRapport, "y"), "<RAPPORT>") {
		t.Fatal("expected RAPPORT tag")
	}
	if !strings.Contains(DoctorTurnInput("x", pkg.ActionFollowUp, "y"), "<FOLLOW_UP>") {
		t.Fatal("expected FOLLOW_UP tag")
	}
}

var agentIDPattern = regexp.MustCompile(`^AGENT_[0-9a-f]{16}$`)

func TestAgentIDStable(t *testing.T) {
	p := &pkg.PatientProfile{
		TemplateID:          "NEUROTICISM_HIGH",
		Modifiers:           []string{"ruminative", "worry-prone"},
		ContextDomains:      []string{"health concern", "grief/bereavement"},
		EmphasizedIntensity: map[string]pkg.Level{catalog.DepressedMood: pkg.LevelHigh, catalog.Fatigue: pkg.LevelLow},
		SymptomFrequency:    map[string]pkg.Frequency{catalog.DepressedMood: pkg.FreqOften, catalog.Sleep: pkg.FreqNone},
	}
	ms := pkg.Microstyle{Warmth: "high", Directness: "low", Pacing: "med", Humor: "none", Animation: "reserved"}
	id := AgentID(p, "warm_validating", ms)
	if !agentIDPattern.MatchString(id) {
		t.Fatalf("unexpected agent id format %q", id)
	}

	reordered := *p
	reordered.Modifiers = []string{"worry-prone", "ruminative"}
	reordered.ContextDomains = []string{"grief/bereavement", "health concern"}
	if got := AgentID(&reordered, "warm_validating", ms); got != id {
		t.Fatalf("expected order-independent id, got %s vs %s", got, id)
	}
	if got := AgentID(p, "gentle_brisk", ms); got == id {
		t.Fatal("expected persona change to change the id")
	}
	ms.Humor = "dry"
	if got := AgentID(p, "warm_validating", ms); got == id {
		t.Fatal("expected microstyle change to change the id")
	}
}
