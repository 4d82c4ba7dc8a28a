package core

import (
	"testing"

	"screening-datagen/pkg"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		pacing, persona string
		want            pkg.TurnPlan
	}{
		{"med", "warm_validating", pkg.TurnPlan{TargetTurnsPerSymptom: 2.0, DSMTurnBudget: 18, MaxDoctorTurns: 24}},
		{"brisk", "neutral_efficient", pkg.TurnPlan{TargetTurnsPerSymptom: 1.5, DSMTurnBudget: 14, MaxDoctorTurns: 20}},
		{"slow", "gentle_brisk", pkg.TurnPlan{TargetTurnsPerSymptom: 2.5, DSMTurnBudget: 23, MaxDoctorTurns: 29}},
		{"slow", "trauma_informed_slow", pkg.TurnPlan{TargetTurnsPerSymptom: 3.0, DSMTurnBudget: 27, MaxDoctorTurns: 33}},
		{"med", "trauma_informed_slow", pkg.TurnPlan{TargetTurnsPerSymptom: 2.5, DSMTurnBudget: 23, MaxDoctorTurns: 29}},
		{"unknown", "warm_validating", pkg.TurnPlan{TargetTurnsPerSymptom: 2.0, DSMTurnBudget: 18, MaxDoctorTurns: 24}},
	}
	for _, tt := range tests {
		t.Run(tt.pacing+"/"+tt.persona, func(t *testing.T) {
			if got := Plan(tt.pacing, tt.persona); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestSelectMode(t *testing.T) {
	plan := Plan("med", "warm_validating") // 2.0 / 18 / 24
	tests := []struct {
		name      string
		elapsed   int
		remaining int
		want      Mode
	}{
		{"start", 0, 9, ModeNormal},
		{"on target", 2, 8, ModeNormal},
		{"behind target", 6, 7, ModeLowTurns},
		{"budget exhausted", 19, 3, ModeLowTurns},
		{"must force", 15, 9, ModeForceDSM},
		{"force at end", 23, 1, ModeForceDSM},
		{"covered", 12, 0, ModePostDSM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := SelectMode(plan, tt.elapsed, tt.remaining)
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRiskSummary(t *testing.T) {
	const mood, death = "Depressed mood", "Recurrent thoughts of death or suicide"
	tests := []struct {
		name string
		freq map[string]pkg.Frequency
		want string
	}{
		{"suicide some", map[string]pkg.Frequency{death: pkg.FreqSome}, RiskHigh},
		{"suicide often", map[string]pkg.Frequency{death: pkg.FreqOften, mood: pkg.FreqNone}, RiskHigh},
		{"mood often", map[string]pkg.Frequency{mood: pkg.FreqOften}, RiskModerate},
		{"suicide rare", map[string]pkg.Frequency{death: pkg.FreqRare, mood: pkg.FreqSome}, RiskModerate},
		{"mood some", map[string]pkg.Frequency{mood: pkg.FreqSome}, RiskMild},
		{"nothing", map[string]pkg.Frequency{}, RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RiskSummary(tt.freq); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBackgroundSummary(t *testing.T) {
	if got := BackgroundSummary(pkg.BackgroundTags{}); got != noBackground {
		t.Fatalf("expected %q, got %q", noBackground, got)
	}
	got := BackgroundSummary(pkg.BackgroundTags{LivingSituation: "alone", SupportLevel: "low support"})
	if got != "alone, low support" {
		t.Fatalf("unexpected summary %q", got)
	}
}
