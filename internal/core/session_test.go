package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"screening-datagen/internal/catalog"
	"screening-datagen/internal/llm"
	"screening-datagen/internal/logger"
	"screening-datagen/internal/persona"
	"screening-datagen/internal/profile"
	"screening-datagen/pkg"
)

var decisionPrompts = map[string]bool{
	DoctorManagerNormalPrompt:   true,
	DoctorManagerLowTurnsPrompt: true,
	DoctorManagerForceDSMPrompt: true,
	DoctorManagerPostDSMPrompt:  true,
}

// scripted routes calls by system prompt: decide answers doctor manager
// calls, everything else gets a canned reply.
func scripted(decide func(system, input string) string) llm.Client {
	return llm.ClientFunc(func(ctx context.Context, req llm.Request) (llm.Completion, error) {
		usage := llm.Usage{InputTokens: 3, OutputTokens: 2, TotalTokens: 5}
		switch {
		case decisionPrompts[req.System]:
			return llm.Completion{Text: decide(req.System, req.Input), Usage: usage}, nil
		case req.System == PatientManagerPrompt:
			return llm.Completion{Text: `{"directness":"MED","disclosure_stage":"PARTIAL","target_length":"SHORT","patient_instruction":"answer briefly"}`, Usage: usage}, nil
		default:
			return llm.Completion{Text: "line", Usage: usage}, nil
		}
	})
}

// firstPoolKey extracts the first listed DSM key from a decision input.
func firstPoolKey(input string) string {
	_, rest, ok := strings.Cut(input, "DSM symptom keys:\n- ")
	if !ok {
		return ""
	}
	key, _, _ := strings.Cut(rest, "\n")
	return key
}

func testInput(t *testing.T, seed int64, o profile.Overrides, personaID, pacing string) SessionInput {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	p, err := profile.NewSampler(rng).Sample(o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pr, _ := persona.Lookup(personaID)
	ms := persona.SampleMicrostyle(rng)
	ms.Pacing = pacing
	return SessionInput{Seed: seed, Rng: rng, Profile: p, Persona: pr, Microstyle: ms}
}

func assertCoverage(t *testing.T, rec *pkg.SessionRecord) {
	t.Helper()
	if len(rec.AskedOrder) != catalog.NumDSMItems {
		t.Fatalf("expected %d asked items, got %d: %v", catalog.NumDSMItems, len(rec.AskedOrder), rec.AskedOrder)
	}
	got := append([]string(nil), rec.AskedOrder...)
	want := append([]string(nil), catalog.DSMItems...)
	sort.Strings(got)
	sort.Strings(want)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected every DSM item exactly once, got %v", rec.AskedOrder)
		}
	}
	if rec.DoctorTurns > rec.Plan.MaxDoctorTurns {
		t.Fatalf("doctor turns %d exceed budget %d", rec.DoctorTurns, rec.Plan.MaxDoctorTurns)
	}
	if last := rec.Transcript[len(rec.Transcript)-1]; last.Role != pkg.RoleDoctor {
		t.Fatalf("expected transcript to end with the doctor, got %+v", last)
	}
}

func TestRunCoversAllItemsWithGarbageManager(t *testing.T) {
	client := scripted(func(system, input string) string { return "I think we should talk about feelings" })
	e := NewEngine(client, DefaultParams(), logger.Discard())
	rec, err := e.Run(context.Background(), testInput(t, 1, profile.Overrides{}, "warm_validating", "med"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertCoverage(t, rec)
	// Nine random fallbacks, then a post-coverage fallback to END.
	if rec.DoctorTurns != catalog.NumDSMItems+1 {
		t.Fatalf("expected %d doctor turns, got %d", catalog.NumDSMItems+1, rec.DoctorTurns)
	}
	if last := rec.Transcript[len(rec.Transcript)-1].Content; last != ClosingLine {
		t.Fatalf("expected closing line, got %q", last)
	}
	for _, d := range rec.DoctorDecisions {
		if !d.Fallback {
			t.Fatalf("expected every decision to be a fallback, got %+v", d)
		}
	}
}

func TestRunCoversAllItemsWhenEveryCallFails(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, req llm.Request) (llm.Completion, error) {
		return llm.Completion{}, errors.New("upstream unavailable")
	})
	e := NewEngine(client, DefaultParams(), logger.Discard())
	rec, err := e.Run(context.Background(), testInput(t, 2, profile.Overrides{}, "neutral_efficient", "brisk"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertCoverage(t, rec)
	for _, m := range rec.Transcript {
		if m.Role == pkg.RolePatient && m.Content != PatientFallbackLine {
			t.Fatalf("expected patient fallback line, got %q", m.Content)
		}
	}
	for _, tr := range rec.PromptTraces {
		if !strings.HasPrefix(tr.Output, "ERROR: ") {
			t.Fatalf("expected error recorded in trace, got %q", tr.Output)
		}
	}
}

func TestRunInvalidKeyFallsBackFIFO(t *testing.T) {
	client := scripted(func(system, input string) string {
		if system == DoctorManagerPostDSMPrompt {
			return `{"next_action":"END"}`
		}
		return `{"next_action":"DSM","dsm_symptom_key":"Hallucinations"}`
	})
	e := NewEngine(client, DefaultParams(), logger.Discard())
	rec, err := e.Run(context.Background(), testInput(t, 3, profile.Overrides{}, "warm_validating", "med"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertCoverage(t, rec)
	for i, key := range rec.AskedOrder {
		if key != catalog.DSMItems[i] {
			t.Fatalf("expected FIFO order, position %d got %q", i, key)
		}
	}
	d := rec.DoctorDecisions[0]
	if d.DoctorInstruction != "Ask about "+catalog.DSMItems[0]+" in a natural, conversational way." {
		t.Fatalf("unexpected instruction %q", d.DoctorInstruction)
	}
	for _, d := range rec.DoctorDecisions {
		if d.NextAction != pkg.ActionDSM || d.Mode == ModeForceDSM.String() {
			continue
		}
		if !d.Fallback || d.Reason != ReasonInvalidKeyFallback {
			t.Fatalf("expected out-of-pool key recorded as fallback, got %+v", d)
		}
	}
}

func TestRunForceDSMWhenManagerNeverAsks(t *testing.T) {
	client := scripted(func(system, input string) string {
		return `{"next_action":"FOLLOW_UP","doctor_instruction":"keep listening"}`
	})
	e := NewEngine(client, DefaultParams(), logger.Discard())
	rec, err := e.Run(context.Background(), testInput(t, 4, profile.Overrides{}, "warm_validating", "med"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertCoverage(t, rec)
	if rec.DoctorTurns != rec.Plan.MaxDoctorTurns {
		t.Fatalf("expected the whole budget of %d turns, got %d", rec.Plan.MaxDoctorTurns, rec.DoctorTurns)
	}
	forced := 0
	for _, d := range rec.DoctorDecisions {
		if d.Mode == ModeForceDSM.String() {
			forced++
		}
	}
	if forced != catalog.NumDSMItems {
		t.Fatalf("expected %d forced turns, got %d", catalog.NumDSMItems, forced)
	}
	if last := rec.Transcript[len(rec.Transcript)-1].Content; last != WrapUpLine {
		t.Fatalf("expected wrap-up line after the patient spoke last, got %q", last)
	}
}

func TestRunRecordsTracesAndUsage(t *testing.T) {
	client := scripted(func(system, input string) string {
		if system == DoctorManagerPostDSMPrompt {
			return `{"next_action":"END"}`
		}
		return fmt.Sprintf(`{"next_action":"DSM","dsm_symptom_key":%q}`, firstPoolKey(input))
	})
	e := NewEngine(client, DefaultParams(), logger.Discard())
	rec, err := e.Run(context.Background(), testInput(t, 5, profile.Overrides{}, "warm_validating", "med"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertCoverage(t, rec)
	if rec.Transcript[0].Role != pkg.RoleDoctor || rec.Transcript[0].Content != rec.Persona.Greeting {
		t.Fatalf("expected greeting first, got %+v", rec.Transcript[0])
	}
	if rec.PatientGuidance[0].DoctorMove != pkg.ActionRapport || rec.PatientGuidance[0].Turn != 0 {
		t.Fatalf("expected greeting guidance with RAPPORT at turn 0, got %+v", rec.PatientGuidance[0])
	}
	if rec.FinalDisclosure != pkg.DisclosurePartial {
		t.Fatalf("expected disclosure from guidance, got %s", rec.FinalDisclosure)
	}
	agents := map[string]int{}
	for _, tr := range rec.PromptTraces {
		agents[tr.Agent]++
	}
	for _, a := range []string{"doctor_manager_normal", "doctor_manager_post_dsm", PatientManagerAgent, UsageDoctor, UsagePatient} {
		if agents[a] == 0 {
			t.Fatalf("expected traces for %s, got %v", a, agents)
		}
	}
	for _, bucket := range []string{UsageDoctor, UsagePatient, UsageDoctorManager, UsagePatientManager} {
		if rec.TokenUsage[bucket].TotalTokens == 0 {
			t.Fatalf("expected usage for %s, got %+v", bucket, rec.TokenUsage)
		}
	}
	if !agentIDPattern.MatchString(rec.AgentID) || rec.RunID == "" {
		t.Fatalf("unexpected ids %q %q", rec.AgentID, rec.RunID)
	}
}

func TestRunBudgetBoundAcrossSeeds(t *testing.T) {
	for seed := int64(0); seed < 25; seed++ {
		chaos := rand.New(rand.NewSource(seed + 100))
		client := scripted(func(system, input string) string {
			if system == DoctorManagerPostDSMPrompt {
				if chaos.Intn(3) == 0 {
					return `{"next_action":"END"}`
				}
				return `{"next_action":"RAPPORT"}`
			}
			switch chaos.Intn(4) {
			case 0:
				return `{"next_action":"FOLLOW_UP"}`
			case 1:
				return `{"next_action":"RAPPORT"}`
			case 2:
				return `{"next_action":"DSM","dsm_symptom_key":"bogus"}`
			}
			return "not json"
		})
		e := NewEngine(client, DefaultParams(), logger.Discard())
		pacing := []string{"brisk", "med", "slow"}[seed%3]
		rec, err := e.Run(context.Background(), testInput(t, seed, profile.Overrides{}, "trauma_informed_slow", pacing))
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		assertCoverage(t, rec)
	}
}

func TestRunRandomParams(t *testing.T) {
	params := DefaultParams()
	params.RandomTemperature = true
	params.RandomMaxTokens = true
	e := NewEngine(scripted(func(string, string) string { return "" }), params, logger.Discard())
	rec, err := e.Run(context.Background(), testInput(t, 6, profile.Overrides{}, "warm_validating", "med"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cp := rec.CallParameters
	for _, temp := range []float64{cp.DoctorTemperature, cp.PatientTemperature} {
		if temp < 0.6 || temp > 1.4 {
			t.Fatalf("temperature %v out of range", temp)
		}
	}
	if cp.MaxTokens < 200 || cp.MaxTokens > 400 {
		t.Fatalf("max tokens %d out of range", cp.MaxTokens)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewEngine(scripted(func(string, string) string { return "" }), DefaultParams(), logger.Discard())
	if _, err := e.Run(ctx, testInput(t, 7, profile.Overrides{}, "warm_validating", "med")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type memorySink struct {
	saved []*pkg.SessionRecord
	fail  bool
}

func (m *memorySink) Save(ctx context.Context, rec *pkg.SessionRecord) (string, error) {
	if m.fail {
		return "", errors.New("disk full")
	}
	m.saved = append(m.saved, rec)
	return "mem://" + rec.AgentID, nil
}

func TestBatchSeed42NeuroticismHigh(t *testing.T) {
	client := scripted(func(system, input string) string {
		if system == DoctorManagerPostDSMPrompt {
			return `{"next_action":"END"}`
		}
		return fmt.Sprintf(`{"next_action":"DSM","dsm_symptom_key":%q}`, firstPoolKey(input))
	})
	sink := &memorySink{}
	b := NewBatch(NewEngine(client, DefaultParams(), logger.Discard()), nil, sink, logger.Discard())
	res, err := b.Run(context.Background(), BatchConfig{
		Sessions:  1,
		Seed:      42,
		Overrides: profile.Overrides{TemplateID: "NEUROTICISM_HIGH", EpisodeDensity: pkg.DensityHigh},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Records) != 1 || len(sink.saved) != 1 || res.Failed != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	rec := res.Records[0]
	assertCoverage(t, rec)
	if rec.DoctorTurns > 24 {
		t.Fatalf("expected at most 24 doctor turns, got %d", rec.DoctorTurns)
	}
	for _, sym := range []string{catalog.DepressedMood, catalog.Fatigue, catalog.Worthlessness, catalog.Concentration} {
		if rec.GroundTruth[sym] == pkg.FreqNone {
			t.Fatalf("expected emphasized %q elevated, got NONE", sym)
		}
	}
	if res.Locations[0] != "mem://"+rec.AgentID {
		t.Fatalf("unexpected location %q", res.Locations[0])
	}
}

func TestBatchDeterministic(t *testing.T) {
	run := func() []string {
		client := scripted(func(system, input string) string { return "garbage" })
		b := NewBatch(NewEngine(client, DefaultParams(), logger.Discard()), nil, nil, logger.Discard())
		res, err := b.Run(context.Background(), BatchConfig{Sessions: 3, Seed: 9})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var out []string
		for _, r := range res.Records {
			out = append(out, r.AgentID+":"+strings.Join(r.AskedOrder, ","))
		}
		return out
	}
	a, b := run(), run()
	if strings.Join(a, "|") != strings.Join(b, "|") {
		t.Fatalf("expected identical batches for the same seed\n%v\n%v", a, b)
	}
}

func TestBatchKeepsRecordWhenSaveFails(t *testing.T) {
	client := scripted(func(system, input string) string { return "garbage" })
	sink := &memorySink{fail: true}
	b := NewBatch(NewEngine(client, DefaultParams(), logger.Discard()), nil, sink, logger.Discard())
	res, err := b.Run(context.Background(), BatchConfig{Sessions: 2, Seed: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Records) != 2 || len(res.Errors) != 2 || len(res.Locations) != 0 {
		t.Fatalf("expected records kept and save errors reported, got %+v", res)
	}
}

func TestBatchRejectsInvalidOverrides(t *testing.T) {
	b := NewBatch(NewEngine(scripted(func(string, string) string { return "" }), DefaultParams(), logger.Discard()), nil, nil, logger.Discard())
	if _, err := b.Run(context.Background(), BatchConfig{Sessions: 1, Overrides: profile.Overrides{TemplateID: "NOPE"}}); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
