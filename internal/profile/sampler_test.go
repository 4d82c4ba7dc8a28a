package profile

import (
	"math/rand"
	"reflect"
	"testing"

	"screening-datagen/internal/catalog"
	"screening-datagen/pkg"
)

func TestSampleDeterministicForSeed(t *testing.T) {
	a, err := NewSampler(rand.New(rand.NewSource(42))).Sample(Overrides{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewSampler(rand.New(rand.NewSource(42))).Sample(Overrides{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical profiles for the same seed\n%+v\n%+v", a, b)
	}
}

func TestSampleForcedNeuroticismHigh(t *testing.T) {
	s := NewSampler(rand.New(rand.NewSource(42)))
	p, err := s.Sample(Overrides{TemplateID: "NEUROTICISM_HIGH", EpisodeDensity: pkg.DensityHigh})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{catalog.DepressedMood, catalog.Fatigue, catalog.Worthlessness, catalog.Concentration}
	if !reflect.DeepEqual(p.EmphasizedSymptoms, want) {
		t.Fatalf("expected emphasized %v, got %v", want, p.EmphasizedSymptoms)
	}
	for _, sym := range want {
		if p.SymptomFrequency[sym] == pkg.FreqNone {
			t.Errorf("expected emphasized %q to be elevated, got NONE", sym)
		}
	}
	if len(p.SymptomFrequency) != catalog.NumDSMItems {
		t.Errorf("expected %d symptoms, got %d", catalog.NumDSMItems, len(p.SymptomFrequency))
	}
}

func TestEmphasizedSkewsHighUnderHighIntensity(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	intensity := map[string]pkg.Level{catalog.DepressedMood: pkg.LevelHigh}
	often := 0
	const n = 2000
	for i := 0; i < n; i++ {
		freq := FrequencyProfile(rng, []string{catalog.DepressedMood}, pkg.DensityMed, intensity, nil)
		switch freq[catalog.DepressedMood] {
		case pkg.FreqOften:
			often++
		case pkg.FreqSome:
		default:
			t.Fatalf("HIGH intensity must only yield SOME or OFTEN, got %s", freq[catalog.DepressedMood])
		}
	}
	if often < n*7/10 {
		t.Errorf("expected roughly 80%% OFTEN, got %d/%d", often, n)
	}
}

func TestDensityMonotonicity(t *testing.T) {
	densities := []pkg.Density{pkg.DensityUltraLow, pkg.DensityLow, pkg.DensityMed, pkg.DensityHigh}
	const n = 2000
	prev := -1.0
	for _, d := range densities {
		s := NewSampler(rand.New(rand.NewSource(5)))
		total := 0
		for i := 0; i < n; i++ {
			p, err := s.Sample(Overrides{TemplateID: "EXTRAVERSION_LOW", EpisodeDensity: d})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			total += ElevatedCount(p.SymptomFrequency)
		}
		mean := float64(total) / n
		if mean < prev {
			t.Fatalf("expected non-decreasing elevated count, %s mean %.2f after %.2f", d, mean, prev)
		}
		prev = mean
	}
}

func TestUltraLowElevatesAtMostTwo(t *testing.T) {
	s := NewSampler(rand.New(rand.NewSource(8)))
	for i := 0; i < 500; i++ {
		p, err := s.Sample(Overrides{EpisodeDensity: pkg.DensityUltraLow})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := ElevatedCount(p.SymptomFrequency); got > 2 {
			t.Fatalf("expected at most 2 elevated symptoms, got %d", got)
		}
	}
}

func TestSampleInvariants(t *testing.T) {
	s := NewSampler(rand.New(rand.NewSource(99)))
	for i := 0; i < 500; i++ {
		p, err := s.Sample(Overrides{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.Modifiers) > 2 {
			t.Fatalf("expected at most 2 modifiers, got %v", p.Modifiers)
		}
		if len(p.ContextDomains) > catalog.MaxContextDomains {
			t.Fatalf("expected at most %d domains, got %v", catalog.MaxContextDomains, p.ContextDomains)
		}
		if n := len(p.PersonalBackground.Pairs()); n < 2 || n > 3 {
			t.Fatalf("expected 2-3 background tags, got %d", n)
		}
		if len(p.ExtraElevated) > 1 {
			t.Fatalf("expected at most one extra elevated symptom, got %v", p.ExtraElevated)
		}
		for _, sym := range p.ExtraElevated {
			if p.IsEmphasized(sym) {
				t.Fatalf("extra elevated %q overlaps emphasized set", sym)
			}
		}
		if len(p.EmphasizedIntensity) != len(p.EmphasizedSymptoms) {
			t.Fatalf("expected intensity for every emphasized symptom, got %v", p.EmphasizedIntensity)
		}
		if !catalog.Contains(catalog.AgeRanges, p.AgeRange) {
			t.Fatalf("unexpected age range %q", p.AgeRange)
		}
	}
}

func TestSampleBackgroundTagsKeepsDroppedRole(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	dropped := 0
	for i := 0; i < 200; i++ {
		tags, role := sampleBackgroundTags(rng)
		if !catalog.Contains(catalog.WorkRoles, role) {
			t.Fatalf("unexpected work role %q", role)
		}
		if tags.WorkRole == "" {
			dropped++
			continue
		}
		if tags.WorkRole != role {
			t.Fatalf("expected retained role %q, got %q", role, tags.WorkRole)
		}
	}
	if dropped == 0 {
		t.Fatal("expected the work role tag to be dropped at least once")
	}
}

// youngShare returns the share of profiles in the 16-19 bracket among
// those accepted by keep.
func youngShare(t *testing.T, seed int64, n int, o Overrides, keep func(*pkg.PatientProfile) bool) float64 {
	t.Helper()
	s := NewSampler(rand.New(rand.NewSource(seed)))
	total, young := 0, 0
	for i := 0; i < n; i++ {
		p, err := s.Sample(o)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !keep(p) {
			continue
		}
		total++
		if p.AgeRange == catalog.AgeRanges[0] {
			young++
		}
	}
	if total == 0 {
		t.Fatal("expected some profiles to be kept")
	}
	return float64(young) / float64(total)
}

func TestAgeFollowsDroppedWorkRole(t *testing.T) {
	// The role mixture puts about 11% in 16-19, the default table about 8%.
	got := youngShare(t, 7, 80000, Overrides{}, func(p *pkg.PatientProfile) bool {
		return p.PersonalBackground.WorkRole == ""
	})
	if got < 0.094 {
		t.Fatalf("expected age drawn from the sampled role mixture, got 16-19 share %.3f", got)
	}
}

func TestAgePinnedBackgroundDefaultsToEmployed(t *testing.T) {
	o := Overrides{PersonalBackground: &pkg.BackgroundTags{LivingSituation: "alone", SupportLevel: "low support"}}
	// Employed weights put about 3% in 16-19, the default table about 8%.
	got := youngShare(t, 11, 20000, o, func(*pkg.PatientProfile) bool { return true })
	if got > 0.05 {
		t.Fatalf("expected employed age weights, got 16-19 share %.3f", got)
	}
}

func TestVoicePartialOverride(t *testing.T) {
	s := NewSampler(rand.New(rand.NewSource(3)))
	p, err := s.Sample(Overrides{VoicePartial: map[string]string{"trust": "guarded", "verbosity": "terse"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.VoiceStyle.Trust != "guarded" || p.VoiceStyle.Verbosity != "terse" {
		t.Fatalf("expected partial override applied, got %+v", p.VoiceStyle)
	}
	if p.VoiceStyle.Intellect == "" || p.VoiceStyle.Humor == "" {
		t.Fatalf("expected unpinned dimensions sampled, got %+v", p.VoiceStyle)
	}
}

func TestOverridesValidate(t *testing.T) {
	tests := []struct {
		name    string
		o       Overrides
		wantErr bool
	}{
		{"empty", Overrides{}, false},
		{"known template", Overrides{TemplateID: "OPENNESS_LOW"}, false},
		{"unknown template", Overrides{TemplateID: "NOPE"}, true},
		{"bad density", Overrides{EpisodeDensity: "EXTREME"}, true},
		{"bad pacing", Overrides{Pacing: "FAST"}, true},
		{"bad age", Overrides{AgeRange: "10-12"}, true},
		{"bad voice dim", Overrides{VoicePartial: map[string]string{"charm": "high"}}, true},
		{"bad voice value", Overrides{VoicePartial: map[string]string{"trust": "total"}}, true},
		{"extra overlaps emphasized", Overrides{TemplateID: "OPENNESS_LOW", ExtraElevated: []string{catalog.Sleep}}, true},
		{"extra disjoint", Overrides{TemplateID: "OPENNESS_LOW", ExtraElevated: []string{catalog.DepressedMood}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.o.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSampleRejectsOverlapWithSampledTemplate(t *testing.T) {
	// Fatigue is emphasized by five templates, so some seed will hit one.
	for seed := int64(0); seed < 50; seed++ {
		s := NewSampler(rand.New(rand.NewSource(seed)))
		_, err := s.Sample(Overrides{ExtraElevated: []string{catalog.Fatigue}})
		if err != nil {
			return
		}
	}
	t.Fatal("expected an overlap error for at least one sampled template")
}
