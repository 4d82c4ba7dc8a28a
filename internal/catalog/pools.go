package catalog

import "screening-datagen/pkg"

// PacingLevels are the patient elaboration levels.
var PacingLevels = []pkg.Level{pkg.LevelLow, pkg.LevelMed, pkg.LevelHigh}

// IntensityLevels and IntensityWeights drive per-emphasized-symptom intensity.
var (
	IntensityLevels  = []pkg.Level{pkg.LevelLow, pkg.LevelMed, pkg.LevelHigh}
	IntensityWeights = []float64{3, 5, 2}
)

// DensityLevels and DensityWeights drive episode density (about 10/25/45/20%).
var (
	DensityLevels  = []pkg.Density{pkg.DensityUltraLow, pkg.DensityLow, pkg.DensityMed, pkg.DensityHigh}
	DensityWeights = []float64{1, 2.5, 4.5, 2}
)

// ContextDomains is the shared life-stressor vocabulary.
var ContextDomains = []string{
	"work/role strain",
	"relationships strain",
	"health concern",
	"self-worth/identity strain",
	"general stress/no clear trigger",
	"major life transition",
	"grief/bereavement",
}

// MaxContextDomains bounds how many domains a profile carries.
const MaxContextDomains = 2

// Voice style options. Humor is weighted separately.
var (
	Verbosity      = []string{"terse", "moderate", "detailed"}
	Expressiveness = []string{"flat", "balanced", "intense"}
	Trust          = []string{"guarded", "neutral", "open"}
	Intellect      = []string{"low-functioning", "moderate-functioning", "high-functioning"}
	PatientHumor   = []string{"none", "occasional", "frequent"}
	HumorWeights   = []float64{6, 3, 1}
)

// Personal background pools.
var (
	LivingSituations   = []string{"alone", "with partner", "with family", "shared housing"}
	WorkRoles          = []string{"employed", "student", "caregiving role", "between roles"}
	RoutineStabilities = []string{"stable routine", "variable routine"}
	SupportLevels      = []string{"low support", "moderate support", "high support"}
)

// AgeRanges are the nine age brackets.
var AgeRanges = []string{"16-19", "20-24", "25-29", "30-34", "35-39", "40-49", "50-59", "60-69", "70-80"}

// AgeDefaultWeights apply to a work role outside AgeWeightsByRole.
var AgeDefaultWeights = []float64{1, 2, 2.5, 2, 1.5, 1.5, 1, 0.8, 0.5}

// AgeWeightsByRole conditions the age bracket on the work role.
var AgeWeightsByRole = map[string][]float64{
	"student":         {4, 5, 3, 1, 0.5, 0.3, 0.2, 0.1, 0.05},
	"employed":        {0.5, 2, 3, 3, 3, 2.5, 2, 1, 0.3},
	"caregiving role": {0.1, 0.3, 0.8, 1.5, 2.5, 3, 3, 2.5, 2},
	"between roles":   {1.5, 2, 2.5, 2, 1.5, 1, 0.8, 0.6, 0.4},
}

// AgeWeights returns the bracket weights for a work role.
func AgeWeights(role string) []float64 {
	if w, ok := AgeWeightsByRole[role]; ok {
		return w
	}
	return AgeDefaultWeights
}

// Contains reports whether v is present in pool.
func Contains(pool []string, v string) bool {
	for _, p := range pool {
		if p == v {
			return true
		}
	}
	return false
}
