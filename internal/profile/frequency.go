package profile

import (
	"math/rand"

	"screening-datagen/internal/catalog"
	"screening-datagen/internal/draw"
	"screening-datagen/pkg"
)

var (
	lowIntensity  = weighted{[]pkg.Frequency{pkg.FreqRare, pkg.FreqSome, pkg.FreqOften}, []float64{5, 4, 1}}
	medIntensity  = weighted{[]pkg.Frequency{pkg.FreqSome, pkg.FreqOften, pkg.FreqRare}, []float64{5, 4, 1}}
	highIntensity = weighted{[]pkg.Frequency{pkg.FreqSome, pkg.FreqOften}, []float64{2, 8}}
	extraElevated = weighted{[]pkg.Frequency{pkg.FreqRare, pkg.FreqSome, pkg.FreqOften}, []float64{2, 5, 3}}
	ultraLowOther = weighted{[]pkg.Frequency{pkg.FreqRare, pkg.FreqSome, pkg.FreqOften}, []float64{5, 3, 2}}

	nonEmphasizedOptions = []pkg.Frequency{pkg.FreqNone, pkg.FreqRare, pkg.FreqSome}
	nonEmphasizedWeights = map[pkg.Density][]float64{
		pkg.DensityLow:  {7, 2, 1},
		pkg.DensityMed:  {5, 3, 2},
		pkg.DensityHigh: {3, 3, 4},
	}
)

type weighted struct {
	options []pkg.Frequency
	weights []float64
}

func (w weighted) draw(rng *rand.Rand) pkg.Frequency {
	return draw.Weighted(rng, w.options, w.weights)
}

func intensityTable(l pkg.Level) weighted {
	switch l {
	case pkg.LevelLow:
		return lowIntensity
	case pkg.LevelHigh:
		return highIntensity
	default:
		return medIntensity
	}
}

// FrequencyProfile maps all nine DSM items to a frequency. Emphasized items
// use their intensity table, extra-elevated items an intermediate table, and
// the remaining items a density-specific table over NONE/RARE/SOME.
// ULTRA_LOW density instead elevates at most two items, preferring emphasized
// ones, and forces everything else to NONE.
func FrequencyProfile(rng *rand.Rand, emphasized []string, density pkg.Density, intensity map[string]pkg.Level, extra []string) map[string]pkg.Frequency {
	out := make(map[string]pkg.Frequency, catalog.NumDSMItems)

	if density == pkg.DensityUltraLow {
		k := draw.Choice(rng, []int{0, 1, 2})
		pool := append([]string(nil), emphasized...)
		if k > len(pool) {
			pool = append(pool, nonEmphasized(emphasized)...)
		}
		for _, item := range catalog.DSMItems {
			out[item] = pkg.FreqNone
		}
		for _, sym := range draw.Sample(rng, pool, k) {
			if catalog.Contains(emphasized, sym) {
				out[sym] = intensityTable(intensity[sym]).draw(rng)
			} else {
				out[sym] = ultraLowOther.draw(rng)
			}
		}
		return out
	}

	weights, ok := nonEmphasizedWeights[density]
	if !ok {
		weights = nonEmphasizedWeights[pkg.DensityMed]
	}
	for _, item := range catalog.DSMItems {
		switch {
		case catalog.Contains(emphasized, item):
			out[item] = intensityTable(intensity[item]).draw(rng)
		case catalog.Contains(extra, item):
			out[item] = extraElevated.draw(rng)
		default:
			out[item] = draw.Weighted(rng, nonEmphasizedOptions, weights)
		}
	}
	return out
}

// ElevatedCount returns how many symptoms are above NONE.
func ElevatedCount(freq map[string]pkg.Frequency) int {
	n := 0
	for _, f := range freq {
		if f != pkg.FreqNone {
			n++
		}
	}
	return n
}
