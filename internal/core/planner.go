package core

import (
	"math"

	"screening-datagen/internal/catalog"
	"screening-datagen/internal/persona"
	"screening-datagen/pkg"
)

// BufferTurns leaves room for a natural wrap-up after coverage.
const BufferTurns = 5

const (
	defaultTarget   = 2.0
	extendedBonus   = 0.5
	maxTarget       = 3.0
	greetingReserve = 1
)

var pacingTargets = map[string]float64{
	"brisk": 1.5,
	"med":   2.0,
	"slow":  2.5,
}

// Plan derives the frozen turn budget from the doctor's microstyle pacing
// and persona.
func Plan(pacing, personaID string) pkg.TurnPlan {
	target, ok := pacingTargets[pacing]
	if !ok {
		target = defaultTarget
	}
	if persona.ExtendedPacing[personaID] {
		target = math.Min(target+extendedBonus, maxTarget)
	}
	budget := int(math.Ceil(target * catalog.NumDSMItems))
	return pkg.TurnPlan{
		TargetTurnsPerSymptom: target,
		DSMTurnBudget:         budget,
		MaxDoctorTurns:        budget + BufferTurns + greetingReserve,
	}
}
