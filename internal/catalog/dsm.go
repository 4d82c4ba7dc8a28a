// Package catalog holds the fixed clinical vocabulary used to sample patients:
// DSM screening items, personality templates, background pools and life
// facet categories.
package catalog

import "screening-datagen/pkg"

const (
	DepressedMood   = "Depressed mood"
	LossOfInterest  = "Loss of interest or pleasure"
	WeightAppetite  = "Significant weight/appetite changes"
	Sleep           = "Sleep disturbances"
	Psychomotor     = "Psychomotor agitation or retardation"
	Fatigue         = "Fatigue or loss of energy"
	Worthlessness   = "Feelings of worthlessness or excessive guilt"
	Concentration   = "Difficulty concentrating or indecisiveness"
	ThoughtsOfDeath = "Recurrent thoughts of death or suicide"
)

// NumDSMItems is the number of screening items covered once per session.
const NumDSMItems = 9

// DSMItems lists the screening items in canonical order.
var DSMItems = []string{
	DepressedMood,
	LossOfInterest,
	WeightAppetite,
	Sleep,
	Psychomotor,
	Fatigue,
	Worthlessness,
	Concentration,
	ThoughtsOfDeath,
}

// FrequencyLabels maps each frequency to its 14-day description.
var FrequencyLabels = map[pkg.Frequency]string{
	pkg.FreqNone:  "Not at all",
	pkg.FreqRare:  "One or two days",
	pkg.FreqSome:  "Three to five days",
	pkg.FreqOften: "Six to ten days",
}

// IsDSMItem reports whether key is one of the nine screening items.
func IsDSMItem(key string) bool {
	for _, item := range DSMItems {
		if item == key {
			return true
		}
	}
	return false
}
