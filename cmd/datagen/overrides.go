package main

import (
	"github.com/spf13/cobra"

	"screening-datagen/internal/profile"
	"screening-datagen/pkg"
)

// addOverrideFlags registers the profile forcing flags on cmd.
func addOverrideFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("template", "", "Force the personality template id")
	f.String("density", "", "Force the episode density: ULTRA_LOW, LOW, MED or HIGH")
	f.String("age", "", "Force the age range")
	f.String("trust", "", "Force voice trust: guarded, neutral or open")
	f.String("verbosity", "", "Force voice verbosity: terse, moderate or detailed")
	f.String("expressiveness", "", "Force voice expressiveness: flat, balanced or intense")
	f.StringSlice("modifiers", nil, "Force the template modifiers (comma-separated)")
}

// overridesFromFlags builds profile overrides from the flags that were set.
func overridesFromFlags(cmd *cobra.Command) profile.Overrides {
	f := cmd.Flags()
	var o profile.Overrides
	o.TemplateID, _ = f.GetString("template")
	density, _ := f.GetString("density")
	o.EpisodeDensity = pkg.Density(density)
	o.AgeRange, _ = f.GetString("age")
	if f.Changed("modifiers") {
		mods, _ := f.GetStringSlice("modifiers")
		o.Modifiers = append([]string{}, mods...)
	}
	for _, dim := range []string{"trust", "verbosity", "expressiveness"} {
		if v, _ := f.GetString(dim); v != "" {
			if o.VoicePartial == nil {
				o.VoicePartial = map[string]string{}
			}
			o.VoicePartial[dim] = v
		}
	}
	return o
}
