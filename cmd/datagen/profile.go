package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"screening-datagen/internal/profile"
	"screening-datagen/pkg"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Sample patient profiles without calling the LLM",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		count, _ := f.GetInt("count")
		seed, _ := f.GetInt64("seed")
		if !f.Changed("seed") {
			seed = time.Now().UnixNano()
		}
		sampler := profile.NewSampler(rand.New(rand.NewSource(seed)))
		o := overridesFromFlags(cmd)

		out := struct {
			Seed     int64                 `json:"seed"`
			Profiles []*pkg.PatientProfile `json:"profiles"`
		}{Seed: seed}
		for i := 0; i < count; i++ {
			p, err := sampler.Sample(o)
			if err != nil {
				return fmt.Errorf("failed to sample profile: %w", err)
			}
			out.Profiles = append(out.Profiles, p)
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	profileCmd.Flags().Int("count", 1, "Number of profiles to sample")
	profileCmd.Flags().Int64("seed", 0, "Random seed (defaults to the current time)")
	addOverrideFlags(profileCmd)
}
