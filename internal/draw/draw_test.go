package draw

import (
	"math/rand"
	"testing"
)

func TestWeightedNeverPicksZeroWeight(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	items := []string{"a", "b", "c"}
	for i := 0; i < 1000; i++ {
		if got := Weighted(rng, items, []float64{1, 0, 1}); got == "b" {
			t.Fatalf("expected zero-weight item never drawn, got %q on draw %d", got, i)
		}
	}
}

func TestWeightedFollowsRatio(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	counts := map[string]int{}
	for i := 0; i < 10000; i++ {
		counts[Weighted(rng, []string{"x", "y"}, []float64{2, 8})]++
	}
	if counts["y"] < 7500 || counts["y"] > 8500 {
		t.Fatalf("expected about 8000 draws of y, got %d", counts["y"])
	}
}

func TestSampleDistinct(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	items := []int{1, 2, 3, 4, 5}
	for i := 0; i < 100; i++ {
		got := Sample(rng, items, 3)
		if len(got) != 3 {
			t.Fatalf("expected 3 items, got %d", len(got))
		}
		seen := map[int]bool{}
		for _, v := range got {
			if seen[v] {
				t.Fatalf("duplicate %d in %v", v, got)
			}
			seen[v] = true
		}
	}
	if got := Sample(rng, items, 10); len(got) != len(items) {
		t.Errorf("expected clamp to %d, got %d", len(items), len(got))
	}
	if items[0] != 1 || items[4] != 5 {
		t.Errorf("input slice was modified: %v", items)
	}
}

func TestIntBetween(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := IntBetween(rng, 5, 8)
		if v < 5 || v > 8 {
			t.Fatalf("value %d out of range", v)
		}
		seen[v] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected all of 5..8 to appear, got %v", seen)
	}
}
