package combat

import "testing"

func TestComputeAccuracyClampedBounds(t *testing.T) {
	hits := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		if ComputeAccuracy(0, 1000, 1, 99) {
			hits++
		}
	}
	if rate := float64(hits) / trials; rate > minHitChance+0.05 {
		t.Fatalf("heavily outmatched attacker hit rate = %.3f, want near floor %.2f", rate, minHitChance)
	}

	hits = 0
	for i := 0; i < trials; i++ {
		if ComputeAccuracy(1000, 0, 99, 1) {
			hits++
		}
	}
	if rate := float64(hits) / trials; rate < maxHitChance-0.05 {
		t.Fatalf("heavily favored attacker hit rate = %.3f, want near ceiling %.2f", rate, maxHitChance)
	}
}

func TestComputeDamageCappedAtTargetHP(t *testing.T) {
	for i := 0; i < 50; i++ {
		if d := ComputeDamage(50, 40, 3); d > 3 {
			t.Fatalf("damage %d exceeds target HP cap 3", d)
		}
	}
}

func TestComputeDamageAtLeastOne(t *testing.T) {
	for i := 0; i < 50; i++ {
		if d := ComputeDamage(0, 0, 100); d < 1 {
			t.Fatalf("damage %d below minimum of 1", d)
		}
	}
}
