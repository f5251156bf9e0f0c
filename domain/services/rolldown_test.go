package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolldownProbabilityBps(t *testing.T) {
	softCap := int64(1_600_000_000_000)
	hardCap := int64(2_000_000_000_000)

	tests := []struct {
		name    string
		jackpot int64
		want    int64
	}{
		{"well below soft cap", 1_000_000, 0},
		{"just below soft cap", softCap - 1, 0},
		{"exactly soft cap", softCap, 0},
		{"midpoint", (softCap + hardCap) / 2, 5000},
		{"quarter", softCap + (hardCap-softCap)/4, 2500},
		{"just below hard cap", hardCap - 1, 9999},
		{"exactly hard cap", hardCap, 10000},
		{"above hard cap", hardCap * 2, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RolldownProbabilityBps(tt.jackpot, softCap, hardCap))
		})
	}
}

func TestRolldownProbabilityBps_Monotonic(t *testing.T) {
	softCap := int64(1_000_000)
	hardCap := int64(2_000_000)

	prev := int64(-1)
	for jackpot := int64(900_000); jackpot <= 2_100_000; jackpot += 10_000 {
		p := RolldownProbabilityBps(jackpot, softCap, hardCap)
		assert.GreaterOrEqual(t, p, prev, "probability decreased at jackpot %d", jackpot)
		assert.GreaterOrEqual(t, p, int64(0))
		assert.LessOrEqual(t, p, int64(10000))
		prev = p
	}
}

func TestShouldTriggerRolldown_Extremes(t *testing.T) {
	entropy := testEntropy("flip")

	assert.False(t, ShouldTriggerRolldown(entropy, 0))
	assert.True(t, ShouldTriggerRolldown(entropy, 10000))

	// Certainty and impossibility hold regardless of entropy content
	assert.True(t, ShouldTriggerRolldown(nil, 10000))
	assert.False(t, ShouldTriggerRolldown(nil, 0))
}

func TestShouldTriggerRolldown_Deterministic(t *testing.T) {
	entropy := testEntropy("repeat")

	first := ShouldTriggerRolldown(entropy, 5000)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ShouldTriggerRolldown(entropy, 5000))
	}
}

func TestShouldTriggerRolldown_TracksProbability(t *testing.T) {
	// At 50% the trigger rate over many independent entropies should
	// sit near half; a large deviation means the flip is biased.
	triggered := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		if ShouldTriggerRolldown(testEntropy(fmt.Sprintf("trial-%d", i)), 5000) {
			triggered++
		}
	}

	assert.Greater(t, triggered, trials*4/10)
	assert.Less(t, triggered, trials*6/10)
}

func TestShouldTriggerRolldown_MonotoneInProbability(t *testing.T) {
	// For a fixed entropy the decision flips from false to true at most
	// once as the probability rises.
	entropy := testEntropy("threshold")

	wasTriggered := false
	for p := int64(0); p <= 10000; p += 100 {
		got := ShouldTriggerRolldown(entropy, p)
		if wasTriggered {
			assert.True(t, got, "decision reversed at probability %d", p)
		}
		wasTriggered = got
	}
}
