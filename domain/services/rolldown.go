package services

import (
	"crypto/sha256"
	"encoding/binary"
)

// RolldownProbabilityBps maps the jackpot level to a rolldown trigger
// probability: zero below the soft cap, certain at or above the hard
// cap, linear in between.
func RolldownProbabilityBps(jackpot, softCap, hardCap int64) int64 {
	if jackpot < softCap {
		return 0
	}
	if jackpot >= hardCap {
		return 10000
	}
	return (jackpot - softCap) * 10000 / (hardCap - softCap)
}

// ShouldTriggerRolldown takes the rolldown coin flip from the draw
// entropy. The hash tag differs from the number generator's so the two
// decisions are statistically independent; observing one reveals
// nothing about the other.
func ShouldTriggerRolldown(entropy []byte, probabilityBps int64) bool {
	if probabilityBps >= 10000 {
		return true
	}
	if probabilityBps <= 0 {
		return false
	}
	h := sha256.New()
	h.Write([]byte(rolldownDecisionTag))
	h.Write(entropy)
	digest := h.Sum(nil)
	flip := int64(binary.BigEndian.Uint32(digest[:4]) % 10000)
	return flip < probabilityBps
}
