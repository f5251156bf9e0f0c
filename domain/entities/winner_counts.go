package entities

import "fmt"

// WinnerCounts is the per-tier winner tally reported by the external
// ticket indexer. It is untrusted input: every bound is checked before
// any arithmetic consumes it. A ticket is credited at its single
// highest-matching tier only, so the tier counts can never sum past the
// ticket total.
type WinnerCounts []int64

// Validate rejects malformed or impossible counts.
func (w WinnerCounts) Validate(totalTickets int64) error {
	if len(w) != TierCount {
		return fmt.Errorf("%w: got %d tiers, want %d", ErrInvalidWinnerCounts, len(w), TierCount)
	}
	var sum int64
	for i, c := range w {
		if c < 0 {
			return fmt.Errorf("%w: tier %d count %d is negative", ErrInvalidWinnerCounts, i, c)
		}
		if c > totalTickets {
			return fmt.Errorf("%w: tier %d count %d exceeds %d tickets sold",
				ErrInvalidWinnerCounts, i, c, totalTickets)
		}
		sum += c
	}
	if sum > totalTickets {
		return fmt.Errorf("%w: counts sum to %d, only %d tickets sold",
			ErrInvalidWinnerCounts, sum, totalTickets)
	}
	return nil
}

// Sum returns the total number of winning tickets across all tiers.
func (w WinnerCounts) Sum() int64 {
	var sum int64
	for _, c := range w {
		sum += c
	}
	return sum
}
