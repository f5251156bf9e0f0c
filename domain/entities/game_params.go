package entities

import "fmt"

const (
	// TierCount is the number of prize tiers per game. Index 0 is the
	// jackpot tier (pari-mutuel), indices 1-3 are fixed-prize tiers
	// that receive the jackpot on rolldown, index 4 is the free-play
	// credit tier which is never paid from the pool.
	TierCount = 5

	// TierJackpot is the top tier index.
	TierJackpot = 0

	// TierCredit is the non-monetary credit tier index.
	TierCredit = 4
)

// FeeTier maps a jackpot level to a house fee rate. The fee applies
// while the jackpot is below Threshold.
type FeeTier struct {
	Threshold int64
	FeeBps    int64
}

// GameParams holds the immutable configuration of one lottery game
// variant. A single engine serves every variant; only the parameters
// differ.
type GameParams struct {
	Game        string // unique game key, e.g. "classic"
	PickCount   int    // how many numbers are drawn
	NumberRange int    // numbers are drawn from [1, NumberRange]

	// TierNames label the tiers for display and audit records.
	TierNames [TierCount]string

	// FixedPrizes holds the nominal per-winner prize for tiers 1-3 and
	// the face value of the credit for tier 4. Entry 0 is unused; the
	// jackpot tier is always pari-mutuel.
	FixedPrizes [TierCount]int64

	// RolldownWeightsBps splits the jackpot across tiers 1-3 when a
	// rolldown triggers. Entries 1-3 must sum to 10000.
	RolldownWeightsBps [TierCount]int64

	SeedAmount int64 // jackpot reseed target after a win or rolldown
	SoftCap    int64 // rolldown becomes possible at this jackpot level
	HardCap    int64 // rolldown is forced at this jackpot level

	// FeeTiers is the house fee schedule by jackpot level, strictly
	// increasing thresholds. The last entry is the catch-all ceiling.
	FeeTiers []FeeTier

	// RolldownFeeBps is the flat fee charged while a rolldown is active.
	RolldownFeeBps int64

	// Ticket sale split applied to the net (post-fee) sale amount.
	// JackpotShareBps + ReserveShareBps + InsuranceShareBps == 10000.
	JackpotShareBps   int64
	ReserveShareBps   int64
	InsuranceShareBps int64
}

// Validate checks the structural invariants of the parameter set.
func (p *GameParams) Validate() error {
	if p.Game == "" {
		return fmt.Errorf("%w: empty game key", ErrInvalidGameParams)
	}
	if p.PickCount < 1 {
		return fmt.Errorf("%w: pick count %d", ErrInvalidGameParams, p.PickCount)
	}
	if p.NumberRange <= p.PickCount {
		return fmt.Errorf("%w: number range %d must exceed pick count %d",
			ErrInvalidGameParams, p.NumberRange, p.PickCount)
	}
	if p.NumberRange > 255 {
		return fmt.Errorf("%w: number range %d exceeds 255", ErrInvalidGameParams, p.NumberRange)
	}
	if p.SeedAmount < 0 || p.SeedAmount >= p.SoftCap {
		return fmt.Errorf("%w: seed amount %d must be in [0, soft cap)", ErrInvalidGameParams, p.SeedAmount)
	}
	if p.SoftCap >= p.HardCap {
		return fmt.Errorf("%w: soft cap %d must be below hard cap %d",
			ErrInvalidGameParams, p.SoftCap, p.HardCap)
	}

	var weightSum int64
	for i := 1; i < TierCredit; i++ {
		if p.RolldownWeightsBps[i] < 0 {
			return fmt.Errorf("%w: negative rolldown weight for tier %d", ErrInvalidGameParams, i)
		}
		weightSum += p.RolldownWeightsBps[i]
		if p.FixedPrizes[i] <= 0 {
			return fmt.Errorf("%w: tier %d needs a positive nominal prize", ErrInvalidGameParams, i)
		}
	}
	if weightSum != 10000 {
		return fmt.Errorf("%w: rolldown weights sum to %d, want 10000", ErrInvalidGameParams, weightSum)
	}

	if len(p.FeeTiers) == 0 {
		return fmt.Errorf("%w: empty fee tier table", ErrInvalidGameParams)
	}
	var prev int64 = -1
	for _, ft := range p.FeeTiers {
		if ft.Threshold <= prev {
			return fmt.Errorf("%w: fee tier thresholds must strictly increase", ErrInvalidGameParams)
		}
		if ft.FeeBps < 0 || ft.FeeBps > 10000 {
			return fmt.Errorf("%w: fee %d bps out of range", ErrInvalidGameParams, ft.FeeBps)
		}
		prev = ft.Threshold
	}
	if p.RolldownFeeBps < 0 || p.RolldownFeeBps > 10000 {
		return fmt.Errorf("%w: rolldown fee %d bps out of range", ErrInvalidGameParams, p.RolldownFeeBps)
	}

	if p.JackpotShareBps+p.ReserveShareBps+p.InsuranceShareBps != 10000 {
		return fmt.Errorf("%w: sale split must sum to 10000 bps", ErrInvalidGameParams)
	}
	return nil
}

// DefaultClassicParams returns the 6-of-46 main game configuration.
func DefaultClassicParams() *GameParams {
	return &GameParams{
		Game:        "classic",
		PickCount:   6,
		NumberRange: 46,
		TierNames: [TierCount]string{
			"Match 6", "Match 5", "Match 4", "Match 3", "Match 2",
		},
		FixedPrizes:        [TierCount]int64{0, 4000, 150, 5, 1},
		RolldownWeightsBps: [TierCount]int64{0, 2500, 3500, 4000, 0},
		SeedAmount:         500_000,
		SoftCap:            1_600_000_000_000,
		HardCap:            2_000_000_000_000,
		FeeTiers: []FeeTier{
			{Threshold: 1_000_000, FeeBps: 300},
			{Threshold: 100_000_000, FeeBps: 400},
			{Threshold: 1_600_000_000_000, FeeBps: 500},
			{Threshold: 2_000_000_000_000, FeeBps: 600},
		},
		RolldownFeeBps:    250,
		JackpotShareBps:   7000,
		ReserveShareBps:   2500,
		InsuranceShareBps: 500,
	}
}

// DefaultExpressParams returns the 5-of-35 high-frequency variant.
func DefaultExpressParams() *GameParams {
	return &GameParams{
		Game:        "express",
		PickCount:   5,
		NumberRange: 35,
		TierNames: [TierCount]string{
			"Match 5", "Match 4", "Match 3", "Match 2", "Match 1",
		},
		FixedPrizes:        [TierCount]int64{0, 500, 25, 2, 1},
		RolldownWeightsBps: [TierCount]int64{0, 2500, 3500, 4000, 0},
		SeedAmount:         50_000,
		SoftCap:            40_000_000_000,
		HardCap:            50_000_000_000,
		FeeTiers: []FeeTier{
			{Threshold: 100_000, FeeBps: 300},
			{Threshold: 10_000_000, FeeBps: 400},
			{Threshold: 40_000_000_000, FeeBps: 500},
			{Threshold: 50_000_000_000, FeeBps: 600},
		},
		RolldownFeeBps:    250,
		JackpotShareBps:   7000,
		ReserveShareBps:   2500,
		InsuranceShareBps: 500,
	}
}
