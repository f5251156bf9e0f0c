package services

import (
	"fmt"

	"drawhouse/domain/entities"
	"drawhouse/domain/utils"
)

// SettlementInput is everything the prize calculation needs: validated
// winner counts, the treasury balances as of the draw, and the rolldown
// decision taken at reveal.
type SettlementInput struct {
	Params    *entities.GameParams
	Jackpot   int64
	Reserve   int64
	Insurance int64
	Rolldown  bool
	Counts    entities.WinnerCounts
}

// SettlementOutcome is the pure result of the prize calculation: the
// per-tier prizes and the treasury balances after all payouts, dust
// crediting, insurance drawdown, and reseeding. The caller applies it
// to the ledger transactionally.
type SettlementOutcome struct {
	PrizePerWinner   []int64
	TotalDistributed int64

	// ScaleBps is 10000 when every fixed tier paid its full nominal
	// prize, lower when funds forced proportional scaling.
	ScaleBps int64

	// Payout sourcing by bucket; the sum equals TotalDistributed.
	JackpotPaid       int64
	ReservePaid       int64
	InsuranceDrawdown int64

	Dust     int64
	Reseeded bool

	Jackpot   int64
	Reserve   int64
	Insurance int64

	HouseFeeBps int64
}

// CalculateSettlement turns winner counts and treasury balances into
// per-tier payouts and updated balances. Pure: no I/O, no clock, no
// randomness. Any arithmetic overflow or unresolvable shortfall aborts
// with an error and the caller must not mutate anything.
func CalculateSettlement(in SettlementInput) (*SettlementOutcome, error) {
	if len(in.Counts) != entities.TierCount {
		return nil, fmt.Errorf("%w: got %d tiers", entities.ErrInvalidWinnerCounts, len(in.Counts))
	}
	if in.Jackpot < 0 || in.Reserve < 0 || in.Insurance < 0 {
		return nil, fmt.Errorf("%w: negative balance", entities.ErrInvalidGameParams)
	}

	var (
		out *SettlementOutcome
		err error
	)
	if in.Rolldown {
		out, err = settleRolldown(in)
	} else {
		out, err = settleFixed(in)
	}
	if err != nil {
		return nil, err
	}

	// The lowest tier is a free-play credit: never scaled, never drawn
	// from the pool, always honored in full.
	out.PrizePerWinner[entities.TierCredit] = in.Params.FixedPrizes[entities.TierCredit]

	// Floor-division residue is kept inside the treasury.
	out.Reserve, err = utils.CheckedAdd(out.Reserve, out.Dust)
	if err != nil {
		return nil, err
	}

	// Reseed-from-reserve once the jackpot has actually been paid out,
	// either to a top-tier winner or down the rolldown tiers.
	if out.Reseeded {
		seed := in.Params.SeedAmount
		if seed > out.Reserve {
			seed = out.Reserve
		}
		out.Jackpot = seed
		out.Reserve -= seed
	}

	out.HouseFeeBps = FeeBps(in.Params, out.Jackpot, false)
	return out, nil
}

// settleFixed handles the regular draw: the top tier, if won, splits
// the whole jackpot pari-mutuel; tiers 1-3 pay nominal fixed prizes,
// proportionally scaled by one shared factor when the jackpot remainder
// plus reserve cannot cover them.
func settleFixed(in SettlementInput) (*SettlementOutcome, error) {
	p := in.Params
	out := &SettlementOutcome{
		PrizePerWinner: make([]int64, entities.TierCount),
		ScaleBps:       10000,
		Jackpot:        in.Jackpot,
		Reserve:        in.Reserve,
		Insurance:      in.Insurance,
	}

	topCount := in.Counts[entities.TierJackpot]
	topWon := topCount > 0
	if topWon {
		per := in.Jackpot / topCount
		payout, err := utils.CheckedMul(per, topCount)
		if err != nil {
			return nil, err
		}
		out.PrizePerWinner[entities.TierJackpot] = per
		out.TotalDistributed = payout
		out.JackpotPaid = payout
		out.Dust = in.Jackpot - payout
		out.Jackpot = 0
	}

	// Obligation of the fixed tiers at full nominal prizes.
	var required int64
	for i := 1; i < entities.TierCredit; i++ {
		tierTotal, err := utils.CheckedMul(p.FixedPrizes[i], in.Counts[i])
		if err != nil {
			return nil, err
		}
		required, err = utils.CheckedAdd(required, tierTotal)
		if err != nil {
			return nil, err
		}
	}

	available, err := utils.CheckedAdd(out.Jackpot, out.Reserve)
	if err != nil {
		return nil, err
	}

	// One scale factor for every fixed tier preserves relative prize
	// ratios when funds are short.
	if required > available {
		scaled, err := utils.CheckedMul(available, 10000)
		if err != nil {
			return nil, err
		}
		out.ScaleBps = scaled / required
	}

	var fixedTotal int64
	for i := 1; i < entities.TierCredit; i++ {
		prize := p.FixedPrizes[i]
		if out.ScaleBps < 10000 {
			prize, err = utils.MulBps(prize, out.ScaleBps)
			if err != nil {
				return nil, err
			}
		}
		out.PrizePerWinner[i] = prize
		tierTotal, err := utils.CheckedMul(prize, in.Counts[i])
		if err != nil {
			return nil, err
		}
		fixedTotal, err = utils.CheckedAdd(fixedTotal, tierTotal)
		if err != nil {
			return nil, err
		}
	}

	// Drawdown order: reserve, then insurance, then what is left of the
	// jackpot. A shortfall past all three has no backstop and must
	// surface as a fault, never be absorbed.
	remaining := fixedTotal
	fromReserve := min64(remaining, out.Reserve)
	out.Reserve -= fromReserve
	out.ReservePaid = fromReserve
	remaining -= fromReserve

	fromInsurance := min64(remaining, out.Insurance)
	out.Insurance -= fromInsurance
	out.InsuranceDrawdown = fromInsurance
	remaining -= fromInsurance

	fromJackpot := min64(remaining, out.Jackpot)
	out.Jackpot -= fromJackpot
	out.JackpotPaid += fromJackpot
	remaining -= fromJackpot

	if remaining > 0 {
		return nil, fmt.Errorf("%w: %d units uncovered after insurance", entities.ErrInsolvent, remaining)
	}

	out.TotalDistributed, err = utils.CheckedAdd(out.TotalDistributed, fixedTotal)
	if err != nil {
		return nil, err
	}
	out.Reseeded = topWon
	return out, nil
}

// settleRolldown redirects the whole jackpot to tiers 1-3 by weight.
// Tiers without winners hand their allocation, proportionally by
// original weight, to the tiers that do have winners. With no winners
// anywhere the jackpot stays put for the next cycle; sweeping it would
// permanently lose funds that were never paid out.
func settleRolldown(in SettlementInput) (*SettlementOutcome, error) {
	p := in.Params
	out := &SettlementOutcome{
		PrizePerWinner: make([]int64, entities.TierCount),
		ScaleBps:       10000,
		Jackpot:        in.Jackpot,
		Reserve:        in.Reserve,
		Insurance:      in.Insurance,
	}

	// The top tier never receives the jackpot in rolldown mode.
	var winnersWeight int64
	for i := 1; i < entities.TierCredit; i++ {
		if in.Counts[i] > 0 {
			winnersWeight += p.RolldownWeightsBps[i]
		}
	}
	if winnersWeight == 0 {
		return out, nil
	}

	var totalPaid, poolsTotal int64
	for i := 1; i < entities.TierCredit; i++ {
		if in.Counts[i] == 0 {
			continue
		}
		weighted, err := utils.CheckedMul(in.Jackpot, p.RolldownWeightsBps[i])
		if err != nil {
			return nil, err
		}
		pool := weighted / winnersWeight
		poolsTotal, err = utils.CheckedAdd(poolsTotal, pool)
		if err != nil {
			return nil, err
		}

		per := pool / in.Counts[i]
		paid, err := utils.CheckedMul(per, in.Counts[i])
		if err != nil {
			return nil, err
		}
		out.PrizePerWinner[i] = per
		out.Dust += pool - paid
		totalPaid, err = utils.CheckedAdd(totalPaid, paid)
		if err != nil {
			return nil, err
		}
	}

	// Allocation rounding leftover joins the per-tier dust.
	out.Dust += in.Jackpot - poolsTotal
	out.TotalDistributed = totalPaid
	out.JackpotPaid = totalPaid
	out.Jackpot = 0
	out.Reseeded = true
	return out, nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
