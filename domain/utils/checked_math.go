package utils

import (
	"math"

	"drawhouse/domain/entities"
)

// Checked int64 arithmetic for treasury amounts. Every balance
// computation in the engine goes through these; a wrap is reported as
// entities.ErrArithmeticOverflow and aborts the operation instead of
// silently corrupting a balance.

// CheckedAdd returns a+b or ErrArithmeticOverflow.
func CheckedAdd(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, entities.ErrArithmeticOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrArithmeticOverflow.
func CheckedSub(a, b int64) (int64, error) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, entities.ErrArithmeticOverflow
	}
	return diff, nil
}

// CheckedMul returns a*b or ErrArithmeticOverflow.
func CheckedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a == math.MinInt64 || b == math.MinInt64 {
		return 0, entities.ErrArithmeticOverflow
	}
	product := a * b
	if product/b != a {
		return 0, entities.ErrArithmeticOverflow
	}
	return product, nil
}

// MulBps returns amount*bps/10000 with overflow checking. Used for fee
// rates, scale factors, and share splits.
func MulBps(amount, bps int64) (int64, error) {
	product, err := CheckedMul(amount, bps)
	if err != nil {
		return 0, err
	}
	return product / 10000, nil
}
