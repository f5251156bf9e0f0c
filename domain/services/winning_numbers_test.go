package services

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"drawhouse/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEntropy derives a well-formed 32-byte entropy value from a seed
func testEntropy(seed string) []byte {
	sum := sha256.Sum256([]byte(seed))
	return sum[:]
}

func TestValidateEntropy(t *testing.T) {
	t.Run("accepts hash output", func(t *testing.T) {
		assert.NoError(t, ValidateEntropy(testEntropy("ok")))
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		err := ValidateEntropy(make([]byte, 16))
		assert.ErrorIs(t, err, entities.ErrInvalidRandomnessProof)
	})

	t.Run("rejects all zeros", func(t *testing.T) {
		err := ValidateEntropy(make([]byte, EntropySize))
		assert.ErrorIs(t, err, entities.ErrInvalidRandomnessProof)
	})

	t.Run("rejects repeated byte", func(t *testing.T) {
		entropy := make([]byte, EntropySize)
		for i := range entropy {
			entropy[i] = 0xAB
		}
		err := ValidateEntropy(entropy)
		assert.ErrorIs(t, err, entities.ErrInvalidRandomnessProof)
	})

	t.Run("rejects too few non-zero bytes", func(t *testing.T) {
		entropy := make([]byte, EntropySize)
		entropy[0] = 1
		entropy[1] = 2
		entropy[2] = 3
		err := ValidateEntropy(entropy)
		assert.ErrorIs(t, err, entities.ErrInvalidRandomnessProof)
	})
}

func TestGenerateWinningNumbers_Deterministic(t *testing.T) {
	entropy := testEntropy("draw-42")

	first, err := GenerateWinningNumbers(entropy, 6, 46)
	require.NoError(t, err)
	second, err := GenerateWinningNumbers(entropy, 6, 46)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateWinningNumbers_WellFormed(t *testing.T) {
	for seed := 0; seed < 200; seed++ {
		entropy := testEntropy(fmt.Sprintf("seed-%d", seed))

		numbers, err := GenerateWinningNumbers(entropy, 6, 46)
		require.NoError(t, err)
		require.Len(t, numbers, 6)

		var prev int64
		for _, n := range numbers {
			assert.GreaterOrEqual(t, n, int64(1))
			assert.LessOrEqual(t, n, int64(46))
			assert.Greater(t, n, prev, "numbers must be strictly ascending")
			prev = n
		}
	}
}

func TestGenerateWinningNumbers_VariantRange(t *testing.T) {
	numbers, err := GenerateWinningNumbers(testEntropy("express"), 5, 35)
	require.NoError(t, err)
	require.Len(t, numbers, 5)
	for _, n := range numbers {
		assert.GreaterOrEqual(t, n, int64(1))
		assert.LessOrEqual(t, n, int64(35))
	}
}

func TestGenerateWinningNumbers_DifferentEntropyDiffers(t *testing.T) {
	a, err := GenerateWinningNumbers(testEntropy("a"), 6, 46)
	require.NoError(t, err)
	b, err := GenerateWinningNumbers(testEntropy("b"), 6, 46)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestGenerateWinningNumbers_CoversFullRange(t *testing.T) {
	// Over many draws every number in [1,46] should appear; a number
	// that never shows up would point at a reduction bug.
	seen := make(map[int64]int)
	for seed := 0; seed < 2000; seed++ {
		numbers, err := GenerateWinningNumbers(testEntropy(fmt.Sprintf("cover-%d", seed)), 6, 46)
		require.NoError(t, err)
		for _, n := range numbers {
			seen[n]++
		}
	}

	for n := int64(1); n <= 46; n++ {
		assert.Greater(t, seen[n], 0, "number %d never drawn", n)
	}

	// No gross frequency skew: each number's expected share is
	// 2000*6/46 ≈ 261 draws; allow a wide band.
	for n := int64(1); n <= 46; n++ {
		assert.Greater(t, seen[n], 150, "number %d drawn suspiciously rarely", n)
		assert.Less(t, seen[n], 400, "number %d drawn suspiciously often", n)
	}
}

func TestGenerateWinningNumbers_RejectsBadParams(t *testing.T) {
	entropy := testEntropy("params")

	_, err := GenerateWinningNumbers(entropy, 0, 46)
	assert.ErrorIs(t, err, entities.ErrInvalidGameParams)

	_, err = GenerateWinningNumbers(entropy, 46, 46)
	assert.ErrorIs(t, err, entities.ErrInvalidGameParams)
}

func TestGenerateWinningNumbers_RejectsBadEntropy(t *testing.T) {
	_, err := GenerateWinningNumbers(make([]byte, EntropySize), 6, 46)
	assert.ErrorIs(t, err, entities.ErrInvalidRandomnessProof)
}

func TestEntropyStream_RefillsDeterministically(t *testing.T) {
	entropy := testEntropy("stream")

	a := newEntropyStream(winningNumbersTag, entropy)
	b := newEntropyStream(winningNumbersTag, entropy)

	// Walk past several refill boundaries
	for i := 0; i < 64; i++ {
		assert.Equal(t, a.nextWord(), b.nextWord())
	}
}

func TestEntropyStream_TagsProduceIndependentStreams(t *testing.T) {
	entropy := testEntropy("tags")

	numbers := newEntropyStream(winningNumbersTag, entropy)
	decision := newEntropyStream(rolldownDecisionTag, entropy)

	assert.NotEqual(t, numbers.nextWord(), decision.nextWord())
}
