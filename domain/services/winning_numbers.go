package services

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"

	"drawhouse/domain/entities"
)

const (
	// Domain separation tags. The number generator and the rolldown
	// coin flip hash the same entropy under different tags so neither
	// outcome can be inferred from the other.
	winningNumbersTag   = "winning_numbers"
	rolldownDecisionTag = "rolldown_decision"

	// EntropySize is the required raw entropy length in bytes.
	EntropySize = 32

	// Entropy sanity thresholds. A 32-byte value with fewer distinct or
	// non-zero bytes than this is a degenerate oracle output and is
	// rejected rather than guessed around.
	minDistinctEntropyBytes = 8
	minNonZeroEntropyBytes  = 4

	// maxGeneratorWords caps how many 4-byte words the generator may
	// consume before declaring the entropy unusable. Failing here beats
	// falling back to a predictable default, which would be exploitable.
	maxGeneratorWords = 256
)

// ValidateEntropy rejects entropy that is the wrong size or degenerate.
func ValidateEntropy(entropy []byte) error {
	if len(entropy) != EntropySize {
		return fmt.Errorf("%w: got %d bytes, want %d",
			entities.ErrInvalidRandomnessProof, len(entropy), EntropySize)
	}
	distinct := make(map[byte]struct{}, EntropySize)
	nonZero := 0
	for _, b := range entropy {
		distinct[b] = struct{}{}
		if b != 0 {
			nonZero++
		}
	}
	if len(distinct) < minDistinctEntropyBytes {
		return fmt.Errorf("%w: only %d distinct byte values",
			entities.ErrInvalidRandomnessProof, len(distinct))
	}
	if nonZero < minNonZeroEntropyBytes {
		return fmt.Errorf("%w: only %d non-zero bytes",
			entities.ErrInvalidRandomnessProof, nonZero)
	}
	return nil
}

// entropyStream yields an unbounded sequence of 32-bit words derived
// from tagged entropy. Each exhausted block is refilled with
// SHA256(tag || entropy || round) so the stream never repeats.
type entropyStream struct {
	tag     string
	entropy []byte
	round   uint32
	buf     [sha256.Size]byte
	offset  int
}

func newEntropyStream(tag string, entropy []byte) *entropyStream {
	s := &entropyStream{tag: tag, entropy: entropy}
	s.refill()
	return s
}

func (s *entropyStream) refill() {
	h := sha256.New()
	h.Write([]byte(s.tag))
	h.Write(s.entropy)
	var round [4]byte
	binary.BigEndian.PutUint32(round[:], s.round)
	h.Write(round[:])
	copy(s.buf[:], h.Sum(nil))
	s.offset = 0
	s.round++
}

func (s *entropyStream) nextWord() uint32 {
	if s.offset+4 > sha256.Size {
		s.refill()
	}
	word := binary.BigEndian.Uint32(s.buf[s.offset : s.offset+4])
	s.offset += 4
	return word
}

// GenerateWinningNumbers converts verified entropy into pickCount
// unique numbers in [1, numberRange], sorted ascending. Deterministic:
// the same entropy always yields the same numbers.
//
// Rejection sampling removes modulo bias: a plain word%R is measurably
// skewed toward low numbers because 2^32 is not a multiple of R, so any
// word at or above R*floor(2^32/R) is discarded before reduction.
func GenerateWinningNumbers(entropy []byte, pickCount, numberRange int) ([]int64, error) {
	if err := ValidateEntropy(entropy); err != nil {
		return nil, err
	}
	if pickCount < 1 || numberRange <= pickCount {
		return nil, fmt.Errorf("%w: pick %d of %d", entities.ErrInvalidGameParams, pickCount, numberRange)
	}

	r := uint64(numberRange)
	rejectThreshold := r * ((1 << 32) / r)

	stream := newEntropyStream(winningNumbersTag, entropy)
	chosen := make(map[int64]struct{}, pickCount)
	numbers := make([]int64, 0, pickCount)

	for words := 0; len(numbers) < pickCount; words++ {
		if words >= maxGeneratorWords {
			return nil, fmt.Errorf("%w: generator exhausted %d draws",
				entities.ErrInvalidRandomnessProof, maxGeneratorWords)
		}
		word := uint64(stream.nextWord())
		if word >= rejectThreshold {
			continue
		}
		candidate := int64(word%r) + 1
		if _, dup := chosen[candidate]; dup {
			continue
		}
		chosen[candidate] = struct{}{}
		numbers = append(numbers, candidate)
	}

	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	if err := verifyWinningNumbers(numbers, pickCount, numberRange); err != nil {
		return nil, err
	}
	return numbers, nil
}

// verifyWinningNumbers re-checks the generator's own output: the right
// count, all in [1, numberRange], strictly ascending (hence distinct).
func verifyWinningNumbers(numbers []int64, pickCount, numberRange int) error {
	if len(numbers) != pickCount {
		return fmt.Errorf("%w: generated %d numbers, want %d",
			entities.ErrInvalidRandomnessProof, len(numbers), pickCount)
	}
	var prev int64
	for _, n := range numbers {
		if n < 1 || n > int64(numberRange) {
			return fmt.Errorf("%w: number %d out of range [1,%d]",
				entities.ErrInvalidRandomnessProof, n, numberRange)
		}
		if n <= prev {
			return fmt.Errorf("%w: numbers not strictly ascending",
				entities.ErrInvalidRandomnessProof)
		}
		prev = n
	}
	return nil
}
