package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawRecord_Finalize(t *testing.T) {
	record := &DrawRecord{
		ID:             1,
		DrawID:         9,
		WinningNumbers: []int64{1, 2, 3, 4, 5, 6},
		TotalTickets:   100,
		WinnerCounts:   make([]int64, TierCount),
		PrizePerWinner: make([]int64, TierCount),
	}
	assert.False(t, record.IsFinalized())

	now := time.Now().UTC()
	counts := []int64{0, 1, 2, 3, 4}
	prizes := []int64{0, 4000, 150, 5, 1}

	require.NoError(t, record.Finalize(counts, prizes, 4_315, now))

	assert.True(t, record.IsFinalized())
	assert.Equal(t, counts, record.WinnerCounts)
	assert.Equal(t, prizes, record.PrizePerWinner)
	assert.Equal(t, int64(4_315), record.TotalDistributed)
	require.NotNil(t, record.FinalizedAt)
	assert.Equal(t, now, *record.FinalizedAt)
}

func TestDrawRecord_Finalize_OneShot(t *testing.T) {
	record := &DrawRecord{ID: 1, DrawID: 9}
	now := time.Now().UTC()
	require.NoError(t, record.Finalize([]int64{0, 0, 0, 0, 0}, []int64{0, 0, 0, 0, 0}, 0, now))

	err := record.Finalize([]int64{0, 5, 0, 0, 0}, []int64{0, 4000, 0, 0, 0}, 20_000, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrDrawFinalized)

	// First finalization stands
	assert.Equal(t, int64(0), record.TotalDistributed)
	assert.Equal(t, now, *record.FinalizedAt)
}
