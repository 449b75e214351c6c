package valuation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeightedAverage(t *testing.T) {
	// 10 on hand at 100, receive 5 at 160 -> (1000+800)/15 = 120
	cost, err := WeightedAverage(10, 100, 5, 160)
	require.NoError(t, err)
	require.EqualValues(t, 120, cost)
}

func TestWeightedAverageEmptyStockTakesBatchCost(t *testing.T) {
	cost, err := WeightedAverage(0, 0, 5, 60)
	require.NoError(t, err)
	require.EqualValues(t, 60, cost)

	// stale cost on an empty shelf must not leak into the new batch
	cost, err = WeightedAverage(0, 999, 5, 60)
	require.NoError(t, err)
	require.EqualValues(t, 60, cost)
}

func TestWeightedAverageRoundsOncePerBatch(t *testing.T) {
	// (3*10 + 1*11) / 4 = 10.25 -> 10
	cost, err := WeightedAverage(3, 10, 1, 11)
	require.NoError(t, err)
	require.EqualValues(t, 10, cost)

	// (1*10 + 1*11) / 2 = 10.5 -> rounds away from zero
	cost, err = WeightedAverage(1, 10, 1, 11)
	require.NoError(t, err)
	require.EqualValues(t, 11, cost)
}

func TestWeightedAverageRejectsBadQuantity(t *testing.T) {
	_, err := WeightedAverage(10, 100, 0, 50)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = WeightedAverage(10, 100, -3, 50)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestManufactureUnitCost(t *testing.T) {
	// 10 raw units at 10 consumed plus 100 labor across 5 produced -> 40
	cost, err := ManufactureUnitCost(10, 10, 100, 5)
	require.NoError(t, err)
	require.EqualValues(t, 40, cost)

	_, err = ManufactureUnitCost(10, 10, 100, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

// Two sequential batches folded into the same product must price like one
// combined batch when the arithmetic is exact.
func TestWeightedAverageAssociativity(t *testing.T) {
	// batch A: 10 units at 40, batch B: 10 units at 60 into 0 stock
	afterA, err := WeightedAverage(0, 0, 10, 40)
	require.NoError(t, err)
	sequential, err := WeightedAverage(10, afterA, 10, 60)
	require.NoError(t, err)

	combined, err := WeightedAverage(0, 0, 20, 50)
	require.NoError(t, err)
	require.Equal(t, combined, sequential)
}
