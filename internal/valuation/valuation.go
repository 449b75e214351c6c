// Package valuation implements weighted-average inventory costing.
//
// Costs are whole currency units. Rounding happens once per received batch,
// never per unit, so repeated receipts do not compound rounding error.
package valuation

import (
	"errors"
	"math"
)

// ErrInvalidQuantity indicates a non-positive received quantity.
var ErrInvalidQuantity = errors.New("valuation: quantity must be positive")

// WeightedAverage blends existing stock value with a received batch and
// returns the new unit cost.
func WeightedAverage(stock, cost, qty, unitCost int64) (int64, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	if stock <= 0 {
		// nothing on hand: the batch sets the cost outright
		return unitCost, nil
	}
	total := float64(stock)*float64(cost) + float64(qty)*float64(unitCost)
	return roundHalfAway(total / float64(stock+qty)), nil
}

// ManufactureUnitCost prices one produced unit from the consumed raw
// material value plus the total labor fee of the run.
func ManufactureUnitCost(rawConsumed, rawCost, laborTotal, quantity int64) (int64, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	total := float64(rawConsumed)*float64(rawCost) + float64(laborTotal)
	return roundHalfAway(total / float64(quantity)), nil
}

func roundHalfAway(v float64) int64 {
	return int64(math.Round(v))
}
