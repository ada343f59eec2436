// Package scoring turns a series' race results into ranked standings.
package scoring

import "github.com/shopspring/decimal"

const (
	// sizeBonusStep points are added per full 100 finishers.
	sizeBonusStep = 5
	sizeBonusCap  = 25
)

// Points is the score for finishing at place among finishers, scaled by the
// race's series multiplier and rounded to 2 places. Place 1 earns 100 base
// points, place 101 and worse earn none, and place <= 0 (unplaced) earns
// nothing at all.
func Points(place, finishers int, multiplier decimal.Decimal) decimal.Decimal {
	if place <= 0 {
		return decimal.Zero
	}
	base := max(0, 101-place)
	bonus := min(sizeBonusStep*(max(finishers, 0)/100), sizeBonusCap)
	return decimal.NewFromInt(int64(base + bonus)).Mul(multiplier).Round(2)
}
