// Package pricing derives slot prices and pool progress. Nothing here is
// stored; every value is recomputed from the pool's goal and counters.
package pricing

import (
	"errors"
	"math"
)

// MaxGoal bounds a pool goal so that slot totals and gateway minor units
// stay within int64.
const MaxGoal int64 = 1_000_000_000_000

var (
	ErrInvalidSlots = errors.New("slots must be at least 1")
	ErrNoSlotsLeft  = errors.New("not enough open slots")
)

// PerSlot returns ceil(goal / contributors). A pool without contributors
// prices at 0.
func PerSlot(goal int64, contributors int) int64 {
	if contributors <= 0 || goal <= 0 {
		return 0
	}
	n := int64(contributors)
	per := goal / n
	if goal%n != 0 {
		per++
	}
	return per
}

// Total is the amount charged for slots slots at perSlot each. It
// reports 0 when the product would overflow.
func Total(perSlot int64, slots int) int64 {
	if slots <= 0 || perSlot <= 0 {
		return 0
	}
	if perSlot > math.MaxInt64/int64(slots) {
		return 0
	}
	return perSlot * int64(slots)
}

func RemainingSlots(contributors, current int) int {
	if r := contributors - current; r > 0 {
		return r
	}
	return 0
}

// Progress is currentAmount as a percentage of goal, one decimal, capped at 100.
func Progress(currentAmount, goal int64) float64 {
	if goal <= 0 || currentAmount <= 0 {
		return 0
	}
	p := float64(currentAmount) / float64(goal) * 100
	if p > 100 {
		p = 100
	}
	return math.Round(p*10) / 10
}

type Quotation struct {
	PerSlot   int64 `json:"per_slot"`
	Slots     int   `json:"slots"`
	Total     int64 `json:"total"`
	Remaining int   `json:"remaining_slots"`
}

// Quote prices a purchase of slots against the pool's current fill.
func Quote(goal int64, contributors, current, slots int) (Quotation, error) {
	remaining := RemainingSlots(contributors, current)
	q := Quotation{PerSlot: PerSlot(goal, contributors), Slots: slots, Remaining: remaining}
	if slots < 1 {
		return q, ErrInvalidSlots
	}
	if slots > remaining {
		return q, ErrNoSlotsLeft
	}
	q.Total = Total(q.PerSlot, slots)
	return q, nil
}
