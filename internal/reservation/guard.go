// Package reservation decides whether an order may still be created, changed
// or canceled given its delivery date.
package reservation

import (
	"errors"
	"time"
)

// ErrTooClose is returned when the delivery date is inside the lead window.
var ErrTooClose = errors.New("too close to delivery")

type Guard struct {
	// LeadDays is the minimum number of whole calendar days between today
	// and the delivery date.
	LeadDays int
	Now      func() time.Time
}

func NewGuard(leadDays int) *Guard {
	if leadDays < 0 {
		leadDays = 0
	}
	return &Guard{LeadDays: leadDays, Now: time.Now}
}

// CanModify compares calendar dates only; the time of day is ignored.
func (g *Guard) CanModify(delivery, today time.Time) bool {
	return daysBetween(today, delivery) >= g.LeadDays
}

// Check gates mutations against a delivery date. Reads never go through it.
func (g *Guard) Check(delivery time.Time) error {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	if !g.CanModify(delivery, now()) {
		return ErrTooClose
	}
	return nil
}

func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
