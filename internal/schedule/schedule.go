// Package schedule computes recurring-transaction occurrences. Each
// frequency has its own cadence strategy; the registry maps frequency to
// strategy the same way the dueness checks are looked up.
//
// All functions treat their inputs as immutable snapshots and return new
// values.
package schedule

import (
	"errors"

	"centime/internal/core"
)

// ErrInvalidState is returned when an operation requires a Scheduled
// definition but got a paused or exhausted one. It signals a caller bug,
// not a data problem, so it is raised rather than swallowed.
var ErrInvalidState = errors.New("recurring definition is not scheduled")

// State is the lifecycle position of a definition at a point in time.
type State string

const (
	StateScheduled State = "scheduled"
	StatePaused    State = "paused"
	StateExhausted State = "exhausted"
)

// cadence computes the first occurrence on or after from. Implementations
// never return a date before the definition's start date.
type cadence interface {
	next(def core.RecurringDefinition, from core.Date) core.Date
}

var cadences = map[core.Frequency]cadence{
	core.Daily:     dailyCadence{},
	core.Weekly:    weekCadence{stepDays: 7},
	core.Biweekly:  weekCadence{stepDays: 14},
	core.Monthly:   monthCadence{stepMonths: 1},
	core.Quarterly: monthCadence{stepMonths: 3},
	core.Yearly:    monthCadence{stepMonths: 12},
}

// NextOccurrence returns the first eligible occurrence on or after from.
// The second result is false when no occurrence exists, either because the
// frequency is unknown or because the candidate falls past the end date
// (the end date itself is still eligible).
func NextOccurrence(def core.RecurringDefinition, from core.Date) (core.Date, bool) {
	c, ok := cadences[def.Frequency]
	if !ok {
		return core.Date{}, false
	}
	candidate := c.next(def, from)
	if def.EndDate != nil && candidate.After(def.EndDate.Time) {
		return core.Date{}, false
	}
	return candidate, true
}

// Next computes the next occurrence relative to today, the reference used
// when a definition is created or resumed: max(today, startDate).
func Next(def core.RecurringDefinition, today core.Date) (core.Date, bool) {
	from := today
	if def.StartDate.After(from.Time) {
		from = def.StartDate
	}
	return NextOccurrence(def, from)
}

// StateOf classifies a definition as of today.
func StateOf(def core.RecurringDefinition, today core.Date) State {
	if !def.Active {
		return StatePaused
	}
	if def.NextExecution == nil {
		if _, ok := Next(def, today); !ok {
			return StateExhausted
		}
	}
	return StateScheduled
}

// Due reports whether an active definition has an occurrence on or before
// today waiting to be materialized.
func Due(def core.RecurringDefinition, today core.Date) bool {
	return def.Active && def.NextExecution != nil && !def.NextExecution.After(today.Time)
}

type dailyCadence struct{}

func (dailyCadence) next(def core.RecurringDefinition, from core.Date) core.Date {
	if from.Before(def.StartDate.Time) {
		return def.StartDate
	}
	return from
}

// weekCadence anchors on the first start-date-or-later day matching the
// target weekday, then advances in whole steps. Biweekly occurrences are
// therefore always an even multiple of two weeks from the anchor, never
// just any matching weekday.
type weekCadence struct {
	stepDays int
}

func (c weekCadence) next(def core.RecurringDefinition, from core.Date) core.Date {
	target := int(def.StartDate.Weekday())
	if def.DayOfWeek != nil {
		target = *def.DayOfWeek
	}

	anchor := def.StartDate
	if offset := (target - int(anchor.Weekday()) + 7) % 7; offset > 0 {
		anchor = anchor.AddDays(offset)
	}

	if anchor.Before(from.Time) {
		gap := anchor.DaysUntil(from)
		steps := (gap + c.stepDays - 1) / c.stepDays
		anchor = anchor.AddDays(steps * c.stepDays)
	}
	return anchor
}

// monthCadence steps whole months from the start date's month, clamping
// the target day to each candidate month's last valid day (day 31 in a
// 30-day month lands on day 30, not in the next month).
type monthCadence struct {
	stepMonths int
}

func (c monthCadence) next(def core.RecurringDefinition, from core.Date) core.Date {
	targetDay := def.StartDate.Day()
	if def.DayOfMonth != nil {
		targetDay = *def.DayOfMonth
	}

	// Month indexes count from year zero so the step arithmetic never
	// crosses a year boundary by hand.
	anchorIdx := def.StartDate.Year()*12 + int(def.StartDate.Month()) - 1
	fromIdx := from.Year()*12 + int(from.Month()) - 1

	step := 0
	if fromIdx > anchorIdx {
		step = (fromIdx - anchorIdx) / c.stepMonths
	}

	for {
		idx := anchorIdx + step*c.stepMonths
		year, month := idx/12, idx%12+1
		day := targetDay
		if last := core.DaysInMonth(year, month); day > last {
			day = last
		}
		candidate := core.NewDate(year, month, day)
		if !candidate.Before(from.Time) && !candidate.Before(def.StartDate.Time) {
			return candidate
		}
		step++
	}
}
