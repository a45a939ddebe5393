// Package engine computes goal progress. It folds a goal's append-only event
// log into a current value and derives percent complete, a time-projected
// expected value, and an on-track classification. All functions are pure:
// they take an in-memory goal plus its ordered events and an explicit
// "today", perform no I/O, and never read the wall clock.
package engine

import (
	"math"

	"github.com/daedal-bit/yearplan/internal/model"
)

// Resolve folds events into the goal's current value. Events must be in
// insertion order (ascending id); their TS field does not affect fold order
// except for the percentage tie-break below.
//
// increment goals accumulate from 0: increment/update add, decrement
// subtracts (a rollback of a prior increment). decrement goals accumulate
// from the baseline: decrement subtracts, increment adds back, update sets
// the value outright. percentage goals take the value of the update event
// with the greatest TS, first event winning on equal TS. Results never go
// below 0; percentage results are clamped to [0, 100].
func Resolve(goal *model.Goal, events []model.Event) float64 {
	switch goal.TaskType {
	case model.TaskDecrement:
		current := goal.Baseline()
		for _, e := range events {
			v, ok := eventValue(e)
			if !ok {
				continue
			}
			switch e.Action {
			case model.ActionDecrement:
				current -= v
			case model.ActionIncrement:
				current += v
			case model.ActionUpdate:
				current = v
			}
		}
		return math.Max(0, current)

	case model.TaskPercentage:
		latest := 0.0
		latestTS := ""
		seen := false
		for _, e := range events {
			if e.Action != model.ActionUpdate {
				continue
			}
			v, ok := eventValue(e)
			if !ok {
				continue
			}
			// Strictly-greater comparison: the first event at the maximum
			// timestamp wins, later duplicates do not replace it.
			if !seen || (e.TS != "" && e.TS > latestTS) {
				latest = v
				latestTS = e.TS
				seen = true
			}
		}
		return clamp(latest, 0, 100)

	default: // model.TaskIncrement
		total := 0.0
		for _, e := range events {
			v, ok := eventValue(e)
			if !ok {
				continue
			}
			switch e.Action {
			case model.ActionIncrement, model.ActionUpdate:
				total += v
			case model.ActionDecrement:
				total -= v
			}
		}
		return math.Max(0, total)
	}
}

// NormalizeAction coerces an action into one the goal's task type accepts.
// Historical logs can hold anything, so disallowed actions map to the task
// type's primary action rather than failing.
func NormalizeAction(taskType model.TaskType, action model.Action) model.Action {
	switch taskType {
	case model.TaskDecrement:
		if action != model.ActionDecrement && action != model.ActionUpdate {
			return model.ActionDecrement
		}
	case model.TaskPercentage:
		return model.ActionUpdate
	default:
		if action != model.ActionIncrement && action != model.ActionUpdate {
			return model.ActionIncrement
		}
	}
	return action
}

// eventValue returns the event's numeric value, rejecting NaN and infinities
// so a malformed historical entry never poisons the fold.
func eventValue(e model.Event) (float64, bool) {
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return 0, false
	}
	return e.Value, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
