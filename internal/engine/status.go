package engine

import (
	"math"
	"time"

	"github.com/daedal-bit/yearplan/internal/model"
)

// ComputeStatus derives the full status snapshot for a goal at the given
// logical date. today is only consulted when the goal has a date window;
// callers default it once at the boundary (never mid-calculation) so the
// result is repeatable.
func ComputeStatus(goal *model.Goal, events []model.Event, today time.Time) model.StatusSnapshot {
	current := Resolve(goal, events)
	baseline := goal.Baseline()

	// Clamp into [min(baseline, target), max(baseline, target)] so a stray
	// log entry cannot report negative progress or more than 100%.
	clamped := current
	if goal.TaskType != model.TaskPercentage && goal.Target != nil {
		lo := math.Min(baseline, *goal.Target)
		hi := math.Max(baseline, *goal.Target)
		clamped = clamp(current, lo, hi)
	}

	percent := percentComplete(goal, baseline, clamped, current)

	var expected *float64
	var inTrack *bool
	if goal.HasWindow() {
		ratio := timeRatio(*goal.StartDate, *goal.EndDate, today)
		e := expectedValue(goal, baseline, ratio)
		expected = &e

		expDist := math.Abs(e - baseline)
		if expDist > 0 {
			curDist := math.Abs(clamped - baseline)
			r := curDist / expDist
			ok := r >= 0.7 && r <= 1.3
			inTrack = &ok
		}
	}

	return model.StatusSnapshot{
		Progress: clamped,
		Percent:  clamp(percent, 0, 100),
		Expected: expected,
		InTrack:  inTrack,
		Target:   goal.Target,
		Start:    baseline,
		TaskType: goal.TaskType,
	}
}

// percentComplete measures achieved distance from the baseline against the
// total distance |target - baseline|. The symmetric form lets increment and
// decrement goals share one formula.
func percentComplete(goal *model.Goal, baseline, clamped, current float64) float64 {
	if goal.TaskType == model.TaskPercentage {
		return current
	}
	if goal.Target == nil {
		return 0
	}
	total := math.Abs(*goal.Target - baseline)
	if total == 0 {
		if clamped == *goal.Target {
			return 100
		}
		return 0
	}
	achieved := math.Abs(clamped - baseline)
	return achieved / total * 100
}

// expectedValue interpolates linearly from the baseline toward the target
// (or toward 100% for percentage goals) by the elapsed-time ratio.
func expectedValue(goal *model.Goal, baseline, ratio float64) float64 {
	if goal.TaskType == model.TaskPercentage {
		return 100 * ratio
	}
	target := 0.0
	if goal.Target != nil {
		target = *goal.Target
	}
	return baseline + (target-baseline)*ratio
}

// timeRatio returns elapsed/total using inclusive day counting with a day-1
// floor: a goal is never at 0% expected on its first day.
func timeRatio(start, end, today time.Time) float64 {
	elapsed, total := inclusiveDays(start, end, today)
	return float64(elapsed) / float64(total)
}

// inclusiveDays counts elapsed and total days for a date window. Both counts
// are inclusive, total is at least 1, and elapsed is clamped to [1, total].
func inclusiveDays(start, end, today time.Time) (elapsed, total int) {
	start = dateOnly(start)
	end = dateOnly(end)
	today = dateOnly(today)

	total = daysBetween(start, end) + 1
	if total < 1 {
		total = 1
	}

	switch {
	case !today.After(start):
		elapsed = 1
	case !today.Before(end):
		elapsed = total
	default:
		elapsed = daysBetween(start, today) + 1
		if elapsed < 1 {
			elapsed = 1
		}
		if elapsed > total {
			elapsed = total
		}
	}
	return elapsed, total
}

// ExpectedPercent converts a goal's date window into an expected-completion
// percent for status labels, using the same inclusive day counting as the
// snapshot so a goal never labels as 0% expected on day one. Without a window
// there is no schedule to measure against and the result is nil.
func ExpectedPercent(goal *model.Goal, today time.Time) *float64 {
	if !goal.HasWindow() {
		return nil
	}
	elapsed, total := inclusiveDays(*goal.StartDate, *goal.EndDate, today)
	pct := clamp(float64(elapsed)/float64(total)*100, 0, 100)
	return &pct
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
