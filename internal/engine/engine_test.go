package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daedal-bit/yearplan/internal/model"
)

func f(v float64) *float64 { return &v }

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func goal(taskType model.TaskType, target *float64) *model.Goal {
	return &model.Goal{ID: 1, TaskType: taskType, Target: target}
}

func ev(action model.Action, value float64, ts string) model.Event {
	return model.Event{GoalID: 1, Action: action, Value: value, TS: ts}
}

func TestResolveEmptyLogYieldsBaseline(t *testing.T) {
	tests := []struct {
		name string
		goal *model.Goal
		want float64
	}{
		{"increment", goal(model.TaskIncrement, f(100)), 0},
		{"percentage", goal(model.TaskPercentage, nil), 0},
		{"decrement falls back to target", goal(model.TaskDecrement, f(180)), 180},
		{"decrement with explicit start", &model.Goal{TaskType: model.TaskDecrement, Target: f(180), StartValue: f(200)}, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.goal, nil))
		})
	}
}

func TestResolveIncrement(t *testing.T) {
	g := goal(model.TaskIncrement, f(100))
	events := []model.Event{
		ev(model.ActionIncrement, 20, "2025-10-02"),
		ev(model.ActionIncrement, 40, "2025-10-04"),
	}
	assert.Equal(t, 60.0, Resolve(g, events))

	// decrement entries roll increments back
	events = append(events, ev(model.ActionDecrement, 15, "2025-10-05"))
	assert.Equal(t, 45.0, Resolve(g, events))

	// never below zero
	events = append(events, ev(model.ActionDecrement, 500, "2025-10-06"))
	assert.Equal(t, 0.0, Resolve(g, events))
}

func TestResolveDecrement(t *testing.T) {
	g := &model.Goal{TaskType: model.TaskDecrement, Target: f(180), StartValue: f(200)}

	events := []model.Event{ev(model.ActionDecrement, 10, "2025-01-02")}
	assert.Equal(t, 190.0, Resolve(g, events))

	// increment rolls a decrement back
	events = append(events, ev(model.ActionIncrement, 5, "2025-01-03"))
	assert.Equal(t, 195.0, Resolve(g, events))

	// update sets the value outright
	events = append(events, ev(model.ActionUpdate, 185, "2025-01-04"))
	assert.Equal(t, 185.0, Resolve(g, events))
}

func TestResolvePercentageLatestTimestampWins(t *testing.T) {
	g := goal(model.TaskPercentage, nil)
	events := []model.Event{
		ev(model.ActionUpdate, 40, "2025-03-01"),
		ev(model.ActionUpdate, 60, "2025-03-05"),
		ev(model.ActionUpdate, 50, "2025-03-03"),
	}
	assert.Equal(t, 60.0, Resolve(g, events))
}

func TestResolvePercentageTieKeepsFirstEvent(t *testing.T) {
	// Two updates sharing a timestamp: the first one in log order wins.
	// Deliberate behavior, not an accident of iteration order.
	g := goal(model.TaskPercentage, nil)
	events := []model.Event{
		ev(model.ActionUpdate, 40, "2025-03-01"),
		ev(model.ActionUpdate, 70, "2025-03-01"),
	}
	assert.Equal(t, 40.0, Resolve(g, events))
}

func TestResolvePercentageIgnoresNonUpdateActions(t *testing.T) {
	g := goal(model.TaskPercentage, nil)
	events := []model.Event{
		ev(model.ActionIncrement, 90, "2025-03-02"),
		ev(model.ActionUpdate, 30, "2025-03-01"),
	}
	assert.Equal(t, 30.0, Resolve(g, events))
}

func TestResolvePercentageClamped(t *testing.T) {
	g := goal(model.TaskPercentage, nil)
	assert.Equal(t, 100.0, Resolve(g, []model.Event{ev(model.ActionUpdate, 150, "2025-03-01")}))
	assert.Equal(t, 0.0, Resolve(g, []model.Event{ev(model.ActionUpdate, -10, "2025-03-01")}))
}

func TestResolveSkipsNonFiniteValues(t *testing.T) {
	g := goal(model.TaskIncrement, f(10))
	events := []model.Event{
		ev(model.ActionIncrement, 3, "2025-01-01"),
		ev(model.ActionIncrement, math.NaN(), "2025-01-02"),
		ev(model.ActionIncrement, math.Inf(1), "2025-01-03"),
		ev(model.ActionIncrement, 4, "2025-01-04"),
	}
	assert.Equal(t, 7.0, Resolve(g, events))
}

func TestResolveDeterministic(t *testing.T) {
	g := goal(model.TaskIncrement, f(100))
	events := []model.Event{
		ev(model.ActionIncrement, 20, "2025-10-02"),
		ev(model.ActionDecrement, 5, "2025-10-03"),
		ev(model.ActionUpdate, 7, "2025-10-04"),
	}
	first := Resolve(g, events)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve(g, events))
	}
}

func TestComputeStatusScenarioA(t *testing.T) {
	// 10-day increment goal, target 100, checked on day 5.
	g := goal(model.TaskIncrement, f(100))
	g.StartDate = date("2025-10-01")
	g.EndDate = date("2025-10-10")
	today := *date("2025-10-05")

	// No events: expected 50, progress 0, behind schedule.
	snap := ComputeStatus(g, nil, today)
	require.NotNil(t, snap.Expected)
	assert.Equal(t, 50.0, *snap.Expected)
	assert.Equal(t, 0.0, snap.Progress)
	require.NotNil(t, snap.InTrack)
	assert.False(t, *snap.InTrack)

	events := []model.Event{
		ev(model.ActionIncrement, 20, "2025-10-02"),
		ev(model.ActionIncrement, 40, "2025-10-04"),
	}
	snap = ComputeStatus(g, events, today)
	assert.Equal(t, 60.0, snap.Progress)
	require.NotNil(t, snap.Expected)
	assert.Equal(t, 50.0, *snap.Expected)
	require.NotNil(t, snap.InTrack)
	assert.True(t, *snap.InTrack)
}

func TestComputeStatusScenarioB(t *testing.T) {
	g := &model.Goal{TaskType: model.TaskDecrement, Target: f(180), StartValue: f(200)}
	events := []model.Event{ev(model.ActionDecrement, 10, "2025-01-02")}

	snap := ComputeStatus(g, events, time.Now())
	assert.Equal(t, 190.0, snap.Progress)
	assert.Equal(t, 50.0, snap.Percent)
	assert.Equal(t, 200.0, snap.Start)
}

func TestComputeStatusDayOneFloor(t *testing.T) {
	g := goal(model.TaskIncrement, f(100))
	g.StartDate = date("2025-10-01")
	g.EndDate = date("2025-10-10")

	// Expected is never 0 on the first day of the window.
	snap := ComputeStatus(g, nil, *date("2025-10-01"))
	require.NotNil(t, snap.Expected)
	assert.Equal(t, 10.0, *snap.Expected)

	// Nor before the window starts.
	snap = ComputeStatus(g, nil, *date("2025-09-20"))
	require.NotNil(t, snap.Expected)
	assert.Equal(t, 10.0, *snap.Expected)
}

func TestComputeStatusAfterWindowEnd(t *testing.T) {
	g := goal(model.TaskIncrement, f(100))
	g.StartDate = date("2025-10-01")
	g.EndDate = date("2025-10-10")

	snap := ComputeStatus(g, nil, *date("2025-11-01"))
	require.NotNil(t, snap.Expected)
	assert.Equal(t, 100.0, *snap.Expected)
}

func TestComputeStatusNoWindow(t *testing.T) {
	g := goal(model.TaskIncrement, f(100))
	snap := ComputeStatus(g, nil, time.Now())
	assert.Nil(t, snap.Expected)
	assert.Nil(t, snap.InTrack)
}

func TestComputeStatusClampsStrayEntries(t *testing.T) {
	g := goal(model.TaskIncrement, f(10))
	events := []model.Event{ev(model.ActionIncrement, 25, "2025-01-01")}

	snap := ComputeStatus(g, events, time.Now())
	assert.Equal(t, 10.0, snap.Progress)
	assert.Equal(t, 100.0, snap.Percent)
}

func TestComputeStatusPercentAlwaysInRange(t *testing.T) {
	goals := []*model.Goal{
		goal(model.TaskIncrement, f(10)),
		goal(model.TaskIncrement, nil),
		{TaskType: model.TaskDecrement, Target: f(0), StartValue: f(50)},
		goal(model.TaskPercentage, nil),
	}
	eventSets := [][]model.Event{
		nil,
		{ev(model.ActionIncrement, 1e9, "a")},
		{ev(model.ActionDecrement, 1e9, "b")},
		{ev(model.ActionUpdate, -5, "c"), ev(model.ActionUpdate, 500, "d")},
	}
	for _, g := range goals {
		for _, events := range eventSets {
			snap := ComputeStatus(g, events, time.Now())
			assert.GreaterOrEqual(t, snap.Percent, 0.0)
			assert.LessOrEqual(t, snap.Percent, 100.0)
		}
	}
}

func TestComputeStatusDegenerateTarget(t *testing.T) {
	// target == baseline: 100% only when the value sits exactly on target
	g := &model.Goal{TaskType: model.TaskIncrement, Target: f(0), StartValue: f(0)}
	snap := ComputeStatus(g, nil, time.Now())
	assert.Equal(t, 100.0, snap.Percent)
}

func TestComputeStatusInTrackNilWhenExpectedDistanceZero(t *testing.T) {
	// target == baseline leaves no expected distance to compare against, so
	// the in-track flag stays unset even though a window exists.
	g := &model.Goal{TaskType: model.TaskIncrement, Target: f(0), StartValue: f(0)}
	g.StartDate = date("2025-10-01")
	g.EndDate = date("2025-10-10")

	snap := ComputeStatus(g, nil, *date("2025-10-05"))
	require.NotNil(t, snap.Expected)
	assert.Equal(t, 0.0, *snap.Expected)
	assert.Nil(t, snap.InTrack)
}

func TestNormalizeAction(t *testing.T) {
	tests := []struct {
		taskType model.TaskType
		in, want model.Action
	}{
		{model.TaskIncrement, model.ActionIncrement, model.ActionIncrement},
		{model.TaskIncrement, model.ActionUpdate, model.ActionUpdate},
		{model.TaskIncrement, model.ActionDecrement, model.ActionIncrement},
		{model.TaskIncrement, model.Action("bogus"), model.ActionIncrement},
		{model.TaskDecrement, model.ActionDecrement, model.ActionDecrement},
		{model.TaskDecrement, model.ActionUpdate, model.ActionUpdate},
		{model.TaskDecrement, model.ActionIncrement, model.ActionDecrement},
		{model.TaskPercentage, model.ActionUpdate, model.ActionUpdate},
		{model.TaskPercentage, model.ActionIncrement, model.ActionUpdate},
		{model.TaskPercentage, model.ActionDecrement, model.ActionUpdate},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeAction(tt.taskType, tt.in), "%s/%s", tt.taskType, tt.in)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		name     string
		percent  float64
		expected *float64
		want     string
	}{
		{"completed overrides ratio", 100, f(90), LabelCompleted},
		{"completed with no expectation", 100, nil, LabelCompleted},
		{"ahead", 80, f(50), LabelAhead},
		{"behind", 30, f(50), LabelBehind},
		{"on track", 50, f(50), LabelOnTrack},
		{"upper band edge counts as ahead", 65, f(50), LabelAhead},
		{"lower band edge counts as behind", 35, f(50), LabelBehind},
		{"no expectation in progress", 20, nil, LabelInProgress},
		{"no expectation pending", 0, nil, LabelPending},
		{"zero expectation pending", 0, f(0), LabelPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusLabel(tt.percent, tt.expected))
		})
	}
}

func TestExpectedPercentTimeBased(t *testing.T) {
	g := goal(model.TaskIncrement, f(100))
	g.StartDate = date("2025-10-01")
	g.EndDate = date("2025-10-10")
	today := *date("2025-10-05")

	pct := ExpectedPercent(g, today)
	require.NotNil(t, pct)
	assert.Equal(t, 50.0, *pct)

	// Day-1 floor applies here too: never 0% expected inside a window.
	pct = ExpectedPercent(g, *date("2025-10-01"))
	require.NotNil(t, pct)
	assert.Equal(t, 10.0, *pct)
}

func TestExpectedPercentNilWithoutWindow(t *testing.T) {
	g := goal(model.TaskIncrement, f(100))
	assert.Nil(t, ExpectedPercent(g, time.Now()))
}
