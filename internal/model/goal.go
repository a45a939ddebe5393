package model

import (
	"time"
)

// TaskType is the semantic shape of a goal: count up to a target, count down
// to a target, or track a direct 0-100 percentage.
type TaskType string

const (
	TaskIncrement  TaskType = "increment"
	TaskDecrement  TaskType = "decrement"
	TaskPercentage TaskType = "percentage"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskIncrement, TaskDecrement, TaskPercentage:
		return true
	}
	return false
}

// ParseTaskType returns the task type for s, defaulting to TaskIncrement for
// empty or unknown input.
func ParseTaskType(s string) TaskType {
	t := TaskType(s)
	if !t.Valid() {
		return TaskIncrement
	}
	return t
}

type Goal struct {
	ID             int64      `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"-"`
	Text           string     `db:"text" json:"text"`
	TaskType       TaskType   `db:"task_type" json:"task_type"`
	Target         *float64   `db:"target" json:"target,omitempty"`
	StartValue     *float64   `db:"start_value" json:"start_value,omitempty"`
	StartDate      *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate        *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsCompleted    bool       `db:"is_completed" json:"is_completed"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CompletedValue *float64   `db:"completed_value" json:"completed_value,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Baseline is the value the goal starts at before any events: the explicit
// start value if set, else the target for decrement goals, else 0.
func (g *Goal) Baseline() float64 {
	if g.StartValue != nil {
		return *g.StartValue
	}
	if g.TaskType == TaskDecrement && g.Target != nil {
		return *g.Target
	}
	return 0
}

// HasWindow reports whether the goal has both dates of its time window set.
func (g *Goal) HasWindow() bool {
	return g.StartDate != nil && g.EndDate != nil
}
