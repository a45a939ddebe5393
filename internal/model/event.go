package model

// Action is one recorded kind of progress mutation.
type Action string

const (
	ActionIncrement Action = "increment"
	ActionDecrement Action = "decrement"
	ActionUpdate    Action = "update"
)

func (a Action) Valid() bool {
	switch a {
	case ActionIncrement, ActionDecrement, ActionUpdate:
		return true
	}
	return false
}

// Event is one append-only progress log entry for a goal. TS is a display
// timestamp; fold order is insertion order (ascending id), never TS order.
type Event struct {
	ID     int64   `db:"id" json:"id"`
	GoalID int64   `db:"goal_id" json:"goal_id"`
	Action Action  `db:"action" json:"action"`
	Value  float64 `db:"value" json:"value"`
	TS     string  `db:"ts" json:"timestamp"`
}
