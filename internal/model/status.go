package model

// StatusSnapshot is the derived progress view of one goal at a logical
// "today". It is never persisted; replaying the goal's event log always
// reproduces it.
type StatusSnapshot struct {
	// Progress is the resolved current value, clamped into the valid range
	// for the goal's task type.
	Progress float64 `json:"progress"`
	// Percent is completion in [0, 100].
	Percent float64 `json:"percent"`
	// Expected is the time-projected value at "today", nil without a date
	// window.
	Expected *float64 `json:"expected"`
	// InTrack is nil when Expected is nil or the expected distance is zero.
	InTrack *bool `json:"in_track"`

	Target   *float64 `json:"target"`
	Start    float64  `json:"start"`
	TaskType TaskType `json:"task_type"`
}
