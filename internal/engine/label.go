package engine

// Caller-facing status labels. The ahead/behind band is the same ±30%
// threshold used for the snapshot's in-track flag.
const (
	LabelCompleted  = "completed"
	LabelAhead      = "ahead"
	LabelBehind     = "behind"
	LabelOnTrack    = "on track"
	LabelInProgress = "in progress"
	LabelPending    = "pending"
)

// StatusLabel classifies actual percent against expected percent. A finished
// goal is always "completed" no matter how it tracked against its schedule.
func StatusLabel(percent float64, expectedPercent *float64) string {
	if percent >= 100 {
		return LabelCompleted
	}
	if expectedPercent == nil || *expectedPercent <= 0 {
		if percent > 0 {
			return LabelInProgress
		}
		return LabelPending
	}
	ratio := percent / *expectedPercent
	switch {
	case ratio >= 1.3:
		return LabelAhead
	case ratio <= 0.7:
		return LabelBehind
	default:
		return LabelOnTrack
	}
}
