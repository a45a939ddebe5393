package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/daedal-bit/yearplan/internal/engine"
)

// ReportService builds the goal progress summaries that go into reminder
// emails: a one-line overview plus a detailed per-goal table in text and
// HTML.
type ReportService struct {
	goalService *GoalService
}

func NewReportService(goalService *GoalService) *ReportService {
	return &ReportService{goalService: goalService}
}

var labelDecoration = map[string]string{
	engine.LabelCompleted:  "🏁 Completed",
	engine.LabelAhead:      "🚀 Ahead",
	engine.LabelBehind:     "⚠️ Behind",
	engine.LabelOnTrack:    "✅ On Track",
	engine.LabelInProgress: "⏳ In Progress",
	engine.LabelPending:    "Pending",
}

func decorate(label string) string {
	if d, ok := labelDecoration[label]; ok {
		return d
	}
	return label
}

// SingleLine is the short overview used as the reminder email lead.
func (s *ReportService) SingleLine(userID string, today time.Time) (string, error) {
	goals, err := s.goalService.Goals(userID, today)
	if err != nil {
		return "", err
	}
	if len(goals) == 0 {
		return "📝 No goals yet - add your first goal today!", nil
	}

	completed := 0
	for _, g := range goals {
		if g.Status.Percent >= 100 {
			completed++
		}
	}
	inProgress := len(goals) - completed

	return fmt.Sprintf("📊 Goals: %d | ✅ Completed: %d | 🔄 In Progress: %d", len(goals), completed, inProgress), nil
}

// Text builds the plaintext report table: name, target, current, percent and
// a schedule label per goal.
func (s *ReportService) Text(userID string, today time.Time) (string, error) {
	goals, err := s.goalService.Goals(userID, today)
	if err != nil {
		return "", err
	}
	if len(goals) == 0 {
		return "📝 You haven't created any goals yet. Start by adding your first annual goal!", nil
	}

	completed := 0
	for _, g := range goals {
		if g.Status.Percent >= 100 {
			completed++
		}
	}

	var b strings.Builder
	b.WriteString("📊 Goals Detailed Report:\n")
	fmt.Fprintf(&b, "Total: %d | Completed: %d | Active: %d\n\n", len(goals), completed, len(goals)-completed)
	b.WriteString("Name | Target | Current | Progress% | Status\n")
	b.WriteString("-----|--------|---------|-----------|--------\n")

	for _, g := range goals {
		expected := engine.ExpectedPercent(g.Goal, today)
		label := decorate(engine.StatusLabel(g.Status.Percent, expected))
		fmt.Fprintf(&b, "%s | %s | %g | %5.1f%% | %s\n",
			g.Goal.Text, formatTarget(g.Goal.Target), g.Status.Progress, g.Status.Percent, label)
	}

	return b.String(), nil
}

// HTML builds the same report as an HTML table for email clients.
func (s *ReportService) HTML(userID string, today time.Time) (string, error) {
	goals, err := s.goalService.Goals(userID, today)
	if err != nil {
		return "", err
	}

	var rows strings.Builder
	for _, g := range goals {
		expected := engine.ExpectedPercent(g.Goal, today)
		label := decorate(engine.StatusLabel(g.Status.Percent, expected))
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td><td>%g</td><td>%.1f%%</td><td>%s</td></tr>\n",
			html.EscapeString(g.Goal.Text), formatTarget(g.Goal.Target), g.Status.Progress, g.Status.Percent, label)
	}

	return fmt.Sprintf(`<table style="border-collapse:collapse; width:100%%;">
  <thead>
    <tr>
      <th style="text-align:left; border-bottom:1px solid #ccc; padding:8px;">Name</th>
      <th style="text-align:left; border-bottom:1px solid #ccc; padding:8px;">Target</th>
      <th style="text-align:left; border-bottom:1px solid #ccc; padding:8px;">Current</th>
      <th style="text-align:left; border-bottom:1px solid #ccc; padding:8px;">Progress%%</th>
      <th style="text-align:left; border-bottom:1px solid #ccc; padding:8px;">Status</th>
    </tr>
  </thead>
  <tbody>
%s  </tbody>
</table>`, rows.String()), nil
}

func formatTarget(target *float64) string {
	if target == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *target)
}
