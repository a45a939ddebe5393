package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/daedal-bit/yearplan/internal/engine"
	"github.com/daedal-bit/yearplan/internal/model"
	"github.com/daedal-bit/yearplan/internal/repository"
)

var (
	// ErrValueDecrease rejects a manual update that would lower a percentage
	// goal. Percentage goals only go down by deleting events.
	ErrValueDecrease = errors.New("percentage goals cannot be lowered by update")
)

// GoalWithStatus pairs a goal with its computed status snapshot.
type GoalWithStatus struct {
	Goal   *model.Goal          `json:"goal"`
	Status model.StatusSnapshot `json:"status"`
}

// EventEdit carries a partial update to an existing event. Nil fields are
// left unchanged.
type EventEdit struct {
	Action *model.Action
	Value  *float64
	TS     *string
}

type GoalService struct {
	repo      repository.GoalRepository
	eventRepo repository.EventRepository
}

func NewGoalService(repo repository.GoalRepository, eventRepo repository.EventRepository) *GoalService {
	return &GoalService{
		repo:      repo,
		eventRepo: eventRepo,
	}
}

func (s *GoalService) Create(userID, text string, taskType model.TaskType, target, startValue *float64, startDate, endDate *time.Time) (*model.Goal, error) {
	if !taskType.Valid() {
		taskType = model.TaskIncrement
	}

	now := time.Now()
	goal := &model.Goal{
		UserID:     userID,
		Text:       text,
		TaskType:   taskType,
		Target:     target,
		StartValue: startValue,
		StartDate:  startDate,
		EndDate:    endDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.repo.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

func (s *GoalService) ByID(userID string, goalID int64) (*model.Goal, error) {
	return s.repo.ByID(userID, goalID)
}

// Goals returns all of a user's goals, each paired with its status at today.
func (s *GoalService) Goals(userID string, today time.Time) ([]*GoalWithStatus, error) {
	goals, err := s.repo.Goals(userID)
	if err != nil {
		return nil, err
	}

	result := make([]*GoalWithStatus, 0, len(goals))
	for _, goal := range goals {
		events, err := s.eventRepo.ByGoal(goal.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &GoalWithStatus{
			Goal:   goal,
			Status: engine.ComputeStatus(goal, events, today),
		})
	}

	return result, nil
}

// Status computes the status snapshot for one goal at the given date.
func (s *GoalService) Status(userID string, goalID int64, today time.Time) (*model.StatusSnapshot, error) {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ByGoal(goalID)
	if err != nil {
		return nil, err
	}

	snap := engine.ComputeStatus(goal, events, today)
	return &snap, nil
}

// Events returns a goal's event log after verifying ownership.
func (s *GoalService) Events(userID string, goalID int64) ([]model.Event, error) {
	_, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	return s.eventRepo.ByGoal(goalID)
}

func (s *GoalService) Rename(userID string, goalID int64, text string) error {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return err
	}

	goal.Text = text
	return s.repo.Update(goal)
}

// UpdateTarget sets or clears a goal's target explicitly. Events and the
// current value are untouched.
func (s *GoalService) UpdateTarget(userID string, goalID int64, target *float64) (*GoalWithStatus, error) {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	goal.Target = target
	err = s.repo.Update(goal)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ByGoal(goalID)
	if err != nil {
		return nil, err
	}

	return &GoalWithStatus{
		Goal:   goal,
		Status: engine.ComputeStatus(goal, events, time.Now()),
	}, nil
}

// Delete removes a goal; its events go with it (ON DELETE CASCADE).
func (s *GoalService) Delete(userID string, goalID int64) error {
	return s.repo.Delete(userID, goalID)
}

// Completed returns the user's completed goals, most recent first.
func (s *GoalService) Completed(userID string) ([]*model.Goal, error) {
	return s.repo.Completed(userID)
}

func (s *GoalService) DeleteCompleted(userID string, goalID int64) error {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return err
	}
	if !goal.IsCompleted {
		return repository.ErrGoalNotFound
	}
	return s.repo.Delete(userID, goalID)
}

// ApplyEvent records one progress mutation against a goal. The action is
// normalized against the goal's task type first; a percentage update below
// the currently resolved value is rejected with ErrValueDecrease and writes
// nothing. justCompleted is true exactly once, on the write that pushed the
// goal to 100%, so the caller can send a one-time congratulations.
func (s *GoalService) ApplyEvent(userID string, goalID int64, action model.Action, value float64, ts string, now time.Time) (*model.Event, bool, error) {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, false, err
	}

	action = engine.NormalizeAction(goal.TaskType, action)

	if goal.TaskType == model.TaskPercentage && action == model.ActionUpdate {
		events, err := s.eventRepo.ByGoal(goalID)
		if err != nil {
			return nil, false, err
		}
		if value < engine.Resolve(goal, events) {
			return nil, false, ErrValueDecrease
		}
	}

	if ts == "" {
		ts = now.Format("2006-01-02 15:04:05")
	}
	event := &model.Event{
		GoalID: goalID,
		Action: action,
		Value:  value,
		TS:     ts,
	}
	err = s.eventRepo.Create(event)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record event: %w", err)
	}

	justCompleted, err := s.recompute(goal, now)
	if err != nil {
		return nil, false, err
	}

	return event, justCompleted, nil
}

// EditEvent updates an existing event in place and re-runs the recompute
// pipeline, since the log is mutable (corrections, rollbacks).
func (s *GoalService) EditEvent(userID string, eventID int64, edit EventEdit, now time.Time) (*model.Event, bool, error) {
	event, goal, err := s.eventWithGoal(userID, eventID)
	if err != nil {
		return nil, false, err
	}

	if edit.Action != nil {
		event.Action = *edit.Action
	}
	if edit.Value != nil {
		event.Value = *edit.Value
	}
	if edit.TS != nil {
		event.TS = *edit.TS
	}

	err = s.eventRepo.Update(event)
	if err != nil {
		return nil, false, err
	}

	justCompleted, err := s.recompute(goal, now)
	if err != nil {
		return nil, false, err
	}

	return event, justCompleted, nil
}

// DeleteEvent removes exactly the given event. Deletion is the rollback
// mechanism: no compensating entry is synthesized. For a percentage goal this
// only restores a prior value if an earlier update survives in the log.
func (s *GoalService) DeleteEvent(userID string, eventID int64, now time.Time) (int64, bool, error) {
	event, goal, err := s.eventWithGoal(userID, eventID)
	if err != nil {
		return 0, false, err
	}

	err = s.eventRepo.Delete(event.ID)
	if err != nil {
		return 0, false, err
	}

	justCompleted, err := s.recompute(goal, now)
	if err != nil {
		return 0, false, err
	}

	return goal.ID, justCompleted, nil
}

// eventWithGoal loads an event and its parent goal, enforcing ownership. An
// ownership mismatch reads the same as a missing event so existence never
// leaks across users.
func (s *GoalService) eventWithGoal(userID string, eventID int64) (*model.Event, *model.Goal, error) {
	event, err := s.eventRepo.ByID(eventID)
	if err != nil {
		return nil, nil, err
	}

	goal, err := s.repo.ByID(userID, event.GoalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, nil, repository.ErrEventNotFound
		}
		return nil, nil, err
	}

	return event, goal, nil
}

// recompute runs the shared post-mutation pipeline: re-resolve the current
// value, auto-adjust an overshot target, and mark completion once percent
// reaches 100. The transition is one-way; later edits never un-complete.
func (s *GoalService) recompute(goal *model.Goal, now time.Time) (bool, error) {
	events, err := s.eventRepo.ByGoal(goal.ID)
	if err != nil {
		return false, err
	}

	current := engine.Resolve(goal, events)

	if goal.Target != nil {
		switch goal.TaskType {
		case model.TaskIncrement:
			if current > *goal.Target {
				goal.Target = &current
			}
		case model.TaskDecrement:
			if current < *goal.Target {
				goal.Target = &current
			}
		}
	}

	justCompleted := false
	snap := engine.ComputeStatus(goal, events, now)
	if snap.Percent >= 100 && !goal.IsCompleted {
		completedAt := now
		goal.IsCompleted = true
		goal.CompletedAt = &completedAt
		goal.CompletedValue = &current
		justCompleted = true
	}

	err = s.repo.Update(goal)
	if err != nil {
		return false, err
	}

	return justCompleted, nil
}
