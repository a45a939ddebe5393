package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daedal-bit/yearplan/internal/db"
	"github.com/daedal-bit/yearplan/internal/model"
	"github.com/daedal-bit/yearplan/internal/repository"
)

func newTestGoalService(t *testing.T) (*GoalService, string) {
	t.Helper()

	database, err := sqlx.Connect("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	// In-memory sqlite is per-connection; keep a single one.
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	userRepo := repository.NewUserRepository(database)
	user := &model.User{
		ID:                uuid.New().String(),
		Name:              "Test User",
		Email:             "test@example.com",
		ReminderFrequency: model.ReminderWeekly,
		CreatedAt:         time.Now(),
	}
	require.NoError(t, userRepo.Create(user))

	service := NewGoalService(
		repository.NewGoalRepository(database),
		repository.NewEventRepository(database),
	)
	return service, user.ID
}

func fp(v float64) *float64 {
	return &v
}

func TestApplyEventPercentageRejectsDecrease(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	goal, err := service.Create(userID, "Write thesis", model.TaskPercentage, nil, nil, nil, nil)
	require.NoError(t, err)

	_, _, err = service.ApplyEvent(userID, goal.ID, model.ActionUpdate, 40, "", now)
	require.NoError(t, err)

	// Lowering a percentage goal by update is rejected and writes nothing.
	_, _, err = service.ApplyEvent(userID, goal.ID, model.ActionUpdate, 30, "", now)
	require.ErrorIs(t, err, ErrValueDecrease)

	events, err := service.Events(userID, goal.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 40.0, events[0].Value)

	// A higher value goes through.
	_, _, err = service.ApplyEvent(userID, goal.ID, model.ActionUpdate, 60, "", now)
	require.NoError(t, err)

	status, err := service.Status(userID, goal.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 60.0, status.Progress)
	assert.Equal(t, 60.0, status.Percent)
}

func TestApplyEventOvershootRaisesTargetAndCompletes(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	goal, err := service.Create(userID, "Read 10 books", model.TaskIncrement, fp(10), nil, nil, nil)
	require.NoError(t, err)

	_, justCompleted, err := service.ApplyEvent(userID, goal.ID, model.ActionIncrement, 15, "", now)
	require.NoError(t, err)
	assert.True(t, justCompleted)

	updated, err := service.ByID(userID, goal.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Target)
	assert.Equal(t, 15.0, *updated.Target)
	assert.True(t, updated.IsCompleted)
	require.NotNil(t, updated.CompletedAt)
	require.NotNil(t, updated.CompletedValue)
	assert.Equal(t, 15.0, *updated.CompletedValue)

	status, err := service.Status(userID, goal.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 100.0, status.Percent)
}

func TestApplyEventDecrementUndershootLowersTarget(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	goal, err := service.Create(userID, "Weight", model.TaskDecrement, fp(180), fp(200), nil, nil)
	require.NoError(t, err)

	_, justCompleted, err := service.ApplyEvent(userID, goal.ID, model.ActionDecrement, 25, "", now)
	require.NoError(t, err)
	assert.True(t, justCompleted)

	updated, err := service.ByID(userID, goal.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Target)
	assert.Equal(t, 175.0, *updated.Target)
	assert.True(t, updated.IsCompleted)
}

func TestCompletionIsOneWay(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	goal, err := service.Create(userID, "Pushups", model.TaskIncrement, fp(10), nil, nil, nil)
	require.NoError(t, err)

	event, justCompleted, err := service.ApplyEvent(userID, goal.ID, model.ActionIncrement, 10, "", now)
	require.NoError(t, err)
	assert.True(t, justCompleted)

	completed, err := service.ByID(userID, goal.ID)
	require.NoError(t, err)
	completedAt := *completed.CompletedAt

	// Deleting the completing event lowers progress but never un-completes.
	_, justCompleted, err = service.DeleteEvent(userID, event.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, justCompleted)

	after, err := service.ByID(userID, goal.ID)
	require.NoError(t, err)
	assert.True(t, after.IsCompleted)
	require.NotNil(t, after.CompletedAt)
	assert.WithinDuration(t, completedAt, *after.CompletedAt, time.Second)

	// Reaching 100% again does not re-signal completion.
	_, justCompleted, err = service.ApplyEvent(userID, goal.ID, model.ActionIncrement, 10, "", now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, justCompleted)
}

func TestEditEventRecomputes(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	goal, err := service.Create(userID, "Savings", model.TaskIncrement, fp(100), nil, nil, nil)
	require.NoError(t, err)

	event, _, err := service.ApplyEvent(userID, goal.ID, model.ActionIncrement, 20, "", now)
	require.NoError(t, err)

	_, justCompleted, err := service.EditEvent(userID, event.ID, EventEdit{Value: fp(100)}, now)
	require.NoError(t, err)
	assert.True(t, justCompleted)

	status, err := service.Status(userID, goal.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 100.0, status.Progress)
	assert.Equal(t, 100.0, status.Percent)
}

func TestEditEventRoundTrip(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	goal, err := service.Create(userID, "Running km", model.TaskIncrement, fp(500), nil, nil, nil)
	require.NoError(t, err)

	event, _, err := service.ApplyEvent(userID, goal.ID, model.ActionIncrement, 5, "", now)
	require.NoError(t, err)
	_, _, err = service.ApplyEvent(userID, goal.ID, model.ActionIncrement, 7, "", now)
	require.NoError(t, err)

	before, err := service.Status(userID, goal.ID, now)
	require.NoError(t, err)

	// Edit away and back; the resolved value returns to what it was.
	_, _, err = service.EditEvent(userID, event.ID, EventEdit{Value: fp(50)}, now)
	require.NoError(t, err)
	_, _, err = service.EditEvent(userID, event.ID, EventEdit{Value: fp(5)}, now)
	require.NoError(t, err)

	after, err := service.Status(userID, goal.ID, now)
	require.NoError(t, err)
	assert.Equal(t, before.Progress, after.Progress)
	assert.Equal(t, before.Percent, after.Percent)
}

func TestDeleteEventRecomputes(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	goal, err := service.Create(userID, "Chapters", model.TaskIncrement, fp(12), nil, nil, nil)
	require.NoError(t, err)

	first, _, err := service.ApplyEvent(userID, goal.ID, model.ActionIncrement, 3, "", now)
	require.NoError(t, err)
	_, _, err = service.ApplyEvent(userID, goal.ID, model.ActionIncrement, 4, "", now)
	require.NoError(t, err)

	goalID, _, err := service.DeleteEvent(userID, first.ID, now)
	require.NoError(t, err)
	assert.Equal(t, goal.ID, goalID)

	status, err := service.Status(userID, goal.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 4.0, status.Progress)

	events, err := service.Events(userID, goal.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestDeletePercentageEventRestoresEarlierUpdate(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	goal, err := service.Create(userID, "Course", model.TaskPercentage, nil, nil, nil, nil)
	require.NoError(t, err)

	_, _, err = service.ApplyEvent(userID, goal.ID, model.ActionUpdate, 30, "2025-01-01 10:00:00", now)
	require.NoError(t, err)
	latest, _, err := service.ApplyEvent(userID, goal.ID, model.ActionUpdate, 70, "2025-01-02 10:00:00", now)
	require.NoError(t, err)

	_, _, err = service.DeleteEvent(userID, latest.ID, now)
	require.NoError(t, err)

	status, err := service.Status(userID, goal.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 30.0, status.Progress)
}

func TestActionNormalization(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	goal, err := service.Create(userID, "Quit smoking", model.TaskDecrement, fp(0), fp(20), nil, nil)
	require.NoError(t, err)

	// An increment against a decrement goal is coerced to a decrement.
	event, _, err := service.ApplyEvent(userID, goal.ID, model.ActionIncrement, 5, "", now)
	require.NoError(t, err)
	assert.Equal(t, model.ActionDecrement, event.Action)

	status, err := service.Status(userID, goal.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 15.0, status.Progress)
}

func TestOwnershipReadsAsNotFound(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	goal, err := service.Create(userID, "Private goal", model.TaskIncrement, fp(10), nil, nil, nil)
	require.NoError(t, err)
	event, _, err := service.ApplyEvent(userID, goal.ID, model.ActionIncrement, 1, "", now)
	require.NoError(t, err)

	otherUser := uuid.New().String()

	_, err = service.ByID(otherUser, goal.ID)
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)

	_, err = service.Events(otherUser, goal.ID)
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)

	_, _, err = service.ApplyEvent(otherUser, goal.ID, model.ActionIncrement, 1, "", now)
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)

	// Event ownership mismatch reads the same as a missing event.
	_, _, err = service.EditEvent(otherUser, event.ID, EventEdit{Value: fp(2)}, now)
	assert.ErrorIs(t, err, repository.ErrEventNotFound)

	_, _, err = service.DeleteEvent(otherUser, event.ID, now)
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
}

func TestGoalsWithStatus(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	_, err := service.Create(userID, "A", model.TaskIncrement, fp(10), nil, nil, nil)
	require.NoError(t, err)
	b, err := service.Create(userID, "B", model.TaskPercentage, nil, nil, nil, nil)
	require.NoError(t, err)
	_, _, err = service.ApplyEvent(userID, b.ID, model.ActionUpdate, 25, "", now)
	require.NoError(t, err)

	goals, err := service.Goals(userID, now)
	require.NoError(t, err)
	require.Len(t, goals, 2)

	byText := map[string]*GoalWithStatus{}
	for _, g := range goals {
		byText[g.Goal.Text] = g
	}
	assert.Equal(t, 0.0, byText["A"].Status.Percent)
	assert.Equal(t, 25.0, byText["B"].Status.Percent)
}

func TestCompletedGoals(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	goal, err := service.Create(userID, "Done deal", model.TaskIncrement, fp(1), nil, nil, nil)
	require.NoError(t, err)
	open, err := service.Create(userID, "Still open", model.TaskIncrement, fp(10), nil, nil, nil)
	require.NoError(t, err)

	_, _, err = service.ApplyEvent(userID, goal.ID, model.ActionIncrement, 1, "", now)
	require.NoError(t, err)

	completed, err := service.Completed(userID)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, goal.ID, completed[0].ID)

	// DeleteCompleted refuses goals that are still in progress.
	err = service.DeleteCompleted(userID, open.ID)
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)

	require.NoError(t, service.DeleteCompleted(userID, goal.ID))

	completed, err = service.Completed(userID)
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestUpdateTargetDoesNotTouchEvents(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	goal, err := service.Create(userID, "Pages", model.TaskIncrement, fp(100), nil, nil, nil)
	require.NoError(t, err)
	_, _, err = service.ApplyEvent(userID, goal.ID, model.ActionIncrement, 40, "", now)
	require.NoError(t, err)

	result, err := service.UpdateTarget(userID, goal.ID, fp(80))
	require.NoError(t, err)
	require.NotNil(t, result.Goal.Target)
	assert.Equal(t, 80.0, *result.Goal.Target)
	assert.Equal(t, 40.0, result.Status.Progress)
	assert.Equal(t, 50.0, result.Status.Percent)

	events, err := service.Events(userID, goal.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestDeleteGoalCascadesEvents(t *testing.T) {
	service, userID := newTestGoalService(t)
	now := time.Now()

	goal, err := service.Create(userID, "Temp", model.TaskIncrement, fp(5), nil, nil, nil)
	require.NoError(t, err)
	event, _, err := service.ApplyEvent(userID, goal.ID, model.ActionIncrement, 2, "", now)
	require.NoError(t, err)

	require.NoError(t, service.Delete(userID, goal.ID))

	_, _, err = service.DeleteEvent(userID, event.ID, now)
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
}
