package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/daedal-bit/yearplan/internal/ctxkeys"
	"github.com/daedal-bit/yearplan/internal/model"
	"github.com/daedal-bit/yearplan/internal/repository"
	"github.com/daedal-bit/yearplan/internal/service"
)

type goalHandler struct {
	goalService  *service.GoalService
	emailService *service.EmailService
}

func NewGoalHandler(goalService *service.GoalService, emailService *service.EmailService) *goalHandler {
	return &goalHandler{
		goalService:  goalService,
		emailService: emailService,
	}
}

// List returns every goal of the current user with its computed status.
func (h *goalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.Goals(user.ID, time.Now())
	if err != nil {
		slog.Error("failed to list goals", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to load goals")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (h *goalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		Text       string   `json:"text"`
		TaskType   string   `json:"task_type"`
		Target     *float64 `json:"target"`
		StartValue *float64 `json:"start_value"`
		StartDate  string   `json:"start_date"`
		EndDate    string   `json:"end_date"`
	}
	err := decodeBody(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		respondError(w, http.StatusBadRequest, "end_date must not be before start_date")
		return
	}

	goal, err := h.goalService.Create(user.ID, req.Text, model.ParseTaskType(req.TaskType), req.Target, req.StartValue, startDate, endDate)
	if err != nil {
		slog.Error("failed to create goal", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to create goal")
		return
	}

	slog.Info("goal created", "goal_id", goal.ID, "user_id", user.ID, "task_type", goal.TaskType)

	respondJSON(w, http.StatusCreated, goal)
}

// ApplyEvent records a progress event against a goal. This is the main
// progress-tracking entry point: PUT /api/goals/{id}.
func (h *goalHandler) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goalID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	var req struct {
		Action    string  `json:"action"`
		Value     float64 `json:"value"`
		Timestamp string  `json:"timestamp"`
	}
	err = decodeBody(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now()
	event, justCompleted, err := h.goalService.ApplyEvent(user.ID, goalID, model.Action(req.Action), req.Value, req.Timestamp, now)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrGoalNotFound):
			respondError(w, http.StatusNotFound, "goal not found")
		case errors.Is(err, service.ErrValueDecrease):
			respondError(w, http.StatusConflict, "percentage goals cannot be decreased; delete the log entry instead")
		default:
			slog.Error("failed to apply event", "error", err, "goal_id", goalID, "user_id", user.ID)
			respondError(w, http.StatusInternalServerError, "failed to record progress")
		}
		return
	}

	if justCompleted {
		h.sendCongrats(user, goalID, now)
	}

	status, err := h.goalService.Status(user.ID, goalID, now)
	if err != nil {
		slog.Error("failed to compute status", "error", err, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to compute status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"event":  event,
		"status": status,
	})
}

func (h *goalHandler) Rename(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goalID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	err = decodeBody(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	err = h.goalService.Rename(user.ID, goalID, req.Text)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			respondError(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.Error("failed to rename goal", "error", err, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to rename goal")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "goal renamed"})
}

func (h *goalHandler) UpdateTarget(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goalID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	var req struct {
		Target *float64 `json:"target"`
	}
	err = decodeBody(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.goalService.UpdateTarget(user.ID, goalID, req.Target)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			respondError(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.Error("failed to update target", "error", err, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to update target")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *goalHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goalID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	status, err := h.goalService.Status(user.ID, goalID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			respondError(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.Error("failed to compute status", "error", err, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to compute status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

func (h *goalHandler) Logs(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goalID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	events, err := h.goalService.Events(user.ID, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			respondError(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.Error("failed to load logs", "error", err, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to load logs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"logs": events})
}

func (h *goalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goalID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	err = h.goalService.Delete(user.ID, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			respondError(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.Error("failed to delete goal", "error", err, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to delete goal")
		return
	}

	slog.Info("goal deleted", "goal_id", goalID, "user_id", user.ID)

	respondJSON(w, http.StatusOK, map[string]string{"message": "goal deleted"})
}

func (h *goalHandler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.Completed(user.ID)
	if err != nil {
		slog.Error("failed to list completed goals", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to load completed goals")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (h *goalHandler) DeleteCompleted(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goalID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	err = h.goalService.DeleteCompleted(user.ID, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			respondError(w, http.StatusNotFound, "completed goal not found")
			return
		}
		slog.Error("failed to delete completed goal", "error", err, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to delete completed goal")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "completed goal deleted"})
}

// sendCongrats emails the one-time completion congratulations. Email failure
// never fails the request; completion is already persisted.
func (h *goalHandler) sendCongrats(user *model.User, goalID int64, now time.Time) {
	goal, err := h.goalService.ByID(user.ID, goalID)
	if err != nil {
		slog.Error("failed to load goal for congrats email", "error", err, "goal_id", goalID)
		return
	}

	err = h.emailService.SendCongratsEmail(user.Email, user.Name, goal.Text, now.Format("2006-01-02"))
	if err != nil {
		slog.Error("failed to send congrats email", "error", err, "goal_id", goalID, "user_id", user.ID)
	}
}

// parseDate parses an optional YYYY-MM-DD date, returning nil for empty input.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
