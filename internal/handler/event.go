package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/daedal-bit/yearplan/internal/ctxkeys"
	"github.com/daedal-bit/yearplan/internal/model"
	"github.com/daedal-bit/yearplan/internal/repository"
	"github.com/daedal-bit/yearplan/internal/service"
)

type eventHandler struct {
	goalService  *service.GoalService
	emailService *service.EmailService
}

func NewEventHandler(goalService *service.GoalService, emailService *service.EmailService) *eventHandler {
	return &eventHandler{
		goalService:  goalService,
		emailService: emailService,
	}
}

// Edit corrects a log entry in place and recomputes the goal.
func (h *eventHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	eventID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid log id")
		return
	}

	var req struct {
		Action    *string  `json:"action"`
		Value     *float64 `json:"value"`
		Timestamp *string  `json:"timestamp"`
	}
	err = decodeBody(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var edit service.EventEdit
	if req.Action != nil {
		action := model.Action(*req.Action)
		if !action.Valid() {
			respondError(w, http.StatusBadRequest, "action must be increment, decrement or update")
			return
		}
		edit.Action = &action
	}
	edit.Value = req.Value
	edit.TS = req.Timestamp

	now := time.Now()
	event, justCompleted, err := h.goalService.EditEvent(user.ID, eventID, edit, now)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			respondError(w, http.StatusNotFound, "log entry not found")
			return
		}
		slog.Error("failed to edit log entry", "error", err, "event_id", eventID)
		respondError(w, http.StatusInternalServerError, "failed to edit log entry")
		return
	}

	if justCompleted {
		h.sendCongrats(user, event.GoalID, now)
	}

	respondJSON(w, http.StatusOK, event)
}

// Delete removes exactly one log entry and recomputes the goal. This is also
// the rollback mechanism: no compensating entry is written.
func (h *eventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid log id")
		return
	}

	h.deleteEntry(w, r, eventID, "log entry deleted")
}

// Rollback undoes one log entry by deleting it. For a percentage goal this
// only restores a prior value if an earlier update survives in the log.
func (h *eventHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid log id")
		return
	}

	h.deleteEntry(w, r, eventID, "log entry rolled back")
}

func (h *eventHandler) deleteEntry(w http.ResponseWriter, r *http.Request, eventID int64, message string) {
	user := ctxkeys.User(r.Context())

	now := time.Now()
	goalID, justCompleted, err := h.goalService.DeleteEvent(user.ID, eventID, now)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			respondError(w, http.StatusNotFound, "log entry not found")
			return
		}
		slog.Error("failed to delete log entry", "error", err, "event_id", eventID)
		respondError(w, http.StatusInternalServerError, "failed to delete log entry")
		return
	}

	// Removing an inflow entry on a decrement goal can push it to 100%.
	if justCompleted {
		h.sendCongrats(user, goalID, now)
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (h *eventHandler) sendCongrats(user *model.User, goalID int64, now time.Time) {
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
