package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/daedal-bit/yearplan/internal/ctxkeys"
	"github.com/daedal-bit/yearplan/internal/service"
)

type reminderHandler struct {
	reminderService *service.ReminderService
}

func NewReminderHandler(reminderService *service.ReminderService) *reminderHandler {
	return &reminderHandler{reminderService: reminderService}
}

func (h *reminderHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	frequency, enabled, lastSent, err := h.reminderService.Preferences(user.ID)
	if err != nil {
		slog.Error("failed to load reminder preferences", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to load reminder preferences")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"frequency": frequency,
		"enabled":   enabled,
		"last_sent": lastSent,
	})
}

func (h *reminderHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		Frequency string `json:"frequency"`
		Enabled   bool   `json:"enabled"`
	}
	err := decodeBody(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.reminderService.UpdatePreferences(user.ID, req.Frequency, req.Enabled)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("reminder preferences updated", "user_id", user.ID, "frequency", req.Frequency, "enabled", req.Enabled)

	respondJSON(w, http.StatusOK, map[string]string{"message": "reminder preferences updated"})
}

// SendReminder sends the current user their progress report immediately,
// regardless of schedule.
func (h *reminderHandler) SendReminder(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.reminderService.SendReminder(user, time.Now())
	if err != nil {
		slog.Error("failed to send reminder", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to send reminder")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "reminder sent"})
}

// ProcessReminders is the cron entry point: it emails every due user.
func (h *reminderHandler) ProcessReminders(w http.ResponseWriter, r *http.Request) {
	sent, failed, err := h.reminderService.ProcessReminders(time.Now())
	if err != nil {
		slog.Error("failed to process reminders", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to process reminders")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"sent":   sent,
		"failed": failed,
	})
}
