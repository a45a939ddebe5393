package routes

import (
	"net/http"

	"github.com/daedal-bit/yearplan/internal/app"
	"github.com/daedal-bit/yearplan/internal/handler"
	"github.com/daedal-bit/yearplan/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.UserService)
	goal := handler.NewGoalHandler(app.GoalService, app.EmailService)
	event := handler.NewEventHandler(app.GoalService, app.EmailService)
	reminder := handler.NewReminderHandler(app.ReminderService)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /api/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /api/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /api/logout", auth.Logout)
	mux.HandleFunc("GET /verify-email", auth.VerifyEmail)
	mux.HandleFunc("POST /api/resend-verification", rateLimiter(auth.ResendVerification))
	mux.HandleFunc("GET /api/current-user", middleware.RequireAuth(auth.CurrentUser))
	mux.HandleFunc("POST /api/change-email", middleware.RequireAuth(auth.ChangeEmail))
	mux.HandleFunc("POST /api/forgot-password", rateLimiter(auth.ForgotPassword))
	mux.HandleFunc("POST /api/reset-password", rateLimiter(auth.ResetPassword))
	mux.HandleFunc("POST /api/password", middleware.RequireAuth(auth.UpdatePassword))
	mux.HandleFunc("DELETE /api/account", middleware.RequireAuth(auth.DeleteAccount))

	// Goals
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goal.List))
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("PUT /api/goals/{id}", middleware.RequireAuth(goal.ApplyEvent))
	mux.HandleFunc("PUT /api/goals/{id}/name", middleware.RequireAuth(goal.Rename))
	mux.HandleFunc("PUT /api/goals/{id}/target", middleware.RequireAuth(goal.UpdateTarget))
	mux.HandleFunc("GET /api/goals/{id}/status", middleware.RequireAuth(goal.Status))
	mux.HandleFunc("GET /api/goals/{id}/logs", middleware.RequireAuth(goal.Logs))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireAuth(goal.Delete))
	mux.HandleFunc("GET /api/completed-goals", middleware.RequireAuth(goal.ListCompleted))
	mux.HandleFunc("DELETE /api/completed-goals/{id}", middleware.RequireAuth(goal.DeleteCompleted))

	// Logs
	mux.HandleFunc("PUT /api/logs/{id}", middleware.RequireAuth(event.Edit))
	mux.HandleFunc("DELETE /api/logs/{id}", middleware.RequireAuth(event.Delete))
	mux.HandleFunc("POST /api/logs/{id}/rollback", middleware.RequireAuth(event.Rollback))

	// Reminders
	mux.HandleFunc("GET /api/reminder-preferences", middleware.RequireAuth(reminder.Preferences))
	mux.HandleFunc("POST /api/reminder-preferences", middleware.RequireAuth(reminder.UpdatePreferences))
	mux.HandleFunc("POST /api/send-reminder", middleware.RequireAuth(reminder.SendReminder))
	mux.HandleFunc("POST /api/process-reminders", reminder.ProcessReminders)

	// Health
	mux.HandleFunc("GET /health", health.Health)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService, app.UserService),
	)
}
