package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/daedal-bit/yearplan/internal/ctxkeys"
	"github.com/daedal-bit/yearplan/internal/service"
)

type authHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *authHandler {
	return &authHandler{
		authService: authService,
		userService: userService,
	}
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := decodeBody(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			respondError(w, http.StatusConflict, "an account with this email already exists")
		case errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrNameRequired):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			// Password validation errors carry user-facing messages.
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "registration successful, please check your email to verify your account",
		"user_id": user.ID,
	})
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := decodeBody(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotVerified):
			respondError(w, http.StatusForbidden, "please verify your email before logging in")
		default:
			respondError(w, http.StatusUnauthorized, "invalid email or password")
		}
		return
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}

	h.authService.SetJWTCookie(w, token, time.Now().Add(h.authService.JWTExpiry()))

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
	})
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *authHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "token is required")
		return
	}

	user, err := h.authService.VerifyEmail(token)
	if err != nil {
		slog.Warn("email verification failed", "error", err)
		respondError(w, http.StatusBadRequest, "invalid or expired verification link")
		return
	}

	slog.Info("email verified", "user_id", user.ID, "email", user.Email)

	respondJSON(w, http.StatusOK, map[string]string{"message": "email verified, you can now log in"})
}

// ResendVerification is the recovery path for a lost verification email.
func (h *authHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	err := decodeBody(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.authService.ResendVerification(req.Email)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyVerified) {
			respondError(w, http.StatusBadRequest, "email is already verified, you can log in")
			return
		}
		// Don't reveal whether the email exists.
		slog.Warn("verification resend failed", "error", err)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "if an unverified account exists for that email, a new verification link has been sent",
	})
}

// CurrentUser returns the authenticated user's profile.
func (h *authHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":            user.ID,
		"name":               user.Name,
		"email":              user.Email,
		"email_verified":     user.IsVerified(),
		"reminder_frequency": user.ReminderFrequency,
		"reminder_enabled":   user.ReminderEnabled,
	})
}

func (h *authHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := decodeBody(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.authService.ChangeEmail(user.ID, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "password is incorrect")
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEmailAlreadyExists):
			respondError(w, http.StatusConflict, "an account with this email already exists")
		default:
			slog.Error("failed to change email", "error", err, "user_id", user.ID)
			respondError(w, http.StatusInternalServerError, "failed to change email")
		}
		return
	}

	slog.Info("email changed", "user_id", user.ID, "email", updated.Email)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "email updated, please verify your new address before logging in again",
	})
}

func (h *authHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	err := decodeBody(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.userService.UpdatePassword(user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCurrentPassword) {
			respondError(w, http.StatusUnauthorized, "current password is incorrect")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("password changed", "user_id", user.ID)

	respondJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *authHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.userService.DeleteAccount(user.ID)
	if err != nil {
		slog.Error("failed to delete account", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	h.authService.ClearJWTCookie(w)

	slog.Info("account deleted", "user_id", user.ID)

	respondJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

func (h *authHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	err := decodeBody(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.authService.ForgotPassword(req.Email)
	if err != nil {
		// Don't reveal whether the email exists.
		slog.Warn("forgot password request failed", "error", err)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "if an account exists for that email, a reset link has been sent",
	})
}

func (h *authHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	err := decodeBody(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.authService.ResetPassword(req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			respondError(w, http.StatusBadRequest, "invalid or expired reset link")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "password reset, you can now log in"})
}
