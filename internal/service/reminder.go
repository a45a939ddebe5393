package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/daedal-bit/yearplan/internal/model"
	"github.com/daedal-bit/yearplan/internal/repository"
)

// ReminderService decides who is due a reminder email and sends progress
// reports. It is driven by a cron-style endpoint rather than an internal
// scheduler so deployments control the cadence.
type ReminderService struct {
	userRepo      repository.UserRepository
	reportService *ReportService
	emailService  *EmailService
}

func NewReminderService(userRepo repository.UserRepository, reportService *ReportService, emailService *EmailService) *ReminderService {
	return &ReminderService{
		userRepo:      userRepo,
		reportService: reportService,
		emailService:  emailService,
	}
}

// Preferences returns a user's reminder settings.
func (s *ReminderService) Preferences(userID string) (frequency string, enabled bool, lastSent *time.Time, err error) {
	user, err := s.userRepo.ByID(userID)
	if err != nil {
		return "", false, nil, err
	}
	return user.ReminderFrequency, user.ReminderEnabled, user.LastReminderSent, nil
}

func (s *ReminderService) UpdatePreferences(userID, frequency string, enabled bool) error {
	if !model.ValidReminderFrequency(frequency) {
		return fmt.Errorf("invalid reminder frequency: %q", frequency)
	}

	user, err := s.userRepo.ByID(userID)
	if err != nil {
		return err
	}

	user.ReminderFrequency = frequency
	user.ReminderEnabled = enabled
	return s.userRepo.Update(user)
}

// DueUsers returns verified, reminder-enabled users whose last reminder is
// older than their frequency interval. Never-reminded users are always due.
func (s *ReminderService) DueUsers(now time.Time) ([]*model.User, error) {
	users, err := s.userRepo.Remindable()
	if err != nil {
		return nil, err
	}

	var due []*model.User
	for _, user := range users {
		if user.LastReminderSent == nil {
			due = append(due, user)
			continue
		}
		if now.Sub(*user.LastReminderSent) >= model.ReminderInterval(user.ReminderFrequency) {
			due = append(due, user)
		}
	}

	return due, nil
}

// SendReminder builds and sends one user's progress report, then records the
// send time so the next one waits a full interval.
func (s *ReminderService) SendReminder(user *model.User, now time.Time) error {
	single, err := s.reportService.SingleLine(user.ID, now)
	if err != nil {
		return err
	}
	text, err := s.reportService.Text(user.ID, now)
	if err != nil {
		return err
	}
	table, err := s.reportService.HTML(user.ID, now)
	if err != nil {
		return err
	}

	textReport := single + "\n\n" + text
	htmlReport := fmt.Sprintf(`<html>
  <body style="font-family: -apple-system, Segoe UI, Roboto, Helvetica, Arial, sans-serif;">
    <div style="line-height:1.5; margin-bottom:16px;">%s</div>
    %s
  </body>
</html>`, single, table)

	err = s.emailService.SendReminderEmail(user.Email, user.Name, textReport, htmlReport)
	if err != nil {
		return err
	}

	sent := now
	user.LastReminderSent = &sent
	return s.userRepo.Update(user)
}

// ProcessReminders sends reports to every due user and returns sent/failed
// counts. One user's failure never blocks the rest.
func (s *ReminderService) ProcessReminders(now time.Time) (sent, failed int, err error) {
	due, err := s.DueUsers(now)
	if err != nil {
		return 0, 0, err
	}

	for _, user := range due {
		err := s.SendReminder(user, now)
		if err != nil {
			slog.Error("failed to send reminder", "error", err, "user_id", user.ID, "email", user.Email)
			failed++
			continue
		}
		sent++
	}

	slog.Info("processed reminders", "due", len(due), "sent", sent, "failed", failed)
	return sent, failed, nil
}
