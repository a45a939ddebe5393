package model

import (
	"time"
)

const (
	ReminderDaily    = "daily"
	ReminderWeekly   = "weekly"
	ReminderBiweekly = "biweekly"
	ReminderMonthly  = "monthly"
)

// ReminderInterval maps a reminder frequency to the minimum time between
// reminder emails. Unknown frequencies fall back to weekly.
func ReminderInterval(frequency string) time.Duration {
	switch frequency {
	case ReminderDaily:
		return 24 * time.Hour
	case ReminderBiweekly:
		return 14 * 24 * time.Hour
	case ReminderMonthly:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

func ValidReminderFrequency(frequency string) bool {
	switch frequency {
	case ReminderDaily, ReminderWeekly, ReminderBiweekly, ReminderMonthly:
		return true
	}
	return false
}

type User struct {
	ID                string     `db:"id"`
	Name              string     `db:"name"`
	Email             string     `db:"email"`
	PasswordHash      *string    `db:"password_hash"`
	EmailVerifiedAt   *time.Time `db:"email_verified_at"`
	ReminderFrequency string     `db:"reminder_frequency"`
	ReminderEnabled   bool       `db:"reminder_enabled"`
	LastReminderSent  *time.Time `db:"last_reminder_sent"`
	CreatedAt         time.Time  `db:"created_at"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
