package models

import (
	"time"

	"gorm.io/gorm"
)

// Frequency is how often an access review reminder fires
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// Normalize maps unrecognized or empty values to the monthly default.
func (f Frequency) Normalize() Frequency {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly:
		return f
	default:
		return FrequencyMonthly
	}
}

// NextFrom computes the next reminder date from the given moment. Weekly is a
// fixed 7-day offset; monthly and quarterly use calendar months, clamping to
// the last valid day of the target month (Jan 31 + 1 month = Feb 29 in a leap
// year, not Mar 2).
func (f Frequency) NextFrom(now time.Time) time.Time {
	switch f.Normalize() {
	case FrequencyWeekly:
		return now.AddDate(0, 0, 7)
	case FrequencyQuarterly:
		return addMonthsClamped(now, 3)
	default:
		return addMonthsClamped(now, 1)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if lastDay := firstOfTarget.AddDate(0, 1, -1).Day(); day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// Reminder schedules recurring access review notifications for an
// application. At most one active reminder exists per application; the upsert
// path updates in place rather than inserting a second row.
type Reminder struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ApplicationID    uint       `gorm:"not null;index" json:"application_id"`
	Frequency        Frequency  `gorm:"size:20;not null;default:monthly" json:"reminder_frequency"`
	NextReminderDate time.Time  `gorm:"not null;index" json:"next_reminder_date"`
	IsActive         bool       `gorm:"not null;default:true" json:"is_active"`
	LastSent         *time.Time `json:"last_sent,omitempty"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`

	Emails []ReminderEmail `gorm:"foreignKey:ReminderID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate hook is called before creating a new reminder
func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.Frequency == "" {
		r.Frequency = FrequencyMonthly
	}
	return nil
}

// TableName specifies the table name for the Reminder model
func (Reminder) TableName() string {
	return "reminders"
}

// ReminderEmail is one notification recipient of a reminder. The set is
// replaced wholesale on every upsert.
type ReminderEmail struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ReminderID uint   `gorm:"not null;index" json:"reminder_id"`
	Email      string `gorm:"size:255;not null" json:"email"`
}

// TableName specifies the table name for the ReminderEmail model
func (ReminderEmail) TableName() string {
	return "reminder_emails"
}

// UpsertReminderRequest creates or replaces an application's reminder
type UpsertReminderRequest struct {
	ApplicationID      uint      `json:"applicationId"`
	ApplicationName    string    `json:"applicationName"`
	ReminderFrequency  Frequency `json:"reminderFrequency"`
	NotificationEmails []string  `json:"notificationEmails"`
	SendImmediateEmail bool      `json:"sendImmediateEmail"`
}

// SendReminderRequest triggers a manual reminder send
type SendReminderRequest struct {
	ReminderID         uint      `json:"reminderId"`
	ApplicationName    string    `json:"applicationName"`
	NotificationEmails []string  `json:"notificationEmails"`
	ReminderFrequency  Frequency `json:"reminderFrequency"`
}

// ReminderView is the reminder shape returned by the API
type ReminderView struct {
	ID                 uint       `json:"id"`
	ApplicationID      uint       `json:"applicationId"`
	ApplicationName    string     `json:"applicationName,omitempty"`
	ReminderFrequency  Frequency  `json:"reminderFrequency"`
	NextReminderDate   string     `json:"nextReminderDate"`
	NotificationEmails []string   `json:"notificationEmails"`
	IsActive           bool       `json:"isActive"`
	CreatedAt          time.Time  `json:"createdAt"`
	LastSent           *time.Time `json:"lastSent,omitempty"`
}
