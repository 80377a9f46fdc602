package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cruxmailweb/access-management-tool/internal/models"
)

// ReminderService owns the reminder lifecycle for applications: creation,
// update, next-due-date computation, and coordination of email dispatch.
type ReminderService struct {
	db         *gorm.DB
	dispatcher Dispatcher
	clock      Clock
	log        *logrus.Logger
}

// NewReminderService wires the service with its collaborators.
func NewReminderService(db *gorm.DB, dispatcher Dispatcher, clock Clock, log *logrus.Logger) *ReminderService {
	return &ReminderService{
		db:         db,
		dispatcher: dispatcher,
		clock:      clock,
		log:        log,
	}
}

// SendResult reports the outcome of a manual reminder send.
type SendResult struct {
	ReminderID uint           `json:"reminderId"`
	EmailsSent int            `json:"emailsSent"`
	SentAt     time.Time      `json:"sentAt"`
	Result     DispatchResult `json:"emailResult"`
}

// UpsertReminder creates or replaces the reminder for an application. An
// existing active reminder is updated in place, keeping at most one active
// reminder per application; the email set is replaced wholesale. The whole
// sequence runs in one transaction so the reminder row and its emails are
// never observed half-updated.
func (s *ReminderService) UpsertReminder(req models.UpsertReminderRequest) (*models.ReminderView, error) {
	if req.ApplicationID == 0 || req.ApplicationName == "" {
		return nil, fmt.Errorf("%w: application id and name are required", ErrValidation)
	}

	frequency := req.ReminderFrequency.Normalize()
	now := s.clock.Now()
	nextDate := frequency.NextFrom(now)
	emails := req.NotificationEmails
	if emails == nil {
		emails = []string{}
	}

	var reminder models.Reminder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("application_id = ?", req.ApplicationID).First(&reminder).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"frequency":          frequency,
				"next_reminder_date": nextDate,
				"is_active":          true,
			}
			if err := tx.Model(&reminder).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update reminder: %w", err)
			}
			if err := tx.Where("reminder_id = ?", reminder.ID).Delete(&models.ReminderEmail{}).Error; err != nil {
				return fmt.Errorf("failed to clear reminder emails: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			reminder = models.Reminder{
				ApplicationID:    req.ApplicationID,
				Frequency:        frequency,
				NextReminderDate: nextDate,
				IsActive:         true,
				CreatedAt:        now,
			}
			if err := tx.Create(&reminder).Error; err != nil {
				return fmt.Errorf("failed to create reminder: %w", err)
			}
		default:
			return fmt.Errorf("failed to look up reminder: %w", err)
		}

		for _, email := range emails {
			row := models.ReminderEmail{ReminderID: reminder.ID, Email: email}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to insert reminder email: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Confirmation email is best-effort: the reminder record is the source
	// of truth, so a dispatch failure must not fail the upsert.
	if req.SendImmediateEmail && len(emails) > 0 {
		content := GenerateReminderContent(req.ApplicationName, frequency, now)
		if _, err := s.dispatcher.Send(emails, content.Subject, content.HTML, content.Text); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"application_id": req.ApplicationID,
				"reminder_id":    reminder.ID,
			}).Error("Failed to send reminder confirmation email")
		}
	}

	return &models.ReminderView{
		ID:                 reminder.ID,
		ApplicationID:      req.ApplicationID,
		ApplicationName:    req.ApplicationName,
		ReminderFrequency:  frequency,
		NextReminderDate:   nextDate.Format(time.RFC3339),
		NotificationEmails: emails,
		IsActive:           true,
		CreatedAt:          reminder.CreatedAt,
		LastSent:           reminder.LastSent,
	}, nil
}

// GetReminder returns the active reminder for an application with its email
// list, or nil when none is configured. The no-reminder case is not an error.
func (s *ReminderService) GetReminder(applicationID uint) (*models.ReminderView, error) {
	var reminder models.Reminder
	err := s.db.Preload("Emails").
		Where("application_id = ? AND is_active = ?", applicationID, true).
		First(&reminder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminder: %w", err)
	}

	emails := make([]string, 0, len(reminder.Emails))
	for _, e := range reminder.Emails {
		emails = append(emails, e.Email)
	}

	return &models.ReminderView{
		ID:                 reminder.ID,
		ApplicationID:      reminder.ApplicationID,
		ReminderFrequency:  reminder.Frequency,
		NextReminderDate:   reminder.NextReminderDate.Format(time.RFC3339),
		NotificationEmails: emails,
		IsActive:           reminder.IsActive,
		CreatedAt:          reminder.CreatedAt,
		LastSent:           reminder.LastSent,
	}, nil
}

// SendNow renders and dispatches a reminder immediately. ReminderID 0 means
// an ad-hoc send for a reminder that was never persisted; otherwise the
// reminder's last_sent timestamp is updated. The next due date is never
// touched here. Unlike the upsert confirmation, a dispatch failure is
// returned to the caller: sending is the entire point of this operation.
func (s *ReminderService) SendNow(req models.SendReminderRequest) (*SendResult, error) {
	if req.ApplicationName == "" {
		return nil, fmt.Errorf("%w: application name is required", ErrValidation)
	}
	if len(req.NotificationEmails) == 0 {
		return nil, fmt.Errorf("%w: no notification emails provided", ErrValidation)
	}

	now := s.clock.Now()
	content := GenerateReminderContent(req.ApplicationName, req.ReminderFrequency.Normalize(), now)

	result, err := s.dispatcher.Send(req.NotificationEmails, content.Subject, content.HTML, content.Text)
	if err != nil {
		return nil, err
	}

	if req.ReminderID != 0 {
		if err := s.db.Model(&models.Reminder{}).
			Where("id = ?", req.ReminderID).
			Update("last_sent", now).Error; err != nil {
			return nil, fmt.Errorf("failed to update last_sent: %w", err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"reminder_id": req.ReminderID,
		"application": req.ApplicationName,
		"recipients":  len(req.NotificationEmails),
		"provider":    result.Provider,
	}).Info("Reminder email sent")

	return &SendResult{
		ReminderID: req.ReminderID,
		EmailsSent: len(req.NotificationEmails),
		SentAt:     now,
		Result:     result,
	}, nil
}
