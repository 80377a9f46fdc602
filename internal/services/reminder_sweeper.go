package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cruxmailweb/access-management-tool/internal/models"
)

// ReminderSweeper finds due reminders and fires them unattended. After a
// successful dispatch it sets last_sent and advances next_reminder_date, so
// running the sweep again for the same due date resends nothing.
type ReminderSweeper struct {
	db         *gorm.DB
	dispatcher Dispatcher
	clock      Clock
	log        *logrus.Logger
	interval   time.Duration
	done       chan struct{}
}

// SweepStats summarizes one sweep run.
type SweepStats struct {
	Due    int
	Sent   int
	Errors int
}

// NewReminderSweeper wires the sweeper with its collaborators.
func NewReminderSweeper(db *gorm.DB, dispatcher Dispatcher, clock Clock, log *logrus.Logger, interval time.Duration) *ReminderSweeper {
	return &ReminderSweeper{
		db:         db,
		dispatcher: dispatcher,
		clock:      clock,
		log:        log,
		interval:   interval,
		done:       make(chan struct{}),
	}
}

// Start runs the sweep on a ticker in a background goroutine.
func (s *ReminderSweeper) Start() {
	go s.run()
}

// Stop terminates the background loop.
func (s *ReminderSweeper) Stop() {
	close(s.done)
}

func (s *ReminderSweeper) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.interval.String()).Info("Reminder sweeper started")
	for {
		select {
		case <-ticker.C:
			s.RunOnce()
		case <-s.done:
			s.log.Info("Reminder sweeper stopped")
			return
		}
	}
}

// RunOnce processes every reminder whose next date has passed. Reminders are
// handled independently: one failed dispatch is logged and does not block the
// rest, and the failed row stays due for the next run.
func (s *ReminderSweeper) RunOnce() SweepStats {
	now := s.clock.Now()
	var stats SweepStats

	var due []models.Reminder
	if err := s.db.Preload("Emails").
		Where("is_active = ? AND next_reminder_date <= ?", true, now).
		Find(&due).Error; err != nil {
		s.log.WithError(err).Error("Failed to query due reminders")
		stats.Errors++
		return stats
	}
	stats.Due = len(due)

	for _, reminder := range due {
		if err := s.processReminder(reminder, now); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"reminder_id":    reminder.ID,
				"application_id": reminder.ApplicationID,
			}).Error("Failed to process due reminder")
			stats.Errors++
			continue
		}
		stats.Sent++
	}

	if stats.Due > 0 {
		s.log.WithFields(logrus.Fields{
			"due":    stats.Due,
			"sent":   stats.Sent,
			"errors": stats.Errors,
		}).Info("Processed due reminders")
	}
	return stats
}

func (s *ReminderSweeper) processReminder(reminder models.Reminder, now time.Time) error {
	var app models.Application
	if err := s.db.First(&app, reminder.ApplicationID).Error; err != nil {
		return err
	}

	recipients := make([]string, 0, len(reminder.Emails))
	for _, e := range reminder.Emails {
		recipients = append(recipients, e.Email)
	}

	if len(recipients) > 0 {
		content := GenerateReminderContent(app.Name, reminder.Frequency, now)
		if _, err := s.dispatcher.Send(recipients, content.Subject, content.HTML, content.Text); err != nil {
			return err
		}
	} else {
		s.log.WithField("reminder_id", reminder.ID).Warn("Due reminder has no recipients, advancing without sending")
	}

	// Advance-on-send: recompute the next due date so a rerun of the sweep
	// does not resend for the same due date.
	updates := map[string]interface{}{
		"last_sent":          now,
		"next_reminder_date": reminder.Frequency.NextFrom(now),
	}
	return s.db.Model(&models.Reminder{}).Where("id = ?", reminder.ID).Updates(updates).Error
}
