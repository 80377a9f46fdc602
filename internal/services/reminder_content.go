package services

import (
	"fmt"
	"time"

	"github.com/cruxmailweb/access-management-tool/internal/models"
)

// ReminderContent is a rendered reminder notification.
type ReminderContent struct {
	Subject string
	Text    string
	HTML    string
}

// GenerateReminderContent renders the subject and body for an access review
// reminder. Pure function of its inputs; callers pass the current time so
// output is deterministic under test.
func GenerateReminderContent(applicationName string, frequency models.Frequency, now time.Time) ReminderContent {
	subject := fmt.Sprintf("Access Review Reminder: %s", applicationName)
	date := now.Format("1/2/2006")

	text := fmt.Sprintf(`Access Review Reminder

Application: %s
Reminder Frequency: %s
Date: %s

This is a scheduled reminder to review user access for the %s application.

Please review:
- Current user list and permissions
- Remove any unnecessary access
- Update user roles as needed
- Verify admin permissions

Best regards,
Access Management System`, applicationName, frequency, date, applicationName)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333; border-bottom: 2px solid #007bff; padding-bottom: 10px;">Access Review Reminder</h2>
  <div style="background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="margin-top: 0; color: #007bff;">Application: %s</h3>
    <p><strong>Reminder Frequency:</strong> %s</p>
    <p><strong>Date:</strong> %s</p>
  </div>
  <p>This is a scheduled reminder to review user access for the <strong>%s</strong> application.</p>
  <h4>Please review:</h4>
  <ul>
    <li>Current user list and permissions</li>
    <li>Remove any unnecessary access</li>
    <li>Update user roles as needed</li>
    <li>Verify admin permissions</li>
  </ul>
  <div style="background-color: #e9ecef; padding: 15px; border-radius: 5px; margin-top: 20px;">
    <p style="margin: 0; font-size: 14px; color: #6c757d;">This is an automated reminder from the Access Management System.</p>
  </div>
</div>`, applicationName, frequency, date, applicationName)

	return ReminderContent{Subject: subject, Text: text, HTML: html}
}
