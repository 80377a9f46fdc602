package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cruxmailweb/access-management-tool/internal/models"
)

// Reminder endpoints respond with a {success, data|error} envelope.

// UpsertReminder creates or replaces an application's reminder (admin only)
func (h *Handler) UpsertReminder(c *gin.Context) {
	var req models.UpsertReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	view, err := h.reminders.UpsertReminder(req)
	if err != nil {
		h.envelopeError(c, err, "failed to set reminder")
		return
	}

	h.logActivity(c, "set_reminder", "reminder", view.ID, map[string]interface{}{
		"application_id": view.ApplicationID,
		"frequency":      view.ReminderFrequency,
		"recipients":     len(view.NotificationEmails),
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reminder set successfully for " + req.ApplicationName,
		"data":    view,
	})
}

// GetReminder returns the active reminder for an application, or data: null
func (h *Handler) GetReminder(c *gin.Context) {
	applicationID, err := parseID(c.Query("applicationId"))
	if err != nil || applicationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "application id is required"})
		return
	}

	view, err := h.reminders.GetReminder(applicationID)
	if err != nil {
		h.envelopeError(c, err, "failed to fetch reminder")
		return
	}
	if view == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}

// SendReminder dispatches a reminder immediately (admin only)
func (h *Handler) SendReminder(c *gin.Context) {
	var req models.SendReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.reminders.SendNow(req)
	if err != nil {
		h.envelopeError(c, err, "failed to send reminder email")
		return
	}

	h.logActivity(c, "send_reminder", "reminder", req.ReminderID, map[string]interface{}{
		"application": req.ApplicationName,
		"recipients":  result.EmailsSent,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reminder email sent for " + req.ApplicationName,
		"data":    result,
	})
}
