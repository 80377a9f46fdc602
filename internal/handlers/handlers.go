package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cruxmailweb/access-management-tool/internal/auth"
	"github.com/cruxmailweb/access-management-tool/internal/database"
	"github.com/cruxmailweb/access-management-tool/internal/models"
	"github.com/cruxmailweb/access-management-tool/internal/services"
)

// Handler holds the dependencies shared by all request handlers.
type Handler struct {
	db        *gorm.DB
	log       *logrus.Logger
	tokens    *auth.TokenManager
	reminders *services.ReminderService
}

// New builds the handler set.
func New(db *gorm.DB, log *logrus.Logger, tokens *auth.TokenManager, reminders *services.ReminderService) *Handler {
	return &Handler{
		db:        db,
		log:       log,
		tokens:    tokens,
		reminders: reminders,
	}
}

// Home handles requests to the root path "/"
func (h *Handler) Home(c *gin.Context) {
	c.String(http.StatusOK, "Access Management Tool")
}

// Health reports liveness including a database ping
func (h *Handler) Health(c *gin.Context) {
	if err := database.HealthCheck(h.db); err != nil {
		h.log.WithError(err).Error("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleError logs the underlying error and responds with a safe message.
func (h *Handler) handleError(c *gin.Context, status int, message string, err error) {
	h.log.WithError(err).Error(message)
	c.JSON(status, gin.H{"error": message})
}

// serviceStatus maps a service-layer error onto an HTTP status.
func serviceStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// envelopeError responds with the {success, error} envelope. Validation
// errors carry their own message; everything else gets the safe fallback.
func (h *Handler) envelopeError(c *gin.Context, err error, fallback string) {
	h.log.WithError(err).Error(fallback)
	message := fallback
	if errors.Is(err, services.ErrValidation) {
		message = err.Error()
	}
	c.JSON(serviceStatus(err), gin.H{"success": false, "error": message})
}

// logActivity appends a row to the audit trail. Failures are logged and
// swallowed; auditing never fails the action it records.
func (h *Handler) logActivity(c *gin.Context, action, entityType string, entityID uint, details map[string]interface{}) {
	payload, err := json.Marshal(details)
	if err != nil {
		payload = []byte("{}")
	}

	entry := models.ActivityLog{
		ActorID:    auth.CurrentUserID(c),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    datatypes.JSON(payload),
	}
	if err := h.db.Create(&entry).Error; err != nil {
		h.log.WithError(err).WithField("action", action).Warn("Failed to record activity")
	}
}
