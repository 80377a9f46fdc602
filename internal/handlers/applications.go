package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cruxmailweb/access-management-tool/internal/auth"
	"github.com/cruxmailweb/access-management-tool/internal/models"
)

// ApplicationResponse is an application together with its members and
// reminder, the shape the dashboard consumes.
type ApplicationResponse struct {
	ID          uint                       `json:"id"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
	Users       []models.ApplicationMember `json:"users"`
	UserCount   int                        `json:"user_count"`
	AdminCount  int                        `json:"admin_count"`
	Reminder    *models.ReminderView       `json:"reminder,omitempty"`
}

func (h *Handler) buildApplicationResponse(app models.Application) (*ApplicationResponse, error) {
	var members []models.ApplicationMember
	if err := h.db.Table("users").
		Select("users.id, users.username AS name, users.email, application_users.is_admin").
		Joins("JOIN application_users ON application_users.user_id = users.id").
		Where("application_users.application_id = ?", app.ID).
		Scan(&members).Error; err != nil {
		return nil, err
	}

	adminCount := 0
	for _, m := range members {
		if m.IsAdmin {
			adminCount++
		}
	}

	reminder, err := h.reminders.GetReminder(app.ID)
	if err != nil {
		return nil, err
	}
	if reminder != nil {
		reminder.ApplicationName = app.Name
	}

	if members == nil {
		members = []models.ApplicationMember{}
	}
	return &ApplicationResponse{
		ID:          app.ID,
		Name:        app.Name,
		Description: app.Description,
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
		Users:       members,
		UserCount:   len(members),
		AdminCount:  adminCount,
		Reminder:    reminder,
	}, nil
}

// ListApplications returns applications visible to the current user: all of
// them for admins, only memberships for readonly users.
func (h *Handler) ListApplications(c *gin.Context) {
	var apps []models.Application
	query := h.db.Order("name")
	if !auth.IsAdminRequest(c) {
		query = query.
			Joins("JOIN application_users ON application_users.application_id = applications.id").
			Where("application_users.user_id = ?", auth.CurrentUserID(c))
	}
	if err := query.Find(&apps).Error; err != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to fetch applications", err)
		return
	}

	responses := make([]*ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		resp, err := h.buildApplicationResponse(app)
		if err != nil {
			h.handleError(c, http.StatusInternalServerError, "failed to fetch applications", err)
			return
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}

// CreateApplication registers a new application (admin only). The creator is
// added as a per-application admin member.
func (h *Handler) CreateApplication(c *gin.Context) {
	var req models.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "application name is required"})
		return
	}

	app := models.Application{Name: req.Name, Description: req.Description}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&app).Error; err != nil {
			return err
		}
		membership := models.ApplicationUser{
			ApplicationID: app.ID,
			UserID:        auth.CurrentUserID(c),
			IsAdmin:       true,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to create application", err)
		return
	}

	h.logActivity(c, "create_application", "application", app.ID, map[string]interface{}{"name": app.Name})

	resp, err := h.buildApplicationResponse(app)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to fetch application", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetApplication returns one application with members and reminder. Readonly
// users must be members.
func (h *Handler) GetApplication(c *gin.Context) {
	app, ok := h.loadApplication(c)
	if !ok {
		return
	}

	if !auth.IsAdminRequest(c) {
		var count int64
		if err := h.db.Model(&models.ApplicationUser{}).
			Where("application_id = ? AND user_id = ?", app.ID, auth.CurrentUserID(c)).
			Count(&count).Error; err != nil {
			h.handleError(c, http.StatusInternalServerError, "failed to check access", err)
			return
		}
		if count == 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	}

	resp, err := h.buildApplicationResponse(*app)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to fetch application", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateApplication updates name and description (admin only)
func (h *Handler) UpdateApplication(c *gin.Context) {
	app, ok := h.loadApplication(c)
	if !ok {
		return
	}

	var req models.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "application name is required"})
		return
	}

	updates := map[string]interface{}{"name": req.Name, "description": req.Description}
	if err := h.db.Model(app).Updates(updates).Error; err != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to update application", err)
		return
	}

	h.logActivity(c, "update_application", "application", app.ID, map[string]interface{}{"name": req.Name})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteApplication removes an application and cascades its memberships,
// reminders, and reminder emails (admin only).
func (h *Handler) DeleteApplication(c *gin.Context) {
	app, ok := h.loadApplication(c)
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var reminderIDs []uint
		if err := tx.Model(&models.Reminder{}).
			Where("application_id = ?", app.ID).
			Pluck("id", &reminderIDs).Error; err != nil {
			return err
		}
		if len(reminderIDs) > 0 {
			if err := tx.Where("reminder_id IN ?", reminderIDs).Delete(&models.ReminderEmail{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", reminderIDs).Delete(&models.Reminder{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("application_id = ?", app.ID).Delete(&models.ApplicationUser{}).Error; err != nil {
			return err
		}
		return tx.Delete(app).Error
	})
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to delete application", err)
		return
	}

	h.logActivity(c, "delete_application", "application", app.ID, map[string]interface{}{"name": app.Name})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) loadApplication(c *gin.Context) (*models.Application, bool) {
	appID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return nil, false
	}

	var app models.Application
	if err := h.db.First(&app, appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return nil, false
		}
		h.handleError(c, http.StatusInternalServerError, "failed to fetch application", err)
		return nil, false
	}
	return &app, true
}
