package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cruxmailweb/access-management-tool/internal/auth"
	"github.com/cruxmailweb/access-management-tool/internal/models"
)

// findOrCreateUserByEmail looks up a user by email, creating a readonly
// account with a random password when the email is unknown.
func (h *Handler) findOrCreateUserByEmail(tx *gorm.DB, name, email string) (*models.User, error) {
	var user models.User
	err := tx.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	password, err := auth.GenerateRandomPassword()
	if err != nil {
		return nil, err
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user = models.User{
		Username:       name,
		Email:          email,
		HashedPassword: hashed,
		Role:           models.RoleReadOnly,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AddMember grants a user access to an application (admin only). Unknown
// emails get a new readonly account.
func (h *Handler) AddMember(c *gin.Context) {
	app, ok := h.loadApplication(c)
	if !ok {
		return
	}

	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and email are required"})
		return
	}

	var member *models.User
	err := h.db.Transaction(func(tx *gorm.DB) error {
		user, err := h.findOrCreateUserByEmail(tx, req.Name, req.Email)
		if err != nil {
			return err
		}
		member = user

		var count int64
		if err := tx.Model(&models.ApplicationUser{}).
			Where("application_id = ? AND user_id = ?", app.ID, user.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errDuplicateMembership
		}

		membership := models.ApplicationUser{
			ApplicationID: app.ID,
			UserID:        user.ID,
			IsAdmin:       req.IsAdmin,
		}
		return tx.Create(&membership).Error
	})
	if errors.Is(err, errDuplicateMembership) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user already has access to this application"})
		return
	}
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to add user to application", err)
		return
	}

	h.logActivity(c, "add_member", "application", app.ID, map[string]interface{}{
		"user_id":  member.ID,
		"email":    member.Email,
		"is_admin": req.IsAdmin,
	})

	c.JSON(http.StatusCreated, models.ApplicationMember{
		ID:      member.ID,
		Name:    member.Username,
		Email:   member.Email,
		IsAdmin: req.IsAdmin,
	})
}

var errDuplicateMembership = errors.New("duplicate membership")

// UpdateMember toggles a member's per-application admin flag (admin only)
func (h *Handler) UpdateMember(c *gin.Context) {
	app, ok := h.loadApplication(c)
	if !ok {
		return
	}
	userID, err := parseID(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req models.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isAdmin is required"})
		return
	}

	result := h.db.Model(&models.ApplicationUser{}).
		Where("application_id = ? AND user_id = ?", app.ID, userID).
		Update("is_admin", *req.IsAdmin)
	if result.Error != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to update member", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "membership not found"})
		return
	}

	h.logActivity(c, "update_member", "application", app.ID, map[string]interface{}{
		"user_id":  userID,
		"is_admin": *req.IsAdmin,
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveMember revokes a user's access to an application (admin only)
func (h *Handler) RemoveMember(c *gin.Context) {
	app, ok := h.loadApplication(c)
	if !ok {
		return
	}
	userID, err := parseID(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	result := h.db.Where("application_id = ? AND user_id = ?", app.ID, userID).
		Delete(&models.ApplicationUser{})
	if result.Error != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to remove member", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "membership not found"})
		return
	}

	h.logActivity(c, "remove_member", "application", app.ID, map[string]interface{}{"user_id": userID})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ImportMembers bulk-adds members from pre-parsed rows (admin only). Rows
// missing a name or email are skipped, as are existing members.
func (h *Handler) ImportMembers(c *gin.Context) {
	app, ok := h.loadApplication(c)
	if !ok {
		return
	}

	var rows []models.ImportMemberRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body should be an array of users"})
		return
	}

	imported := 0
	skipped := 0
	for _, row := range rows {
		if row.Name == "" || row.Email == "" {
			h.log.WithField("row", row).Warn("Skipping import row with missing name or email")
			skipped++
			continue
		}

		err := h.db.Transaction(func(tx *gorm.DB) error {
			user, err := h.findOrCreateUserByEmail(tx, row.Name, row.Email)
			if err != nil {
				return err
			}

			var count int64
			if err := tx.Model(&models.ApplicationUser{}).
				Where("application_id = ? AND user_id = ?", app.ID, user.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return errDuplicateMembership
			}

			membership := models.ApplicationUser{ApplicationID: app.ID, UserID: user.ID}
			return tx.Create(&membership).Error
		})
		switch {
		case errors.Is(err, errDuplicateMembership):
			skipped++
		case err != nil:
			h.handleError(c, http.StatusInternalServerError, "failed to import users", err)
			return
		default:
			imported++
		}
	}

	h.logActivity(c, "import_members", "application", app.ID, map[string]interface{}{
		"imported": imported,
		"skipped":  skipped,
	})
	c.JSON(http.StatusOK, gin.H{
		"message":  "users imported successfully",
		"imported": imported,
		"skipped":  skipped,
	})
}
