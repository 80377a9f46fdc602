package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cruxmailweb/access-management-tool/internal/auth"
	"github.com/cruxmailweb/access-management-tool/internal/models"
)

// ListUsers returns all users (admin only)
func (h *Handler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Order("username").Find(&users).Error; err != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to fetch users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser creates a new user account (admin only)
func (h *Handler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	if err := h.db.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count).Error; err != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to check existing users", err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username or email already exists"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to hash password", err)
		return
	}

	user := models.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
		Role:           req.Role,
	}
	if err := h.db.Create(&user).Error; err != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to create user", err)
		return
	}

	h.logActivity(c, "create_user", "user", user.ID, map[string]interface{}{
		"username": user.Username,
		"role":     user.Role,
	})

	c.JSON(http.StatusCreated, user)
}

// UpdateUser updates a user. Users may update themselves; only admins may
// update others or change roles.
func (h *Handler) UpdateUser(c *gin.Context) {
	userID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isAdmin := auth.IsAdminRequest(c)
	isSelf := auth.CurrentUserID(c) == userID
	if !isAdmin && (!isSelf || req.Role != "") {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	updates := map[string]interface{}{}
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Password != "" {
		hashed, err := auth.HashPassword(req.Password)
		if err != nil {
			h.handleError(c, http.StatusInternalServerError, "failed to hash password", err)
			return
		}
		updates["hashed_password"] = hashed
	}
	if req.Role != "" && isAdmin {
		updates["role"] = req.Role
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	result := h.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to update user", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	h.logActivity(c, "update_user", "user", userID, map[string]interface{}{"fields": fieldNames(updates)})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteUser removes a user (admin only, cannot delete self)
func (h *Handler) DeleteUser(c *gin.Context) {
	userID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if auth.CurrentUserID(c) == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.handleError(c, http.StatusInternalServerError, "failed to fetch user", err)
		return
	}

	if err := h.db.Select("Memberships").Delete(&user).Error; err != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to delete user", err)
		return
	}

	h.logActivity(c, "delete_user", "user", userID, map[string]interface{}{"username": user.Username})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	return uint(id), err
}

func fieldNames(updates map[string]interface{}) []string {
	names := make([]string, 0, len(updates))
	for name := range updates {
		if name == "hashed_password" {
			name = "password"
		}
		names = append(names, name)
	}
	return names
}
