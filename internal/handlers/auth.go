package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cruxmailweb/access-management-tool/internal/auth"
	"github.com/cruxmailweb/access-management-tool/internal/models"
)

// Login authenticates a user and sets the session cookie
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.handleError(c, http.StatusInternalServerError, "login failed", err)
		return
	}

	if !auth.VerifyPassword(req.Password, user.HashedPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.tokens.CreateToken(&user)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "failed to create session", err)
		return
	}
	h.tokens.SetSessionCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

// Logout clears the session cookie
func (h *Handler) Logout(c *gin.Context) {
	h.tokens.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

// Session returns the current authenticated user, or 401
func (h *Handler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user": gin.H{
			"id":       auth.CurrentUserID(c),
			"username": c.GetString(auth.ContextUsername),
			"email":    c.GetString(auth.ContextEmail),
			"role":     c.GetString(auth.ContextRole),
		},
	})
}
