package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is a user's global role across the admin panel. It is independent of
// the per-application admin flag on memberships.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReadOnly Role = "readonly"
)

// User represents a user account in the system
type User struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username       string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPassword string    `gorm:"size:255;not null" json:"-"`
	Role           Role      `gorm:"size:20;not null;default:readonly" json:"role"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`

	Memberships []ApplicationUser `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate hook is called before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleReadOnly
	}
	return nil
}

// IsAdmin reports whether the user holds the global admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// CreateUserRequest represents the data needed to create a new user
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     Role   `json:"role" binding:"omitempty,oneof=admin readonly"`
}

// UpdateUserRequest represents a partial user update
type UpdateUserRequest struct {
	Username string `json:"username" binding:"omitempty,min=2,max=100"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=8"`
	Role     Role   `json:"role" binding:"omitempty,oneof=admin readonly"`
}

// LoginRequest represents the data needed for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
