package models

import "time"

// Application represents a tracked system whose access is reviewed
type Application struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`

	Memberships []ApplicationUser `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"-"`
	Reminders   []Reminder        `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for the Application model
func (Application) TableName() string {
	return "applications"
}

// ApplicationUser grants one user access to one application. IsAdmin scopes
// the user's privilege within that application only.
type ApplicationUser struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ApplicationID uint      `gorm:"not null;uniqueIndex:idx_application_user" json:"application_id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_application_user" json:"user_id"`
	IsAdmin       bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name for the ApplicationUser model
func (ApplicationUser) TableName() string {
	return "application_users"
}

// CreateApplicationRequest represents the data needed to create an application
type CreateApplicationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// AddMemberRequest adds a user to an application by name and email
type AddMemberRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	IsAdmin bool   `json:"isAdmin"`
}

// ImportMemberRow is one row of a bulk membership import. Rows are validated
// individually so a bad row does not abort the whole import.
type ImportMemberRow struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateMemberRequest toggles the per-application admin flag
type UpdateMemberRequest struct {
	IsAdmin *bool `json:"isAdmin" binding:"required"`
}

// ApplicationMember is the member shape returned inside application payloads
type ApplicationMember struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}
