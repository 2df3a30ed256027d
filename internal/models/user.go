package models

import (
	"time"
)

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username     string `gorm:"unique;not null" json:"username"`
	PasswordHash string `json:"-"`
	AvatarPath   string `json:"avatar_url,omitempty"`
	Role         string `gorm:"default:user" json:"role"`
	ClosedTasks  int    `gorm:"default:0" json:"closed_tasks_count"`

	// Relationships
	Boards []Board `gorm:"many2many:board_users;" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
