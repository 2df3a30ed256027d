package models

import (
	"time"
)

// Board groups tasks and members. Deleting a board deletes the tasks
// still on it but only detaches member users.
type Board struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title     string `gorm:"unique;not null" json:"title"`
	CreatorID *uint  `json:"creator_id"`

	// Relationships
	Users []User `gorm:"many2many:board_users;" json:"-"`
	Tasks []Task `gorm:"foreignKey:BoardID" json:"-"`
}

// BoardUser is the join table for board membership
type BoardUser struct {
	BoardID uint `gorm:"primaryKey"`
	UserID  uint `gorm:"primaryKey"`
}
