package models

import (
	"time"
)

// StatusDone is the terminal task status; closing a task always lands here.
const StatusDone = "Done"

// Task represents a unit of work on a board
type Task struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Stamped explicitly by update operations; nil until the first edit.
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"` // free-form: Low, Medium, High
	Status      string `gorm:"default:Open" json:"status"`
	PDFPath     string `json:"pdf_path,omitempty"`

	// Creator is fixed at creation time; Responsible may be reassigned
	// by the creator. BoardID is set while the task sits on a board.
	CreatorID     *uint `json:"creator_id"`
	ResponsibleID *uint `json:"responsible_id"`
	BoardID       *uint `json:"board_id,omitempty"`

	// Relationships
	Creator     *User  `gorm:"foreignKey:CreatorID" json:"-"`
	Responsible *User  `gorm:"foreignKey:ResponsibleID" json:"-"`
	Board       *Board `gorm:"foreignKey:BoardID" json:"-"`
}

// Closed reports whether the task has reached the terminal status.
func (t *Task) Closed() bool {
	return t.Status == StatusDone
}
