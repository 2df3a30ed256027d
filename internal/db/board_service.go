package db

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/models"
)

// BoardPatch holds the patchable board fields
type BoardPatch struct {
	Title *string
}

// CreateBoard creates a board owned by the given user
func CreateBoard(title string, creatorID uint) (*models.Board, error) {
	id := creatorID
	board := models.Board{
		Title:     title,
		CreatorID: &id,
	}

	err := DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Board
		err := tx.Where("title = ?", title).First(&existing).Error
		if err == nil {
			return ErrBoardTitleTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&board).Error
	})
	if err != nil {
		return nil, err
	}

	return &board, nil
}

// GetBoardByID fetches a single board
func GetBoardByID(id uint) (*models.Board, error) {
	var board models.Board
	if err := DB.First(&board, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	return &board, nil
}

// GetBoards retrieves all boards
func GetBoards() ([]models.Board, error) {
	var boards []models.Board
	if err := DB.Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// UpdateBoard applies a partial update to a board
func UpdateBoard(id uint, patch BoardPatch) (*models.Board, error) {
	var updated *models.Board
	err := DB.Transaction(func(tx *gorm.DB) error {
		var board models.Board
		if err := tx.First(&board, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBoardNotFound
			}
			return err
		}

		if patch.Title != nil && *patch.Title != board.Title {
			var existing models.Board
			err := tx.Where("title = ?", *patch.Title).First(&existing).Error
			if err == nil {
				return ErrBoardTitleTaken
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			board.Title = *patch.Title
		}

		if err := tx.Save(&board).Error; err != nil {
			return err
		}
		updated = &board
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBoard removes a board, cascading deletion of the tasks still on
// it and dropping its membership rows. Member users are only detached.
func DeleteBoard(id uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var board models.Board
		if err := tx.First(&board, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBoardNotFound
			}
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&models.BoardUser{}).Error; err != nil {
			return err
		}
		return tx.Delete(&board).Error
	})
}

// AddUserToBoard inserts a membership row. Adding an existing member is
// an idempotent no-op; the check and insert share one transaction.
func AddUserToBoard(boardID, userID uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var board models.Board
		if err := tx.First(&board, boardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBoardNotFound
			}
			return err
		}
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var membership models.BoardUser
		err := tx.Where("board_id = ? AND user_id = ?", boardID, userID).
			First(&membership).Error
		if err == nil {
			return nil // already a member
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&models.BoardUser{BoardID: boardID, UserID: userID}).Error
	})
}

// RemoveUserFromBoard deletes a membership row, a no-op if not a member
func RemoveUserFromBoard(boardID, userID uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var board models.Board
		if err := tx.First(&board, boardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBoardNotFound
			}
			return err
		}
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		return tx.Where("board_id = ? AND user_id = ?", boardID, userID).
			Delete(&models.BoardUser{}).Error
	})
}

// IsBoardMember reports whether the user has a membership row on the board
func IsBoardMember(boardID, userID uint) (bool, error) {
	var membership models.BoardUser
	err := DB.Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&membership).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// AddTaskToBoard points the task's board reference at the board
func AddTaskToBoard(boardID, taskID uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var board models.Board
		if err := tx.First(&board, boardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBoardNotFound
			}
			return err
		}
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		id := boardID
		task.BoardID = &id
		now := time.Now()
		task.UpdatedAt = &now
		return tx.Save(&task).Error
	})
}

// RemoveTaskFromBoard clears the task's board reference without deleting
// the task; a no-op if the task is not on this board.
func RemoveTaskFromBoard(boardID, taskID uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var board models.Board
		if err := tx.First(&board, boardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBoardNotFound
			}
			return err
		}
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if task.BoardID == nil || *task.BoardID != boardID {
			return nil
		}
		return tx.Model(&task).Select("board_id", "updated_at").
			Updates(map[string]any{"board_id": nil, "updated_at": time.Now()}).Error
	})
}

// GetBoardTasks retrieves the tasks that belong to a board
func GetBoardTasks(boardID uint) ([]models.Task, error) {
	if _, err := GetBoardByID(boardID); err != nil {
		return nil, err
	}
	var tasks []models.Task
	if err := DB.Where("board_id = ?", boardID).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
