package db

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/models"
)

// CreateTaskRequest holds the data needed to create a new task
type CreateTaskRequest struct {
	Title         string
	Description   string
	Priority      string // free-form: Low, Medium, High
	Status        string
	CreatorID     uint
	ResponsibleID *uint
}

// TaskPatch holds the patchable task fields. Nil fields are left alone.
// The creator is fixed at creation time and deliberately absent here.
type TaskPatch struct {
	Title         *string
	Description   *string
	Priority      *string
	Status        *string
	ResponsibleID *uint
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.ResponsibleID == nil
}

// CreateTask creates a new task for the given creator
func CreateTask(req CreateTaskRequest) (*models.Task, error) {
	status := req.Status
	if status == "" {
		status = "Open"
	}

	creatorID := req.CreatorID
	task := models.Task{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		Status:        status,
		CreatorID:     &creatorID,
		ResponsibleID: req.ResponsibleID,
	}

	if req.ResponsibleID != nil {
		if _, err := GetUserByID(*req.ResponsibleID); err != nil {
			return nil, err
		}
	}

	if err := DB.Create(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// GetTaskByID fetches a single task
func GetTaskByID(id uint) (*models.Task, error) {
	var task models.Task
	if err := DB.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// GetTasks retrieves all tasks
func GetTasks() ([]models.Task, error) {
	var tasks []models.Task
	if err := DB.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTasksByCreator retrieves the tasks a user created
func GetTasksByCreator(userID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := DB.Where("creator_id = ?", userID).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTask applies a partial update and stamps the update time
func UpdateTask(id uint, patch TaskPatch) (*models.Task, error) {
	var updated *models.Task
	err := DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if patch.Title != nil {
			task.Title = *patch.Title
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		if patch.Priority != nil {
			task.Priority = *patch.Priority
		}
		if patch.Status != nil {
			task.Status = *patch.Status
		}
		if patch.ResponsibleID != nil {
			var user models.User
			if err := tx.First(&user, *patch.ResponsibleID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUserNotFound
				}
				return err
			}
			task.ResponsibleID = patch.ResponsibleID
		}

		now := time.Now()
		task.UpdatedAt = &now

		if err := tx.Save(&task).Error; err != nil {
			return err
		}
		updated = &task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AssignResponsible sets the task's responsible user
func AssignResponsible(taskID, userID uint) (*models.Task, error) {
	id := userID
	return UpdateTask(taskID, TaskPatch{ResponsibleID: &id})
}

// CloseTask marks a task done and bumps the closed-task counter of the
// responsible user, or the creator when nobody is assigned. The status
// change and the counter increment commit together or not at all.
func CloseTask(id uint) (*models.Task, error) {
	var closed *models.Task
	err := DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if task.Closed() {
			return ErrTaskAlreadyClosed
		}

		now := time.Now()
		task.Status = models.StatusDone
		task.UpdatedAt = &now
		if err := tx.Save(&task).Error; err != nil {
			return err
		}

		counterID := task.ResponsibleID
		if counterID == nil {
			counterID = task.CreatorID
		}
		if counterID != nil {
			err := tx.Model(&models.User{}).
				Where("id = ?", *counterID).
				UpdateColumn("closed_tasks", gorm.Expr("closed_tasks + 1")).Error
			if err != nil {
				return err
			}
		}

		closed = &task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// DeleteTask removes a task. Deletion detaches it from any board simply
// by removing the row that carried the board reference.
func DeleteTask(id uint) error {
	task, err := GetTaskByID(id)
	if err != nil {
		return err
	}
	return DB.Delete(task).Error
}

// SetTaskPDF records a stored document reference on the task
func SetTaskPDF(id uint, path string) (*models.Task, error) {
	task, err := GetTaskByID(id)
	if err != nil {
		return nil, err
	}
	task.PDFPath = path
	if err := DB.Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// ClearTaskPDF drops the document reference, returning the old path so
// the caller can remove the blob
func ClearTaskPDF(id uint) (string, error) {
	task, err := GetTaskByID(id)
	if err != nil {
		return "", err
	}
	if task.PDFPath == "" {
		return "", ErrTaskNoPDF
	}
	old := task.PDFPath
	task.PDFPath = ""
	if err := DB.Save(task).Error; err != nil {
		return "", err
	}
	return old, nil
}
