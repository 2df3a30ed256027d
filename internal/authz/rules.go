// Package authz holds the stateless permission checks applied before
// each mutation. A nil return means the action is allowed; otherwise
// the error wraps ErrForbidden with the denial reason.
package authz

import (
	"errors"
	"fmt"

	"taskboard/internal/models"
)

// ErrForbidden is returned when an authenticated user is not permitted
// to perform the requested action.
var ErrForbidden = errors.New("forbidden")

func deny(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

// CanEditTask permits task updates, deletion and responsibility
// reassignment only for the task's creator.
func CanEditTask(actor *models.User, task *models.Task) error {
	if task.CreatorID != nil && *task.CreatorID == actor.ID {
		return nil
	}
	return deny("only the task creator can modify this task")
}

// CanDeleteBoard permits board deletion only for admins
func CanDeleteBoard(actor *models.User) error {
	if actor.IsAdmin() {
		return nil
	}
	return deny("only admins can delete boards")
}

// CanManageBoard permits membership and task-placement edits for the
// board's creator or an admin.
func CanManageBoard(actor *models.User, board *models.Board) error {
	if actor.IsAdmin() {
		return nil
	}
	if board.CreatorID != nil && *board.CreatorID == actor.ID {
		return nil
	}
	return deny("only the board creator can manage this board")
}

// CanEditUser permits profile mutations for the target user themselves
// or an admin.
func CanEditUser(actor *models.User, targetID uint) error {
	if actor.ID == targetID || actor.IsAdmin() {
		return nil
	}
	return deny("users can only modify their own profile")
}

// CanChangeRole permits granting or revoking roles only for admins.
func CanChangeRole(actor *models.User) error {
	if actor.IsAdmin() {
		return nil
	}
	return deny("only admins can change roles")
}

// CanManageAvatar permits avatar upload and deletion only for the
// target user themselves.
func CanManageAvatar(actor *models.User, targetID uint) error {
	if actor.ID == targetID {
		return nil
	}
	return deny("users can only manage their own avatar")
}
