package db

import (
	"testing"

	"taskboard/internal/models"
)

// setupDB points the package at a fresh in-memory database.
func setupDB(t *testing.T) {
	t.Helper()

	if err := Initialize(":memory:"); err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() {
		if err := Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
}

func mustCreateUser(t *testing.T, username string) *models.User {
	t.Helper()

	user, err := CreateUser(username, "hash-"+username)
	if err != nil {
		t.Fatalf("failed to prepare user %s: %v", username, err)
	}
	return user
}

func mustCreateTask(t *testing.T, creator *models.User, title string) *models.Task {
	t.Helper()

	task, err := CreateTask(CreateTaskRequest{
		Title:     title,
		Priority:  "High",
		Status:    "Open",
		CreatorID: creator.ID,
	})
	if err != nil {
		t.Fatalf("failed to prepare task %s: %v", title, err)
	}
	return task
}

func mustCreateBoard(t *testing.T, title string, creator *models.User) *models.Board {
	t.Helper()

	board, err := CreateBoard(title, creator.ID)
	if err != nil {
		t.Fatalf("failed to prepare board %s: %v", title, err)
	}
	return board
}

func membershipCount(t *testing.T, boardID uint) int64 {
	t.Helper()

	var n int64
	err := DB.Model(&models.BoardUser{}).Where("board_id = ?", boardID).Count(&n).Error
	if err != nil {
		t.Fatalf("failed to count memberships: %v", err)
	}
	return n
}
