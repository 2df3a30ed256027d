package db

import "errors"

// User errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// Task errors
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskAlreadyClosed = errors.New("task already closed")
	ErrTaskNoPDF         = errors.New("task has no attached pdf")
)

// Board errors
var (
	ErrBoardNotFound   = errors.New("board not found")
	ErrBoardTitleTaken = errors.New("board title already exists")
)

// Avatar errors
var (
	ErrUserNoAvatar = errors.New("user has no avatar")
)
