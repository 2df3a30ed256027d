package httpapi

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskboard/internal/authz"
	"taskboard/internal/db"
)

func (s *Server) createBoard(c echo.Context) error {
	var req boardCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Title == "" {
		return badRequest(c, "title is required")
	}

	board, err := db.CreateBoard(req.Title, actingUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, board)
}

func (s *Server) getBoards(c echo.Context) error {
	boards, err := db.GetBoards()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, boards)
}

func (s *Server) getBoard(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid board id")
	}
	board, err := db.GetBoardByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, board)
}

func (s *Server) patchBoard(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid board id")
	}
	board, err := db.GetBoardByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := authz.CanManageBoard(actingUser(c), board); err != nil {
		return respondError(c, err)
	}

	var req boardUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Title == nil {
		return badRequest(c, "no fields to update")
	}

	updated, err := db.UpdateBoard(id, db.BoardPatch{Title: req.Title})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteBoard(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid board id")
	}
	if err := authz.CanDeleteBoard(actingUser(c)); err != nil {
		return respondError(c, err)
	}

	// Collect pdf references before the cascade removes the rows
	tasks, err := db.GetBoardTasks(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := db.DeleteBoard(id); err != nil {
		return respondError(c, err)
	}
	for _, task := range tasks {
		if task.PDFPath == "" {
			continue
		}
		if err := s.store.Delete(task.PDFPath); err != nil {
			log.Printf("failed to delete pdf blob %s: %v", task.PDFPath, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "Board deleted"})
}

func (s *Server) addBoardUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid board id")
	}
	board, err := db.GetBoardByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := authz.CanManageBoard(actingUser(c), board); err != nil {
		return respondError(c, err)
	}

	var req boardUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := db.AddUserToBoard(id, req.UserID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "User added"})
}

func (s *Server) removeBoardUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid board id")
	}
	board, err := db.GetBoardByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := authz.CanManageBoard(actingUser(c), board); err != nil {
		return respondError(c, err)
	}

	var req boardUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := db.RemoveUserFromBoard(id, req.UserID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "User removed"})
}

func (s *Server) addBoardTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid board id")
	}
	board, err := db.GetBoardByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := authz.CanManageBoard(actingUser(c), board); err != nil {
		return respondError(c, err)
	}

	var req boardTaskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := db.AddTaskToBoard(id, req.TaskID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "Task added to board"})
}

func (s *Server) removeBoardTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid board id")
	}
	board, err := db.GetBoardByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := authz.CanManageBoard(actingUser(c), board); err != nil {
		return respondError(c, err)
	}

	var req boardTaskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := db.RemoveTaskFromBoard(id, req.TaskID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "Task removed from board"})
}

func (s *Server) getBoardTasks(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid board id")
	}
	tasks, err := db.GetBoardTasks(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}
