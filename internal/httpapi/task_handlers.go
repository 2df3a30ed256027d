package httpapi

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskboard/internal/authz"
	"taskboard/internal/db"
)

func (s *Server) createTask(c echo.Context) error {
	var req taskCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Title == "" {
		return badRequest(c, "title is required")
	}

	task, err := db.CreateTask(db.CreateTaskRequest{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		Status:        req.Status,
		CreatorID:     actingUser(c).ID,
		ResponsibleID: req.ResponsibleID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) getTasks(c echo.Context) error {
	tasks, err := db.GetTasks()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) getMyTasks(c echo.Context) error {
	tasks, err := db.GetTasksByCreator(actingUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) getTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid task id")
	}
	task, err := db.GetTaskByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) patchTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid task id")
	}
	task, err := db.GetTaskByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := authz.CanEditTask(actingUser(c), task); err != nil {
		return respondError(c, err)
	}

	var req taskUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	patch := db.TaskPatch{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		Status:        req.Status,
		ResponsibleID: req.ResponsibleID,
	}
	if patch.Empty() {
		return badRequest(c, "no fields to update")
	}

	updated, err := db.UpdateTask(id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid task id")
	}
	task, err := db.GetTaskByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := authz.CanEditTask(actingUser(c), task); err != nil {
		return respondError(c, err)
	}

	if err := db.DeleteTask(id); err != nil {
		return respondError(c, err)
	}
	if task.PDFPath != "" {
		if err := s.store.Delete(task.PDFPath); err != nil {
			log.Printf("failed to delete pdf blob %s: %v", task.PDFPath, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "Task deleted"})
}

func (s *Server) assignTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid task id")
	}
	task, err := db.GetTaskByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := authz.CanEditTask(actingUser(c), task); err != nil {
		return respondError(c, err)
	}

	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	updated, err := db.AssignResponsible(id, req.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) closeTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid task id")
	}
	task, err := db.CloseTask(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) uploadTaskPDF(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid task id")
	}
	task, err := db.GetTaskByID(id)
	if err != nil {
		return respondError(c, err)
	}

	path, err := s.saveUpload(c, pdfUpload)
	if err != nil {
		return respondError(c, err)
	}

	oldPath := task.PDFPath
	updated, err := db.SetTaskPDF(id, path)
	if err != nil {
		// Reference never committed; drop the orphaned blob
		if rmErr := s.store.Delete(path); rmErr != nil {
			log.Printf("failed to delete orphaned blob %s: %v", path, rmErr)
		}
		return respondError(c, err)
	}
	if oldPath != "" {
		if err := s.store.Delete(oldPath); err != nil {
			log.Printf("failed to delete replaced pdf %s: %v", oldPath, err)
		}
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteTaskPDF(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid task id")
	}
	oldPath, err := db.ClearTaskPDF(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.store.Delete(oldPath); err != nil {
		log.Printf("failed to delete pdf blob %s: %v", oldPath, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "PDF deleted"})
}
