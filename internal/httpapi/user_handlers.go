package httpapi

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskboard/internal/auth"
	"taskboard/internal/authz"
	"taskboard/internal/db"
	"taskboard/internal/models"
)

func (s *Server) registerUser(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return badRequest(c, "username and password are required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return respondError(c, err)
	}

	user, err := db.CreateUser(req.Username, hash)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := db.GetUserByUsername(req.Username)
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := s.issuer.Issue(user.Username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) getUsers(c echo.Context) error {
	users, err := db.GetUsers()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (s *Server) getUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid user id")
	}
	user, err := db.GetUserByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) patchUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid user id")
	}
	actor := actingUser(c)
	if _, err := db.GetUserByID(id); err != nil {
		return respondError(c, err)
	}
	if err := authz.CanEditUser(actor, id); err != nil {
		return respondError(c, err)
	}

	var req userUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	patch := db.UserPatch{Username: req.Username}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return respondError(c, err)
		}
		patch.PasswordHash = &hash
	}
	if req.Role != nil {
		// Role changes are an admin action, self-service or not
		if err := authz.CanChangeRole(actor); err != nil {
			return respondError(c, err)
		}
		if *req.Role != models.RoleUser && *req.Role != models.RoleAdmin {
			return badRequest(c, "invalid role")
		}
		patch.Role = req.Role
	}

	user, err := db.UpdateUser(id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) deleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid user id")
	}
	actor := actingUser(c)
	user, err := db.GetUserByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := authz.CanEditUser(actor, id); err != nil {
		return respondError(c, err)
	}

	if err := db.DeleteUser(id); err != nil {
		return respondError(c, err)
	}
	if user.AvatarPath != "" {
		if err := s.store.Delete(user.AvatarPath); err != nil {
			log.Printf("failed to delete avatar blob %s: %v", user.AvatarPath, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "User deleted"})
}

func (s *Server) uploadAvatar(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid user id")
	}
	actor := actingUser(c)
	user, err := db.GetUserByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := authz.CanManageAvatar(actor, id); err != nil {
		return respondError(c, err)
	}

	path, err := s.saveUpload(c, avatarUpload)
	if err != nil {
		return respondError(c, err)
	}

	oldPath := user.AvatarPath
	updated, err := db.SetUserAvatar(id, path)
	if err != nil {
		// Reference never committed; drop the orphaned blob
		if rmErr := s.store.Delete(path); rmErr != nil {
			log.Printf("failed to delete orphaned blob %s: %v", path, rmErr)
		}
		return respondError(c, err)
	}
	if oldPath != "" {
		if err := s.store.Delete(oldPath); err != nil {
			log.Printf("failed to delete replaced avatar %s: %v", oldPath, err)
		}
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteAvatar(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid user id")
	}
	actor := actingUser(c)
	if _, err := db.GetUserByID(id); err != nil {
		return respondError(c, err)
	}
	if err := authz.CanManageAvatar(actor, id); err != nil {
		return respondError(c, err)
	}

	oldPath, err := db.ClearUserAvatar(id)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.store.Delete(oldPath); err != nil {
		log.Printf("failed to delete avatar blob %s: %v", oldPath, err)
	}

	user, err := db.GetUserByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
