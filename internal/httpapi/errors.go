package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"taskboard/internal/authz"
	"taskboard/internal/db"
)

// respondError maps domain errors to HTTP status codes
func respondError(c echo.Context, err error) error {
	var upErr *uploadError
	if errors.As(err, &upErr) {
		return c.JSON(upErr.status, echo.Map{"error": upErr.message})
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrUserNotFound),
		errors.Is(err, db.ErrTaskNotFound),
		errors.Is(err, db.ErrBoardNotFound),
		errors.Is(err, db.ErrUserNoAvatar),
		errors.Is(err, db.ErrTaskNoPDF):
		status = http.StatusNotFound
	case errors.Is(err, db.ErrUsernameTaken),
		errors.Is(err, db.ErrBoardTitleTaken),
		errors.Is(err, db.ErrTaskAlreadyClosed):
		status = http.StatusConflict
	case errors.Is(err, authz.ErrForbidden):
		status = http.StatusForbidden
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

// pathID parses the numeric :id path parameter
func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
