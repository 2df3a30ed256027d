package httpapi

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

const maxUploadSize = 5 << 20 // 5 MiB

type uploadKind int

const (
	avatarUpload uploadKind = iota
	pdfUpload
)

var allowedAvatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// uploadError is a validation failure carrying the status code it maps
// to; respondError writes it without touching any entity state.
type uploadError struct {
	status  int
	message string
}

func (e *uploadError) Error() string {
	return e.message
}

// saveUpload validates the multipart "file" field and writes it to the
// blob store. On any error the blob store is untouched and no response
// has been written yet.
func (s *Server) saveUpload(c echo.Context, kind uploadKind) (string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", &uploadError{http.StatusBadRequest, "file field is required"}
	}
	if header.Size == 0 {
		return "", &uploadError{http.StatusBadRequest, "file is empty"}
	}
	if header.Size > maxUploadSize {
		return "", &uploadError{http.StatusRequestEntityTooLarge, "file too large, max size is 5MB"}
	}

	contentType := header.Header.Get("Content-Type")
	switch kind {
	case avatarUpload:
		if !allowedAvatarTypes[contentType] {
			return "", &uploadError{http.StatusUnsupportedMediaType,
				"unsupported file type, allowed: image/jpeg, image/png, image/webp"}
		}
	case pdfUpload:
		if contentType != "application/pdf" {
			return "", &uploadError{http.StatusUnsupportedMediaType,
				"unsupported file type, expected application/pdf"}
		}
	}

	f, err := header.Open()
	if err != nil {
		return "", &uploadError{http.StatusBadRequest, "error reading file"}
	}
	defer f.Close()

	path, err := s.store.Save(f, filepath.Ext(header.Filename))
	if err != nil {
		return "", err
	}
	return path, nil
}
