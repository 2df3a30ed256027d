package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"taskboard/internal/auth"
	"taskboard/internal/db"
	"taskboard/internal/httpapi"
	"taskboard/internal/models"
	"taskboard/internal/storage"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	e, _ := newTestServerWithStore(t)
	return e
}

func newTestServerWithStore(t *testing.T) (*echo.Echo, *storage.DiskStore) {
	t.Helper()

	if err := db.Initialize(":memory:"); err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	store, err := storage.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create blob store: %v", err)
	}

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	return httpapi.New(issuer, store), store
}

func doJSON(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doUpload(t *testing.T, e *echo.Echo, method, path, token, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create multipart part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write multipart content: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// registerAndLogin creates a user and returns its id and a bearer token.
func registerAndLogin(t *testing.T, e *echo.Echo, username, password string) (uint, string) {
	t.Helper()

	rec := doJSON(t, e, http.MethodPost, "/users/register", "",
		map[string]string{"username": username, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s = %d: %s", username, rec.Code, rec.Body.String())
	}
	id := uint(decodeBody(t, rec)["id"].(float64))

	rec = doJSON(t, e, http.MethodPost, "/login", "",
		map[string]string{"username": username, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s = %d: %s", username, rec.Code, rec.Body.String())
	}
	token, _ := decodeBody(t, rec)["access_token"].(string)
	if token == "" {
		t.Fatalf("login %s returned no token", username)
	}
	return id, token
}

func TestRegisterDuplicateUsername(t *testing.T) {
	e := newTestServer(t)

	registerAndLogin(t, e, "alice", "pw1")

	rec := doJSON(t, e, http.MethodPost, "/users/register", "",
		map[string]string{"username": "alice", "password": "other"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second register = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	e := newTestServer(t)

	registerAndLogin(t, e, "alice", "pw1")

	rec := doJSON(t, e, http.MethodPost, "/login", "",
		map[string]string{"username": "alice", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = doJSON(t, e, http.MethodPost, "/login", "",
		map[string]string{"username": "nobody", "password": "pw1"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login unknown user = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/tasks", "", map[string]string{"title": "T"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = doJSON(t, e, http.MethodPost, "/tasks", "garbage", map[string]string{"title": "T"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestTokenForDeletedUserRejected(t *testing.T) {
	e := newTestServer(t)

	id, token := registerAndLogin(t, e, "ghost", "pw1")
	rec := doJSON(t, e, http.MethodDelete, fmt.Sprintf("/users/%d", id), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete user = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodPost, "/tasks", token, map[string]string{"title": "T"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("stale token = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// The flow from the original client scripts: register two users, create
// a task, hand responsibility over, and check who may patch it.
func TestTaskLifecycle(t *testing.T) {
	e := newTestServer(t)

	_, aliceToken := registerAndLogin(t, e, "alice", "pw1")
	bobID, bobToken := registerAndLogin(t, e, "bob", "pw2")

	rec := doJSON(t, e, http.MethodPost, "/tasks", aliceToken,
		map[string]any{"title": "T", "priority": "High", "status": "Open"})
	if rec.Code != http.StatusOK {
		t.Fatalf("create task = %d: %s", rec.Code, rec.Body.String())
	}
	taskID := uint(decodeBody(t, rec)["id"].(float64))

	rec = doJSON(t, e, http.MethodPut, fmt.Sprintf("/tasks/%d/assign", taskID), aliceToken,
		map[string]uint{"user_id": bobID})
	if rec.Code != http.StatusOK {
		t.Fatalf("assign = %d: %s", rec.Code, rec.Body.String())
	}

	// Responsible but not creator: no patch rights
	rec = doJSON(t, e, http.MethodPatch, fmt.Sprintf("/tasks/%d", taskID), bobToken,
		map[string]string{"status": "Done"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-creator patch = %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = doJSON(t, e, http.MethodPatch, fmt.Sprintf("/tasks/%d", taskID), aliceToken,
		map[string]string{"status": "Done"})
	if rec.Code != http.StatusOK {
		t.Fatalf("creator patch = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/tasks/%d", taskID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get task = %d: %s", rec.Code, rec.Body.String())
	}
	if status := decodeBody(t, rec)["status"]; status != "Done" {
		t.Fatalf("status = %v, want Done", status)
	}
}

func TestCloseTaskBumpsCounterOnce(t *testing.T) {
	e := newTestServer(t)

	_, aliceToken := registerAndLogin(t, e, "alice", "pw1")
	bobID, _ := registerAndLogin(t, e, "bob", "pw2")

	rec := doJSON(t, e, http.MethodPost, "/tasks", aliceToken,
		map[string]any{"title": "T", "responsible_id": bobID})
	if rec.Code != http.StatusOK {
		t.Fatalf("create task = %d: %s", rec.Code, rec.Body.String())
	}
	taskID := uint(decodeBody(t, rec)["id"].(float64))

	rec = doJSON(t, e, http.MethodPut, fmt.Sprintf("/tasks/%d/close", taskID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("close = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodPut, fmt.Sprintf("/tasks/%d/close", taskID), "", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second close = %d, want %d", rec.Code, http.StatusConflict)
	}

	rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/users/%d", bobID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get user = %d: %s", rec.Code, rec.Body.String())
	}
	if n := decodeBody(t, rec)["closed_tasks_count"].(float64); n != 1 {
		t.Fatalf("closed task counter = %v, want 1", n)
	}
}

func TestBoardManagement(t *testing.T) {
	e := newTestServer(t)

	aliceID, aliceToken := registerAndLogin(t, e, "alice", "pw1")
	bobID, bobToken := registerAndLogin(t, e, "bob", "pw2")

	rec := doJSON(t, e, http.MethodPost, "/boards", aliceToken,
		map[string]string{"title": "Sprint"})
	if rec.Code != http.StatusOK {
		t.Fatalf("create board = %d: %s", rec.Code, rec.Body.String())
	}
	boardID := uint(decodeBody(t, rec)["id"].(float64))

	rec = doJSON(t, e, http.MethodPost, "/boards", aliceToken,
		map[string]string{"title": "Sprint"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate board = %d, want %d", rec.Code, http.StatusConflict)
	}

	// Only the board creator may edit membership
	rec = doJSON(t, e, http.MethodPost, fmt.Sprintf("/boards/%d/users/add", boardID), bobToken,
		map[string]uint{"user_id": bobID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-creator membership edit = %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = doJSON(t, e, http.MethodPost, fmt.Sprintf("/boards/%d/users/add", boardID), aliceToken,
		map[string]uint{"user_id": bobID})
	if rec.Code != http.StatusOK {
		t.Fatalf("membership add = %d: %s", rec.Code, rec.Body.String())
	}

	// Deleting a board is an admin action
	rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/boards/%d", boardID), aliceToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin board delete = %d, want %d", rec.Code, http.StatusForbidden)
	}

	adminRole := models.RoleAdmin
	if _, err := db.UpdateUser(aliceID, db.UserPatch{Role: &adminRole}); err != nil {
		t.Fatalf("failed to promote alice: %v", err)
	}

	rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/boards/%d", boardID), aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin board delete = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/boards/%d", boardID), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted board fetch = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestBoardTaskPlacement(t *testing.T) {
	e := newTestServer(t)

	_, aliceToken := registerAndLogin(t, e, "alice", "pw1")

	rec := doJSON(t, e, http.MethodPost, "/boards", aliceToken, map[string]string{"title": "Sprint"})
	boardID := uint(decodeBody(t, rec)["id"].(float64))

	rec = doJSON(t, e, http.MethodPost, "/tasks", aliceToken, map[string]string{"title": "T"})
	taskID := uint(decodeBody(t, rec)["id"].(float64))

	rec = doJSON(t, e, http.MethodPost, fmt.Sprintf("/boards/%d/tasks/add", boardID), aliceToken,
		map[string]uint{"task_id": taskID})
	if rec.Code != http.StatusOK {
		t.Fatalf("task add = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/boards/%d/tasks", boardID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("board tasks = %d: %s", rec.Code, rec.Body.String())
	}
	var tasks []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("failed to decode board tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("board tasks = %d, want 1", len(tasks))
	}

	rec = doJSON(t, e, http.MethodPost, fmt.Sprintf("/boards/%d/tasks/remove", boardID), aliceToken,
		map[string]uint{"task_id": taskID})
	if rec.Code != http.StatusOK {
		t.Fatalf("task remove = %d: %s", rec.Code, rec.Body.String())
	}

	// Detached, not deleted
	rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/tasks/%d", taskID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("detached task fetch = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestUploadPDFValidation(t *testing.T) {
	e := newTestServer(t)

	_, aliceToken := registerAndLogin(t, e, "alice", "pw1")
	rec := doJSON(t, e, http.MethodPost, "/tasks", aliceToken, map[string]string{"title": "T"})
	taskID := uint(decodeBody(t, rec)["id"].(float64))
	pdfPath := fmt.Sprintf("/tasks/%d/upload_pdf", taskID)

	rec = doUpload(t, e, http.MethodPost, pdfPath, "", "doc.txt", "text/plain", []byte("hello"))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("wrong content type = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}

	rec = doUpload(t, e, http.MethodPost, pdfPath, "", "doc.pdf", "application/pdf", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty file = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = doUpload(t, e, http.MethodPost, pdfPath, "", "doc.pdf", "application/pdf", []byte("%PDF-1.4"))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload = %d: %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["pdf_path"] == nil {
		t.Fatalf("pdf reference missing after upload")
	}

	rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/tasks/%d/delete_pdf", taskID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf delete = %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/tasks/%d/delete_pdf", taskID), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second pdf delete = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAvatarIsSelfService(t *testing.T) {
	e := newTestServer(t)

	aliceID, aliceToken := registerAndLogin(t, e, "alice", "pw1")
	_, bobToken := registerAndLogin(t, e, "bob", "pw2")
	avatarPath := fmt.Sprintf("/users/%d/avatar", aliceID)

	rec := doUpload(t, e, http.MethodPost, avatarPath, bobToken, "pic.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign avatar upload = %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = doUpload(t, e, http.MethodPost, avatarPath, aliceToken, "pic.gif", "image/gif", []byte("GIF89a"))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("gif avatar = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}

	rec = doUpload(t, e, http.MethodPost, avatarPath, aliceToken, "pic.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	if rec.Code != http.StatusOK {
		t.Fatalf("avatar upload = %d: %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["avatar_url"] == nil {
		t.Fatalf("avatar reference missing after upload")
	}

	rec = doJSON(t, e, http.MethodDelete, avatarPath, aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("avatar delete = %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, e, http.MethodDelete, avatarPath, aliceToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second avatar delete = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// A rejected upload must leave the existing reference and blob alone.
func TestRejectedUploadKeepsExistingPDF(t *testing.T) {
	e, store := newTestServerWithStore(t)

	_, aliceToken := registerAndLogin(t, e, "alice", "pw1")
	rec := doJSON(t, e, http.MethodPost, "/tasks", aliceToken, map[string]string{"title": "T"})
	taskID := uint(decodeBody(t, rec)["id"].(float64))
	pdfPath := fmt.Sprintf("/tasks/%d/upload_pdf", taskID)

	rec = doUpload(t, e, http.MethodPost, pdfPath, "", "doc.pdf", "application/pdf", []byte("%PDF-1.4"))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload = %d: %s", rec.Code, rec.Body.String())
	}
	stored, _ := decodeBody(t, rec)["pdf_path"].(string)
	if stored == "" {
		t.Fatalf("pdf reference missing after upload")
	}

	rec = doUpload(t, e, http.MethodPost, pdfPath, "", "doc.txt", "text/plain", []byte("hello"))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("rejected upload = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}

	rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/tasks/%d", taskID), "", nil)
	if got, _ := decodeBody(t, rec)["pdf_path"].(string); got != stored {
		t.Fatalf("pdf reference = %q after rejected upload, want %q", got, stored)
	}
	if _, err := os.Stat(filepath.Join(store.Root, stored)); err != nil {
		t.Fatalf("stored blob gone after rejected upload: %v", err)
	}
}

func TestRejectedUploadKeepsExistingAvatar(t *testing.T) {
	e, store := newTestServerWithStore(t)

	aliceID, aliceToken := registerAndLogin(t, e, "alice", "pw1")
	avatarPath := fmt.Sprintf("/users/%d/avatar", aliceID)

	rec := doUpload(t, e, http.MethodPost, avatarPath, aliceToken, "pic.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	if rec.Code != http.StatusOK {
		t.Fatalf("avatar upload = %d: %s", rec.Code, rec.Body.String())
	}
	stored, _ := decodeBody(t, rec)["avatar_url"].(string)
	if stored == "" {
		t.Fatalf("avatar reference missing after upload")
	}

	rec = doUpload(t, e, http.MethodPost, avatarPath, aliceToken, "pic.gif", "image/gif", []byte("GIF89a"))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("rejected upload = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}

	rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/users/%d", aliceID), "", nil)
	if got, _ := decodeBody(t, rec)["avatar_url"].(string); got != stored {
		t.Fatalf("avatar reference = %q after rejected upload, want %q", got, stored)
	}
	if _, err := os.Stat(filepath.Join(store.Root, stored)); err != nil {
		t.Fatalf("stored blob gone after rejected upload: %v", err)
	}
}

func TestUserPatchIsSelfOrAdmin(t *testing.T) {
	e := newTestServer(t)

	aliceID, _ := registerAndLogin(t, e, "alice", "pw1")
	bobID, bobToken := registerAndLogin(t, e, "bob", "pw2")

	rec := doJSON(t, e, http.MethodPatch, fmt.Sprintf("/users/%d", aliceID), bobToken,
		map[string]string{"username": "hacked"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign profile patch = %d, want %d", rec.Code, http.StatusForbidden)
	}

	// Non-admins cannot grant themselves roles
	rec = doJSON(t, e, http.MethodPatch, fmt.Sprintf("/users/%d", bobID), bobToken,
		map[string]string{"role": "admin"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("self role grant = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
