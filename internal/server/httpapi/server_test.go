package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/chartkeeper/internal/common"
	"github.com/dmitrijs2005/chartkeeper/internal/logging"
	"github.com/dmitrijs2005/chartkeeper/internal/server/auth"
	"github.com/dmitrijs2005/chartkeeper/internal/server/config"
	"github.com/dmitrijs2005/chartkeeper/internal/server/models"
	"github.com/dmitrijs2005/chartkeeper/internal/server/services"
)

const testSecret = "test-secret"

// --- fakes ---

type fakeUserService struct {
	user  *models.User
	token string
	err   error

	question string
}

func (f *fakeUserService) Signup(ctx context.Context, req services.SignupRequest) (*models.User, string, error) {
	return f.user, f.token, f.err
}
func (f *fakeUserService) Login(ctx context.Context, login, password string) (*models.User, string, error) {
	return f.user, f.token, f.err
}
func (f *fakeUserService) RecoveryQuestion(ctx context.Context, login string) (string, error) {
	return f.question, f.err
}
func (f *fakeUserService) CheckUser(ctx context.Context, email string) (bool, string, error) {
	return f.question != "", f.question, f.err
}
func (f *fakeUserService) VerifyAnswer(ctx context.Context, login, answer string) error {
	return f.err
}
func (f *fakeUserService) ResetPassword(ctx context.Context, login, answer, newPassword, confirm string) error {
	return f.err
}
func (f *fakeUserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return f.user, f.err
}
func (f *fakeUserService) UpdateProfile(ctx context.Context, userID string, upd services.ProfileUpdate) (*models.User, error) {
	return f.user, f.err
}

type fakeProjectService struct {
	project   *models.Project
	summaries []models.ProjectSummary
	preview   []models.Record
	err       error

	createdReq services.CreateProjectRequest
	movedTo    string
	lastUser   string
}

func (f *fakeProjectService) Create(ctx context.Context, userID string, req services.CreateProjectRequest) (*models.Project, error) {
	f.lastUser = userID
	f.createdReq = req
	return f.project, f.err
}
func (f *fakeProjectService) List(ctx context.Context, userID string) ([]models.ProjectSummary, error) {
	f.lastUser = userID
	return f.summaries, f.err
}
func (f *fakeProjectService) Get(ctx context.Context, userID, id string) (*models.Project, error) {
	f.lastUser = userID
	return f.project, f.err
}
func (f *fakeProjectService) Preview(ctx context.Context, userID, id string) ([]models.Record, error) {
	return f.preview, f.err
}
func (f *fakeProjectService) Update(ctx context.Context, userID, id string, req services.UpdateProjectRequest) (*models.Project, error) {
	return f.project, f.err
}
func (f *fakeProjectService) Delete(ctx context.Context, userID, id string) error {
	return f.err
}
func (f *fakeProjectService) Duplicate(ctx context.Context, userID, id string) (*models.Project, error) {
	return f.project, f.err
}
func (f *fakeProjectService) Move(ctx context.Context, userID, id, folderID string) error {
	f.movedTo = folderID
	return f.err
}

type fakeFolderService struct {
	folder    *models.Folder
	folders   []models.Folder
	summaries []models.ProjectSummary
	err       error

	lastFolder string
}

func (f *fakeFolderService) Create(ctx context.Context, userID, name string) (*models.Folder, error) {
	return f.folder, f.err
}
func (f *fakeFolderService) List(ctx context.Context, userID string) ([]models.Folder, error) {
	return f.folders, f.err
}
func (f *fakeFolderService) Projects(ctx context.Context, userID, folderID string) ([]models.ProjectSummary, error) {
	f.lastFolder = folderID
	return f.summaries, f.err
}

// --- helpers ---

func newTestRouter(t *testing.T, us UserService, ps ProjectService, fs FolderService) http.Handler {
	t.Helper()
	cfg := &config.Config{SecretKey: testSecret, MaxUploadSize: 10 << 20}
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	h := NewHandler(us, ps, fs, cfg.MaxUploadSize, logger)
	return NewRouter(cfg, logger, h)
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body messageBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return body.Message
}

// --- tests ---

func TestRoot_StatusLine(t *testing.T) {
	router := newTestRouter(t, &fakeUserService{}, &fakeProjectService{}, &fakeFolderService{})

	rec := doJSON(t, router, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "running") {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestUnknownRoute_JSON404(t *testing.T) {
	router := newTestRouter(t, &fakeUserService{}, &fakeProjectService{}, &fakeFolderService{})

	rec := doJSON(t, router, http.MethodGet, "/nope", "", nil)
	if rec.Code != http.StatusNotFound || messageOf(t, rec) != "route not found" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestProjects_RequireBearer(t *testing.T) {
	router := newTestRouter(t, &fakeUserService{}, &fakeProjectService{}, &fakeFolderService{})

	rec := doJSON(t, router, http.MethodGet, "/api/projects", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestProjects_ExpiredToken(t *testing.T) {
	router := newTestRouter(t, &fakeUserService{}, &fakeProjectService{}, &fakeFolderService{})

	expired, err := auth.GenerateToken("u-1", []byte(testSecret), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	rec := doJSON(t, router, http.MethodGet, "/api/projects", "Bearer "+expired, nil)
	if rec.Code != http.StatusUnauthorized || messageOf(t, rec) != "token expired" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestSignup_Created(t *testing.T) {
	us := &fakeUserService{
		user:  &models.User{ID: "u-1", Name: "Alice", Username: "alice", Email: "a@example.com"},
		token: "tok",
	}
	router := newTestRouter(t, us, &fakeProjectService{}, &fakeFolderService{})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Alice", "username": "alice", "email": "a@example.com",
		"password": "p", "securityQuestion": "q", "securityAnswer": "a",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d %q", rec.Code, rec.Body.String())
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Token != "tok" || resp.User.Username != "alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSignup_ConflictIs400(t *testing.T) {
	us := &fakeUserService{err: common.ErrorConflict}
	router := newTestRouter(t, us, &fakeProjectService{}, &fakeFolderService{})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	us := &fakeUserService{err: common.ErrorUnauthorized}
	router := newTestRouter(t, us, &fakeProjectService{}, &fakeFolderService{})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"emailOrUsername": "ghost", "password": "nope",
	})
	if rec.Code != http.StatusUnauthorized || messageOf(t, rec) != "invalid credentials" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestGetProject_NotFound(t *testing.T) {
	ps := &fakeProjectService{err: common.ErrorNotFound}
	router := newTestRouter(t, &fakeUserService{}, ps, &fakeFolderService{})

	rec := doJSON(t, router, http.MethodGet, "/api/projects/some-id", bearer(t, "u-1"), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", rec.Code)
	}
}

func TestGetProject_InternalErrorHidesDetails(t *testing.T) {
	ps := &fakeProjectService{err: context.DeadlineExceeded}
	router := newTestRouter(t, &fakeUserService{}, ps, &fakeFolderService{})

	rec := doJSON(t, router, http.MethodGet, "/api/projects/some-id", bearer(t, "u-1"), nil)
	if rec.Code != http.StatusInternalServerError || messageOf(t, rec) != "internal server error" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
}

func multipartUpload(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("writing field %q: %v", k, err)
		}
	}
	fw, err := mw.CreateFormFile("excelFile", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write([]byte("month,total\n1,10\n")); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestCreateProject_Multipart(t *testing.T) {
	ps := &fakeProjectService{project: &models.Project{ID: "p-1", ProjectName: "Sales", ChartType: "line"}}
	router := newTestRouter(t, &fakeUserService{}, ps, &fakeFolderService{})

	body, contentType := multipartUpload(t, "sales.csv", map[string]string{
		"projectName": "Sales", "chartType": "line", "xAxis": "month", "yAxis": "total",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/projects", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearer(t, "u-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d %q", rec.Code, rec.Body.String())
	}
	if ps.lastUser != "u-1" {
		t.Fatalf("user id not propagated: %q", ps.lastUser)
	}
	if ps.createdReq.FileName != "sales.csv" || ps.createdReq.XAxis != "month" {
		t.Fatalf("unexpected request: %+v", ps.createdReq)
	}
	if string(ps.createdReq.Content) != "month,total\n1,10\n" {
		t.Fatalf("upload content mangled: %q", ps.createdReq.Content)
	}
}

func TestCreateProject_RejectsUnknownExtension(t *testing.T) {
	ps := &fakeProjectService{}
	router := newTestRouter(t, &fakeUserService{}, ps, &fakeFolderService{})

	body, contentType := multipartUpload(t, "payload.exe", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/projects", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearer(t, "u-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
	if ps.createdReq.FileName != "" {
		t.Fatalf("service must not be reached for a rejected extension")
	}
}

func TestCreateProject_BadFormatIs400(t *testing.T) {
	ps := &fakeProjectService{err: common.ErrorBadFormat}
	router := newTestRouter(t, &fakeUserService{}, ps, &fakeFolderService{})

	body, contentType := multipartUpload(t, "broken.xlsx", map[string]string{
		"projectName": "x", "chartType": "bar",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/projects", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearer(t, "u-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestFoldersRoute_NotShadowedByProjectID(t *testing.T) {
	fs := &fakeFolderService{folders: []models.Folder{{ID: "f-1", Name: "A"}}}
	ps := &fakeProjectService{err: common.ErrorNotFound}
	router := newTestRouter(t, &fakeUserService{}, ps, fs)

	rec := doJSON(t, router, http.MethodGet, "/api/projects/folders", bearer(t, "u-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("folders listing must not be read as a project id: %d %q", rec.Code, rec.Body.String())
	}

	var out []folderJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(out) != 1 || out[0].ID != "f-1" {
		t.Fatalf("unexpected folders: %+v", out)
	}
}

func TestFolderProjects_PassesFolderID(t *testing.T) {
	fs := &fakeFolderService{summaries: []models.ProjectSummary{{ID: "p-1"}}}
	router := newTestRouter(t, &fakeUserService{}, &fakeProjectService{}, fs)

	rec := doJSON(t, router, http.MethodGet, "/api/projects/folders/f-9/projects", bearer(t, "u-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d %q", rec.Code, rec.Body.String())
	}
	if fs.lastFolder != "f-9" {
		t.Fatalf("folder id not propagated: %q", fs.lastFolder)
	}
}

func TestPreviewProject_EnvelopeKey(t *testing.T) {
	ps := &fakeProjectService{preview: []models.Record{{"x": float64(1), "note": "n"}}}
	router := newTestRouter(t, &fakeUserService{}, ps, &fakeFolderService{})

	rec := doJSON(t, router, http.MethodGet, "/api/projects/p-1/preview", bearer(t, "u-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d %q", rec.Code, rec.Body.String())
	}

	var body map[string][]models.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	rows, ok := body["preview"]
	if !ok {
		t.Fatalf("response must use the \"preview\" key, got %q", rec.Body.String())
	}
	if len(rows) != 1 || rows[0]["note"] != "n" {
		t.Fatalf("unexpected preview rows: %+v", rows)
	}
}

func TestMoveProject_PassesFolderID(t *testing.T) {
	ps := &fakeProjectService{}
	router := newTestRouter(t, &fakeUserService{}, ps, &fakeFolderService{})

	rec := doJSON(t, router, http.MethodPut, "/api/projects/p-1/move", bearer(t, "u-1"),
		map[string]string{"folderId": "f-2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d %q", rec.Code, rec.Body.String())
	}
	if ps.movedTo != "f-2" {
		t.Fatalf("folder id not propagated: %q", ps.movedTo)
	}
}

func TestResetPassword_ValidationMessageSurfaces(t *testing.T) {
	us := &fakeUserService{err: common.ErrorValidation}
	router := newTestRouter(t, us, &fakeProjectService{}, &fakeFolderService{})

	rec := doJSON(t, router, http.MethodPost, "/api/auth/reset-password", "", map[string]string{})
	if rec.Code != http.StatusBadRequest || messageOf(t, rec) != common.ErrorValidation.Error() {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestProfile_UsesTokenIdentity(t *testing.T) {
	us := &fakeUserService{user: &models.User{ID: "u-7", Username: "bob"}}
	router := newTestRouter(t, us, &fakeProjectService{}, &fakeFolderService{})

	rec := doJSON(t, router, http.MethodGet, "/api/auth/profile", bearer(t, "u-7"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d %q", rec.Code, rec.Body.String())
	}

	var u userJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if u.ID != "u-7" {
		t.Fatalf("unexpected user: %+v", u)
	}
}
