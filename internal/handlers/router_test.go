package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seiyar26/ppt-template-manager/internal/converter"
	"github.com/seiyar26/ppt-template-manager/internal/database"
	"github.com/seiyar26/ppt-template-manager/internal/services"
	"github.com/seiyar26/ppt-template-manager/internal/storage"
)

type stubConverter struct {
	slideCount int
}

func (s *stubConverter) Convert(_ context.Context, pptxPath, outputDir string) ([]converter.SlideImage, error) {
	if _, err := os.Stat(pptxPath); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}
	images := make([]converter.SlideImage, 0, s.slideCount)
	for i := 0; i < s.slideCount; i++ {
		path := filepath.Join(outputDir, fmt.Sprintf("slide_%d.jpg", i))
		if err := os.WriteFile(path, []byte("jpg"), 0644); err != nil {
			return nil, err
		}
		images = append(images, converter.SlideImage{SlideIndex: i, ImagePath: path, Width: 800, Height: 600})
	}
	return images, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	uploadDir := t.TempDir()
	local, err := storage.NewLocalStore(uploadDir)
	if err != nil {
		t.Fatalf("local store: %v", err)
	}

	authService := services.NewAuthService(db, "router-test-secret")
	templateService := services.NewTemplateService(db, local, local, &stubConverter{slideCount: 3})
	categoryService := services.NewCategoryService(db)
	exportService := services.NewExportService(db, local, nil, nil)
	logService := services.NewActivityLogService(db)

	return NewRouter(RouterConfig{
		AllowOrigins: []string{"http://localhost:3000"},
		UploadDir:    uploadDir,
	}, db, authService, templateService, categoryService, exportService, logService)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func registerTestUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    email,
		"password": "pw12345",
		"name":     "Router Test",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}
	token, _ := decodeBody(t, w)["token"].(string)
	if token == "" {
		t.Fatal("register response has no token")
	}
	return token
}

func uploadTestTemplate(t *testing.T, r *gin.Engine, token string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "Quarterly Deck.pptx")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write([]byte("pptx bytes"))
	mw.WriteField("name", "Quarterly Deck")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/templates", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", w.Code, w.Body.String())
	}

	template, _ := decodeBody(t, w)["template"].(map[string]any)
	id, _ := template["id"].(string)
	if id == "" {
		t.Fatal("upload response has no template id")
	}
	return id
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "ok" || body["database"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestRegisterLoginAndMe(t *testing.T) {
	r := newTestRouter(t)
	registerTestUser(t, r, "flow@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "flow@example.com",
		"password": "pw12345",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login response has no token")
	}
	user, _ := body["user"].(map[string]any)
	if user["last_login"] == nil {
		t.Error("login did not record last_login")
	}
	if _, exposed := user["password_hash"]; exposed {
		t.Error("password hash leaked in response")
	}

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}
	me, _ := decodeBody(t, w)["user"].(map[string]any)
	if me["email"] != "flow@example.com" {
		t.Errorf("me email = %v", me["email"])
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	r := newTestRouter(t)
	registerTestUser(t, r, "flow@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "flow@example.com",
		"password": "nope",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if _, hasToken := decodeBody(t, w)["token"]; hasToken {
		t.Error("failed login returned a token")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/templates", "/api/categories", "/api/exports", "/api/auth/me"} {
		w := doJSON(t, r, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status = %d, want 401", path, w.Code)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/templates", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", w.Code)
	}
}

func TestTemplateUploadAndFields(t *testing.T) {
	r := newTestRouter(t)
	token := registerTestUser(t, r, "flow@example.com")
	templateID := uploadTestTemplate(t, r, token)

	w := doJSON(t, r, http.MethodGet, "/api/templates/"+templateID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get template status = %d", w.Code)
	}
	template, _ := decodeBody(t, w)["template"].(map[string]any)
	if got := template["slide_count"]; got != float64(3) {
		t.Errorf("slide_count = %v, want 3", got)
	}
	slides, _ := template["slides"].([]any)
	if len(slides) != 3 {
		t.Fatalf("got %d slides, want 3", len(slides))
	}
	first, _ := slides[0].(map[string]any)
	if first["slide_index"] != float64(0) {
		t.Errorf("first slide index = %v", first["slide_index"])
	}

	w = doJSON(t, r, http.MethodPost, "/api/templates/"+templateID+"/fields", token, gin.H{
		"slide_index": 0,
		"label":       "Title",
		"x":           10.0, "y": 20.0, "width": 200.0, "height": 40.0,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create field status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/templates/"+templateID+"/fields", token, gin.H{
		"slide_index": 99,
		"label":       "Out of range",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("out-of-range field: status = %d, want 400", w.Code)
	}
}

func TestUploadRejectsNonPptx(t *testing.T) {
	r := newTestRouter(t)
	token := registerTestUser(t, r, "flow@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "notes.docx")
	fw.Write([]byte("docx bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/templates", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestTemplatesAreNotVisibleAcrossUsers(t *testing.T) {
	r := newTestRouter(t)
	ownerToken := registerTestUser(t, r, "owner@example.com")
	otherToken := registerTestUser(t, r, "other@example.com")
	templateID := uploadTestTemplate(t, r, ownerToken)

	w := doJSON(t, r, http.MethodGet, "/api/templates/"+templateID, otherToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("foreign template fetch: status = %d, want 404", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/templates/"+templateID, otherToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("foreign template delete: status = %d, want 404", w.Code)
	}
}

func TestCategoryRoutes(t *testing.T) {
	r := newTestRouter(t)
	token := registerTestUser(t, r, "flow@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/categories", token, gin.H{"name": "Board decks"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category status = %d, body %s", w.Code, w.Body.String())
	}
	category, _ := decodeBody(t, w)["category"].(map[string]any)
	id, _ := category["id"].(string)
	if id == "" {
		t.Fatal("create response has no category id")
	}

	w = doJSON(t, r, http.MethodGet, "/api/categories", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list categories status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/categories/"+id, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete category status = %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/categories/"+id, token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("deleted category fetch: status = %d, want 404", w.Code)
	}
}

func TestLogsRouteIsAdminOnly(t *testing.T) {
	r := newTestRouter(t)
	token := registerTestUser(t, r, "flow@example.com")

	w := doJSON(t, r, http.MethodGet, "/api/logs", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("non-admin logs fetch: status = %d, want 404", w.Code)
	}
}
