package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bitfantasy/goldassay/internal/assay/repository"
	"github.com/bitfantasy/goldassay/internal/assay/service"
	"github.com/bitfantasy/goldassay/internal/assay/sse"
	"github.com/bitfantasy/goldassay/internal/assay/testutil"
	"github.com/bitfantasy/goldassay/internal/config"
	"github.com/bitfantasy/goldassay/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	router     *gin.Engine
	userToken  string
	adminToken string
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedTestUser(t, db, "user-1", "asha", false)
	testutil.SeedTestUser(t, db, "admin-1", "admin", true)

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: testutil.JWTSecret, AccessTokenExpire: time.Hour, Issuer: "goldassay"},
	}
	logger := zap.NewNop()
	hub := sse.NewHub(logger)
	svc := service.NewServices(repository.NewRepositories(db), nil, hub, cfg, logger)

	r := testutil.SetupRouter()
	RegisterRoutes(r, NewHandlers(svc, hub), middleware.JWTAuth(testutil.JWTSecret))

	return &testEnv{
		db:         db,
		router:     r,
		userToken:  testutil.GenerateTestToken("user-1", "asha", false, "sid-user"),
		adminToken: testutil.GenerateTestToken("admin-1", "admin", true, "sid-admin"),
	}
}

func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	return testutil.DoRequest(e.router, method, path, body, token)
}

func (e *testEnv) setField(t *testing.T, field, value string) {
	t.Helper()
	w := e.do(http.MethodPatch, "/api/v1/session/field", gin.H{"field": field, "value": value}, e.userToken)
	if w.Code != http.StatusOK {
		t.Fatalf("set %s: %d %s", field, w.Code, w.Body.String())
	}
}

func (e *testEnv) fillAndSave(t *testing.T, customer string) map[string]interface{} {
	t.Helper()
	e.setField(t, "customer_name", customer)
	e.setField(t, "item_name", "Bangle")
	e.setField(t, "gross_weight", "12.5")
	e.setField(t, "gold", "91.6")
	w := e.do(http.MethodPost, "/api/v1/session/save", nil, e.userToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}
	return testutil.ResponseData(t, w)
}

func draftOf(t *testing.T, data map[string]interface{}) map[string]interface{} {
	t.Helper()
	if view, ok := data["view"].(map[string]interface{}); ok {
		data = view
	}
	draft, ok := data["draft"].(map[string]interface{})
	if !ok {
		t.Fatalf("no draft in %v", data)
	}
	return draft
}

func TestLogin(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodPost, "/api/v1/auth/login", gin.H{"username": "asha", "password": testutil.TestPassword}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	token, _ := testutil.ResponseData(t, w)["access_token"].(string)
	if token == "" {
		t.Fatal("no access token")
	}

	w = env.do(http.MethodGet, "/api/v1/auth/me", nil, token)
	if w.Code != http.StatusOK || testutil.ResponseData(t, w)["username"] != "asha" {
		t.Errorf("me: %d %s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodPost, "/api/v1/auth/login", gin.H{"username": "asha", "password": "nope12345"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", w.Code)
	}
}

func TestSessionRequiresAuth(t *testing.T) {
	env := setupEnv(t)
	if w := env.do(http.MethodGet, "/api/v1/session", nil, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSessionCreateAndNavigate(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodGet, "/api/v1/session", nil, env.userToken)
	if w.Code != http.StatusOK {
		t.Fatalf("get session: %d %s", w.Code, w.Body.String())
	}
	view := testutil.ResponseData(t, w)
	if draftOf(t, view)["form_number"] != float64(1) || view["editable"] != true {
		t.Fatalf("initial view = %v", view)
	}

	saved := env.fillAndSave(t, "Lakshmi")
	if saved["created"] != true || saved["form_id"] == "" {
		t.Errorf("save result = %v", saved)
	}
	draft := draftOf(t, saved)
	if draft["karat"] != 21.98 || draft["gold_purity"] != 11.45 {
		t.Errorf("derived fields = karat %v purity %v", draft["karat"], draft["gold_purity"])
	}

	w = env.do(http.MethodPost, "/api/v1/session/new", nil, env.userToken)
	if draftOf(t, testutil.ResponseData(t, w))["form_number"] != float64(2) {
		t.Errorf("new form: %s", w.Body.String())
	}

	w = env.do(http.MethodPost, "/api/v1/session/previous", nil, env.userToken)
	if w.Code != http.StatusOK {
		t.Fatalf("previous: %d %s", w.Code, w.Body.String())
	}
	view = testutil.ResponseData(t, w)
	if view["editable"] != false || draftOf(t, view)["customer_name"] != "Lakshmi" {
		t.Errorf("previous view = %v", view)
	}

	w = env.do(http.MethodPatch, "/api/v1/session/field", gin.H{"field": "customer_name", "value": "X"}, env.userToken)
	if w.Code != http.StatusConflict || testutil.ParseResponse(w)["code"] != float64(CodeLocked) {
		t.Errorf("locked edit: %d %s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodPost, "/api/v1/session/previous", nil, env.userToken)
	if w.Code != http.StatusConflict || testutil.ParseResponse(w)["code"] != float64(CodeNoMoreForms) {
		t.Errorf("previous past end: %d %s", w.Code, w.Body.String())
	}
	w = env.do(http.MethodPost, "/api/v1/session/next", nil, env.userToken)
	if w.Code != http.StatusConflict {
		t.Errorf("next at newest: %d %s", w.Code, w.Body.String())
	}
}

func TestSessionFieldErrors(t *testing.T) {
	env := setupEnv(t)
	env.do(http.MethodGet, "/api/v1/session", nil, env.userToken)

	w := env.do(http.MethodPatch, "/api/v1/session/field", gin.H{"field": "karat", "value": "22"}, env.userToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("read-only field: %d", w.Code)
	}
	w = env.do(http.MethodPatch, "/api/v1/session/field", gin.H{"field": "gold", "value": "abc"}, env.userToken)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad number: %d %s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodPost, "/api/v1/session/save", nil, env.userToken)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("save empty form: %d %s", w.Code, w.Body.String())
	}
	data := testutil.ResponseData(t, w)
	if v, _ := data["violations"].([]interface{}); len(v) == 0 {
		t.Errorf("no violations in %v", data)
	}
}

func TestSessionPrintResets(t *testing.T) {
	env := setupEnv(t)
	env.do(http.MethodGet, "/api/v1/session", nil, env.userToken)
	env.setField(t, "customer_name", "Lakshmi")
	env.setField(t, "item_name", "Bangle")
	env.setField(t, "gross_weight", "12.5")
	env.setField(t, "gold", "91.6")

	w := env.do(http.MethodPost, "/api/v1/session/print", nil, env.userToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("print: %d %s", w.Code, w.Body.String())
	}
	data := testutil.ResponseData(t, w)
	snap, _ := data["print"].(map[string]interface{})
	if snap["sample_weight_text"] != "12.500 g" || snap["gold_purity_text"] != "11.450 g" || snap["karat_text"] != "21.98" {
		t.Errorf("snapshot = %v", snap)
	}
	if draftOf(t, data)["form_number"] != float64(2) {
		t.Errorf("after print draft = %v", draftOf(t, data))
	}
}

func TestSessionSearch(t *testing.T) {
	env := setupEnv(t)
	env.do(http.MethodGet, "/api/v1/session", nil, env.userToken)
	env.fillAndSave(t, "Asha")
	env.do(http.MethodPost, "/api/v1/session/new", nil, env.userToken)
	env.fillAndSave(t, "Ravi")

	w := env.do(http.MethodPost, "/api/v1/session/search", gin.H{"query": "ASH"}, env.userToken)
	forms, _ := testutil.ResponseData(t, w)["forms"].([]interface{})
	if len(forms) != 1 {
		t.Errorf("search forms = %v", forms)
	}

	w = env.do(http.MethodPost, "/api/v1/session/search", gin.H{"query": "zzz"}, env.userToken)
	view := testutil.ResponseData(t, w)
	if notice, _ := view["notice"].(string); notice == "" || view["editable"] != true {
		t.Errorf("empty search view = %v", view)
	}
}

func TestSessionRefreshAfterAdminDelete(t *testing.T) {
	env := setupEnv(t)
	env.do(http.MethodGet, "/api/v1/session", nil, env.userToken)
	saved := env.fillAndSave(t, "Asha")
	formID := saved["form_id"].(string)

	if w := env.do(http.MethodDelete, "/api/v1/admin/forms/"+formID, nil, env.adminToken); w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}

	w := env.do(http.MethodPost, "/api/v1/session/refresh", nil, env.userToken)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", w.Code, w.Body.String())
	}
	view := testutil.ResponseData(t, w)
	forms, _ := view["forms"].([]interface{})
	if len(forms) != 0 {
		t.Errorf("forms after delete = %v", forms)
	}
	if notice, _ := view["notice"].(string); notice == "" || view["editable"] != true {
		t.Errorf("refresh view = %v", view)
	}
	if draftOf(t, view)["id"] == formID {
		t.Error("deleted form still displayed")
	}
}

func TestTemplates(t *testing.T) {
	env := setupEnv(t)
	env.do(http.MethodGet, "/api/v1/session", nil, env.userToken)

	w := env.do(http.MethodPost, "/api/v1/templates", gin.H{"item_name": "Chain", "gross_weight": 8, "gold": 75}, env.userToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create template: %d %s", w.Code, w.Body.String())
	}
	w = env.do(http.MethodPost, "/api/v1/templates", gin.H{"item_name": "Bad", "gross_weight": 8, "gold": 120}, env.userToken)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid template: %d", w.Code)
	}

	w = env.do(http.MethodGet, "/api/v1/templates", nil, env.userToken)
	items, _ := testutil.ResponseData(t, w)["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("templates = %v", items)
	}
	id := items[0].(map[string]interface{})["id"].(string)

	w = env.do(http.MethodPost, "/api/v1/session/template", gin.H{"template_id": id}, env.userToken)
	draft := draftOf(t, testutil.ResponseData(t, w))
	if draft["item_name"] != "Chain" || draft["karat"] != float64(18) {
		t.Errorf("applied draft = %v", draft)
	}

	w = env.do(http.MethodPost, "/api/v1/session/template", gin.H{"template_id": "missing"}, env.userToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown template: %d", w.Code)
	}
}

func TestReports(t *testing.T) {
	env := setupEnv(t)
	env.do(http.MethodGet, "/api/v1/session", nil, env.userToken)
	env.fillAndSave(t, "Asha")

	w := env.do(http.MethodGet, "/api/v1/reports/forms?search=asha&page=1", nil, env.userToken)
	data := testutil.ResponseData(t, w)
	items, _ := data["items"].([]interface{})
	pagination, _ := data["pagination"].(map[string]interface{})
	if len(items) != 1 || pagination["total"] != float64(1) {
		t.Errorf("report = %v", data)
	}

	w = env.do(http.MethodGet, "/api/v1/reports/forms/export", nil, env.userToken)
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Type"), "spreadsheetml") {
		t.Errorf("content type = %s", w.Header().Get("Content-Type"))
	}
}

func TestAdminRoutes(t *testing.T) {
	env := setupEnv(t)
	env.do(http.MethodGet, "/api/v1/session", nil, env.userToken)
	saved := env.fillAndSave(t, "Asha")
	formID := saved["form_id"].(string)

	if w := env.do(http.MethodGet, "/api/v1/admin/forms", nil, env.userToken); w.Code != http.StatusForbidden {
		t.Errorf("non-admin status = %d, want 403", w.Code)
	}

	w := env.do(http.MethodPost, "/api/v1/admin/users", gin.H{"username": "ravi", "password": "weak"}, env.adminToken)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("weak password: %d %s", w.Code, w.Body.String())
	}
	w = env.do(http.MethodPost, "/api/v1/admin/users", gin.H{"username": "ravi", "password": "ravi2024"}, env.adminToken)
	if w.Code != http.StatusCreated {
		t.Errorf("create user: %d %s", w.Code, w.Body.String())
	}
	w = env.do(http.MethodPost, "/api/v1/admin/users", gin.H{"username": "ravi", "password": "ravi2024"}, env.adminToken)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate user: %d", w.Code)
	}

	w = env.do(http.MethodGet, "/api/v1/admin/forms?username=ash", nil, env.adminToken)
	items, _ := testutil.ResponseData(t, w)["items"].([]interface{})
	if len(items) != 1 || items[0].(map[string]interface{})["username"] != "asha" {
		t.Errorf("admin forms = %v", items)
	}

	if w := env.do(http.MethodDelete, "/api/v1/admin/forms/"+formID, nil, env.adminToken); w.Code != http.StatusOK {
		t.Errorf("delete: %d %s", w.Code, w.Body.String())
	}
	if w := env.do(http.MethodDelete, "/api/v1/admin/forms/"+formID, nil, env.adminToken); w.Code != http.StatusNotFound {
		t.Errorf("second delete: %d", w.Code)
	}

	w = env.do(http.MethodGet, "/api/v1/admin/audit-logs", nil, env.adminToken)
	logs, _ := testutil.ResponseData(t, w)["items"].([]interface{})
	actions := map[string]bool{}
	for _, l := range logs {
		actions[l.(map[string]interface{})["action"].(string)] = true
	}
	for _, want := range []string{"create_form", "create_user", "delete_form"} {
		if !actions[want] {
			t.Errorf("audit log missing %s: %v", want, actions)
		}
	}
}

func TestPhotoUploadInline(t *testing.T) {
	env := setupEnv(t)
	env.do(http.MethodGet, "/api/v1/session", nil, env.userToken)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "ring.png")
	part.Write([]byte("\x89PNG-data"))
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/session/photo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.userToken)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", w.Code, w.Body.String())
	}
	photo, _ := draftOf(t, testutil.ResponseData(t, w))["photo"].(string)
	if !strings.HasPrefix(photo, "data:image/png;base64,") {
		t.Errorf("photo = %q", photo)
	}

	w = env.do(http.MethodGet, "/api/v1/session/photo", nil, env.userToken)
	if w.Code != http.StatusOK || w.Body.String() != "\x89PNG-data" {
		t.Errorf("get photo: %d %q", w.Code, w.Body.String())
	}
}

func TestSessionFieldRejectsForeignPhotoReference(t *testing.T) {
	env := setupEnv(t)
	env.do(http.MethodGet, "/api/v1/session", nil, env.userToken)

	w := env.do(http.MethodPatch, "/api/v1/session/field",
		gin.H{"field": "photo", "value": "data:text/html;base64,PHNjcmlwdD4="}, env.userToken)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodGet, "/api/v1/session/photo", nil, env.userToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("photo after rejected reference: %d %q", w.Code, w.Body.String())
	}
}

func TestSessionFieldRejectsNonFiniteNumber(t *testing.T) {
	env := setupEnv(t)
	env.do(http.MethodGet, "/api/v1/session", nil, env.userToken)

	w := env.do(http.MethodPatch, "/api/v1/session/field", gin.H{"field": "gross_weight", "value": "Inf"}, env.userToken)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
	if w := env.do(http.MethodGet, "/api/v1/session", nil, env.userToken); w.Code != http.StatusOK {
		t.Errorf("view after rejected edit: %d %s", w.Code, w.Body.String())
	}
}

func TestSessionSaveAfterAdminDeleteStartsNewRecord(t *testing.T) {
	env := setupEnv(t)
	env.do(http.MethodGet, "/api/v1/session", nil, env.userToken)
	saved := env.fillAndSave(t, "Asha")
	formID := saved["form_id"].(string)
	env.do(http.MethodDelete, "/api/v1/admin/forms/"+formID, nil, env.adminToken)

	w := env.do(http.MethodPost, "/api/v1/session/save", nil, env.userToken)
	if w.Code != http.StatusNotFound {
		t.Fatalf("save after delete: %d %s", w.Code, w.Body.String())
	}
	w = env.do(http.MethodPost, "/api/v1/session/save", nil, env.userToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("re-save: %d %s", w.Code, w.Body.String())
	}
	if id := testutil.ResponseData(t, w)["form_id"]; id == formID {
		t.Error("re-save reused the deleted id")
	}
}
