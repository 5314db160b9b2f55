package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hirely/internal/database"
	"hirely/internal/store"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// asUser 在路由前注入认证中间件写入的上下文键，跳过真实 JWT 校验。
func asUser(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userRole", role)
		c.Next()
	}
}

func newJobTestRouter(t *testing.T, deps store.Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewJobHandler(deps, nil, nil)

	router := gin.New()
	router.GET("/v1/jobs", h.ListJobs)
	router.GET("/v1/jobs/:id", h.GetJob)
	router.POST("/v1/jobs", asUser(7, database.RoleRecruiter), h.CreateJob)
	router.PATCH("/v1/jobs/:id/status", asUser(7, database.RoleRecruiter), h.UpdateHiringStatus)
	router.POST("/v1/jobs/candidate", asUser(8, database.RoleCandidate), h.CreateJob)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListJobsEndpointFiltersAndShapes(t *testing.T) {
	db := newTestDB(t)
	deps := store.Deps{DB: db}
	company := database.Company{Name: "TechNova", LogoURL: "https://cdn.example.com/logo.png"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	jobs := []database.Job{
		{Title: "Backend Engineer", Location: "California", CompanyID: &company.ID, RecruiterID: 1, IsOpen: true},
		{Title: "Product Designer", Location: "Remote", CompanyID: &company.ID, RecruiterID: 1, IsOpen: true},
	}
	for i := range jobs {
		jobs[i].CreatedAt = time.Date(2026, 3, 1, 9, i, 0, 0, time.UTC)
		if err := db.Create(&jobs[i]).Error; err != nil {
			t.Fatalf("seed job: %v", err)
		}
	}

	router := newJobTestRouter(t, deps)
	w := doJSON(t, router, http.MethodGet, "/v1/jobs?query=engineer&location=California", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Jobs []struct {
			Title   string `json:"title"`
			Company *struct {
				Name    string `json:"name"`
				LogoURL string `json:"logo_url"`
			} `json:"company"`
		} `json:"jobs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(resp.Jobs))
	}
	if resp.Jobs[0].Title != "Backend Engineer" {
		t.Errorf("title = %q", resp.Jobs[0].Title)
	}
	if resp.Jobs[0].Company == nil || resp.Jobs[0].Company.Name != "TechNova" {
		t.Error("reduced company projection missing from response")
	}
}

// 查询层故障时列表接口退化为空结果而不是 5xx。
func TestListJobsEndpointDegradesToEmptyOnFailure(t *testing.T) {
	db := newTestDB(t)
	if err := db.Migrator().DropTable(&database.Job{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	router := newJobTestRouter(t, store.Deps{DB: db})
	w := doJSON(t, router, http.MethodGet, "/v1/jobs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Jobs == nil || len(resp.Jobs) != 0 {
		t.Errorf("jobs = %v, want empty array", resp.Jobs)
	}
}

func TestGetJobEndpointNotFound(t *testing.T) {
	router := newJobTestRouter(t, store.Deps{DB: newTestDB(t)})

	w := doJSON(t, router, http.MethodGet, "/v1/jobs/999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/v1/jobs/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCreateJobEndpoint(t *testing.T) {
	db := newTestDB(t)
	router := newJobTestRouter(t, store.Deps{DB: db})

	w := doJSON(t, router, http.MethodPost, "/v1/jobs", gin.H{
		"title":    "Backend Engineer",
		"location": "Remote",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp jobResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RecruiterID != 7 {
		t.Errorf("recruiter_id = %d, want 7", resp.RecruiterID)
	}
	if !resp.IsOpen {
		t.Error("is_open did not default to true")
	}

	// 写路径的错误必须暴露：候选人角色被拒绝
	w = doJSON(t, router, http.MethodPost, "/v1/jobs/candidate", gin.H{"title": "X"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("candidate create status = %d, want 403", w.Code)
	}

	// 缺少标题被绑定校验拦下
	w = doJSON(t, router, http.MethodPost, "/v1/jobs", gin.H{"location": "Remote"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing title status = %d, want 400", w.Code)
	}
}

func TestUpdateHiringStatusEndpoint(t *testing.T) {
	db := newTestDB(t)
	job := database.Job{Title: "SRE", RecruiterID: 7, IsOpen: true}
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	router := newJobTestRouter(t, store.Deps{DB: db})

	w := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/v1/jobs/%d/status", job.ID), gin.H{"is_open": false})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp jobResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.IsOpen {
		t.Error("job still open")
	}

	// 不属于当前招聘者的职位映射为 404
	other := database.Job{Title: "Ops", RecruiterID: 99, IsOpen: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/v1/jobs/%d/status", other.ID), gin.H{"is_open": false})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
