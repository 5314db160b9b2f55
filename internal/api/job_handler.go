package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hirely/internal/api/middleware"
	"hirely/internal/database"
	"hirely/internal/events"
	"hirely/internal/store"
)

// JobHandler 负责职位的查询、发布与收藏接口。
type JobHandler struct {
	deps      store.Deps
	publisher *events.Publisher
	logger    *slog.Logger
}

// NewJobHandler 构造 JobHandler。
func NewJobHandler(deps store.Deps, publisher *events.Publisher, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		deps:      deps,
		publisher: publisher,
		logger:    logger,
	}
}

type companyView struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}

type jobResponse struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Location    string       `json:"location"`
	CompanyID   *uint        `json:"company_id"`
	Company     *companyView `json:"company,omitempty"`
	RecruiterID uint         `json:"recruiter_id"`
	IsOpen      bool         `json:"is_open"`
	CreatedAt   time.Time    `json:"created_at"`
}

func newJobResponse(job database.Job) jobResponse {
	resp := jobResponse{
		ID:          job.ID,
		Title:       job.Title,
		Description: job.Description,
		Location:    job.Location,
		CompanyID:   job.CompanyID,
		RecruiterID: job.RecruiterID,
		IsOpen:      job.IsOpen,
		CreatedAt:   job.CreatedAt,
	}
	if job.Company != nil {
		resp.Company = &companyView{
			ID:      job.Company.ID,
			Name:    job.Company.Name,
			LogoURL: job.Company.LogoURL,
		}
	}
	return resp
}

func newJobListResponse(jobs []database.Job) []jobResponse {
	items := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, newJobResponse(job))
	}
	return items
}

// client 基于上下文中的用户身份构造查询句柄。
func (h *JobHandler) client(c *gin.Context) (*store.Client, bool) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return nil, false
	}
	principal := store.Principal{UserID: userID, Role: middleware.UserRoleFromContext(c)}
	return store.NewClient(h.deps, principal), true
}

// ListJobs 公开的职位列表查询。查询失败时退化为空列表而非报错，
// 前端只看到"无结果"状态。
func (h *JobHandler) ListJobs(c *gin.Context) {
	filter := store.JobFilter{
		Query:    c.Query("query"),
		Location: c.Query("location"),
	}
	if raw := c.Query("company_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			BadRequest(c, "invalid company_id")
			return
		}
		filter.CompanyID = uint(id)
	}

	jobs, err := store.Anonymous(h.deps).ListJobs(c.Request.Context(), filter)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list jobs failed", slog.Any("error", err))
		jobs = []database.Job{}
	}

	c.JSON(http.StatusOK, gin.H{"jobs": newJobListResponse(jobs)})
}

// GetJob 公开的单个职位查询。
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := parseIDParam(c)
	if !ok {
		return
	}

	job, err := store.Anonymous(h.deps).GetJob(c.Request.Context(), jobID)
	if err != nil {
		StoreError(c, err, "failed to load job")
		return
	}
	c.JSON(http.StatusOK, newJobResponse(*job))
}

// ListMyJobs 返回当前招聘方发布的职位。
func (h *JobHandler) ListMyJobs(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	jobs, err := client.ListMyJobs(c.Request.Context())
	if err != nil {
		middleware.LoggerFromContext(c).Error("list my jobs failed", slog.Any("error", err))
		jobs = []database.Job{}
	}
	c.JSON(http.StatusOK, gin.H{"jobs": newJobListResponse(jobs)})
}

type createJobRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Location    string `json:"location" binding:"max=255"`
	CompanyID   *uint  `json:"company_id"`
	IsOpen      *bool  `json:"is_open"`
}

// CreateJob 发布新职位，仅限招聘方角色。
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	client, ok := h.client(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	isOpen := true
	if req.IsOpen != nil {
		isOpen = *req.IsOpen
	}

	job, err := client.CreateJob(c.Request.Context(), store.CreateJobParams{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		CompanyID:   req.CompanyID,
		IsOpen:      isOpen,
	})
	if err != nil {
		StoreError(c, err, "failed to create job")
		return
	}

	h.publish(c, events.JobEvent{
		Type:   events.TypeJobCreated,
		JobID:  job.ID,
		Title:  job.Title,
		IsOpen: job.IsOpen,
	})
	c.JSON(http.StatusCreated, newJobResponse(*job))
}

type updateStatusRequest struct {
	IsOpen *bool `json:"is_open" binding:"required"`
}

// UpdateHiringStatus 切换职位的开放/关闭状态。
func (h *JobHandler) UpdateHiringStatus(c *gin.Context) {
	jobID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	client, ok := h.client(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	job, err := client.UpdateHiringStatus(c.Request.Context(), jobID, *req.IsOpen)
	if err != nil {
		StoreError(c, err, "failed to update hiring status")
		return
	}

	h.publish(c, events.JobEvent{
		Type:   events.TypeJobStatusChanged,
		JobID:  job.ID,
		Title:  job.Title,
		IsOpen: job.IsOpen,
	})
	c.JSON(http.StatusOK, newJobResponse(*job))
}

// DeleteJob 删除当前招聘方自己的职位。
func (h *JobHandler) DeleteJob(c *gin.Context) {
	jobID, ok := parseIDParam(c)
	if !ok {
		return
	}

	client, ok := h.client(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	if err := client.DeleteJob(c.Request.Context(), jobID); err != nil {
		StoreError(c, err, "failed to delete job")
		return
	}

	h.publish(c, events.JobEvent{Type: events.TypeJobDeleted, JobID: jobID})
	c.Status(http.StatusNoContent)
}

type savedJobResponse struct {
	ID        uint         `json:"id"`
	JobID     uint         `json:"job_id"`
	Job       *jobResponse `json:"job,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// ListSavedJobs 返回当前用户收藏的职位。
func (h *JobHandler) ListSavedJobs(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	saved, err := client.ListSavedJobs(c.Request.Context())
	if err != nil {
		middleware.LoggerFromContext(c).Error("list saved jobs failed", slog.Any("error", err))
		saved = []database.SavedJob{}
	}

	items := make([]savedJobResponse, 0, len(saved))
	for _, row := range saved {
		item := savedJobResponse{
			ID:        row.ID,
			JobID:     row.JobID,
			CreatedAt: row.CreatedAt,
		}
		if row.Job != nil {
			resp := newJobResponse(*row.Job)
			item.Job = &resp
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, gin.H{"saved_jobs": items})
}

type toggleSaveRequest struct {
	JobID        uint `json:"job_id" binding:"required"`
	AlreadySaved bool `json:"already_saved"`
}

// ToggleSave 收藏或取消收藏职位。
func (h *JobHandler) ToggleSave(c *gin.Context) {
	var req toggleSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	client, ok := h.client(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	saved, err := client.ToggleSave(c.Request.Context(), req.JobID, req.AlreadySaved)
	if err != nil {
		StoreError(c, err, "failed to toggle saved job")
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

func (h *JobHandler) publish(c *gin.Context, event events.JobEvent) {
	if h.publisher == nil {
		return
	}
	event.CorrelationID = middleware.GetCorrelationID(c)
	if err := h.publisher.Publish(c.Request.Context(), event); err != nil {
		middleware.LoggerFromContext(c).Warn("publish job event failed", slog.Any("error", err))
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}
