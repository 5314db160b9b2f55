package api

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"

	"hirely/internal/api/middleware"
	"hirely/internal/cache"
	"hirely/internal/database"
	"hirely/internal/store"
)

// CompanyHandler 负责公司的查询与创建接口。
type CompanyHandler struct {
	deps      store.Deps
	listCache *cache.CompanyList
	clamdAddr string
	logger    *slog.Logger
}

// NewCompanyHandler 构造 CompanyHandler。clamdAddr 为空时跳过上传扫描。
func NewCompanyHandler(deps store.Deps, listCache *cache.CompanyList, clamdAddr string, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{
		deps:      deps,
		listCache: listCache,
		clamdAddr: clamdAddr,
		logger:    logger,
	}
}

type companyResponse struct {
	ID          uint          `json:"id"`
	Name        string        `json:"name"`
	LogoURL     string        `json:"logo_url"`
	Location    string        `json:"location,omitempty"`
	Industry    []string      `json:"industry,omitempty"`
	Description string        `json:"description,omitempty"`
	Jobs        []jobResponse `json:"jobs,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

func newCompanyResponse(company database.Company) companyResponse {
	return companyResponse{
		ID:          company.ID,
		Name:        company.Name,
		LogoURL:     company.LogoURL,
		Location:    company.Location,
		Industry:    company.Industry,
		Description: company.Description,
		Jobs:        newJobListResponse(company.Jobs),
		CreatedAt:   company.CreatedAt,
	}
}

func (h *CompanyHandler) client(c *gin.Context) (*store.Client, bool) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return nil, false
	}
	principal := store.Principal{UserID: userID, Role: middleware.UserRoleFromContext(c)}
	return store.NewClient(h.deps, principal), true
}

// ListCompanies 带过滤条件的公司列表，附带命中总数。列表响应带短 TTL 缓存。
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	filter := store.CompanyFilter{
		Search:   c.Query("search"),
		Location: c.Query("location"),
		Industry: c.Query("industry"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			BadRequest(c, "invalid limit")
			return
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			BadRequest(c, "invalid offset")
			return
		}
		filter.Offset = offset
	}

	ctx := c.Request.Context()
	page, hit := h.listCache.Get(ctx, filter)
	if !hit {
		fresh, err := client.ListCompanies(ctx, filter)
		if err != nil {
			StoreError(c, err, "failed to load companies")
			return
		}
		page = &fresh
		h.listCache.Set(ctx, filter, fresh)
	}

	items := make([]companyResponse, 0, len(page.Data))
	for _, company := range page.Data {
		items = append(items, newCompanyResponse(company))
	}
	c.JSON(http.StatusOK, gin.H{"companies": items, "count": page.Count})
}

// GetCompany 返回单个公司及其职位。
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	companyID, ok := parseIDParam(c)
	if !ok {
		return
	}

	client, ok := h.client(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	company, err := client.GetCompany(c.Request.Context(), companyID)
	if err != nil {
		StoreError(c, err, "failed to load company")
		return
	}
	c.JSON(http.StatusOK, newCompanyResponse(*company))
}

// CreateCompany 处理 multipart 表单：上传 Logo（可选病毒扫描）后写入公司行。
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	name := c.PostForm("name")
	if name == "" {
		BadRequest(c, "missing name")
		return
	}

	file, err := c.FormFile("logo")
	if err != nil {
		BadRequest(c, "missing logo")
		return
	}

	if h.clamdAddr != "" && !h.scanLogo(c, file) {
		return
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open logo")
		return
	}
	defer fileReader.Close()

	params := store.CreateCompanyParams{
		Name:        name,
		Location:    c.PostForm("location"),
		Description: c.PostForm("description"),
		Industry:    c.PostFormArray("industry"),
	}

	company, err := client.CreateCompany(
		c.Request.Context(),
		params,
		fileReader,
		file.Size,
		file.Header.Get("Content-Type"),
	)
	if err != nil {
		middleware.LoggerFromContext(c).Error("create company failed", slog.Any("error", err))
		StoreError(c, err, "failed to create company")
		return
	}

	h.listCache.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, newCompanyResponse(*company))
}

// scanLogo 在上传前用 clamd 扫描 Logo。扫描不通过或扫描服务异常时写入响应并返回 false。
func (h *CompanyHandler) scanLogo(c *gin.Context, file *multipart.FileHeader) bool {
	clamdClient := clamd.NewClamd(h.clamdAddr)

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open logo")
		return false
	}

	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(fileReader, abortChan)
	fileReader.Close()
	if err != nil {
		middleware.LoggerFromContext(c).Error("scan logo failed", slog.Any("error", err))
		Internal(c, "failed to scan logo")
		return false
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			BadRequest(c, "malicious file detected")
			return false
		}
	}
	return true
}
