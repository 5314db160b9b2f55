package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hirely/internal/database"
)

// CompanyFilter narrows ListCompanies results. Empty fields impose no
// constraint.
type CompanyFilter struct {
	// Search matches name OR description, case-insensitive substring.
	Search string
	// Location matches exactly.
	Location string
	// Industry is a containment check against the industry tag set.
	Industry string
	// Limit / Offset paginate the data page; Count always reflects the full
	// matching set. Limit <= 0 disables pagination.
	Limit  int
	Offset int
}

// CompanyPage is one page of companies plus the total matching count.
type CompanyPage struct {
	Data  []database.Company
	Count int64
}

// CreateCompanyParams carries the payload for a new company row. The logo
// blob travels separately.
type CreateCompanyParams struct {
	Name        string
	Location    string
	Description string
	Industry    []string
}

// industryContains builds the tag containment predicate. Postgres checks
// jsonb containment; the sqlite fallback (used by tests) walks the array
// with json_each.
func industryContains(db *gorm.DB, tag string) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Where("industry @> ?::jsonb", fmt.Sprintf("[%q]", tag))
	}
	return db.Where(
		"EXISTS (SELECT 1 FROM json_each(companies.industry) WHERE json_each.value = ?)",
		tag,
	)
}

// ListCompanies returns companies matching the filter, ordered by name,
// together with the total matching count. Requires an authenticated handle.
func (c *Client) ListCompanies(ctx context.Context, filter CompanyFilter) (CompanyPage, error) {
	if _, err := c.requireAuth(); err != nil {
		return CompanyPage{}, err
	}

	query := c.db.WithContext(ctx).Model(&database.Company{})

	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		query = query.Where("location = ?", loc)
	}
	if tag := strings.TrimSpace(filter.Industry); tag != "" {
		query = industryContains(query, tag)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return CompanyPage{}, fmt.Errorf("count companies: %w", err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	companies := make([]database.Company, 0)
	if err := query.Order("name ASC").Find(&companies).Error; err != nil {
		return CompanyPage{}, fmt.Errorf("list companies: %w", err)
	}

	return CompanyPage{Data: companies, Count: count}, nil
}

// GetCompany returns one company expanded with its related jobs.
func (c *Client) GetCompany(ctx context.Context, companyID uint) (*database.Company, error) {
	if _, err := c.requireAuth(); err != nil {
		return nil, err
	}

	var company database.Company
	err := c.db.WithContext(ctx).Preload("Jobs").First(&company, companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get company %d: %w", companyID, err)
	}
	return &company, nil
}

// CreateCompany uploads the logo blob and then inserts the company row whose
// logo URL points at the uploaded object. When the insert fails after a
// successful upload, a compensating cleanup of the orphaned object is
// enqueued before the error is returned.
func (c *Client) CreateCompany(ctx context.Context, params CreateCompanyParams, logo io.Reader, size int64, contentType string) (*database.Company, error) {
	if _, err := c.requireAuth(); err != nil {
		return nil, err
	}
	if c.logos == nil {
		return nil, errors.New("logo store is not configured")
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, errors.New("company name is required")
	}

	objectKey := fmt.Sprintf("logo-%s-%s", slugify(name), uuid.NewString())
	logoURL, err := c.logos.UploadLogo(ctx, objectKey, logo, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload company logo: %w", err)
	}

	company := database.Company{
		Name:        name,
		LogoURL:     logoURL,
		Location:    strings.TrimSpace(params.Location),
		Industry:    datatypes.NewJSONSlice(params.Industry),
		Description: params.Description,
	}
	if err := c.db.WithContext(ctx).Create(&company).Error; err != nil {
		c.enqueueLogoCleanup(ctx, objectKey)
		return nil, fmt.Errorf("create company: %w", err)
	}
	return &company, nil
}

// enqueueLogoCleanup schedules the delete of an orphaned logo. Best effort:
// an enqueue failure is logged, the original insert error still wins.
func (c *Client) enqueueLogoCleanup(ctx context.Context, objectKey string) {
	if c.cleanup == nil {
		c.logger.Warn("orphaned logo left in storage, no cleanup enqueuer configured",
			slog.String("object_key", objectKey),
		)
		return
	}
	if err := c.cleanup.EnqueueLogoCleanup(ctx, objectKey); err != nil {
		c.logger.Error("enqueue logo cleanup failed",
			slog.String("object_key", objectKey),
			slog.Any("error", err),
		)
	}
}

// slugify lowers the name and collapses anything outside [a-z0-9] into a
// single dash, keeping object keys URL-safe.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
