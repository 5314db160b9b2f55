package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"hirely/internal/database"
)

// JobFilter narrows ListJobs results. Empty or whitespace-only fields impose
// no constraint; non-empty fields combine with logical AND.
type JobFilter struct {
	// Query matches the job title, case-insensitive substring.
	Query string
	// Location matches exactly after trimming.
	Location string
	// CompanyID matches exactly; zero means no constraint.
	CompanyID uint
}

// CreateJobParams carries the payload for a new job posting.
type CreateJobParams struct {
	Title       string
	Description string
	Location    string
	CompanyID   *uint
	IsOpen      bool
}

// withCompany preloads the reduced company projection (name + logo URL)
// inlined on job reads. The id column is required for association mapping.
func withCompany(db *gorm.DB) *gorm.DB {
	return db.Preload("Company", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "logo_url")
	})
}

// likePattern builds a case-insensitive substring predicate value.
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// ListJobs returns jobs matching the filter, newest first, each with its
// reduced company projection. Public: works on anonymous handles. The result
// is never nil.
func (c *Client) ListJobs(ctx context.Context, filter JobFilter) ([]database.Job, error) {
	query := withCompany(c.db.WithContext(ctx).Model(&database.Job{}))

	if loc := strings.TrimSpace(filter.Location); loc != "" {
		query = query.Where("location = ?", loc)
	}
	if filter.CompanyID != 0 {
		query = query.Where("company_id = ?", filter.CompanyID)
	}
	if strings.TrimSpace(filter.Query) != "" {
		query = query.Where("LOWER(title) LIKE ?", likePattern(filter.Query))
	}

	jobs := make([]database.Job, 0)
	if err := query.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// GetJob returns one job with its reduced company projection.
// Public: works on anonymous handles.
func (c *Client) GetJob(ctx context.Context, jobID uint) (*database.Job, error) {
	var job database.Job
	err := withCompany(c.db.WithContext(ctx)).First(&job, jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", jobID, err)
	}
	return &job, nil
}

// ListMyJobs returns the jobs owned by the calling recruiter, newest first.
func (c *Client) ListMyJobs(ctx context.Context) ([]database.Job, error) {
	principal, err := c.requireAuth()
	if err != nil {
		return nil, err
	}

	jobs := make([]database.Job, 0)
	err = withCompany(c.db.WithContext(ctx)).
		Where("recruiter_id = ?", principal.UserID).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("list my jobs: %w", err)
	}
	return jobs, nil
}

// CreateJob inserts a new job owned by the calling recruiter.
func (c *Client) CreateJob(ctx context.Context, params CreateJobParams) (*database.Job, error) {
	principal, err := c.requireAuth()
	if err != nil {
		return nil, err
	}
	if !principal.IsRecruiter() {
		return nil, ErrForbidden
	}

	job := database.Job{
		Title:       strings.TrimSpace(params.Title),
		Description: params.Description,
		Location:    strings.TrimSpace(params.Location),
		CompanyID:   params.CompanyID,
		RecruiterID: principal.UserID,
		IsOpen:      params.IsOpen,
	}
	if err := c.db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return &job, nil
}

// UpdateHiringStatus flips the open/closed flag on a job owned by the caller
// and returns the updated row.
func (c *Client) UpdateHiringStatus(ctx context.Context, jobID uint, isOpen bool) (*database.Job, error) {
	principal, err := c.requireAuth()
	if err != nil {
		return nil, err
	}

	result := c.db.WithContext(ctx).
		Model(&database.Job{}).
		Where("id = ? AND recruiter_id = ?", jobID, principal.UserID).
		Update("is_open", isOpen)
	if result.Error != nil {
		return nil, fmt.Errorf("update hiring status for job %d: %w", jobID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return c.GetJob(ctx, jobID)
}

// DeleteJob removes a job owned by the caller.
func (c *Client) DeleteJob(ctx context.Context, jobID uint) error {
	principal, err := c.requireAuth()
	if err != nil {
		return err
	}

	result := c.db.WithContext(ctx).
		Where("id = ? AND recruiter_id = ?", jobID, principal.UserID).
		Delete(&database.Job{})
	if result.Error != nil {
		return fmt.Errorf("delete job %d: %w", jobID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
