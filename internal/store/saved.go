package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"hirely/internal/database"
)

// ListSavedJobs returns the caller's bookmarked jobs, newest bookmark first,
// each expanded with its full job and the reduced company projection.
func (c *Client) ListSavedJobs(ctx context.Context) ([]database.SavedJob, error) {
	principal, err := c.requireAuth()
	if err != nil {
		return nil, err
	}

	saved := make([]database.SavedJob, 0)
	err = c.db.WithContext(ctx).
		Preload("Job").
		Preload("Job.Company", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "logo_url")
		}).
		Where("user_id = ?", principal.UserID).
		Order("created_at DESC").
		Find(&saved).Error
	if err != nil {
		return nil, fmt.Errorf("list saved jobs: %w", err)
	}
	return saved, nil
}

// ToggleSave bookmarks or un-bookmarks a job for the caller.
// With alreadySaved the matching row is deleted; deleting a row that does not
// exist reports saved=false without an error. Otherwise a new row is
// inserted. The returned flag is the resulting bookmark state.
func (c *Client) ToggleSave(ctx context.Context, jobID uint, alreadySaved bool) (bool, error) {
	principal, err := c.requireAuth()
	if err != nil {
		return false, err
	}

	if alreadySaved {
		result := c.db.WithContext(ctx).
			Where("user_id = ? AND job_id = ?", principal.UserID, jobID).
			Delete(&database.SavedJob{})
		if result.Error != nil {
			return true, fmt.Errorf("unsave job %d: %w", jobID, result.Error)
		}
		return false, nil
	}

	row := database.SavedJob{UserID: principal.UserID, JobID: jobID}
	if err := c.db.WithContext(ctx).Create(&row).Error; err != nil {
		return false, fmt.Errorf("save job %d: %w", jobID, err)
	}
	return true, nil
}
