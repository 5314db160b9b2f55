package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 用户角色常量。招聘方可以发布与管理职位，其余用户只能浏览和收藏。
const (
	RoleCandidate = "candidate"
	RoleRecruiter = "recruiter"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;size:64"`
	PasswordHash string `gorm:"size:255"`
	Role         string `gorm:"size:32;default:'candidate'"`
}

// Company 表示一家发布职位的公司。
// Industry 以 JSON 数组存储行业标签，便于按标签做包含查询。
type Company struct {
	gorm.Model
	Name        string                      `gorm:"size:255;index"`
	LogoURL     string                      `gorm:"size:512"`
	Location    string                      `gorm:"size:255;index"`
	Industry    datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Description string                      `gorm:"size:3000"`
	Jobs        []Job                       `gorm:"constraint:OnDelete:SET NULL"`
}

// Job 表示一条职位信息。
// CompanyID 允许为空：公司被删除后职位仍可展示（左连接语义）。
type Job struct {
	gorm.Model
	Title       string   `gorm:"size:255;index"`
	Description string   `gorm:"type:text"`
	Location    string   `gorm:"size:255;index"`
	CompanyID   *uint    `gorm:"index"`
	Company     *Company `gorm:"constraint:OnDelete:SET NULL"`
	RecruiterID uint     `gorm:"index"`
	IsOpen      bool     `gorm:"default:true"`
}

// SavedJob 表示用户收藏的职位，(UserID, JobID) 唯一。
type SavedJob struct {
	gorm.Model
	UserID uint `gorm:"index;uniqueIndex:idx_saved_user_job"`
	JobID  uint `gorm:"uniqueIndex:idx_saved_user_job"`
	Job    *Job `gorm:"constraint:OnDelete:CASCADE"`
}
