package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hirely/internal/database"
)

type fakeLogoStore struct {
	uploaded  map[string][]byte
	uploadErr error
	deleted   []string
}

func newFakeLogoStore() *fakeLogoStore {
	return &fakeLogoStore{uploaded: map[string][]byte{}}
}

func (s *fakeLogoStore) UploadLogo(_ context.Context, objectKey string, reader io.Reader, _ int64, _ string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	b, _ := io.ReadAll(reader)
	s.uploaded[objectKey] = b
	return "https://cdn.example.com/storage/v1/object/public/company-logo/" + objectKey, nil
}

func (s *fakeLogoStore) DeleteLogo(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

type fakeEnqueuer struct {
	keys []string
	err  error
}

func (e *fakeEnqueuer) EnqueueLogoCleanup(_ context.Context, objectKey string) error {
	if e.err != nil {
		return e.err
	}
	e.keys = append(e.keys, objectKey)
	return nil
}

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

func newTestDeps(t *testing.T) (Deps, *fakeLogoStore, *fakeEnqueuer) {
	t.Helper()
	logos := newFakeLogoStore()
	enqueuer := &fakeEnqueuer{}
	deps := Deps{
		DB:      newTestDB(t),
		Logos:   logos,
		Cleanup: enqueuer,
	}
	return deps, logos, enqueuer
}

func seedCompany(t *testing.T, db *gorm.DB, company database.Company) database.Company {
	t.Helper()
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company %q: %v", company.Name, err)
	}
	return company
}

func seedJob(t *testing.T, db *gorm.DB, job database.Job) database.Job {
	t.Helper()
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("seed job %q: %v", job.Title, err)
	}
	return job
}

func recruiterClient(deps Deps, userID uint) *Client {
	return NewClient(deps, Principal{UserID: userID, Role: database.RoleRecruiter})
}

func candidateClient(deps Deps, userID uint) *Client {
	return NewClient(deps, Principal{UserID: userID, Role: database.RoleCandidate})
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
