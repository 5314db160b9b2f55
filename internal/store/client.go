// Package store implements the query layer over the job-board tables.
// A Client is a cheap, synchronous handle produced per logical operation:
// anonymous handles serve public reads, authenticated handles carry the
// caller's identity and unlock user-scoped reads and writes.
package store

import (
	"context"
	"io"
	"log/slog"

	"gorm.io/gorm"

	"hirely/internal/database"
)

// Principal identifies the authenticated caller of user-scoped operations.
type Principal struct {
	UserID uint
	Role   string
}

// IsRecruiter reports whether the principal may post and manage jobs.
func (p Principal) IsRecruiter() bool {
	return p.Role == database.RoleRecruiter
}

// LogoStore uploads and deletes company logo blobs. Implemented by
// storage.Client; tests substitute fakes.
type LogoStore interface {
	UploadLogo(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error)
	DeleteLogo(ctx context.Context, objectKey string) error
}

// CleanupEnqueuer schedules the compensating delete of an uploaded logo
// whose company row failed to insert.
type CleanupEnqueuer interface {
	EnqueueLogoCleanup(ctx context.Context, objectKey string) error
}

// Deps bundles the shared collaborators a Client operates over. The same
// Deps value is reused across all factory calls; the factory itself holds
// no state.
type Deps struct {
	DB      *gorm.DB
	Logos   LogoStore
	Cleanup CleanupEnqueuer
	Logger  *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Client is a handle over the job-board tables scoped to at most one caller.
type Client struct {
	db        *gorm.DB
	logos     LogoStore
	cleanup   CleanupEnqueuer
	logger    *slog.Logger
	principal *Principal
}

// Anonymous returns a handle limited to public reads.
func Anonymous(deps Deps) *Client {
	return &Client{
		db:      deps.DB,
		logos:   deps.Logos,
		cleanup: deps.Cleanup,
		logger:  deps.logger(),
	}
}

// NewClient returns a handle acting on behalf of the given principal.
func NewClient(deps Deps, principal Principal) *Client {
	c := Anonymous(deps)
	c.principal = &principal
	return c
}

// requireAuth returns the principal or ErrUnauthenticated for anonymous handles.
func (c *Client) requireAuth() (Principal, error) {
	if c.principal == nil {
		return Principal{}, ErrUnauthenticated
	}
	return *c.principal, nil
}
