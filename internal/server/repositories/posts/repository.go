// Package posts declares and implements storage for blog posts and their
// aggregated read models.
package posts

import (
	"context"

	"github.com/dmitrijs2005/blogportal/internal/server/models"
)

// Repository defines post persistence. Summary queries compute like and
// comment counts in the same statement as the posts themselves.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	// LockShared returns common.ErrorNotFound unless the post exists, and
	// keeps it from being deleted until the surrounding transaction ends.
	LockShared(ctx context.Context, id int64) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int64) error

	ListSummaries(ctx context.Context) ([]*models.PostSummary, error)
	ListSummariesByUser(ctx context.Context, userID int64) ([]*models.PostSummary, error)
	GetSummary(ctx context.Context, id int64) (*models.PostSummary, error)
	StatsByUser(ctx context.Context, userID int64) (*models.DashboardStats, error)
}
