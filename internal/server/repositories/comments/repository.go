// Package comments stores post comments. Comments are never edited.
package comments

import (
	"context"

	"github.com/dmitrijs2005/blogportal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	// ListByPost returns the post's comments oldest first.
	ListByPost(ctx context.Context, postID int64) ([]*models.CommentView, error)
	// ListAll returns every comment newest first, with the post title.
	ListAll(ctx context.Context) ([]*models.CommentView, error)
	Delete(ctx context.Context, id int64) error
}
