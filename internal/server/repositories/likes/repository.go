// Package likes stores (user, post) like rows. The UNIQUE (user_id, post_id)
// constraint is what keeps a user from liking a post twice.
package likes

import "context"

type Repository interface {
	// Delete removes the user's like on the post and reports whether a row existed.
	Delete(ctx context.Context, userID, postID int64) (bool, error)
	// Insert adds a like and reports whether a row was created. A row that
	// already exists is not an error, it just reports false.
	Insert(ctx context.Context, userID, postID int64) (bool, error)
	Exists(ctx context.Context, userID, postID int64) (bool, error)
	Count(ctx context.Context, postID int64) (int64, error)
}
