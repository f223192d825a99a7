package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/blogportal/internal/dbx"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/comments"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/likes"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/posts"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same service
// code runs against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Likes(db dbx.DBTX) likes.Repository
	Comments(db dbx.DBTX) comments.Repository
}
