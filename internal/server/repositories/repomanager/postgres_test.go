package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/blogportal/internal/server/migrations"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/comments"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/likes"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/posts"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)
	m := NewPostgresRepositoryManager()

	assert.IsType(t, &users.PostgresRepository{}, m.Users(db))
	assert.IsType(t, &posts.PostgresRepository{}, m.Posts(db))
	assert.IsType(t, &likes.PostgresRepository{}, m.Likes(db))
	assert.IsType(t, &comments.PostgresRepository{}, m.Comments(db))
}

func TestRunMigrations_Success(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	called := false
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		called = true
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	assert.True(t, called)
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	assert.EqualError(t, err, "boom")
}

func TestEmbeddedMigrations_ContainInitialSchema(t *testing.T) {
	b, err := migrations.Migrations.ReadFile("00001_init.sql")
	require.NoError(t, err)

	sqlText := string(b)
	for _, want := range []string{
		"-- +goose Up",
		"UNIQUE (user_id, post_id)",
		"REFERENCES users(id) ON DELETE CASCADE",
		"REFERENCES posts(id) ON DELETE CASCADE",
		"email         VARCHAR(100) NOT NULL UNIQUE",
	} {
		assert.Contains(t, sqlText, want)
	}
}
