package server

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/blogportal/internal/server/repositories/repomanager"
)

type failingMigrations struct {
	repomanager.RepositoryManager
}

func (failingMigrations) RunMigrations(context.Context, *sql.DB) error {
	return errors.New("goose: no such table")
}
