package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/blogportal/internal/common"
	"github.com/dmitrijs2005/blogportal/internal/dbx"
	"github.com/dmitrijs2005/blogportal/internal/logging"
	"github.com/dmitrijs2005/blogportal/internal/server/auth"
	"github.com/dmitrijs2005/blogportal/internal/server/models"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/repomanager"
)

// IdentityService handles registration, login, session refresh, the admin
// bootstrap and account removal.
type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *IdentityService {
	return &IdentityService{db: db, repomanager: m, log: log.With("module", "identity")}
}

// Register creates a regular account. It does not log the user in.
func (s *IdentityService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if !validAccount(username, email, password) {
		return nil, common.ErrValidation
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, common.ErrValidation
		}
		return nil, translate(ctx, s.log, "register", err)
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		exists, err := repo.EmailExists(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrDuplicateEmail
		}

		created, err = repo.Create(ctx, &models.User{
			UserName:     username,
			Email:        email,
			PasswordHash: hash,
			Role:         models.RoleUser,
		})
		return err
	})
	if err != nil {
		return nil, translate(ctx, s.log, "register", err)
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID)
	return created, nil
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, common.ErrInvalidCredentials
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, translate(ctx, s.log, "login", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}

	return auth.NewSession(user), nil
}

// Refresh reloads the session's user so role changes and deletions take
// effect immediately. A vanished user yields common.ErrUnauthenticated.
func (s *IdentityService) Refresh(ctx context.Context, sess *auth.Session) (*auth.Session, error) {
	if err := auth.RequireSession(sess); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, translate(ctx, s.log, "refresh", err)
	}

	return auth.NewSession(user), nil
}

// BootstrapAdmin makes sure an administrator named username exists and
// reports whether it had to create one. Running it again is a no-op.
func (s *IdentityService) BootstrapAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if !validAccount(strings.TrimSpace(username), strings.TrimSpace(email), password) {
		return false, common.ErrValidation
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return false, common.ErrValidation
		}
		return false, err
	}

	created := false
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		existing, err := repo.GetByUserName(ctx, username)
		if err == nil {
			if !existing.IsAdmin() {
				s.log.Warn(ctx, "bootstrap admin name is taken by a regular account", "user_id", existing.ID)
			}
			return nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		_, err = repo.Create(ctx, &models.User{
			UserName:     username,
			Email:        email,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
		})
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

// DeleteUser removes an account and, by cascade, everything it authored.
// Admins cannot remove themselves.
func (s *IdentityService) DeleteUser(ctx context.Context, sess *auth.Session, userID int64) error {
	if err := auth.RequireAdmin(sess); err != nil {
		return err
	}
	if sess.UserID == userID {
		return common.ErrForbidden
	}

	if err := s.repomanager.Users(s.db).Delete(ctx, userID); err != nil {
		return translate(ctx, s.log, "delete_user", err)
	}

	s.log.Info(ctx, "user deleted", "user_id", userID, "by", sess.UserID)
	return nil
}

func validAccount(username, email, password string) bool {
	return username != "" && email != "" && password != "" &&
		utf8.RuneCountInString(username) <= models.MaxUserNameLen &&
		utf8.RuneCountInString(email) <= models.MaxEmailLen
}
