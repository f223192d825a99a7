package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/blogportal/internal/dbx"
	"github.com/dmitrijs2005/blogportal/internal/logging"
	"github.com/dmitrijs2005/blogportal/internal/server/auth"
	"github.com/dmitrijs2005/blogportal/internal/server/models"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/repomanager"
)

// EngagementService toggles likes.
type EngagementService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewEngagementService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *EngagementService {
	return &EngagementService{db: db, repomanager: m, log: log.With("module", "engagement")}
}

// ToggleLike flips the caller's like on a post and returns the new count.
// The UNIQUE (user_id, post_id) constraint keeps concurrent toggles from
// producing duplicate rows.
func (s *EngagementService) ToggleLike(ctx context.Context, sess *auth.Session, postID int64) (*models.LikeResult, error) {
	if err := auth.RequireSession(sess); err != nil {
		return nil, err
	}

	result := &models.LikeResult{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Posts(tx).LockShared(ctx, postID); err != nil {
			return err
		}

		likes := s.repomanager.Likes(tx)
		removed, err := likes.Delete(ctx, sess.UserID, postID)
		if err != nil {
			return err
		}
		if removed {
			result.Action = models.ActionUnliked
		} else {
			if _, err := likes.Insert(ctx, sess.UserID, postID); err != nil {
				return err
			}
			result.Action = models.ActionLiked
		}

		result.LikeCount, err = likes.Count(ctx, postID)
		return err
	})
	if err != nil {
		return nil, translate(ctx, s.log, "toggle_like", err)
	}

	return result, nil
}
