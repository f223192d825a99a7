package services

import (
	"context"
	"database/sql"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/blogportal/internal/common"
	"github.com/dmitrijs2005/blogportal/internal/dbx"
	"github.com/dmitrijs2005/blogportal/internal/logging"
	"github.com/dmitrijs2005/blogportal/internal/server/auth"
	"github.com/dmitrijs2005/blogportal/internal/server/models"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/repomanager"
)

// Dashboard is a user's own posts with engagement totals.
type Dashboard struct {
	Posts []*models.PostSummary  `json:"posts"`
	Stats *models.DashboardStats `json:"stats"`
}

// AdminOverview is everything the admin panel lists.
type AdminOverview struct {
	Users    []*models.User        `json:"users"`
	Posts    []*models.PostSummary `json:"posts"`
	Comments []*models.CommentView `json:"comments"`
}

// ContentService manages posts and comments.
type ContentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewContentService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ContentService {
	return &ContentService{db: db, repomanager: m, log: log.With("module", "content")}
}

func (s *ContentService) ListPosts(ctx context.Context) ([]*models.PostSummary, error) {
	list, err := s.repomanager.Posts(s.db).ListSummaries(ctx)
	if err != nil {
		return nil, translate(ctx, s.log, "list_posts", err)
	}
	return list, nil
}

// GetPost returns the post page. sess may be nil; UserLiked is then false.
func (s *ContentService) GetPost(ctx context.Context, id int64, sess *auth.Session) (*models.PostDetail, error) {
	summary, err := s.repomanager.Posts(s.db).GetSummary(ctx, id)
	if err != nil {
		return nil, translate(ctx, s.log, "get_post", err)
	}

	comments, err := s.repomanager.Comments(s.db).ListByPost(ctx, id)
	if err != nil {
		return nil, translate(ctx, s.log, "get_post", err)
	}

	detail := &models.PostDetail{PostSummary: *summary, Comments: comments}
	if sess != nil {
		liked, err := s.repomanager.Likes(s.db).Exists(ctx, sess.UserID, id)
		if err != nil {
			return nil, translate(ctx, s.log, "get_post", err)
		}
		detail.UserLiked = liked
	}

	return detail, nil
}

func (s *ContentService) CreatePost(ctx context.Context, sess *auth.Session, title, content string) (*models.Post, error) {
	if err := auth.RequireSession(sess); err != nil {
		return nil, err
	}
	title, content, err := cleanPost(title, content)
	if err != nil {
		return nil, err
	}

	post, err := s.repomanager.Posts(s.db).Create(ctx, &models.Post{UserID: sess.UserID, Title: title, Content: content})
	if err != nil {
		return nil, translate(ctx, s.log, "create_post", err)
	}
	return post, nil
}

// UpdatePost changes title and content. Owner and creation time stay.
func (s *ContentService) UpdatePost(ctx context.Context, sess *auth.Session, id int64, title, content string) (*models.Post, error) {
	if err := auth.RequireSession(sess); err != nil {
		return nil, err
	}
	title, content, err := cleanPost(title, content)
	if err != nil {
		return nil, err
	}

	var updated *models.Post
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)

		post, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !auth.OwnsOrAdmin(post.UserID, sess) {
			return common.ErrForbidden
		}

		post.Title = title
		post.Content = content
		if err := repo.Update(ctx, post); err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, translate(ctx, s.log, "update_post", err)
	}
	return updated, nil
}

// DeletePost removes the post with its likes and comments.
func (s *ContentService) DeletePost(ctx context.Context, sess *auth.Session, id int64) error {
	if err := auth.RequireSession(sess); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)

		post, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !auth.OwnsOrAdmin(post.UserID, sess) {
			return common.ErrForbidden
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return translate(ctx, s.log, "delete_post", err)
	}

	s.log.Info(ctx, "post deleted", "post_id", id, "by", sess.UserID)
	return nil
}

func (s *ContentService) AddComment(ctx context.Context, sess *auth.Session, postID int64, content string) (*models.Comment, error) {
	if err := auth.RequireSession(sess); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.ErrEmptyContent
	}

	c, err := s.repomanager.Comments(s.db).Create(ctx, &models.Comment{UserID: sess.UserID, PostID: postID, Content: content})
	if err != nil {
		return nil, translate(ctx, s.log, "add_comment", err)
	}
	return c, nil
}

func (s *ContentService) DeleteComment(ctx context.Context, sess *auth.Session, id int64) error {
	if err := auth.RequireAdmin(sess); err != nil {
		return err
	}
	if err := s.repomanager.Comments(s.db).Delete(ctx, id); err != nil {
		return translate(ctx, s.log, "delete_comment", err)
	}
	return nil
}

func (s *ContentService) Dashboard(ctx context.Context, sess *auth.Session) (*Dashboard, error) {
	if err := auth.RequireSession(sess); err != nil {
		return nil, err
	}

	repo := s.repomanager.Posts(s.db)
	posts, err := repo.ListSummariesByUser(ctx, sess.UserID)
	if err != nil {
		return nil, translate(ctx, s.log, "dashboard", err)
	}
	stats, err := repo.StatsByUser(ctx, sess.UserID)
	if err != nil {
		return nil, translate(ctx, s.log, "dashboard", err)
	}

	return &Dashboard{Posts: posts, Stats: stats}, nil
}

func (s *ContentService) AdminOverview(ctx context.Context, sess *auth.Session) (*AdminOverview, error) {
	if err := auth.RequireAdmin(sess); err != nil {
		return nil, err
	}

	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, translate(ctx, s.log, "admin_overview", err)
	}
	posts, err := s.repomanager.Posts(s.db).ListSummaries(ctx)
	if err != nil {
		return nil, translate(ctx, s.log, "admin_overview", err)
	}
	comments, err := s.repomanager.Comments(s.db).ListAll(ctx)
	if err != nil {
		return nil, translate(ctx, s.log, "admin_overview", err)
	}

	return &AdminOverview{Users: users, Posts: posts, Comments: comments}, nil
}

func cleanPost(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" || utf8.RuneCountInString(title) > models.MaxTitleLen {
		return "", "", common.ErrValidation
	}
	return title, content, nil
}
