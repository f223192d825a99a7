package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/blogportal/internal/common"
	"github.com/dmitrijs2005/blogportal/internal/dbx"
	"github.com/dmitrijs2005/blogportal/internal/server/models"
)

// PostgresRepository implements post storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a post and fills in ID and CreatedAt. Rows rejected by the
// schema (blank title or content) yield common.ErrValidation, and an unknown
// owner yields common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (user_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, post.UserID, post.Title, post.Content).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		switch {
		case dbx.IsConstraintViolation(err):
			return nil, common.ErrValidation
		case dbx.IsForeignKeyViolation(err):
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `
		SELECT id, user_id, title, content, created_at
		FROM posts
		WHERE id = $1
	`
	p := &models.Post{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) LockShared(ctx context.Context, id int64) error {
	var found int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM posts WHERE id = $1 FOR KEY SHARE`, id).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update rewrites title and content only; owner and created_at never change.
func (r *PostgresRepository) Update(ctx context.Context, post *models.Post) error {
	res, err := r.db.ExecContext(ctx, `UPDATE posts SET title = $1, content = $2 WHERE id = $3`,
		post.Title, post.Content, post.ID)
	if err != nil {
		if dbx.IsConstraintViolation(err) {
			return common.ErrValidation
		}
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// Delete removes the post. Likes and comments on it are removed by the
// database in the same statement (ON DELETE CASCADE).
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// summarySelect counts distinct like and comment ids so the two LEFT JOINs
// do not multiply each other.
const summarySelect = `
		SELECT p.id, p.user_id, p.title, p.content, p.created_at, u.username,
		       COUNT(DISTINCT l.id) AS like_count,
		       COUNT(DISTINCT c.id) AS comment_count
		FROM posts p
		JOIN users u ON p.user_id = u.id
		LEFT JOIN likes l ON p.id = l.post_id
		LEFT JOIN comments c ON p.id = c.post_id
`

const summaryGroup = `
		GROUP BY p.id, u.username
`

func scanSummary(scan func(dest ...any) error) (*models.PostSummary, error) {
	s := &models.PostSummary{}
	err := scan(&s.ID, &s.UserID, &s.Title, &s.Content, &s.CreatedAt, &s.AuthorName, &s.LikeCount, &s.CommentCount)
	return s, err
}

func (r *PostgresRepository) querySummaries(ctx context.Context, query string, args ...any) ([]*models.PostSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	defer rows.Close()

	result := []*models.PostSummary{}
	for rows.Next() {
		s, err := scanSummary(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// ListSummaries returns every post, newest first.
func (r *PostgresRepository) ListSummaries(ctx context.Context) ([]*models.PostSummary, error) {
	return r.querySummaries(ctx, summarySelect+summaryGroup+`		ORDER BY p.created_at DESC, p.id DESC`)
}

// ListSummariesByUser returns the posts written by userID, newest first.
func (r *PostgresRepository) ListSummariesByUser(ctx context.Context, userID int64) ([]*models.PostSummary, error) {
	return r.querySummaries(ctx, summarySelect+`		WHERE p.user_id = $1`+summaryGroup+`		ORDER BY p.created_at DESC, p.id DESC`, userID)
}

func (r *PostgresRepository) GetSummary(ctx context.Context, id int64) (*models.PostSummary, error) {
	row := r.db.QueryRowContext(ctx, summarySelect+`		WHERE p.id = $1`+summaryGroup, id)
	s, err := scanSummary(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) StatsByUser(ctx context.Context, userID int64) (*models.DashboardStats, error) {
	query := `
		SELECT COUNT(p.id) AS total_posts,
		       COALESCE(SUM(ls.like_count), 0)::bigint AS total_likes,
		       COALESCE(SUM(cs.comment_count), 0)::bigint AS total_comments
		FROM posts p
		LEFT JOIN (SELECT post_id, COUNT(*) AS like_count FROM likes GROUP BY post_id) ls ON p.id = ls.post_id
		LEFT JOIN (SELECT post_id, COUNT(*) AS comment_count FROM comments GROUP BY post_id) cs ON p.id = cs.post_id
		WHERE p.user_id = $1
	`
	stats := &models.DashboardStats{}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&stats.TotalPosts, &stats.TotalLikes, &stats.TotalComments); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stats, nil
}
