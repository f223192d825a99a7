package models

import "time"

// MaxTitleLen is the posts.title column limit, in characters.
const MaxTitleLen = 200

type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// PostSummary is a post annotated with its author and engagement counts.
type PostSummary struct {
	Post
	AuthorName   string `json:"username"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
}

// PostDetail is what a single post page shows. UserLiked is relative to the
// viewing session and is false for anonymous viewers.
type PostDetail struct {
	PostSummary
	Comments  []*CommentView `json:"comments"`
	UserLiked bool           `json:"user_liked"`
}

// DashboardStats aggregates engagement over all posts of one user.
type DashboardStats struct {
	TotalPosts    int64 `json:"total_posts"`
	TotalLikes    int64 `json:"total_likes"`
	TotalComments int64 `json:"total_comments"`
}
