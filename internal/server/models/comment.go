package models

import "time"

type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PostID    int64     `json:"post_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentView carries the author name and, for admin listings, the title of
// the commented post.
type CommentView struct {
	Comment
	AuthorName string `json:"username"`
	PostTitle  string `json:"post_title,omitempty"`
}
