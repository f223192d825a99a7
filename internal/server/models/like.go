package models

// LikeAction is the outcome of a like toggle.
type LikeAction string

const (
	ActionLiked   LikeAction = "liked"
	ActionUnliked LikeAction = "unliked"
)

// LikeResult reports what a toggle did and the post's like count afterwards.
type LikeResult struct {
	Action    LikeAction `json:"action"`
	LikeCount int64      `json:"like_count"`
}
