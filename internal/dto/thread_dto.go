package dto

import "github.com/google/uuid"

type CreateThreadRequest struct {
	Title    string   `json:"title" binding:"required,min=3,max=255"`
	Content  string   `json:"content" binding:"required"`
	Tags     []string `json:"tags"`
	IsPublic *bool    `json:"is_public"`
}

// ModerateThreadRequest is a partial patch; nil fields are untouched.
type ModerateThreadRequest struct {
	IsLocked *bool `json:"is_locked"`
	IsPublic *bool `json:"is_public"`
}

type ThreadResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Author        string    `json:"author"`
	IsPublic      bool      `json:"is_public"`
	IsLocked      bool      `json:"is_locked"`
	Tags          []string  `json:"tags"`
	Views         int       `json:"views"`
	CommentsCount int       `json:"comments_count"`
	LikesCount    int64     `json:"likes_count"`
	CreatedAt     string    `json:"created_at"`
	UpdatedAt     string    `json:"updated_at"`
}

type LikeResponse struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}
