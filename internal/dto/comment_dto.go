package dto

import "github.com/google/uuid"

type CreateCommentRequest struct {
	ThreadID string `json:"thread_id" binding:"required,uuid"`
	ParentID string `json:"parent_id" binding:"omitempty,uuid"`
	Content  string `json:"content" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentResponse struct {
	ID         uuid.UUID  `json:"id"`
	ThreadID   uuid.UUID  `json:"thread_id"`
	ParentID   *uuid.UUID `json:"parent_id,omitempty"`
	Content    string     `json:"content"`
	Author     string     `json:"author"`
	IsEdited   bool       `json:"is_edited"`
	IsHidden   bool       `json:"is_hidden"`
	Likes      int        `json:"likes"`
	ReplyCount int64      `json:"reply_count"`
	CreatedAt  string     `json:"created_at"`
	UpdatedAt  string     `json:"updated_at"`
}
