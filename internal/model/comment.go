package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID uuid.UUID  `gorm:"type:uuid;not null;index" json:"thread_id"`
	Thread   Thread     `gorm:"constraint:OnDelete:CASCADE" json:"thread,omitempty"`
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent   *Comment   `gorm:"foreignKey:ParentID" json:"parent,omitempty"` // For nested replies
	AuthorID uuid.UUID  `gorm:"type:uuid;not null" json:"author_id"`
	Author   User       `gorm:"constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Content  string     `gorm:"type:text;not null" json:"content"`
	IsEdited bool       `gorm:"not null;default:false" json:"is_edited"`
	IsHidden bool       `gorm:"not null;default:false" json:"is_hidden"`

	// Likes is a plain counter with no per-user dedup, unlike thread likes
	// which are set-based. See CommentService.LikeComment.
	Likes int `gorm:"not null;default:0" json:"likes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
