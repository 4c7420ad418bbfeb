package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Thread struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Author   User      `gorm:"constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Title    string    `gorm:"size:255;not null" json:"title"`
	Content  string    `gorm:"type:text;not null" json:"content"`
	IsPublic bool      `gorm:"not null;default:true" json:"is_public"`
	IsLocked bool      `gorm:"not null;default:false" json:"is_locked"`
	Tags     []string  `gorm:"serializer:json" json:"tags"`
	Views    int       `gorm:"not null;default:0" json:"views"`

	// CommentsCount is maintained transactionally with comment inserts and
	// deletes; see CommentRepository.
	CommentsCount int `gorm:"not null;default:0" json:"comments_count"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Thread) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

// ThreadLike records one user's like of one thread. The composite primary
// key makes thread likes a set: liking twice is a no-op.
type ThreadLike struct {
	ThreadID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"thread_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
