package repository

import (
	"context"

	"anoa.com/communityforum/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	FindByThread(ctx context.Context, threadID uuid.UUID, parentID *uuid.UUID) ([]*model.Comment, error)
	CountReplies(ctx context.Context, commentID uuid.UUID) (int64, error)
	Update(ctx context.Context, comment *model.Comment) error
	DeleteTree(ctx context.Context, id uuid.UUID) (int64, error)
	AddLike(ctx context.Context, id uuid.UUID) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and increments the owning thread's counter in
// one transaction, so a concurrent create cannot lose an increment and a
// crash cannot leave a stale count.
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Thread{}).Where("id = ?", comment.ThreadID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error; err != nil {
			return err
		}
		return nil
	})
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindByThread returns top-level comments when parentID is nil, otherwise
// the direct replies of that comment, oldest first.
func (r *commentRepository) FindByThread(ctx context.Context, threadID uuid.UUID, parentID *uuid.UUID) ([]*model.Comment, error) {
	query := r.db.WithContext(ctx).
		Preload("Author").
		Where("thread_id = ?", threadID)

	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}

	var comments []*model.Comment
	err := query.Order("created_at ASC").Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountReplies(ctx context.Context, commentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Comment{}).
		Where("parent_id = ?", commentID).
		Count(&count).Error
	return count, err
}

func (r *commentRepository) Update(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// DeleteTree removes the comment and every descendant reply, then
// decrements the owning thread's counter by the number of rows removed,
// all in one transaction. Children go before the root so a retry after a
// partial failure never trips over already-deleted rows.
func (r *commentRepository) DeleteTree(ctx context.Context, id uuid.UUID) (int64, error) {
	var deleted int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root model.Comment
		if err := tx.Select("id", "thread_id").First(&root, "id = ?", id).Error; err != nil {
			return err
		}

		// Walk the subtree level by level.
		subtree := []uuid.UUID{id}
		frontier := []uuid.UUID{id}
		for len(frontier) > 0 {
			var children []uuid.UUID
			if err := tx.Model(&model.Comment{}).
				Where("parent_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			subtree = append(subtree, children...)
			frontier = children
		}

		// Delete deepest-first: reverse the BFS order.
		for i := len(subtree) - 1; i >= 0; i-- {
			if err := tx.Delete(&model.Comment{}, "id = ?", subtree[i]).Error; err != nil {
				return err
			}
		}
		deleted = int64(len(subtree))

		return tx.Model(&model.Thread{}).Where("id = ?", root.ThreadID).
			UpdateColumn("comments_count", gorm.Expr("comments_count - ?", deleted)).Error
	})

	return deleted, err
}

// AddLike is an unconditional atomic increment; there is no guard against
// the same user liking repeatedly.
func (r *commentRepository) AddLike(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
