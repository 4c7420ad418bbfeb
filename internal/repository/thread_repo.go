package repository

import (
	"context"

	"anoa.com/communityforum/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ThreadRepository interface {
	Create(ctx context.Context, thread *model.Thread) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Thread, error)
	FindAll(ctx context.Context) ([]*model.Thread, error)
	Update(ctx context.Context, thread *model.Thread) error
	Patch(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddViews(ctx context.Context, id uuid.UUID, n int) error
	Like(ctx context.Context, threadID, userID uuid.UUID) (bool, error)
	Unlike(ctx context.Context, threadID, userID uuid.UUID) (bool, error)
	HasLiked(ctx context.Context, threadID, userID uuid.UUID) (bool, error)
	CountLikes(ctx context.Context, threadID uuid.UUID) (int64, error)
}

type threadRepository struct {
	db *gorm.DB
}

func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

func (r *threadRepository) Create(ctx context.Context, thread *model.Thread) error {
	return r.db.WithContext(ctx).Create(thread).Error
}

func (r *threadRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Thread, error) {
	var thread model.Thread
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) FindAll(ctx context.Context) ([]*model.Thread, error) {
	var threads []*model.Thread
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC").
		Find(&threads).Error
	return threads, err
}

func (r *threadRepository) Update(ctx context.Context, thread *model.Thread) error {
	return r.db.WithContext(ctx).Save(thread).Error
}

// Patch applies a whitelisted field map; callers decide which fields are
// moderatable.
func (r *threadRepository) Patch(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&model.Thread{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *threadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Thread{}, "id = ?", id).Error
}

// AddViews atomically adds buffered view counts to the stored column.
func (r *threadRepository) AddViews(ctx context.Context, id uuid.UUID, n int) error {
	return r.db.WithContext(ctx).
		Model(&model.Thread{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", n)).Error
}

// Like inserts the (thread, user) pair, reporting false when it already
// existed. The composite key gives the set semantics.
func (r *threadRepository) Like(ctx context.Context, threadID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ThreadLike{ThreadID: threadID, UserID: userID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *threadRepository) Unlike(ctx context.Context, threadID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Delete(&model.ThreadLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *threadRepository) HasLiked(ctx context.Context, threadID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ThreadLike{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *threadRepository) CountLikes(ctx context.Context, threadID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ThreadLike{}).
		Where("thread_id = ?", threadID).
		Count(&count).Error
	return count, err
}
