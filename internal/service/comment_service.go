package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/communityforum/internal/dto"
	"anoa.com/communityforum/internal/model"
	"anoa.com/communityforum/internal/repository"
	"anoa.com/communityforum/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentService interface {
	CreateComment(ctx context.Context, userID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, threadID uuid.UUID, parentID *uuid.UUID) ([]dto.CommentResponse, error)
	LikeComment(ctx context.Context, commentID uuid.UUID) error
	UpdateComment(ctx context.Context, requesterID, commentID uuid.UUID, req dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, requesterID, commentID uuid.UUID) error
	DeleteCommentAsModerator(ctx context.Context, requesterID, commentID uuid.UUID) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	threadRepo  repository.ThreadRepository
	userRepo    repository.UserRepository
}

func NewCommentService(commentRepo repository.CommentRepository, threadRepo repository.ThreadRepository, userRepo repository.UserRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		threadRepo:  threadRepo,
		userRepo:    userRepo,
	}
}

func (s *commentService) CreateComment(ctx context.Context, userID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	if !user.Grants.Has(model.PermissionComment) {
		return nil, apperror.ErrInsufficientPermission
	}

	threadID, err := uuid.Parse(req.ThreadID)
	if err != nil {
		return nil, fmt.Errorf("invalid thread id: %w", apperror.ErrBadRequest)
	}

	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("thread not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if thread.IsLocked {
		return nil, fmt.Errorf("thread is locked: %w", apperror.ErrForbidden)
	}

	var parentID *uuid.UUID
	if req.ParentID != "" {
		pid, err := uuid.Parse(req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent id: %w", apperror.ErrBadRequest)
		}

		parent, err := s.commentRepo.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("parent comment not found: %w", apperror.ErrNotFound)
			}
			return nil, err
		}
		if parent.ThreadID != threadID {
			return nil, fmt.Errorf("parent comment belongs to another thread: %w", apperror.ErrBadRequest)
		}
		parentID = &pid
	}

	comment := &model.Comment{
		ThreadID: threadID,
		ParentID: parentID,
		AuthorID: userID,
		Content:  req.Content,
	}

	// Insert and counter increment are one transaction in the repository.
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	comment.Author = *user
	return s.mapToResponse(ctx, comment), nil
}

// ListComments returns top-level comments when parentID is nil, otherwise
// the direct replies of that comment, oldest first. Each result carries its
// direct reply count; that is one count query per row, fine for shallow
// listings.
func (s *commentService) ListComments(ctx context.Context, threadID uuid.UUID, parentID *uuid.UUID) ([]dto.CommentResponse, error) {
	if _, err := s.threadRepo.FindByID(ctx, threadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("thread not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	comments, err := s.commentRepo.FindByThread(ctx, threadID, parentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		responses = append(responses, *s.mapToResponse(ctx, c))
	}
	return responses, nil
}

// LikeComment bumps the raw counter. Deliberately no dedup: repeat likes by
// the same user all count, unlike the set-based thread likes.
func (s *commentService) LikeComment(ctx context.Context, commentID uuid.UUID) error {
	if err := s.commentRepo.AddLike(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *commentService) UpdateComment(ctx context.Context, requesterID, commentID uuid.UUID, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := s.requireOwnerOrAdmin(ctx, requesterID, comment); err != nil {
		return nil, err
	}

	comment.Content = req.Content
	comment.IsEdited = true

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.mapToResponse(ctx, comment), nil
}

// DeleteComment is the ownership path: the author or an admin removes the
// comment and its whole reply subtree.
func (s *commentService) DeleteComment(ctx context.Context, requesterID, commentID uuid.UUID) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if err := s.requireOwnerOrAdmin(ctx, requesterID, comment); err != nil {
		return err
	}

	_, err = s.commentRepo.DeleteTree(ctx, commentID)
	return err
}

// DeleteCommentAsModerator is the moderation path: anyone holding the
// moderate permission removes any comment, ownership ignored. Same core
// delete as DeleteComment, different guard.
func (s *commentService) DeleteCommentAsModerator(ctx context.Context, requesterID, commentID uuid.UUID) error {
	requester, err := s.userRepo.FindByID(ctx, requesterID.String())
	if err != nil {
		return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	if !requester.Grants.Has(model.PermissionModerate) {
		return apperror.ErrInsufficientPermission
	}

	if _, err := s.commentRepo.FindByID(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	_, err = s.commentRepo.DeleteTree(ctx, commentID)
	return err
}

func (s *commentService) requireOwnerOrAdmin(ctx context.Context, requesterID uuid.UUID, comment *model.Comment) error {
	if comment.AuthorID == requesterID {
		return nil
	}

	requester, err := s.userRepo.FindByID(ctx, requesterID.String())
	if err != nil {
		return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}
	if requester.Role != model.RoleAdmin {
		return fmt.Errorf("not the author: %w", apperror.ErrForbidden)
	}
	return nil
}

func (s *commentService) mapToResponse(ctx context.Context, comment *model.Comment) *dto.CommentResponse {
	authorName := "Unknown"
	if comment.Author.Username != "" {
		authorName = comment.Author.Username
	}

	replyCount, _ := s.commentRepo.CountReplies(ctx, comment.ID)

	return &dto.CommentResponse{
		ID:         comment.ID,
		ThreadID:   comment.ThreadID,
		ParentID:   comment.ParentID,
		Content:    comment.Content,
		Author:     authorName,
		IsEdited:   comment.IsEdited,
		IsHidden:   comment.IsHidden,
		Likes:      comment.Likes,
		ReplyCount: replyCount,
		CreatedAt:  comment.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:  comment.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
