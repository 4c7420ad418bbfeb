package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"anoa.com/communityforum/internal/dto"
	"anoa.com/communityforum/internal/model"
	"anoa.com/communityforum/internal/repository"
	"anoa.com/communityforum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type ThreadService interface {
	CreateThread(ctx context.Context, userID uuid.UUID, req dto.CreateThreadRequest) (*dto.ThreadResponse, error)
	GetThread(ctx context.Context, threadID, viewerID uuid.UUID) (*dto.ThreadResponse, error)
	GetAllThreads(ctx context.Context) ([]dto.ThreadResponse, error)
	ModerateThread(ctx context.Context, requesterID, threadID uuid.UUID, req dto.ModerateThreadRequest) error
	ToggleLike(ctx context.Context, userID, threadID uuid.UUID) (*dto.LikeResponse, error)
	StartViewSyncWorker(ctx context.Context)
}

type threadService struct {
	threadRepo  repository.ThreadRepository
	userRepo    repository.UserRepository
	redisClient *redis.Client
}

// NewThreadService builds the thread service. redisClient may be nil, in
// which case views are written straight to the database.
func NewThreadService(threadRepo repository.ThreadRepository, userRepo repository.UserRepository, redisClient *redis.Client) ThreadService {
	return &threadService{
		threadRepo:  threadRepo,
		userRepo:    userRepo,
		redisClient: redisClient,
	}
}

func (s *threadService) CreateThread(ctx context.Context, userID uuid.UUID, req dto.CreateThreadRequest) (*dto.ThreadResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	if !user.Grants.Has(model.PermissionPost) {
		return nil, apperror.ErrInsufficientPermission
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	thread := &model.Thread{
		AuthorID: userID,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		IsPublic: isPublic,
	}

	if err := s.threadRepo.Create(ctx, thread); err != nil {
		return nil, err
	}

	thread.Author = *user
	return s.mapToResponse(ctx, thread), nil
}

func (s *threadService) GetThread(ctx context.Context, threadID, viewerID uuid.UUID) (*dto.ThreadResponse, error) {
	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("thread not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := s.recordView(ctx, threadID, viewerID); err != nil {
		log.Printf("failed to record view for thread %s: %v", threadID, err)
	}

	return s.mapToResponse(ctx, thread), nil
}

func (s *threadService) GetAllThreads(ctx context.Context) ([]dto.ThreadResponse, error) {
	threads, err := s.threadRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ThreadResponse, 0, len(threads))
	for _, t := range threads {
		responses = append(responses, *s.mapToResponse(ctx, t))
	}
	return responses, nil
}

// ModerateThread applies a lock/visibility patch. Requires the moderate
// permission; ownership is irrelevant here.
func (s *threadService) ModerateThread(ctx context.Context, requesterID, threadID uuid.UUID, req dto.ModerateThreadRequest) error {
	requester, err := s.userRepo.FindByID(ctx, requesterID.String())
	if err != nil {
		return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}

	if !requester.Grants.Has(model.PermissionModerate) {
		return apperror.ErrInsufficientPermission
	}

	fields := map[string]any{}
	if req.IsLocked != nil {
		fields["is_locked"] = *req.IsLocked
	}
	if req.IsPublic != nil {
		fields["is_public"] = *req.IsPublic
	}
	if len(fields) == 0 {
		return fmt.Errorf("nothing to moderate: %w", apperror.ErrBadRequest)
	}

	if err := s.threadRepo.Patch(ctx, threadID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("thread not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

// ToggleLike flips the caller's membership in the thread's like set.
func (s *threadService) ToggleLike(ctx context.Context, userID, threadID uuid.UUID) (*dto.LikeResponse, error) {
	if _, err := s.threadRepo.FindByID(ctx, threadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("thread not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	liked, err := s.threadRepo.Like(ctx, threadID, userID)
	if err != nil {
		return nil, err
	}
	if !liked {
		// Already a member: toggle off.
		if _, err := s.threadRepo.Unlike(ctx, threadID, userID); err != nil {
			return nil, err
		}
	}

	count, err := s.threadRepo.CountLikes(ctx, threadID)
	if err != nil {
		return nil, err
	}

	return &dto.LikeResponse{Liked: liked, LikesCount: count}, nil
}

const pendingViewsKey = "pending:thread_views"

// recordView buffers the increment in redis with a per-user dedup window,
// falling back to a direct atomic column update when redis is absent.
func (s *threadService) recordView(ctx context.Context, threadID, viewerID uuid.UUID) error {
	if s.redisClient == nil {
		return s.threadRepo.AddViews(ctx, threadID, 1)
	}

	userViewKey := fmt.Sprintf("thread:user_view:%s:%s", threadID, viewerID)
	exists, err := s.redisClient.Exists(ctx, userViewKey).Result()
	if err != nil {
		return err
	}
	if exists == 1 {
		return nil
	}

	viewKey := fmt.Sprintf("thread:views:%s", threadID)
	if err := s.redisClient.Incr(ctx, viewKey).Err(); err != nil {
		return err
	}
	if err := s.redisClient.SAdd(ctx, pendingViewsKey, threadID.String()).Err(); err != nil {
		return err
	}
	return s.redisClient.SetEx(ctx, userViewKey, "viewed", time.Hour).Err()
}

func (s *threadService) syncViewsToDB(ctx context.Context) {
	threadIDs, err := s.redisClient.SMembers(ctx, pendingViewsKey).Result()
	if err != nil {
		log.Printf("failed to read pending thread views: %v", err)
		return
	}
	if len(threadIDs) == 0 {
		return
	}

	for _, idStr := range threadIDs {
		threadID, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}

		viewKey := fmt.Sprintf("thread:views:%s", threadID)
		raw, err := s.redisClient.Get(ctx, viewKey).Result()
		if err != nil && err != redis.Nil {
			log.Printf("failed to read view count for thread %s: %v", threadID, err)
			continue
		}

		count, _ := strconv.Atoi(raw)
		if count <= 0 {
			continue
		}

		if err := s.threadRepo.AddViews(ctx, threadID, count); err != nil {
			log.Printf("failed to flush views for thread %s: %v", threadID, err)
			continue
		}
		_ = s.redisClient.Del(ctx, viewKey).Err()
	}

	_ = s.redisClient.Del(ctx, pendingViewsKey).Err()
}

// StartViewSyncWorker flushes buffered view counts once a minute until the
// context is cancelled. No-op without redis.
func (s *threadService) StartViewSyncWorker(ctx context.Context) {
	if s.redisClient == nil {
		return
	}

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.syncViewsToDB(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *threadService) mapToResponse(ctx context.Context, thread *model.Thread) *dto.ThreadResponse {
	authorName := "Unknown"
	if thread.Author.Username != "" {
		authorName = thread.Author.Username
	}

	likesCount, _ := s.threadRepo.CountLikes(ctx, thread.ID)

	return &dto.ThreadResponse{
		ID:            thread.ID,
		Title:         thread.Title,
		Content:       thread.Content,
		Author:        authorName,
		IsPublic:      thread.IsPublic,
		IsLocked:      thread.IsLocked,
		Tags:          thread.Tags,
		Views:         thread.Views,
		CommentsCount: thread.CommentsCount,
		LikesCount:    likesCount,
		CreatedAt:     thread.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     thread.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
