package handler

import (
	"net/http"

	"anoa.com/communityforum/internal/dto"
	"anoa.com/communityforum/internal/middleware"
	"anoa.com/communityforum/internal/service"
	"anoa.com/communityforum/pkg/apperror"
	"anoa.com/communityforum/pkg/response"
	"anoa.com/communityforum/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommentHandler struct {
	service service.CommentService
}

func NewCommentHandler(service service.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, validator.FormatValidationError(err), apperror.ErrBadRequest))
		return
	}

	id := middleware.CurrentIdentity(c)
	if id == nil {
		response.Error(c, apperror.ErrUnauthenticated)
		return
	}

	resp, err := h.service.CreateComment(c.Request.Context(), id.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, "comment created", resp)
}

// ListComments returns a thread's top-level comments, or the direct replies
// of ?parent_id=<uuid> when given.
func (h *CommentHandler) ListComments(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid thread id", apperror.ErrBadRequest))
		return
	}

	var parentID *uuid.UUID
	if raw := c.Query("parent_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, apperror.New(http.StatusBadRequest, "invalid parent id", apperror.ErrBadRequest))
			return
		}
		parentID = &pid
	}

	resp, err := h.service.ListComments(c.Request.Context(), threadID, parentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, "ok", resp)
}

func (h *CommentHandler) LikeComment(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid comment id", apperror.ErrBadRequest))
		return
	}

	if err := h.service.LikeComment(c.Request.Context(), commentID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, "ok", nil)
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid comment id", apperror.ErrBadRequest))
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, validator.FormatValidationError(err), apperror.ErrBadRequest))
		return
	}

	id := middleware.CurrentIdentity(c)
	if id == nil {
		response.Error(c, apperror.ErrUnauthenticated)
		return
	}

	resp, err := h.service.UpdateComment(c.Request.Context(), id.UserID, commentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, "comment updated", resp)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid comment id", apperror.ErrBadRequest))
		return
	}

	id := middleware.CurrentIdentity(c)
	if id == nil {
		response.Error(c, apperror.ErrUnauthenticated)
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), id.UserID, commentID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, "comment deleted", nil)
}

// DeleteCommentAsModerator is the moderation entry point; ownership is not
// checked, the moderate permission is.
func (h *CommentHandler) DeleteCommentAsModerator(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid comment id", apperror.ErrBadRequest))
		return
	}

	id := middleware.CurrentIdentity(c)
	if id == nil {
		response.Error(c, apperror.ErrUnauthenticated)
		return
	}

	if err := h.service.DeleteCommentAsModerator(c.Request.Context(), id.UserID, commentID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, "comment removed", nil)
}
