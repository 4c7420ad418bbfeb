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

type ThreadHandler struct {
	service service.ThreadService
}

func NewThreadHandler(service service.ThreadService) *ThreadHandler {
	return &ThreadHandler{service: service}
}

func (h *ThreadHandler) CreateThread(c *gin.Context) {
	var req dto.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, validator.FormatValidationError(err), apperror.ErrBadRequest))
		return
	}

	id := middleware.CurrentIdentity(c)
	if id == nil {
		response.Error(c, apperror.ErrUnauthenticated)
		return
	}

	resp, err := h.service.CreateThread(c.Request.Context(), id.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, "thread created", resp)
}

func (h *ThreadHandler) GetThread(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid thread id", apperror.ErrBadRequest))
		return
	}

	id := middleware.CurrentIdentity(c)
	if id == nil {
		response.Error(c, apperror.ErrUnauthenticated)
		return
	}

	resp, err := h.service.GetThread(c.Request.Context(), threadID, id.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, "ok", resp)
}

func (h *ThreadHandler) GetAllThreads(c *gin.Context) {
	resp, err := h.service.GetAllThreads(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, "ok", resp)
}

func (h *ThreadHandler) ModerateThread(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid thread id", apperror.ErrBadRequest))
		return
	}

	var req dto.ModerateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, validator.FormatValidationError(err), apperror.ErrBadRequest))
		return
	}

	id := middleware.CurrentIdentity(c)
	if id == nil {
		response.Error(c, apperror.ErrUnauthenticated)
		return
	}

	if err := h.service.ModerateThread(c.Request.Context(), id.UserID, threadID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, "thread updated", nil)
}

func (h *ThreadHandler) ToggleLike(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid thread id", apperror.ErrBadRequest))
		return
	}

	id := middleware.CurrentIdentity(c)
	if id == nil {
		response.Error(c, apperror.ErrUnauthenticated)
		return
	}

	resp, err := h.service.ToggleLike(c.Request.Context(), id.UserID, threadID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, "ok", resp)
}
