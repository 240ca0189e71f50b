package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"social-scheduler/domain/dto"
	"social-scheduler/domain/model"
	"social-scheduler/interfaces/middleware"
	"social-scheduler/usecase"
)

type IScheduleHandler interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
	Reschedule(c *gin.Context)
}

type ScheduleHandler struct {
	scheduleUsecase usecase.IScheduleUsecase
}

func NewScheduleHandler(scheduleUsecase usecase.IScheduleUsecase) IScheduleHandler {
	return &ScheduleHandler{scheduleUsecase: scheduleUsecase}
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	var req usecase.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}

	post, err := h.scheduleUsecase.Create(c.Request.Context(), middleware.OwnerID(c), req)
	if err != nil {
		status, res := mapError(err)
		c.JSON(status, res)
		return
	}
	c.JSON(http.StatusCreated, dto.Res{ResponseCode: "201", ResponseMessage: "queued", Data: post})
}

func (h *ScheduleHandler) List(c *gin.Context) {
	posts, err := h.scheduleUsecase.List(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		status, res := mapError(err)
		c.JSON(status, res)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: posts})
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "invalid post id"})
		return
	}
	post, err := h.scheduleUsecase.Get(c.Request.Context(), id, middleware.OwnerID(c))
	if err != nil {
		status, res := mapError(err)
		c.JSON(status, res)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: post})
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "invalid post id"})
		return
	}
	if err := h.scheduleUsecase.Delete(c.Request.Context(), id, middleware.OwnerID(c)); err != nil {
		status, res := mapError(err)
		c.JSON(status, res)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "deleted"})
}

// Reschedule moves a post to a new future time. This is also how drafts get
// promoted into the queue and how failed posts are retried.
func (h *ScheduleHandler) Reschedule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "invalid post id"})
		return
	}
	var req struct {
		ScheduledAt time.Time `json:"scheduled_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}
	post, err := h.scheduleUsecase.Reschedule(c.Request.Context(), id, middleware.OwnerID(c), req.ScheduledAt)
	if err != nil {
		status, res := mapError(err)
		c.JSON(status, res)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "rescheduled", Data: post})
}

func mapError(err error) (int, dto.Res) {
	var vErr *model.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: vErr.Error()}
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: "not found"}
	case errors.Is(err, model.ErrNotOwner):
		// Do not reveal whether the record exists for another owner.
		return http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: "not found"}
	case errors.Is(err, model.ErrPostedImmutable):
		return http.StatusConflict, dto.Res{ResponseCode: "409", ResponseMessage: "posted records are immutable"}
	default:
		return http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "internal error"}
	}
}
