package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"social-scheduler/domain/dto"
	"social-scheduler/infrastructure/logger"
	"social-scheduler/usecase"
)

type IAutopostHandler interface {
	Trigger(c *gin.Context)
}

type AutopostHandler struct {
	dispatchUsecase usecase.IDispatchUsecase
}

func NewAutopostHandler(dispatchUsecase usecase.IDispatchUsecase) IAutopostHandler {
	return &AutopostHandler{dispatchUsecase: dispatchUsecase}
}

// Trigger runs one dispatch batch. The caller only learns the batch summary;
// per-post failures are recorded on the posts themselves.
func (h *AutopostHandler) Trigger(c *gin.Context) {
	summary, err := h.dispatchUsecase.Dispatch(c.Request.Context(), time.Now())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("dispatch batch failed")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "dispatch failed"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: summary})
}
