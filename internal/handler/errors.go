package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"recordmate-backend/internal/model"
	"recordmate-backend/internal/service"
	"recordmate-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// statusFor 把服务层错误映射为 HTTP 状态码。
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyObservation), errors.Is(err, model.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrNoAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	if service.Classify(err) == service.KindQuota {
		return http.StatusTooManyRequests
	}
	return http.StatusBadGateway
}

func errorBody(err error) model.ErrorResponse {
	resp := model.ErrorResponse{
		Error:   err.Error(),
		Message: service.UserMessage(err),
	}
	if k := service.Classify(err); k != service.KindUnknown {
		resp.Kind = string(k)
	}
	return resp
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, errorBody(err))
}

// bindError 区分缺少观察内容与其他请求体错误（JSON 格式、字段类型）。
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Observation" {
				return fmt.Errorf("%w: %v", service.ErrEmptyObservation, err)
			}
		}
	}
	return fmt.Errorf("%w: %v", model.ErrInvalidOptions, err)
}
