package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/hmobot/internal/middleware"
	"github.com/xxxsen/hmobot/internal/pkg/errcode"
	appErr "github.com/xxxsen/hmobot/internal/pkg/errors"
	"github.com/xxxsen/hmobot/internal/pkg/response"
	"github.com/xxxsen/hmobot/internal/service"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get(middleware.ContextRequestIDKey)
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrInvalid), errors.Is(err, service.ErrInvalidPhase):
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, err.Error())
	case errors.Is(err, service.ErrProfileRequired):
		response.Error(c, http.StatusBadRequest, errcode.ErrProfileRequired, err.Error())
	case errors.Is(err, service.ErrAIUnavailable):
		response.Error(c, http.StatusServiceUnavailable, errcode.ErrAIUnavailable, "ai service unavailable")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, errcode.ErrNotFound, "not found")
	default:
		response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
	}
}
