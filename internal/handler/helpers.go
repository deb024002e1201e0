package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/deephumans/deephumans/internal/middleware"
	"github.com/deephumans/deephumans/internal/pkg/errcode"
	appErr "github.com/deephumans/deephumans/internal/pkg/errors"
	"github.com/deephumans/deephumans/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch err {
	case appErr.ErrUnauthorized:
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case appErr.ErrForbidden:
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case appErr.ErrNotFound:
		response.Error(c, errcode.ErrNotFound, "not found")
	case appErr.ErrInvalid:
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case appErr.ErrConflict:
		response.Error(c, errcode.ErrConflict, "conflict")
	case appErr.ErrTooMany:
		response.Error(c, errcode.ErrTooMany, "too many requests")
	case appErr.ErrSessionExpired:
		response.Error(c, errcode.ErrSessionExpired, "session expired, please request a new code")
	case appErr.ErrWeakPassword:
		response.Error(c, errcode.ErrWeakPassword, "password does not meet policy")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
