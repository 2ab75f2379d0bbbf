package handler

import (
	"errors"

	"event-social/internal/service"
	"event-social/internal/social"
	"event-social/pkg/jwt"
	"event-social/pkg/logger"
	"event-social/pkg/password"
	"event-social/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError 把业务错误映射为响应码
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrEventNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrNotMember), errors.Is(err, service.ErrNotFriends):
		response.Forbidden(c, err.Error())
	case errors.Is(err, social.ErrUsernameTaken), errors.Is(err, social.ErrProfileExists):
		response.Conflict(c, err.Error())
	case isValidation(err):
		response.BadRequest(c, err.Error())
	default:
		logger.Error("请求处理失败",
			zap.String("path", c.Request.URL.Path),
			zap.String("username", jwt.GetUsername(c)),
			zap.Error(err))
		response.ErrorWithDetails(c, 500, "服务器内部错误", err)
	}
}

func isValidation(err error) bool {
	for _, target := range []error{
		social.ErrUsernameStart,
		social.ErrUsernameTooShort,
		social.ErrUsernameTooLong,
		social.ErrUsernameCharset,
		social.ErrUsernameDoubleUnd,
		social.ErrUsernameUnderscore,
		social.ErrTooManyMedia,
		social.ErrEventInvalid,
		social.ErrInvalidID,
		password.ErrTooShort,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
