package controller

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondServiceError 把服务层错误映射为稳定的 HTTP 状态码。
// 未识别的错误一律按 500 处理并记录日志，不向调用方泄漏细节。
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound),
		errors.Is(err, util.ErrAttemptNotFound),
		errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrModuleNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())

	case errors.Is(err, util.ErrPermissionDenied):
		util.Error(ctx, http.StatusForbidden, err.Error())

	case errors.Is(err, util.ErrMissingRequiredFields),
		errors.Is(err, util.ErrInvalidDuration),
		errors.Is(err, model.ErrQuestionTextRequired),
		errors.Is(err, model.ErrInvalidQuestionType),
		errors.Is(err, model.ErrInvalidMarks),
		errors.Is(err, model.ErrOptionsRequired),
		errors.Is(err, model.ErrCorrectAnswerRequired):
		util.Error(ctx, http.StatusBadRequest, err.Error())

	case errors.Is(err, util.ErrQuizNotPublished),
		errors.Is(err, util.ErrQuizNotYetAvailable),
		errors.Is(err, util.ErrQuizNoLongerAvailable),
		errors.Is(err, util.ErrQuizHasNoQuestions),
		errors.Is(err, util.ErrQuizLocked),
		errors.Is(err, util.ErrAttemptLimitReached),
		errors.Is(err, util.ErrAttemptAlreadySubmitted),
		errors.Is(err, util.ErrTimeLimitExceeded),
		errors.Is(err, model.ErrQuizHasNoMarks):
		util.Error(ctx, http.StatusBadRequest, err.Error())

	default:
		util.LogInternalError(ctx, err)
	}
}
