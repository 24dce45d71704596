package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrPermissionDenied = errors.New("permission denied")

	ErrCourseNotFound = errors.New("course not found")
	ErrModuleNotFound = errors.New("course module not found")

	ErrQuizNotFound          = errors.New("quiz not found")
	ErrQuizNotPublished      = errors.New("quiz is not published")
	ErrQuizNotYetAvailable   = errors.New("quiz has not started yet")
	ErrQuizNoLongerAvailable = errors.New("quiz has ended")
	ErrQuizHasNoQuestions    = errors.New("cannot publish quiz without questions")
	ErrQuizLocked            = errors.New("cannot modify questions or scoring settings after quiz has been attempted")
	ErrMissingRequiredFields = errors.New("all required fields must be provided")
	ErrInvalidDuration       = errors.New("duration must be greater than zero")

	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptLimitReached     = errors.New("maximum attempts reached for this quiz")
	ErrAttemptAlreadySubmitted = errors.New("this attempt has already been submitted")
	ErrTimeLimitExceeded       = errors.New("quiz time limit exceeded")
)
