package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/monitoring"
	"math"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

type AttemptService struct {
	QuizRepo    *repository.QuizRepository
	AttemptRepo *repository.AttemptRepository
}

func NewAttemptService(quizRepo *repository.QuizRepository, attemptRepo *repository.AttemptRepository) *AttemptService {
	return &AttemptService{QuizRepo: quizRepo, AttemptRepo: attemptRepo}
}

// StartAttemptResult 下发给答题者的开卷数据，题目已脱敏
type StartAttemptResult struct {
	AttemptID string                    `json:"attemptId"`
	Questions []model.SanitizedQuestion `json:"questions"`
	Duration  int                       `json:"duration"`
	StartedAt time.Time                 `json:"startedAt"`
}

// prepareQuestions 生成本次尝试的出题序列：按配置乱序题目和选项，
// 再投影为脱敏视图。服务端判分只认稳定的题目 ID，不信任客户端顺序。
func prepareQuestions(quiz *model.Quiz) []model.SanitizedQuestion {
	questions := make([]model.QuizQuestion, len(quiz.Questions))
	copy(questions, quiz.Questions)

	if quiz.Settings.ShuffleQuestions {
		rand.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	prepared := make([]model.SanitizedQuestion, len(questions))
	for i := range questions {
		q := questions[i]
		if quiz.Settings.ShuffleOptions &&
			(q.QuestionType == model.MultipleChoice || q.QuestionType == model.SingleChoice) {
			options := make([]model.QuizOption, len(q.Options))
			copy(options, q.Options)
			rand.Shuffle(len(options), func(i, j int) {
				options[i], options[j] = options[j], options[i]
			})
			q.Options = options
		}
		prepared[i] = q.Sanitized()
	}
	return prepared
}

// startAttemptGuard 开卷前置校验：必须已发布、处于开放窗口内且未用完次数
func startAttemptGuard(quiz *model.Quiz, attemptCount int64, now time.Time) error {
	if !quiz.IsPublished {
		return util.ErrQuizNotPublished
	}

	tooEarly, tooLate := quiz.InWindow(now)
	if tooEarly {
		return util.ErrQuizNotYetAvailable
	}
	if tooLate {
		return util.ErrQuizNoLongerAvailable
	}

	if attemptCount >= int64(quiz.Settings.MaxAttempts) {
		return util.ErrAttemptLimitReached
	}
	return nil
}

// submitGuard 终态尝试不允许再提交或改动作答
func submitGuard(attempt *model.QuizAttempt) error {
	if attempt.Status != model.AttemptInProgress {
		return util.ErrAttemptAlreadySubmitted
	}
	return nil
}

// timeExceeded 限时测验是否已超出答题时长（分钟）
func timeExceeded(quiz *model.Quiz, timeTaken float64) bool {
	return quiz.Settings.IsTimeLimited && timeTaken > float64(quiz.Duration)
}

// StartAttempt 开始一次测验尝试：校验发布状态、开放窗口和次数上限，
// 按出题序列创建 IN_PROGRESS 尝试并为每题预建空白作答记录。
func (s *AttemptService) StartAttempt(quizID string, studentID uint, now time.Time) (*StartAttemptResult, error) {
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	attemptCount, err := s.AttemptRepo.CountByStudentAndQuiz(quizID, studentID)
	if err != nil {
		return nil, err
	}
	if err := startAttemptGuard(quiz, attemptCount, now); err != nil {
		return nil, err
	}

	prepared := prepareQuestions(quiz)

	attempt := &model.QuizAttempt{
		QuizID:    quizID,
		StudentID: studentID,
		StartedAt: now,
		Status:    model.AttemptInProgress,
	}
	for _, q := range prepared {
		response := model.QuizResponse{QuestionID: q.ID}
		response.SetSelectedOptionIDs(nil)
		attempt.Responses = append(attempt.Responses, response)
	}

	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	return &StartAttemptResult{
		AttemptID: attempt.ID,
		Questions: prepared,
		Duration:  quiz.Duration,
		StartedAt: attempt.StartedAt,
	}, nil
}

type ResponseReq struct {
	QuestionID      string   `json:"question" binding:"required"`
	SelectedOptions []string `json:"selectedOptions"`
	TextAnswer      string   `json:"textAnswer"`
}

// mergeResponses 把提交的作答按题目 ID 合并进已存的作答记录。
// 未匹配的题目 ID 直接忽略，容忍部分提交。返回被改写的记录。
func mergeResponses(attempt *model.QuizAttempt, responses []ResponseReq) []model.QuizResponse {
	var touched []model.QuizResponse
	for _, req := range responses {
		stored := attempt.ResponseByQuestionID(req.QuestionID)
		if stored == nil {
			continue
		}
		stored.SetSelectedOptionIDs(req.SelectedOptions)
		stored.TextAnswer = req.TextAnswer
		touched = append(touched, *stored)
	}
	return touched
}

// RecordResponses 暂存作答（最终提交前的可选步骤）
func (s *AttemptService) RecordResponses(quizID, attemptID string, studentID uint, responses []ResponseReq) error {
	attempt, err := s.loadAttempt(quizID, attemptID, studentID)
	if err != nil {
		return err
	}

	if err := submitGuard(attempt); err != nil {
		return err
	}

	touched := mergeResponses(attempt, responses)
	return s.AttemptRepo.SaveResponses(touched)
}

// QuestionResult 单题判分明细，showAnswers 开启时附带标准答案和解析
type QuestionResult struct {
	Question      string      `json:"question"`
	IsCorrect     bool        `json:"isCorrect"`
	MarksObtained int         `json:"marksObtained"`
	MaxMarks      int         `json:"maxMarks"`
	CorrectAnswer interface{} `json:"correctAnswer,omitempty"`
	Explanation   string      `json:"explanation,omitempty"`
}

// SubmissionResult 提交结果。摘要字段总是返回，
// detailedResults 仅在 showResults 开启时返回。
type SubmissionResult struct {
	AttemptID       string              `json:"attemptId"`
	TotalMarks      int                 `json:"totalMarks"`
	MarksObtained   int                 `json:"marksObtained"`
	Percentage      float64             `json:"percentage"`
	TimeTaken       float64             `json:"timeTaken"` // 分钟
	Status          model.AttemptStatus `json:"status"`
	Passing         bool                `json:"passing"`
	DetailedResults []QuestionResult    `json:"detailedResults,omitempty"`
}

// SubmitAttempt 提交并判分。限时测验超时时先把尝试置为 EXPIRED 再报错，
// 终态落库靠状态 CAS，并发重复提交只有第一个写者成功。
func (s *AttemptService) SubmitAttempt(quizID, attemptID string, studentID uint, responses []ResponseReq, now time.Time) (*SubmissionResult, error) {
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	attempt, err := s.loadAttempt(quizID, attemptID, studentID)
	if err != nil {
		return nil, err
	}

	if err := submitGuard(attempt); err != nil {
		return nil, err
	}

	timeTaken := now.Sub(attempt.StartedAt).Minutes()
	if timeExceeded(quiz, timeTaken) {
		// 先持久化 EXPIRED 终态，再向调用方报错
		if err := s.AttemptRepo.MarkExpired(attempt.ID); err != nil {
			return nil, err
		}
		monitoring.QuizSubmissionCounter.WithLabelValues("expired").Inc()
		return nil, util.ErrTimeLimitExceeded
	}

	mergeResponses(attempt, responses)

	if err := quiz.EvaluateAttempt(attempt, now); err != nil {
		return nil, err
	}

	if err := s.AttemptRepo.FinalizeCompleted(attempt); err != nil {
		return nil, err
	}
	monitoring.QuizSubmissionCounter.WithLabelValues("completed").Inc()

	result := &SubmissionResult{
		AttemptID:     attempt.ID,
		TotalMarks:    quiz.TotalMarks,
		MarksObtained: attempt.MarksObtained,
		Percentage:    attempt.Percentage,
		TimeTaken:     math.Round(timeTaken*100) / 100,
		Status:        attempt.Status,
		Passing:       attempt.Percentage >= quiz.PassingPercentage,
	}

	if quiz.Settings.ShowResults {
		result.DetailedResults = buildDetailedResults(quiz, attempt)
	}

	return result, nil
}

func buildDetailedResults(quiz *model.Quiz, attempt *model.QuizAttempt) []QuestionResult {
	var details []QuestionResult
	for i := range attempt.Responses {
		response := &attempt.Responses[i]
		question := quiz.QuestionByID(response.QuestionID)
		if question == nil {
			continue
		}

		detail := QuestionResult{
			Question:      question.QuestionText,
			IsCorrect:     response.IsCorrect,
			MarksObtained: response.MarksObtained,
			MaxMarks:      question.Marks,
		}

		if quiz.Settings.ShowAnswers {
			if question.QuestionType == model.ShortAnswer {
				detail.CorrectAnswer = question.CorrectAnswer
			} else {
				detail.CorrectAnswer = question.CorrectOptions()
			}
			detail.Explanation = question.Explanation
		}

		details = append(details, detail)
	}
	return details
}

// AttemptPage 尝试分页列表
type AttemptPage struct {
	Attempts []model.QuizAttempt `json:"attempts"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	Pages    int                 `json:"pages"`
}

// ListAttempts 创建者可见全部尝试，学生只能看到自己的
func (s *AttemptService) ListAttempts(quizID string, actor *util.Claims, page, limit int) (*AttemptPage, error) {
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	var attempts []model.QuizAttempt
	var total int64
	if quiz.CreatedBy == actor.UserID {
		attempts, total, err = s.AttemptRepo.ListByQuiz(quizID, page, limit)
	} else {
		attempts, total, err = s.AttemptRepo.ListByQuizAndStudent(quizID, actor.UserID, page, limit)
	}
	if err != nil {
		return nil, err
	}

	return &AttemptPage{
		Attempts: attempts,
		Total:    total,
		Page:     page,
		Pages:    int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *AttemptService) loadQuiz(quizID string) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

// loadAttempt 校验尝试归属：必须属于该测验且由该学生发起
func (s *AttemptService) loadAttempt(quizID, attemptID string, studentID uint) (*model.QuizAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.QuizID != quizID {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	return attempt, nil
}
