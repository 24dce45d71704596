package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type QuizService struct {
	Repo       *repository.QuizRepository
	CourseRepo *repository.CourseRepository
}

func NewQuizService(repo *repository.QuizRepository, courseRepo *repository.CourseRepository) *QuizService {
	return &QuizService{Repo: repo, CourseRepo: courseRepo}
}

type GradingSettingsReq struct {
	ShuffleQuestions *bool `json:"shuffleQuestions"`
	ShuffleOptions   *bool `json:"shuffleOptions"`
	ShowAnswers      *bool `json:"showAnswers"`
	ShowResults      *bool `json:"showResults"`
	MaxAttempts      *int  `json:"maxAttempts"`
	IsTimeLimited    *bool `json:"isTimeLimited"`
}

// defaultGradingSettings 未显式配置的项沿用默认值
func defaultGradingSettings() model.GradingSettings {
	return model.GradingSettings{
		ShuffleQuestions: true,
		ShuffleOptions:   true,
		ShowAnswers:      true,
		ShowResults:      true,
		MaxAttempts:      util.DefaultMaxAttempts,
		IsTimeLimited:    true,
	}
}

func (r *GradingSettingsReq) apply(settings *model.GradingSettings) {
	if r == nil {
		return
	}
	if r.ShuffleQuestions != nil {
		settings.ShuffleQuestions = *r.ShuffleQuestions
	}
	if r.ShuffleOptions != nil {
		settings.ShuffleOptions = *r.ShuffleOptions
	}
	if r.ShowAnswers != nil {
		settings.ShowAnswers = *r.ShowAnswers
	}
	if r.ShowResults != nil {
		settings.ShowResults = *r.ShowResults
	}
	if r.MaxAttempts != nil && *r.MaxAttempts >= 1 {
		settings.MaxAttempts = *r.MaxAttempts
	}
	if r.IsTimeLimited != nil {
		settings.IsTimeLimited = *r.IsTimeLimited
	}
}

type CreateQuizReq struct {
	Title             string              `json:"title" binding:"required"`
	CourseID          string              `json:"courseId" binding:"required"`
	ModuleID          string              `json:"moduleId" binding:"required"`
	Description       string              `json:"description" binding:"required"`
	Instructions      []string            `json:"instructions"`
	Duration          int                 `json:"duration" binding:"required"`
	PassingPercentage *float64            `json:"passingPercentage"`
	Settings          *GradingSettingsReq `json:"settings"`
	StartDate         *time.Time          `json:"startDate"`
	EndDate           *time.Time          `json:"endDate"`
}

// CreateQuiz 创建测验：校验必填项，核对课程归属后落库，初始无题目、总分为 0
func (s *QuizService) CreateQuiz(actor *util.Claims, req CreateQuizReq) (*model.Quiz, error) {
	if req.Title == "" || req.CourseID == "" || req.ModuleID == "" || req.Description == "" {
		return nil, util.ErrMissingRequiredFields
	}
	if req.Duration <= 0 {
		return nil, util.ErrInvalidDuration
	}

	course, err := s.CourseRepo.FindByID(req.CourseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if course.InstructorID != actor.UserID && !actor.IsAdmin() {
		return nil, util.ErrPermissionDenied
	}

	if !course.HasModule(req.ModuleID) {
		return nil, util.ErrModuleNotFound
	}

	passing := float64(util.DefaultPassingPercentage)
	if req.PassingPercentage != nil {
		passing = *req.PassingPercentage
	}

	settings := defaultGradingSettings()
	req.Settings.apply(&settings)

	var instructions json.RawMessage
	if len(req.Instructions) > 0 {
		instructions, _ = json.Marshal(req.Instructions)
	}

	quiz := &model.Quiz{
		Title:             req.Title,
		CourseID:          req.CourseID,
		ModuleID:          req.ModuleID,
		Description:       req.Description,
		Instructions:      instructions,
		Duration:          req.Duration,
		TotalMarks:        0,
		PassingPercentage: passing,
		Settings:          settings,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		IsPublished:       false,
		CreatedBy:         actor.UserID,
	}

	if err := s.Repo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// scoringLockGuard 一旦存在任何尝试，题目集和计分字段即被冻结
func scoringLockGuard(attemptCount int64) error {
	if attemptCount > 0 {
		return util.ErrQuizLocked
	}
	return nil
}

// publishGuard 无题目的测验不允许发布
func publishGuard(quiz *model.Quiz) error {
	if len(quiz.Questions) == 0 {
		return util.ErrQuizHasNoQuestions
	}
	return nil
}

type QuestionOptionReq struct {
	Text        string `json:"text" binding:"required"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation"`
}

type AddQuestionReq struct {
	QuestionText  string                `json:"questionText" binding:"required"`
	QuestionType  model.QuestionType    `json:"questionType" binding:"required"`
	Options       []QuestionOptionReq   `json:"options"`
	CorrectAnswer string                `json:"correctAnswer"`
	Marks         int                   `json:"marks"`
	Explanation   string                `json:"explanation"`
	Difficulty    model.DifficultyLevel `json:"difficulty"`
}

// AddQuestion 追加题目并重算总分。一旦存在任何尝试，题目集不可再变。
func (s *QuizService) AddQuestion(quizID string, actor *util.Claims, req AddQuestionReq) (*model.Quiz, error) {
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	if quiz.CreatedBy != actor.UserID {
		return nil, util.ErrPermissionDenied
	}

	attemptCount, err := s.Repo.CountAttempts(quizID)
	if err != nil {
		return nil, err
	}
	if err := scoringLockGuard(attemptCount); err != nil {
		return nil, err
	}

	marks := req.Marks
	if marks == 0 {
		marks = 1
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}

	question := model.QuizQuestion{
		QuizID:        quizID,
		QuestionText:  req.QuestionText,
		QuestionType:  req.QuestionType,
		CorrectAnswer: req.CorrectAnswer,
		Marks:         marks,
		Explanation:   req.Explanation,
		Difficulty:    difficulty,
		Order:         len(quiz.Questions) + 1,
	}
	for _, opt := range req.Options {
		question.Options = append(question.Options, model.QuizOption{
			Text:        opt.Text,
			IsCorrect:   opt.IsCorrect,
			Explanation: opt.Explanation,
		})
	}

	if err := question.Validate(); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateQuestion(&question); err != nil {
		return nil, err
	}

	// 重算总分，保证 totalMarks 恒等于题目分值之和
	quiz.Questions = append(quiz.Questions, question)
	quiz.CalculateTotalMarks()
	if err := s.Repo.UpdateTotalMarks(quizID, quiz.TotalMarks); err != nil {
		return nil, err
	}

	return quiz, nil
}

// PublishQuiz 发布测验，无题目的测验不允许发布
func (s *QuizService) PublishQuiz(quizID string, actor *util.Claims) (*model.Quiz, error) {
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	if quiz.CreatedBy != actor.UserID {
		return nil, util.ErrPermissionDenied
	}

	if err := publishGuard(quiz); err != nil {
		return nil, err
	}

	if err := s.Repo.SetPublished(quizID); err != nil {
		return nil, err
	}
	quiz.IsPublished = true
	return quiz, nil
}

type UpdateQuizReq struct {
	Title             *string             `json:"title"`
	Description       *string             `json:"description"`
	Instructions      *[]string           `json:"instructions"`
	Duration          *int                `json:"duration"`
	PassingPercentage *float64            `json:"passingPercentage"`
	Settings          *GradingSettingsReq `json:"settings"`
	StartDate         *time.Time          `json:"startDate"`
	EndDate           *time.Time          `json:"endDate"`
}

// touchesScoring 判断更新是否触碰计分相关字段（有尝试后被冻结的部分）
func (r *UpdateQuizReq) touchesScoring() bool {
	return r.Duration != nil || r.PassingPercentage != nil
}

// UpdateQuiz 更新测验。存在尝试后题目集、时长等计分字段不可变，
// 与计分无关的字段（标题、描述、开放窗口、展示配置）仍可修改。
func (s *QuizService) UpdateQuiz(quizID string, actor *util.Claims, req UpdateQuizReq) (*model.Quiz, error) {
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	if quiz.CreatedBy != actor.UserID {
		return nil, util.ErrPermissionDenied
	}

	if req.touchesScoring() {
		attemptCount, err := s.Repo.CountAttempts(quizID)
		if err != nil {
			return nil, err
		}
		if err := scoringLockGuard(attemptCount); err != nil {
			return nil, err
		}
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
		quiz.Description = *req.Description
	}
	if req.Instructions != nil {
		raw, _ := json.Marshal(*req.Instructions)
		fields["instructions"] = raw
		quiz.Instructions = raw
	}
	if req.Duration != nil {
		if *req.Duration <= 0 {
			return nil, util.ErrInvalidDuration
		}
		fields["duration"] = *req.Duration
		quiz.Duration = *req.Duration
	}
	if req.PassingPercentage != nil {
		fields["passing_percentage"] = *req.PassingPercentage
		quiz.PassingPercentage = *req.PassingPercentage
	}
	if req.StartDate != nil {
		fields["start_date"] = *req.StartDate
		quiz.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		fields["end_date"] = *req.EndDate
		quiz.EndDate = req.EndDate
	}
	if req.Settings != nil {
		req.Settings.apply(&quiz.Settings)
		fields["setting_shuffle_questions"] = quiz.Settings.ShuffleQuestions
		fields["setting_shuffle_options"] = quiz.Settings.ShuffleOptions
		fields["setting_show_answers"] = quiz.Settings.ShowAnswers
		fields["setting_show_results"] = quiz.Settings.ShowResults
		fields["setting_max_attempts"] = quiz.Settings.MaxAttempts
		fields["setting_is_time_limited"] = quiz.Settings.IsTimeLimited
	}

	if len(fields) == 0 {
		return quiz, nil
	}

	if err := s.Repo.UpdateFields(quizID, fields); err != nil {
		return nil, err
	}
	return quiz, nil
}

// QuizDetail 测验详情。非创建者拿到的是脱敏后的题目视图。
type QuizDetail struct {
	Quiz      *model.Quiz               `json:"quiz"`
	Questions []model.SanitizedQuestion `json:"questions,omitempty"`
}

func (s *QuizService) GetQuiz(quizID string, actor *util.Claims) (*QuizDetail, error) {
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	if quiz.CreatedBy == actor.UserID {
		return &QuizDetail{Quiz: quiz}, nil
	}

	sanitized := make([]model.SanitizedQuestion, len(quiz.Questions))
	for i := range quiz.Questions {
		sanitized[i] = quiz.Questions[i].Sanitized()
	}
	quiz.Questions = nil
	return &QuizDetail{Quiz: quiz, Questions: sanitized}, nil
}

func (s *QuizService) loadQuiz(quizID string) (*model.Quiz, error) {
	quiz, err := s.Repo.FindByID(quizID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}
