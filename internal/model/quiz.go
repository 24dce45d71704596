package model

import (
	"encoding/json"
	"errors"
	"time"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	SingleChoice   QuestionType = "SINGLE_CHOICE"
	TrueFalse      QuestionType = "TRUE_FALSE"
	ShortAnswer    QuestionType = "SHORT_ANSWER"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "EASY"
	DifficultyMedium DifficultyLevel = "MEDIUM"
	DifficultyHard   DifficultyLevel = "HARD"
)

var (
	ErrOptionsRequired       = errors.New("options are required for this question type")
	ErrCorrectAnswerRequired = errors.New("correct answer is required for short answer questions")
	ErrQuestionTextRequired  = errors.New("question text is required")
	ErrInvalidQuestionType   = errors.New("invalid question type")
	ErrInvalidMarks          = errors.New("question marks must be a positive integer")
)

// swagger:model QuizOption
type QuizOption struct {
	UUIDBase
	QuestionID  string `gorm:"index;type:varchar(36)" json:"questionId"`
	Text        string `gorm:"type:text;not null" json:"text"`
	IsCorrect   bool   `gorm:"default:false" json:"isCorrect"`
	Explanation string `gorm:"type:text" json:"explanation,omitempty"`
}

func (QuizOption) TableName() string {
	return "quiz_options"
}

// swagger:model QuizQuestion
type QuizQuestion struct {
	UUIDBase
	QuizID        string          `gorm:"index;type:varchar(36)" json:"quizId"`
	QuestionText  string          `gorm:"type:text;not null" json:"questionText"`
	QuestionType  QuestionType    `gorm:"size:50;not null" json:"questionType"`
	Options       []QuizOption    `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
	CorrectAnswer string          `gorm:"type:text" json:"correctAnswer,omitempty"`
	Marks         int             `gorm:"default:1" json:"marks"`
	Explanation   string          `gorm:"type:text" json:"explanation,omitempty"`
	Difficulty    DifficultyLevel `gorm:"size:10;default:'MEDIUM'" json:"difficulty"`
	Order         int             `gorm:"default:0" json:"order"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// IsChoiceType 选择型题目（答案由选项集合决定）
func (t QuestionType) IsChoiceType() bool {
	return t == MultipleChoice || t == SingleChoice || t == TrueFalse
}

func (t QuestionType) Valid() bool {
	return t.IsChoiceType() || t == ShortAnswer
}

// Validate 按题型校验题目结构，创建时调用，不做推断
func (q *QuizQuestion) Validate() error {
	if q.QuestionText == "" {
		return ErrQuestionTextRequired
	}
	if !q.QuestionType.Valid() {
		return ErrInvalidQuestionType
	}
	if q.Marks <= 0 {
		return ErrInvalidMarks
	}
	if q.QuestionType.IsChoiceType() && len(q.Options) == 0 {
		return ErrOptionsRequired
	}
	if q.QuestionType == ShortAnswer && q.CorrectAnswer == "" {
		return ErrCorrectAnswerRequired
	}
	return nil
}

// CorrectOptionIDs 标准答案选项的 ID 集合
func (q *QuizQuestion) CorrectOptionIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids[opt.ID] = true
		}
	}
	return ids
}

// CorrectOptions 标准答案选项列表（用于 showAnswers 的结果展示）
func (q *QuizQuestion) CorrectOptions() []QuizOption {
	var correct []QuizOption
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correct = append(correct, opt)
		}
	}
	return correct
}

// SanitizedOption 剔除正确性标记后的选项视图，可安全下发给答题者
type SanitizedOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SanitizedQuestion 剔除答案数据后的题目视图
type SanitizedQuestion struct {
	ID           string            `json:"id"`
	QuestionText string            `json:"questionText"`
	QuestionType QuestionType      `json:"questionType"`
	Options      []SanitizedOption `json:"options,omitempty"`
	Marks        int               `json:"marks"`
	Difficulty   DifficultyLevel   `json:"difficulty"`
}

// Sanitized 生成脱敏副本：去掉 isCorrect、correctAnswer 和 explanation
func (q *QuizQuestion) Sanitized() SanitizedQuestion {
	sq := SanitizedQuestion{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Marks:        q.Marks,
		Difficulty:   q.Difficulty,
	}
	for _, opt := range q.Options {
		sq.Options = append(sq.Options, SanitizedOption{ID: opt.ID, Text: opt.Text})
	}
	return sq
}

// GradingSettings 评分配置，纯配置项，由答题引擎读取
type GradingSettings struct {
	ShuffleQuestions bool `gorm:"default:true" json:"shuffleQuestions"`
	ShuffleOptions   bool `gorm:"default:true" json:"shuffleOptions"`
	ShowAnswers      bool `gorm:"default:true" json:"showAnswers"`
	ShowResults      bool `gorm:"default:true" json:"showResults"`
	MaxAttempts      int  `gorm:"default:1" json:"maxAttempts"`
	IsTimeLimited    bool `gorm:"default:true" json:"isTimeLimited"`
}

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	Title             string          `gorm:"size:255;not null;index" json:"title"`
	CourseID          string          `gorm:"index:idx_course_module;type:varchar(36);not null" json:"courseId"`
	ModuleID          string          `gorm:"index:idx_course_module;type:varchar(36);not null" json:"moduleId"`
	Description       string          `gorm:"type:text;not null" json:"description"`
	Instructions      json.RawMessage `gorm:"type:json" json:"instructions,omitempty"`
	Duration          int             `gorm:"not null" json:"duration"` // 分钟
	TotalMarks        int             `gorm:"default:0" json:"totalMarks"`
	PassingPercentage float64         `gorm:"default:50" json:"passingPercentage"`
	Questions         []QuizQuestion  `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	Settings          GradingSettings `gorm:"embedded;embeddedPrefix:setting_" json:"settings"`
	StartDate         *time.Time      `json:"startDate,omitempty"`
	EndDate           *time.Time      `json:"endDate,omitempty"`
	IsPublished       bool            `gorm:"default:false" json:"isPublished"`
	CreatedBy         uint            `gorm:"index;type:bigint unsigned" json:"createdBy"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// CalculateTotalMarks 重算总分，加题后必须调用，发布前不得过期
func (q *Quiz) CalculateTotalMarks() {
	total := 0
	for _, question := range q.Questions {
		total += question.Marks
	}
	q.TotalMarks = total
}

// QuestionByID 按稳定 ID 查找题目，乱序出题后判分依赖该映射
func (q *Quiz) QuestionByID(questionID string) *QuizQuestion {
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return &q.Questions[i]
		}
	}
	return nil
}

// InWindow 判断时间是否落在开放窗口内
func (q *Quiz) InWindow(now time.Time) (tooEarly, tooLate bool) {
	if q.StartDate != nil && now.Before(*q.StartDate) {
		tooEarly = true
	}
	if q.EndDate != nil && now.After(*q.EndDate) {
		tooLate = true
	}
	return
}
