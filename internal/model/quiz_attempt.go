package model

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
	AttemptExpired    AttemptStatus = "EXPIRED"
)

// ErrQuizHasNoMarks 总分为 0 时不能判分（避免除零）
var ErrQuizHasNoMarks = errors.New("quiz has no marks to evaluate against")

// IsTerminal COMPLETED 和 EXPIRED 为终态，之后不允许再改动作答
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptCompleted || s == AttemptExpired
}

// swagger:model QuizResponse
type QuizResponse struct {
	UUIDBase
	AttemptID       string `gorm:"index;type:varchar(36)" json:"attemptId"`
	QuestionID      string `gorm:"index;type:varchar(36)" json:"questionId"`
	SelectedOptions string `gorm:"type:json" json:"-"`
	TextAnswer      string `gorm:"type:text" json:"textAnswer"`
	IsCorrect       bool   `gorm:"default:false" json:"isCorrect"`
	MarksObtained   int    `gorm:"default:0" json:"marksObtained"`
}

func (QuizResponse) TableName() string {
	return "quiz_responses"
}

// SelectedOptionIDs 解析选项 ID 列表，存储格式为 JSON 数组
func (r *QuizResponse) SelectedOptionIDs() []string {
	if r.SelectedOptions == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(r.SelectedOptions), &ids); err != nil {
		return nil
	}
	return ids
}

func (r *QuizResponse) SetSelectedOptionIDs(ids []string) {
	if ids == nil {
		ids = []string{}
	}
	raw, _ := json.Marshal(ids)
	r.SelectedOptions = string(raw)
}

// swagger:model QuizAttempt
type QuizAttempt struct {
	UUIDBase
	QuizID        string         `gorm:"index;type:varchar(36)" json:"quizId"`
	StudentID     uint           `gorm:"index;type:bigint unsigned" json:"studentId"`
	Responses     []QuizResponse `gorm:"foreignKey:AttemptID" json:"responses,omitempty"`
	StartedAt     time.Time      `json:"startedAt"`
	SubmittedAt   *time.Time     `json:"submittedAt,omitempty"`
	MarksObtained int            `gorm:"default:0" json:"marksObtained"`
	Percentage    float64        `gorm:"default:0" json:"percentage"`
	Status        AttemptStatus  `gorm:"size:20;default:'IN_PROGRESS'" json:"status"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// ResponseByQuestionID 按题目 ID 查找作答记录
func (a *QuizAttempt) ResponseByQuestionID(questionID string) *QuizResponse {
	for i := range a.Responses {
		if a.Responses[i].QuestionID == questionID {
			return &a.Responses[i]
		}
	}
	return nil
}

// Round2 百分比统一保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// evaluateResponse 按题型判定单题作答，满分或零分，不给部分分
func evaluateResponse(question *QuizQuestion, response *QuizResponse) {
	switch question.QuestionType {
	case MultipleChoice, SingleChoice:
		correct := question.CorrectOptionIDs()
		selected := make(map[string]bool)
		for _, id := range response.SelectedOptionIDs() {
			selected[id] = true
		}

		// 所选集合与正确集合完全相等才算对（大小相同且成员相同）
		isCorrect := len(selected) == len(correct)
		if isCorrect {
			for id := range selected {
				if !correct[id] {
					isCorrect = false
					break
				}
			}
		}
		response.IsCorrect = isCorrect

	case TrueFalse:
		selected := response.SelectedOptionIDs()
		response.IsCorrect = false
		if len(selected) == 1 {
			for _, opt := range question.Options {
				if opt.IsCorrect {
					response.IsCorrect = selected[0] == opt.ID
					break
				}
			}
		}

	case ShortAnswer:
		// 忽略大小写和首尾空白的精确比对
		given := strings.ToLower(strings.TrimSpace(response.TextAnswer))
		want := strings.ToLower(strings.TrimSpace(question.CorrectAnswer))
		response.IsCorrect = given != "" && given == want
	}

	if response.IsCorrect {
		response.MarksObtained = question.Marks
	} else {
		response.MarksObtained = 0
	}
}

// EvaluateAttempt 对一次作答执行确定性判分：逐题打分、汇总得分、
// 计算百分比并把尝试置为 COMPLETED。isCorrect/marksObtained 只在此处写入。
func (q *Quiz) EvaluateAttempt(attempt *QuizAttempt, now time.Time) error {
	if q.TotalMarks == 0 {
		return ErrQuizHasNoMarks
	}

	total := 0
	for i := range attempt.Responses {
		response := &attempt.Responses[i]
		question := q.QuestionByID(response.QuestionID)
		if question == nil {
			continue
		}
		evaluateResponse(question, response)
		total += response.MarksObtained
	}

	attempt.MarksObtained = total
	attempt.Percentage = Round2(float64(total) / float64(q.TotalMarks) * 100)
	attempt.Status = AttemptCompleted
	attempt.SubmittedAt = &now
	return nil
}
