package model

import (
	"testing"
	"time"
)

func buildQuiz(questions ...QuizQuestion) *Quiz {
	quiz := &Quiz{Questions: questions}
	quiz.ID = "quiz1"
	quiz.PassingPercentage = 50
	quiz.CalculateTotalMarks()
	return quiz
}

func buildAttempt(quiz *Quiz) *QuizAttempt {
	attempt := &QuizAttempt{QuizID: quiz.ID, Status: AttemptInProgress, StartedAt: time.Now()}
	attempt.ID = "attempt1"
	for _, q := range quiz.Questions {
		response := QuizResponse{QuestionID: q.ID}
		response.SetSelectedOptionIDs(nil)
		attempt.Responses = append(attempt.Responses, response)
	}
	return attempt
}

func choiceQuestion(id string, qt QuestionType, marks int, options ...QuizOption) QuizQuestion {
	q := QuizQuestion{QuestionText: "题目" + id, QuestionType: qt, Marks: marks, Options: options}
	q.ID = id
	return q
}

func answer(attempt *QuizAttempt, questionID string, selected []string, text string) {
	response := attempt.ResponseByQuestionID(questionID)
	response.SetSelectedOptionIDs(selected)
	response.TextAnswer = text
}

func TestEvaluateMultipleChoiceExactSet(t *testing.T) {
	question := choiceQuestion("q1", MultipleChoice, 4,
		option("a", true), option("b", true), option("c", false), option("d", false))
	quiz := buildQuiz(question)

	tests := []struct {
		name     string
		selected []string
		want     bool
	}{
		{"完全命中", []string{"a", "b"}, true},
		{"顺序无关", []string{"b", "a"}, true},
		{"漏选", []string{"a"}, false},
		{"多选", []string{"a", "b", "c"}, false},
		{"全错", []string{"c", "d"}, false},
		{"未作答", nil, false},
		{"重复选项不算多个", []string{"a", "a", "b"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt := buildAttempt(quiz)
			answer(attempt, "q1", tt.selected, "")

			if err := quiz.EvaluateAttempt(attempt, time.Now()); err != nil {
				t.Fatalf("EvaluateAttempt: %v", err)
			}

			response := attempt.ResponseByQuestionID("q1")
			if response.IsCorrect != tt.want {
				t.Fatalf("isCorrect = %v, want %v", response.IsCorrect, tt.want)
			}
			wantMarks := 0
			if tt.want {
				wantMarks = 4
			}
			if response.MarksObtained != wantMarks {
				t.Fatalf("marksObtained = %d, want %d", response.MarksObtained, wantMarks)
			}
		})
	}
}

func TestEvaluateTrueFalse(t *testing.T) {
	question := choiceQuestion("q1", TrueFalse, 1, option("true", true), option("false", false))
	quiz := buildQuiz(question)

	tests := []struct {
		name     string
		selected []string
		want     bool
	}{
		{"答对", []string{"true"}, true},
		{"答错", []string{"false"}, false},
		{"未作答", nil, false},
		{"两个都选", []string{"true", "false"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt := buildAttempt(quiz)
			answer(attempt, "q1", tt.selected, "")

			if err := quiz.EvaluateAttempt(attempt, time.Now()); err != nil {
				t.Fatalf("EvaluateAttempt: %v", err)
			}
			if got := attempt.ResponseByQuestionID("q1").IsCorrect; got != tt.want {
				t.Fatalf("isCorrect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateShortAnswer(t *testing.T) {
	question := QuizQuestion{
		QuestionText:  "法国的首都？",
		QuestionType:  ShortAnswer,
		Marks:         3,
		CorrectAnswer: "Paris",
	}
	question.ID = "q1"
	quiz := buildQuiz(question)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"精确匹配", "Paris", true},
		{"忽略大小写", "PARIS", true},
		{"忽略首尾空白", "  paris  ", true},
		{"错误答案", "London", false},
		{"空答案", "", false},
		{"只有空白", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt := buildAttempt(quiz)
			answer(attempt, "q1", nil, tt.text)

			if err := quiz.EvaluateAttempt(attempt, time.Now()); err != nil {
				t.Fatalf("EvaluateAttempt: %v", err)
			}
			if got := attempt.ResponseByQuestionID("q1").IsCorrect; got != tt.want {
				t.Fatalf("isCorrect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateAttemptTotalsAndPercentage(t *testing.T) {
	quiz := buildQuiz(
		choiceQuestion("q1", SingleChoice, 5, option("a", true), option("b", false)),
		choiceQuestion("q2", SingleChoice, 10, option("c", true), option("d", false)),
	)

	attempt := buildAttempt(quiz)
	answer(attempt, "q1", []string{"a"}, "")
	answer(attempt, "q2", []string{"d"}, "")

	now := time.Now()
	if err := quiz.EvaluateAttempt(attempt, now); err != nil {
		t.Fatalf("EvaluateAttempt: %v", err)
	}

	if attempt.MarksObtained != 5 {
		t.Fatalf("marksObtained = %d, want 5", attempt.MarksObtained)
	}
	// 5/15 = 33.333... 保留两位小数
	if attempt.Percentage != 33.33 {
		t.Fatalf("percentage = %v, want 33.33", attempt.Percentage)
	}
	if attempt.Status != AttemptCompleted {
		t.Fatalf("status = %s, want %s", attempt.Status, AttemptCompleted)
	}
	if attempt.SubmittedAt == nil || !attempt.SubmittedAt.Equal(now) {
		t.Fatalf("submittedAt = %v, want %v", attempt.SubmittedAt, now)
	}
}

func TestEvaluateAttemptZeroMarks(t *testing.T) {
	quiz := buildQuiz()
	attempt := buildAttempt(quiz)

	if err := quiz.EvaluateAttempt(attempt, time.Now()); err != ErrQuizHasNoMarks {
		t.Fatalf("EvaluateAttempt = %v, want ErrQuizHasNoMarks", err)
	}
	if attempt.Status != AttemptInProgress {
		t.Fatalf("status changed to %s on failed evaluation", attempt.Status)
	}
}

func TestEvaluateAttemptIgnoresUnknownQuestions(t *testing.T) {
	quiz := buildQuiz(choiceQuestion("q1", SingleChoice, 2, option("a", true)))

	attempt := buildAttempt(quiz)
	answer(attempt, "q1", []string{"a"}, "")
	stray := QuizResponse{QuestionID: "ghost"}
	stray.SetSelectedOptionIDs([]string{"a"})
	attempt.Responses = append(attempt.Responses, stray)

	if err := quiz.EvaluateAttempt(attempt, time.Now()); err != nil {
		t.Fatalf("EvaluateAttempt: %v", err)
	}
	if attempt.MarksObtained != 2 || attempt.Percentage != 100 {
		t.Fatalf("marks = %d percentage = %v, want 2 / 100", attempt.MarksObtained, attempt.Percentage)
	}
}

func TestAttemptStatusIsTerminal(t *testing.T) {
	if AttemptInProgress.IsTerminal() {
		t.Fatal("IN_PROGRESS must not be terminal")
	}
	if !AttemptCompleted.IsTerminal() || !AttemptExpired.IsTerminal() {
		t.Fatal("COMPLETED and EXPIRED must be terminal")
	}
}

func TestSelectedOptionIDsRoundTrip(t *testing.T) {
	var response QuizResponse

	if got := response.SelectedOptionIDs(); got != nil {
		t.Fatalf("empty storage = %v, want nil", got)
	}

	response.SetSelectedOptionIDs([]string{"a", "b"})
	got := response.SelectedOptionIDs()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("round trip = %v, want [a b]", got)
	}

	response.SetSelectedOptionIDs(nil)
	if got := response.SelectedOptionIDs(); len(got) != 0 {
		t.Fatalf("cleared selection = %v, want empty", got)
	}
}
