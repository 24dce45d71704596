package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"testing"
	"time"
)

func sampleQuiz(settings model.GradingSettings) *model.Quiz {
	quiz := &model.Quiz{Settings: settings}
	quiz.ID = "quiz1"

	for i, id := range []string{"q1", "q2", "q3"} {
		question := model.QuizQuestion{
			QuestionText:  "题目" + id,
			QuestionType:  model.SingleChoice,
			Marks:         i + 1,
			CorrectAnswer: "不应下发",
			Explanation:   "不应下发",
		}
		question.ID = id
		for _, optID := range []string{id + "-a", id + "-b", id + "-c"} {
			opt := model.QuizOption{Text: "选项" + optID, IsCorrect: optID == id+"-a"}
			opt.ID = optID
			question.Options = append(question.Options, opt)
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	quiz.CalculateTotalMarks()
	return quiz
}

func questionIDSet(questions []model.SanitizedQuestion) map[string]bool {
	ids := make(map[string]bool)
	for _, q := range questions {
		ids[q.ID] = true
	}
	return ids
}

func TestPrepareQuestionsPreservesIdentity(t *testing.T) {
	quiz := sampleQuiz(model.GradingSettings{ShuffleQuestions: true, ShuffleOptions: true})

	prepared := prepareQuestions(quiz)

	if len(prepared) != len(quiz.Questions) {
		t.Fatalf("prepared %d questions, want %d", len(prepared), len(quiz.Questions))
	}

	ids := questionIDSet(prepared)
	for _, q := range quiz.Questions {
		if !ids[q.ID] {
			t.Fatalf("question %s missing after shuffle", q.ID)
		}
	}

	// 原始切片不能被打乱
	for i, id := range []string{"q1", "q2", "q3"} {
		if quiz.Questions[i].ID != id {
			t.Fatalf("source questions mutated: position %d is %s", i, quiz.Questions[i].ID)
		}
	}
}

func TestPrepareQuestionsKeepsOrderWhenShuffleDisabled(t *testing.T) {
	quiz := sampleQuiz(model.GradingSettings{})

	prepared := prepareQuestions(quiz)

	for i, q := range quiz.Questions {
		if prepared[i].ID != q.ID {
			t.Fatalf("position %d = %s, want %s", i, prepared[i].ID, q.ID)
		}
		for j, opt := range q.Options {
			if prepared[i].Options[j].ID != opt.ID {
				t.Fatalf("question %s option %d reordered", q.ID, j)
			}
		}
	}
}

func TestPrepareQuestionsSanitizes(t *testing.T) {
	quiz := sampleQuiz(model.GradingSettings{ShuffleQuestions: true, ShuffleOptions: true})

	prepared := prepareQuestions(quiz)

	for _, q := range prepared {
		if len(q.Options) != 3 {
			t.Fatalf("question %s has %d options, want 3", q.ID, len(q.Options))
		}
		optIDs := make(map[string]bool)
		for _, opt := range q.Options {
			optIDs[opt.ID] = true
		}
		for _, want := range []string{q.ID + "-a", q.ID + "-b", q.ID + "-c"} {
			if !optIDs[want] {
				t.Fatalf("question %s lost option %s", q.ID, want)
			}
		}
	}
}

func TestStartAttemptGuard(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)
	later := now.Add(time.Hour)

	published := func() *model.Quiz {
		quiz := sampleQuiz(model.GradingSettings{MaxAttempts: 2})
		quiz.IsPublished = true
		return quiz
	}

	t.Run("未发布", func(t *testing.T) {
		quiz := published()
		quiz.IsPublished = false
		if err := startAttemptGuard(quiz, 0, now); err != util.ErrQuizNotPublished {
			t.Fatalf("startAttemptGuard = %v, want ErrQuizNotPublished", err)
		}
	})

	t.Run("尚未开放", func(t *testing.T) {
		quiz := published()
		quiz.StartDate = &later
		if err := startAttemptGuard(quiz, 0, now); err != util.ErrQuizNotYetAvailable {
			t.Fatalf("startAttemptGuard = %v, want ErrQuizNotYetAvailable", err)
		}
	})

	t.Run("已经结束", func(t *testing.T) {
		quiz := published()
		quiz.EndDate = &earlier
		if err := startAttemptGuard(quiz, 0, now); err != util.ErrQuizNoLongerAvailable {
			t.Fatalf("startAttemptGuard = %v, want ErrQuizNoLongerAvailable", err)
		}
	})

	t.Run("次数未用完", func(t *testing.T) {
		if err := startAttemptGuard(published(), 1, now); err != nil {
			t.Fatalf("startAttemptGuard = %v, want nil", err)
		}
	})

	t.Run("次数已用完", func(t *testing.T) {
		if err := startAttemptGuard(published(), 2, now); err != util.ErrAttemptLimitReached {
			t.Fatalf("startAttemptGuard = %v, want ErrAttemptLimitReached", err)
		}
	})

	t.Run("超出次数上限", func(t *testing.T) {
		if err := startAttemptGuard(published(), 3, now); err != util.ErrAttemptLimitReached {
			t.Fatalf("startAttemptGuard = %v, want ErrAttemptLimitReached", err)
		}
	})
}

func TestSubmitGuardRejectsTerminalAttempts(t *testing.T) {
	tests := []struct {
		name    string
		status  model.AttemptStatus
		wantErr error
	}{
		{"进行中可提交", model.AttemptInProgress, nil},
		{"已提交不可重复提交", model.AttemptCompleted, util.ErrAttemptAlreadySubmitted},
		{"已过期不可提交", model.AttemptExpired, util.ErrAttemptAlreadySubmitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt := &model.QuizAttempt{Status: tt.status}
			if err := submitGuard(attempt); err != tt.wantErr {
				t.Fatalf("submitGuard(%s) = %v, want %v", tt.status, err, tt.wantErr)
			}
		})
	}
}

func TestTimeExceeded(t *testing.T) {
	quiz := &model.Quiz{Duration: 30}
	quiz.Settings.IsTimeLimited = true

	if timeExceeded(quiz, 29.5) {
		t.Fatal("within duration must not be exceeded")
	}
	if timeExceeded(quiz, 30) {
		t.Fatal("exactly at duration must not be exceeded")
	}
	if !timeExceeded(quiz, 30.01) {
		t.Fatal("past duration must be exceeded")
	}

	quiz.Settings.IsTimeLimited = false
	if timeExceeded(quiz, 1000) {
		t.Fatal("untimed quiz can never expire")
	}
}

func TestMergeResponses(t *testing.T) {
	attempt := &model.QuizAttempt{
		Responses: []model.QuizResponse{
			{QuestionID: "q1"},
			{QuestionID: "q2"},
		},
	}

	touched := mergeResponses(attempt, []ResponseReq{
		{QuestionID: "q1", SelectedOptions: []string{"q1-a"}},
		{QuestionID: "q2", TextAnswer: "paris"},
		{QuestionID: "ghost", SelectedOptions: []string{"x"}},
	})

	if len(touched) != 2 {
		t.Fatalf("touched %d responses, want 2", len(touched))
	}

	r1 := attempt.ResponseByQuestionID("q1")
	if got := r1.SelectedOptionIDs(); len(got) != 1 || got[0] != "q1-a" {
		t.Fatalf("q1 selection = %v, want [q1-a]", got)
	}
	if r2 := attempt.ResponseByQuestionID("q2"); r2.TextAnswer != "paris" {
		t.Fatalf("q2 text = %q, want paris", r2.TextAnswer)
	}
	if len(attempt.Responses) != 2 {
		t.Fatalf("unknown question created a response: %d stored", len(attempt.Responses))
	}
}

func TestBuildDetailedResults(t *testing.T) {
	quiz := sampleQuiz(model.GradingSettings{ShowResults: true, ShowAnswers: true})

	attempt := &model.QuizAttempt{}
	for _, q := range quiz.Questions {
		response := model.QuizResponse{QuestionID: q.ID}
		if q.ID == "q1" {
			response.IsCorrect = true
			response.MarksObtained = q.Marks
		}
		attempt.Responses = append(attempt.Responses, response)
	}

	details := buildDetailedResults(quiz, attempt)

	if len(details) != 3 {
		t.Fatalf("details = %d, want 3", len(details))
	}
	for i, d := range details {
		question := &quiz.Questions[i]
		if d.MaxMarks != question.Marks {
			t.Fatalf("question %d maxMarks = %d, want %d", i, d.MaxMarks, question.Marks)
		}
		if d.CorrectAnswer == nil {
			t.Fatalf("question %d missing correct answer with showAnswers on", i)
		}
		if d.Explanation != question.Explanation {
			t.Fatalf("question %d explanation = %q", i, d.Explanation)
		}
	}
	if !details[0].IsCorrect || details[1].IsCorrect {
		t.Fatalf("correctness flags wrong: %+v", details)
	}
}

func TestBuildDetailedResultsHidesAnswers(t *testing.T) {
	quiz := sampleQuiz(model.GradingSettings{ShowResults: true})

	attempt := &model.QuizAttempt{
		Responses: []model.QuizResponse{{QuestionID: "q1", IsCorrect: true, MarksObtained: 1}},
	}

	details := buildDetailedResults(quiz, attempt)

	if len(details) != 1 {
		t.Fatalf("details = %d, want 1", len(details))
	}
	if details[0].CorrectAnswer != nil || details[0].Explanation != "" {
		t.Fatalf("answers leaked with showAnswers off: %+v", details[0])
	}
}

func TestMergeResponsesOverwritesPrevious(t *testing.T) {
	response := model.QuizResponse{QuestionID: "q1"}
	response.SetSelectedOptionIDs([]string{"q1-a"})
	attempt := &model.QuizAttempt{Responses: []model.QuizResponse{response}}

	mergeResponses(attempt, []ResponseReq{
		{QuestionID: "q1", SelectedOptions: []string{"q1-b", "q1-c"}},
	})

	got := attempt.ResponseByQuestionID("q1").SelectedOptionIDs()
	if len(got) != 2 || got[0] != "q1-b" || got[1] != "q1-c" {
		t.Fatalf("selection = %v, want [q1-b q1-c]", got)
	}
}
