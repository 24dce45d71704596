package service

import (
	"elearn_backend/internal/model"
	"testing"
)

func statsQuiz() *model.Quiz {
	quiz := &model.Quiz{PassingPercentage: 50}
	quiz.ID = "quiz1"
	for _, id := range []string{"q1", "q2"} {
		question := model.QuizQuestion{QuestionText: "题目" + id}
		question.ID = id
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}

func completedAttempt(percentage float64, correct map[string]bool) model.QuizAttempt {
	attempt := model.QuizAttempt{
		Status:     model.AttemptCompleted,
		Percentage: percentage,
	}
	for id, ok := range correct {
		attempt.Responses = append(attempt.Responses, model.QuizResponse{
			QuestionID: id,
			IsCorrect:  ok,
		})
	}
	return attempt
}

func TestBuildQuizStatisticsEmpty(t *testing.T) {
	stats := BuildQuizStatistics(statsQuiz(), 0, nil)

	if stats.TotalAttempts != 0 || stats.CompletedAttempts != 0 {
		t.Fatalf("counts = %d/%d, want 0/0", stats.TotalAttempts, stats.CompletedAttempts)
	}
	if stats.AverageScore != 0 || stats.HighestScore != 0 || stats.LowestScore != 0 || stats.PassingRate != 0 {
		t.Fatalf("empty stats must be zero: %+v", stats)
	}
	if len(stats.QuestionStats) != 2 {
		t.Fatalf("question stats = %d, want 2", len(stats.QuestionStats))
	}
	for _, qs := range stats.QuestionStats {
		if qs.SuccessRate != 0 || qs.TotalAttempts != 0 {
			t.Fatalf("question stat for %s not zero: %+v", qs.QuestionID, qs)
		}
	}
}

func TestBuildQuizStatisticsAggregates(t *testing.T) {
	quiz := statsQuiz()
	completed := []model.QuizAttempt{
		completedAttempt(80, map[string]bool{"q1": true, "q2": true}),
		completedAttempt(40, map[string]bool{"q1": true, "q2": false}),
		completedAttempt(60, map[string]bool{"q1": false, "q2": true}),
	}

	stats := BuildQuizStatistics(quiz, 5, completed)

	if stats.TotalAttempts != 5 {
		t.Fatalf("totalAttempts = %d, want 5", stats.TotalAttempts)
	}
	if stats.CompletedAttempts != 3 {
		t.Fatalf("completedAttempts = %d, want 3", stats.CompletedAttempts)
	}
	if stats.AverageScore != 60 {
		t.Fatalf("averageScore = %v, want 60", stats.AverageScore)
	}
	if stats.HighestScore != 80 || stats.LowestScore != 40 {
		t.Fatalf("highest/lowest = %v/%v, want 80/40", stats.HighestScore, stats.LowestScore)
	}
	// 80 和 60 通过，40 未通过
	if stats.PassingRate != 66.67 {
		t.Fatalf("passingRate = %v, want 66.67", stats.PassingRate)
	}

	rates := make(map[string]float64)
	for _, qs := range stats.QuestionStats {
		rates[qs.QuestionID] = qs.SuccessRate
	}
	if rates["q1"] != 66.67 || rates["q2"] != 66.67 {
		t.Fatalf("question success rates = %v, want 66.67 each", rates)
	}
}

func TestBuildQuizStatisticsSingleAttempt(t *testing.T) {
	quiz := statsQuiz()
	completed := []model.QuizAttempt{
		completedAttempt(33.33, map[string]bool{"q1": true, "q2": false}),
	}

	stats := BuildQuizStatistics(quiz, 1, completed)

	if stats.AverageScore != 33.33 || stats.HighestScore != 33.33 || stats.LowestScore != 33.33 {
		t.Fatalf("single attempt stats = %+v", stats)
	}
	if stats.PassingRate != 0 {
		t.Fatalf("passingRate = %v, want 0", stats.PassingRate)
	}
}
