package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"testing"
)

func boolPtr(v bool) *bool    { return &v }
func intPtr(v int) *int       { return &v }
func f64Ptr(v float64) *float64 { return &v }

func TestDefaultGradingSettings(t *testing.T) {
	settings := defaultGradingSettings()

	if !settings.ShuffleQuestions || !settings.ShuffleOptions {
		t.Fatalf("shuffle defaults should be on: %+v", settings)
	}
	if !settings.ShowAnswers || !settings.ShowResults {
		t.Fatalf("display defaults should be on: %+v", settings)
	}
	if settings.MaxAttempts != 1 {
		t.Fatalf("maxAttempts = %d, want 1", settings.MaxAttempts)
	}
	if !settings.IsTimeLimited {
		t.Fatal("isTimeLimited default should be on")
	}
}

func TestGradingSettingsApply(t *testing.T) {
	settings := defaultGradingSettings()

	req := &GradingSettingsReq{
		ShuffleQuestions: boolPtr(false),
		MaxAttempts:      intPtr(3),
	}
	req.apply(&settings)

	if settings.ShuffleQuestions {
		t.Fatal("shuffleQuestions should be overridden to false")
	}
	if settings.MaxAttempts != 3 {
		t.Fatalf("maxAttempts = %d, want 3", settings.MaxAttempts)
	}
	// 未设置的项保持默认
	if !settings.ShuffleOptions || !settings.ShowAnswers || !settings.IsTimeLimited {
		t.Fatalf("untouched settings changed: %+v", settings)
	}
}

func TestGradingSettingsApplyNil(t *testing.T) {
	settings := defaultGradingSettings()
	var req *GradingSettingsReq
	req.apply(&settings)

	if settings != defaultGradingSettings() {
		t.Fatalf("nil request mutated settings: %+v", settings)
	}
}

func TestGradingSettingsApplyRejectsZeroAttempts(t *testing.T) {
	settings := defaultGradingSettings()

	req := &GradingSettingsReq{MaxAttempts: intPtr(0)}
	req.apply(&settings)

	if settings.MaxAttempts != 1 {
		t.Fatalf("maxAttempts = %d, want 1 (zero rejected)", settings.MaxAttempts)
	}
}

func TestPublishGuard(t *testing.T) {
	quiz := &model.Quiz{}
	if err := publishGuard(quiz); err != util.ErrQuizHasNoQuestions {
		t.Fatalf("publishGuard(empty) = %v, want ErrQuizHasNoQuestions", err)
	}

	quiz.Questions = []model.QuizQuestion{{QuestionText: "题目"}}
	if err := publishGuard(quiz); err != nil {
		t.Fatalf("publishGuard = %v, want nil", err)
	}
}

func TestScoringLockGuard(t *testing.T) {
	if err := scoringLockGuard(0); err != nil {
		t.Fatalf("scoringLockGuard(0) = %v, want nil", err)
	}
	if err := scoringLockGuard(1); err != util.ErrQuizLocked {
		t.Fatalf("scoringLockGuard(1) = %v, want ErrQuizLocked", err)
	}
}

func TestUpdateQuizReqTouchesScoring(t *testing.T) {
	title := "新标题"

	tests := []struct {
		name string
		req  UpdateQuizReq
		want bool
	}{
		{"空更新", UpdateQuizReq{}, false},
		{"仅标题", UpdateQuizReq{Title: &title}, false},
		{"修改时长", UpdateQuizReq{Duration: intPtr(30)}, true},
		{"修改及格线", UpdateQuizReq{PassingPercentage: f64Ptr(60)}, true},
		{"仅展示配置", UpdateQuizReq{Settings: &GradingSettingsReq{ShowAnswers: boolPtr(false)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.touchesScoring(); got != tt.want {
				t.Fatalf("touchesScoring() = %v, want %v", got, tt.want)
			}
		})
	}
}
