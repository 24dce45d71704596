package service

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/logger"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const statsCacheTTL = 60 * time.Second

type StatsService struct {
	QuizRepo    *repository.QuizRepository
	AttemptRepo *repository.AttemptRepository
	RDB         *redis.Client
}

func NewStatsService(quizRepo *repository.QuizRepository, attemptRepo *repository.AttemptRepository, rdb *redis.Client) *StatsService {
	return &StatsService{QuizRepo: quizRepo, AttemptRepo: attemptRepo, RDB: rdb}
}

type QuestionStat struct {
	QuestionID      string  `json:"questionId"`
	Text            string  `json:"text"`
	CorrectAttempts int     `json:"correctAttempts"`
	TotalAttempts   int     `json:"totalAttempts"`
	SuccessRate     float64 `json:"successRate"`
}

// QuizStatistics 测验统计快照，读多写少，允许最终一致
type QuizStatistics struct {
	TotalAttempts     int64          `json:"totalAttempts"`
	CompletedAttempts int            `json:"completedAttempts"`
	AverageScore      float64        `json:"averageScore"`
	HighestScore      float64        `json:"highestScore"`
	LowestScore       float64        `json:"lowestScore"`
	PassingRate       float64        `json:"passingRate"`
	QuestionStats     []QuestionStat `json:"questionStats"`
}

// BuildQuizStatistics 在已完成的尝试集合上计算统计量。
// 空集合一律给 0，不产生 NaN 或除零。
func BuildQuizStatistics(quiz *model.Quiz, totalAttempts int64, completed []model.QuizAttempt) *QuizStatistics {
	stats := &QuizStatistics{
		TotalAttempts:     totalAttempts,
		CompletedAttempts: len(completed),
	}

	if len(completed) > 0 {
		sum := 0.0
		highest := completed[0].Percentage
		lowest := completed[0].Percentage
		passed := 0
		for _, attempt := range completed {
			sum += attempt.Percentage
			if attempt.Percentage > highest {
				highest = attempt.Percentage
			}
			if attempt.Percentage < lowest {
				lowest = attempt.Percentage
			}
			if attempt.Percentage >= quiz.PassingPercentage {
				passed++
			}
		}
		stats.AverageScore = model.Round2(sum / float64(len(completed)))
		stats.HighestScore = highest
		stats.LowestScore = lowest
		stats.PassingRate = model.Round2(float64(passed) / float64(len(completed)) * 100)
	}

	stats.QuestionStats = make([]QuestionStat, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		qs := QuestionStat{
			QuestionID: question.ID,
			Text:       question.QuestionText,
		}
		for _, attempt := range completed {
			response := attempt.ResponseByQuestionID(question.ID)
			if response == nil {
				continue
			}
			qs.TotalAttempts++
			if response.IsCorrect {
				qs.CorrectAttempts++
			}
		}
		if qs.TotalAttempts > 0 {
			qs.SuccessRate = model.Round2(float64(qs.CorrectAttempts) / float64(qs.TotalAttempts) * 100)
		}
		stats.QuestionStats = append(stats.QuestionStats, qs)
	}

	return stats
}

// GetStatistics 测验统计，仅创建者可见。结果在 Redis 短暂缓存，
// 缓存失败不影响主流程。
func (s *StatsService) GetStatistics(ctx context.Context, quizID string, actor *util.Claims) (*QuizStatistics, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	if quiz.CreatedBy != actor.UserID {
		return nil, util.ErrPermissionDenied
	}

	cacheKey := "quiz:stats:" + quizID
	if s.RDB != nil {
		if cached, err := s.RDB.Get(ctx, cacheKey).Result(); err == nil {
			var stats QuizStatistics
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	totalAttempts, err := s.QuizRepo.CountAttempts(quizID)
	if err != nil {
		return nil, err
	}

	completed, err := s.AttemptRepo.FindCompletedByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	stats := BuildQuizStatistics(quiz, totalAttempts, completed)

	if s.RDB != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.RDB.Set(ctx, cacheKey, raw, statsCacheTTL).Err(); err != nil {
				logger.Log.Debug("failed to cache quiz statistics", zap.Error(err))
			}
		}
	}

	return stats, nil
}
