package repository

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id string) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	if err := r.DB.Preload("Responses").First(&attempt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) CountByStudentAndQuiz(quizID string, studentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) ListByQuiz(quizID string, page, limit int) ([]model.QuizAttempt, int64, error) {
	return r.list(r.DB.Where("quiz_id = ?", quizID), page, limit)
}

func (r *AttemptRepository) ListByQuizAndStudent(quizID string, studentID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	return r.list(r.DB.Where("quiz_id = ? AND student_id = ?", quizID, studentID), page, limit)
}

func (r *AttemptRepository) list(query *gorm.DB, page, limit int) ([]model.QuizAttempt, int64, error) {
	var attempts []model.QuizAttempt
	var total int64

	if err := query.Model(&model.QuizAttempt{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Responses").
		Order("started_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}

// FindCompletedByQuiz 统计用：加载全部 COMPLETED 尝试及其作答
func (r *AttemptRepository) FindCompletedByQuiz(quizID string) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Preload("Responses").
		Where("quiz_id = ? AND status = ?", quizID, model.AttemptCompleted).
		Find(&attempts).Error
	return attempts, err
}

// SaveResponses 覆盖暂存作答内容（selectedOptions/textAnswer）
func (r *AttemptRepository) SaveResponses(responses []model.QuizResponse) error {
	if len(responses) == 0 {
		return nil
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range responses {
			err := tx.Model(&model.QuizResponse{}).
				Where("id = ?", responses[i].ID).
				Updates(map[string]interface{}{
					"selected_options": responses[i].SelectedOptions,
					"text_answer":      responses[i].TextAnswer,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// FinalizeCompleted 以条件更新提交终态：仅当状态仍为 IN_PROGRESS 时写入，
// 并发提交时只有第一个写者成功，第二个拿到 ErrAttemptAlreadySubmitted。
func (r *AttemptRepository) FinalizeCompleted(attempt *model.QuizAttempt) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.QuizAttempt{}).
			Where("id = ? AND status = ?", attempt.ID, model.AttemptInProgress).
			Updates(map[string]interface{}{
				"status":         attempt.Status,
				"marks_obtained": attempt.MarksObtained,
				"percentage":     attempt.Percentage,
				"submitted_at":   attempt.SubmittedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return util.ErrAttemptAlreadySubmitted
		}

		for i := range attempt.Responses {
			response := &attempt.Responses[i]
			err := tx.Model(&model.QuizResponse{}).
				Where("id = ?", response.ID).
				Updates(map[string]interface{}{
					"selected_options": response.SelectedOptions,
					"text_answer":      response.TextAnswer,
					"is_correct":       response.IsCorrect,
					"marks_obtained":   response.MarksObtained,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkExpired 把超时的尝试置为 EXPIRED，同样走状态 CAS
func (r *AttemptRepository) MarkExpired(attemptID string) error {
	result := r.DB.Model(&model.QuizAttempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptInProgress).
		Update("status", model.AttemptExpired)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrAttemptAlreadySubmitted
	}
	return nil
}
