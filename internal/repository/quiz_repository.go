package repository

import (
	"elearn_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

// FindByID 加载完整的测验聚合：题目（按创作顺序）及其选项
func (r *QuizRepository) FindByID(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("quiz_questions.`order` ASC, quiz_questions.created_at ASC")
	}).Preload("Questions.Options").
		First(&quiz, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// UpdateFields 只更新测验标量字段，不触碰题目和尝试
func (r *QuizRepository) UpdateFields(quizID string, fields map[string]interface{}) error {
	return r.DB.Model(&model.Quiz{}).Where("id = ?", quizID).Updates(fields).Error
}

func (r *QuizRepository) CreateQuestion(question *model.QuizQuestion) error {
	return r.DB.Create(question).Error
}

func (r *QuizRepository) UpdateTotalMarks(quizID string, totalMarks int) error {
	return r.DB.Model(&model.Quiz{}).Where("id = ?", quizID).Update("total_marks", totalMarks).Error
}

func (r *QuizRepository) SetPublished(quizID string) error {
	return r.DB.Model(&model.Quiz{}).Where("id = ?", quizID).Update("is_published", true).Error
}

func (r *QuizRepository) CountAttempts(quizID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}
