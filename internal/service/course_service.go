package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"

	"gorm.io/gorm"
)

type CourseService struct {
	Repo *repository.CourseRepository
}

func NewCourseService(repo *repository.CourseRepository) *CourseService {
	return &CourseService{Repo: repo}
}

type CourseModuleReq struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

type CreateCourseReq struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Modules     []CourseModuleReq `json:"modules"`
}

func (s *CourseService) CreateCourse(instructorID uint, req CreateCourseReq) (*model.Course, error) {
	course := &model.Course{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: instructorID,
	}
	for i, m := range req.Modules {
		order := m.Order
		if order == 0 {
			order = i + 1
		}
		course.Modules = append(course.Modules, model.CourseModule{
			Title:       m.Title,
			Description: m.Description,
			Order:       order,
		})
	}

	if err := s.Repo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) GetCourse(courseID string) (*model.Course, error) {
	course, err := s.Repo.FindByID(courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) ListCourses(page, limit int) ([]model.Course, int64, error) {
	return s.Repo.List(page, limit)
}
