package model

// swagger:model Course
type Course struct {
	UUIDBase
	Title        string         `gorm:"size:255;not null;index" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	InstructorID uint           `gorm:"index;type:bigint unsigned" json:"instructorId"`
	IsPublished  bool           `gorm:"default:false" json:"isPublished"`
	Modules      []CourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model CourseModule
type CourseModule struct {
	UUIDBase
	CourseID    string `gorm:"index;type:varchar(36)" json:"courseId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"default:0" json:"order"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

// HasModule 判断模块是否属于该课程
func (c *Course) HasModule(moduleID string) bool {
	for _, m := range c.Modules {
		if m.ID == moduleID {
			return true
		}
	}
	return false
}
