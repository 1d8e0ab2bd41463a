package models

import "gorm.io/gorm"

// Course represents a purchasable course
type Course struct {
	gorm.Model
	Title        string  `json:"title"`
	Description  string  `json:"description" gorm:"type:text"`
	Price        int64   `json:"price"` // minor currency units (paise)
	InstructorID uint    `json:"instructorId" gorm:"index;not null"`
	ImageURL     string  `json:"imageUrl"`
	Status       string  `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	Rating       float64 `json:"rating" gorm:"default:0"`
	IsPublished  bool    `json:"is_published" gorm:"default:false"`

	// Denormalized enrollment count; must match the number of
	// CourseStudent rows for this course. Incremented only inside the
	// enrollment transaction.
	EnrolledStudents int64 `json:"enrolledStudents" gorm:"default:0"`

	IsDeleted bool `gorm:"default:false" json:"-"`

	Instructor User `gorm:"foreignKey:InstructorID" json:"-"`
}

// CourseStudent is the student set of a course, one row per enrolled user.
type CourseStudent struct {
	gorm.Model
	CourseID uint `json:"courseId" gorm:"uniqueIndex:idx_course_student;not null"`
	UserID   uint `json:"userId" gorm:"uniqueIndex:idx_course_student;not null"`
}

func (CourseStudent) TableName() string {
	return "course_students"
}
