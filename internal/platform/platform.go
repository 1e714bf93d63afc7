// Package platform exposes the narrow slices of the surrounding
// learning-platform schema the quiz engine depends on: class-to-course
// resolution and the student directory. The engine only reads these
// tables; it never owns them.
package platform

import (
	"errors"

	"github.com/edupress/quizengine/internal/apperr"
	"gorm.io/gorm"
)

// CourseResolver maps a class to its owning course.
type CourseResolver interface {
	CourseIDForClass(classID uint) (uint, error)
}

// StudentDirectory resolves student identities for attempt listings and
// notification fan-out.
type StudentDirectory interface {
	DisplayName(studentID uint) (string, error)
	StudentsInClass(classID uint) ([]uint, error)
}

type classRow struct {
	ID       uint
	CourseID uint
}

func (classRow) TableName() string { return "classes" }

type enrollmentRow struct {
	ClassID   uint
	StudentID uint
}

func (enrollmentRow) TableName() string { return "class_enrollments" }

type userRow struct {
	ID       uint
	FullName string
}

func (userRow) TableName() string { return "users" }

type gormCourseResolver struct {
	db *gorm.DB
}

func NewCourseResolver(db *gorm.DB) CourseResolver {
	return &gormCourseResolver{db: db}
}

func (r *gormCourseResolver) CourseIDForClass(classID uint) (uint, error) {
	var row classRow
	if err := r.db.First(&row, classID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.NotFound("class_not_found", "class not found")
		}
		return 0, err
	}
	return row.CourseID, nil
}

type gormStudentDirectory struct {
	db *gorm.DB
}

func NewStudentDirectory(db *gorm.DB) StudentDirectory {
	return &gormStudentDirectory{db: db}
}

func (d *gormStudentDirectory) DisplayName(studentID uint) (string, error) {
	var row userRow
	if err := d.db.First(&row, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFound("student_not_found", "student not found")
		}
		return "", err
	}
	return row.FullName, nil
}

func (d *gormStudentDirectory) StudentsInClass(classID uint) ([]uint, error) {
	var rows []enrollmentRow
	if err := d.db.Where("class_id = ?", classID).Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.StudentID)
	}
	return ids, nil
}
