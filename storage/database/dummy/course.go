package dummydb

import (
	"context"

	"github.com/hajerbook/backend/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) LoadCourses(_ context.Context, studentID string) (course.List, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if l, ok := repo.db.table[studentID]; ok {
		return l.Clone(), nil
	}
	return course.List{StudentID: studentID, Courses: []course.Course{}}, nil
}

func (repo *courseRepository) SaveCourses(_ context.Context, studentID string, baseVersion int64, courses []course.Course) (course.List, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var current int64
	if l, ok := repo.db.table[studentID]; ok {
		current = l.Version
	}
	if current != baseVersion {
		return course.List{}, course.ErrConflict
	}

	l := course.List{StudentID: studentID, Version: baseVersion + 1, Courses: courses}.Clone()
	if l.Courses == nil {
		l.Courses = []course.Course{}
	}
	repo.db.table[studentID] = &l
	return l.Clone(), nil
}
