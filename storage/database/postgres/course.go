package pgrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/hajerbook/backend/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

type courseListRow struct {
	Version int64  `db:"version"`
	Courses []byte `db:"courses"` // jsonb
}

func (repo *courseRepository) LoadCourses(ctx context.Context, studentID string) (course.List, error) {
	var row courseListRow
	err := repo.db.GetContext(ctx, &row, "SELECT version, courses FROM course_lists WHERE student_id = $1", studentID)
	if err == sql.ErrNoRows {
		return course.List{StudentID: studentID, Courses: []course.Course{}}, nil
	}
	if err != nil {
		return course.List{}, errors.Wrap(err, "selecting course list")
	}

	l := course.List{StudentID: studentID, Version: row.Version}
	if err := json.Unmarshal(row.Courses, &l.Courses); err != nil {
		return course.List{}, errors.Wrap(err, "decoding courses")
	}
	return l, nil
}

// SaveCourses inserts the first version of a list, then only updates rows
// still at baseVersion.
func (repo *courseRepository) SaveCourses(ctx context.Context, studentID string, baseVersion int64, courses []course.Course) (course.List, error) {
	if courses == nil {
		courses = []course.Course{}
	}
	data, err := json.Marshal(courses)
	if err != nil {
		return course.List{}, errors.Wrap(err, "encoding courses")
	}

	var version int64
	if baseVersion == 0 {
		err = repo.db.QueryRowxContext(ctx, `
			INSERT INTO course_lists (student_id, version, courses, updated_at)
			VALUES ($1, 1, $2, now())
			ON CONFLICT (student_id) DO NOTHING
			RETURNING version`, studentID, string(data)).Scan(&version)
	} else {
		err = repo.db.QueryRowxContext(ctx, `
			UPDATE course_lists SET version = version + 1, courses = $3, updated_at = now()
			WHERE student_id = $1 AND version = $2
			RETURNING version`, studentID, baseVersion, string(data)).Scan(&version)
	}
	if err == sql.ErrNoRows {
		return course.List{}, course.ErrConflict
	}
	if err != nil {
		return course.List{}, errors.Wrap(err, "saving course list")
	}
	return course.List{StudentID: studentID, Version: version, Courses: courses}, nil
}
