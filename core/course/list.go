package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hajerbook/backend/core"
)

// WipeResult tells how a delete-category action was applied.
type WipeResult string

const (
	WipedInPlace WipeResult = "wiped" // only course: attendance reset
	Removed      WipeResult = "removed"
)

var errLastCourse = errors.New("a student must keep at least one course")

// Clone returns a deep copy of the list.
func (l List) Clone() List {
	clone := l
	if l.Courses != nil {
		clone.Courses = make([]Course, len(l.Courses))
		for i, c := range l.Courses {
			clone.Courses[i] = c.Clone()
		}
	}
	return clone
}

// Normalize fills defaults on every course of the list.
func (l *List) Normalize() {
	if l.Courses == nil {
		l.Courses = []Course{}
	}
	for i := range l.Courses {
		l.Courses[i].Normalize()
	}
}

// Find returns a pointer to a course of the list, to be mutated in place.
func (l *List) Find(id string) (*Course, error) {
	for i := range l.Courses {
		if l.Courses[i].ID == id {
			return &l.Courses[i], nil
		}
	}
	return nil, ErrNotFound
}

// Add appends a new course for a vehicle category the student is not
// already training for. A finished course of the same category does not count.
func (l *List) Add(vt VehicleType) (*Course, error) {
	if !vt.IsVehicle() {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "vehicle_type", Error: errInvalidVehicle.Error()})
	}
	for _, c := range l.Courses {
		if c.VehicleType == vt {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "vehicle_type", Error: errDuplicateVehicle.Error()})
		}
	}
	l.Courses = append(l.Courses, New(vt))
	return &l.Courses[len(l.Courses)-1], nil
}

// Wipe is the delete-category action. The only course of a student is reset
// in place, any other course is removed: a student never ends up with zero courses.
func (l *List) Wipe(ctx context.Context, id string) (WipeResult, error) {
	c, err := l.Find(id)
	if err != nil {
		return "", err
	}
	if len(l.Courses) == 1 {
		if err := c.Reset(ctx); err != nil {
			return "", err
		}
		return WipedInPlace, nil
	}

	courses := make([]Course, 0, len(l.Courses)-1)
	for _, crs := range l.Courses {
		if crs.ID != id {
			courses = append(courses, crs)
		}
	}
	l.Courses = courses
	return Removed, nil
}

// Finish locks a course. A category keeps at most one finished course.
func (l *List) Finish(ctx context.Context, id string) (*Course, error) {
	c, err := l.Find(id)
	if err != nil {
		return nil, err
	}
	if !c.IsFinished() {
		for i := range l.Courses {
			if other := &l.Courses[i]; other.IsFinished() && other.Category == c.Category {
				return nil, core.NewValidationError(nil, core.FieldError{Field: "vehicle_type", Error: errFinishedTwice.Error()})
			}
		}
	}
	if err := c.Finish(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// KeepsFinished fails with ErrFinished when next changes a course that is
// finished in l. Finished courses may still be left out of next.
func (l *List) KeepsFinished(next *List) error {
	for i := range l.Courses {
		stored := &l.Courses[i]
		if !stored.IsFinished() {
			continue
		}
		if c, err := next.Find(stored.ID); err == nil && !stored.sameRecord(c) {
			return ErrFinished
		}
	}
	return nil
}

// Validate checks a whole list before it replaces the stored one.
func (l *List) Validate() error {
	if len(l.Courses) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "courses", Error: errLastCourse.Error()})
	}

	var fields []core.FieldError
	ids := make(map[string]bool, len(l.Courses))
	vehicles := make(map[VehicleType]bool, len(l.Courses))
	finished := make(map[VehicleType]bool, len(l.Courses))
	for _, c := range l.Courses {
		switch {
		case !c.VehicleType.Valid():
			fields = append(fields, core.FieldError{Field: "courses." + c.ID + ".vehicle_type", Error: errInvalidVehicle.Error()})
		case c.VehicleType.IsVehicle() && vehicles[c.VehicleType]:
			fields = append(fields, core.FieldError{Field: "courses." + c.ID + ".vehicle_type", Error: errDuplicateVehicle.Error()})
		case c.IsFinished() && c.Category != "" && !c.Category.IsVehicle():
			fields = append(fields, core.FieldError{Field: "courses." + c.ID + ".category", Error: errInvalidVehicle.Error()})
		case c.IsFinished() && finished[c.Category] && c.Category != "":
			fields = append(fields, core.FieldError{Field: "courses." + c.ID + ".category", Error: errFinishedTwice.Error()})
		}
		if c.IsFinished() {
			finished[c.Category] = true
		}
		if ids[c.ID] {
			fields = append(fields, core.FieldError{Field: "courses." + c.ID + ".id", Error: "duplicate course id"})
		}
		ids[c.ID] = true
		vehicles[c.VehicleType] = true
	}
	if len(fields) > 0 {
		return core.NewValidationError(nil, fields...)
	}
	return nil
}

// Dashboard summarizes every course of the list.
func (l *List) Dashboard() Dashboard {
	d := Dashboard{
		StudentID: l.StudentID,
		Version:   l.Version,
		Courses:   make([]CourseSummary, 0, len(l.Courses)),
	}
	for i := range l.Courses {
		cs := l.Courses[i].CourseSummary()
		d.Courses = append(d.Courses, cs)
		d.Total = d.Total.Add(cs.Summary)
	}
	return d
}
