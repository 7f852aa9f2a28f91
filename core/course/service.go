package course

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/grid"
)

// AnyVersion skips the expected version check. Saves still fail if the
// list changed between load and save.
const AnyVersion int64 = -1

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrConflict        = errors.New("course list was modified by another request")
	ErrFinished        = errors.New("course is finished and read-only")
	ErrCellOutOfRange  = errors.New("cell is outside the active grid")
)

// notification actions
const (
	actionReplace       = "save courses"
	actionAdd           = "add course"
	actionResize        = "resize grid"
	actionCycle         = "update cell"
	actionQuickEntry    = "quick entry"
	actionDeleteSession = "delete session"
	actionWipe          = "delete category"
	actionFinish        = "finish course"
)

type (
	// Repository persists whole course lists.
	Repository interface {
		// LoadCourses returns an empty list with version 0 for a student that never saved.
		LoadCourses(ctx context.Context, studentID string) (List, error)
		// SaveCourses replaces the whole list if the stored version is still baseVersion,
		// and returns it with its new version. It fails with ErrConflict otherwise.
		SaveCourses(ctx context.Context, studentID string, baseVersion int64, courses []Course) (List, error)
	}

	Service interface {
		Courses(ctx context.Context, studentID string) (List, error)
		Course(ctx context.Context, studentID, courseID string) (Course, int64, error)
		Replace(ctx context.Context, studentID string, expected int64, courses []Course) (List, error)
		AddCourse(ctx context.Context, studentID string, expected int64, nc NewCourse) (List, Course, error)
		SetDimensions(ctx context.Context, studentID string, expected int64, courseID string, dims Dimensions) (List, Course, error)
		CycleCell(ctx context.Context, studentID string, expected int64, courseID string, row, col int) (List, grid.Status, error)
		QuickEntry(ctx context.Context, studentID string, expected int64, courseID string, ns NewSession) (List, Session, FillReport, error)
		DeleteSession(ctx context.Context, studentID string, expected int64, courseID, sessionID string) (List, error)
		Wipe(ctx context.Context, studentID string, expected int64, courseID string) (List, WipeResult, error)
		Finish(ctx context.Context, studentID string, expected int64, courseID string) (List, Course, error)
		Summary(ctx context.Context, studentID, courseID string) (CourseSummary, error)
		Dashboard(ctx context.Context, studentID string) (Dashboard, error)
	}

	service struct {
		cacheMu  sync.Mutex // orders dashboard cache writes by version
		repo     Repository
		cache    core.Cache
		notifier core.Notifier
		logger   core.Logger
		fillMode grid.FillMode
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, cache core.Cache, notifier core.Notifier, logger core.Logger, conf *core.Config) Service {
	mode, err := grid.ParseFillMode(conf.FillMode)
	if err != nil {
		logger.Warn(fmt.Sprintf("course service: %v, using %s fill", err, mode), err)
	}
	return &service{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
		fillMode: mode,
	}
}

func dashboardKey(studentID string) string {
	return "dashboard:" + studentID
}

func (svc *service) load(ctx context.Context, studentID string) (List, error) {
	l, err := svc.repo.LoadCourses(ctx, studentID)
	if err != nil {
		return List{}, errors.Wrap(err, "loading courses")
	}
	l.StudentID = studentID
	l.Normalize()
	return l, nil
}

// mutate applies fn on a draft of the student's list and saves it.
// The draft is committed on success and rolled back on any failure.
func (svc *service) mutate(ctx context.Context, studentID string, expected int64, action string, fn func(l *List) (string, error)) (List, error) {
	fail := func(err error) (List, error) {
		svc.notify(studentID, action, "", err)
		return List{}, err
	}

	base, err := svc.load(ctx, studentID)
	if err != nil {
		return fail(err)
	}
	if expected != AnyVersion && expected != base.Version {
		return fail(ErrConflict)
	}

	draft := NewDraft(base)
	msg, err := fn(draft.Current())
	if err != nil {
		draft.Rollback()
		return fail(err)
	}

	saved, err := svc.repo.SaveCourses(ctx, studentID, base.Version, draft.Current().Courses)
	if err != nil {
		draft.Rollback()
		return fail(errors.Wrap(err, "saving courses"))
	}
	saved.StudentID = studentID
	saved.Normalize()
	draft.Commit(saved)

	committed := draft.Base()
	svc.cacheDashboard(committed.Dashboard())
	svc.notify(studentID, action, msg, nil)
	return draft.Base(), nil
}

// cacheDashboard stores d unless the cache already holds the same or a later version.
func (svc *service) cacheDashboard(d Dashboard) {
	key := dashboardKey(d.StudentID)

	svc.cacheMu.Lock()
	defer svc.cacheMu.Unlock()
	if cached, ok := svc.cache.Get(key); ok {
		if c, ok := cached.(Dashboard); ok && c.Version >= d.Version {
			return
		}
	}
	svc.cache.Set(key, d)
}

// isClientError reports failures caused by the request rather than by the server or the store.
func isClientError(err error) bool {
	switch cause := errors.Cause(err); cause {
	case ErrNotFound, ErrSessionNotFound, ErrConflict, ErrFinished, ErrCellOutOfRange:
		return true
	default:
		switch cause.(type) {
		case *core.ValidationError, *grid.CapacityError:
			return true
		}
	}
	return false
}

func (svc *service) notify(studentID, action, msg string, err error) {
	n := core.Notification{
		StudentID:   studentID,
		Action:      action,
		Success:     err == nil,
		Message:     msg,
		Err:         err,
		ClientError: err != nil && isClientError(err),
	}
	if err != nil && msg == "" {
		n.Message = errors.Cause(err).Error()
	}
	svc.notifier.Notify(n)
}

func (svc *service) Courses(ctx context.Context, studentID string) (List, error) {
	return svc.load(ctx, studentID)
}

func (svc *service) Course(ctx context.Context, studentID, courseID string) (Course, int64, error) {
	l, err := svc.load(ctx, studentID)
	if err != nil {
		return Course{}, 0, err
	}
	c, err := l.Find(courseID)
	if err != nil {
		return Course{}, 0, err
	}
	return *c, l.Version, nil
}

func (svc *service) Replace(ctx context.Context, studentID string, expected int64, courses []Course) (List, error) {
	return svc.mutate(ctx, studentID, expected, actionReplace, func(l *List) (string, error) {
		next := List{StudentID: studentID, Version: l.Version, Courses: courses}
		next = next.Clone()
		next.Normalize()
		if err := next.Validate(); err != nil {
			return "", err
		}
		if err := l.KeepsFinished(&next); err != nil {
			return "", err
		}
		l.Courses = next.Courses
		return fmt.Sprintf("%d course(s) saved", len(next.Courses)), nil
	})
}

func (svc *service) AddCourse(ctx context.Context, studentID string, expected int64, nc NewCourse) (List, Course, error) {
	var added Course
	l, err := svc.mutate(ctx, studentID, expected, actionAdd, func(l *List) (string, error) {
		c, err := l.Add(nc.VehicleType)
		if err != nil {
			return "", err
		}
		added = c.Clone()
		return fmt.Sprintf("%s course added", c.VehicleType), nil
	})
	return l, added, err
}

// withCourse runs fn on one course of the list.
func withCourse(courseID string, fn func(c *Course) (string, error)) func(l *List) (string, error) {
	return func(l *List) (string, error) {
		c, err := l.Find(courseID)
		if err != nil {
			return "", err
		}
		return fn(c)
	}
}

func (svc *service) SetDimensions(ctx context.Context, studentID string, expected int64, courseID string, dims Dimensions) (List, Course, error) {
	var updated Course
	l, err := svc.mutate(ctx, studentID, expected, actionResize, withCourse(courseID, func(c *Course) (string, error) {
		if err := c.SetDimensions(ctx, dims); err != nil {
			return "", err
		}
		updated = c.Clone()
		return fmt.Sprintf("grid set to %dx%d", c.GridRows, c.GridCols), nil
	}))
	return l, updated, err
}

func (svc *service) CycleCell(ctx context.Context, studentID string, expected int64, courseID string, row, col int) (List, grid.Status, error) {
	var status grid.Status
	l, err := svc.mutate(ctx, studentID, expected, actionCycle, withCourse(courseID, func(c *Course) (string, error) {
		s, err := c.CycleCell(ctx, row, col)
		if err != nil {
			return "", err
		}
		status = s
		return fmt.Sprintf("cell (%d, %d) is now %s", row, col, s), nil
	}))
	return l, status, err
}

func (svc *service) QuickEntry(ctx context.Context, studentID string, expected int64, courseID string, ns NewSession) (List, Session, FillReport, error) {
	var (
		sess   Session
		report FillReport
	)
	l, err := svc.mutate(ctx, studentID, expected, actionQuickEntry, withCourse(courseID, func(c *Course) (string, error) {
		s, r, err := c.QuickEntry(ctx, ns, svc.fillMode)
		if err != nil {
			return "", err
		}
		sess, report = s, r
		if r.Partial() {
			return fmt.Sprintf("session of %s logged, %d of %d cells painted", s.Date, r.Painted.Total, r.Requested.Total), nil
		}
		return fmt.Sprintf("session of %s logged", s.Date), nil
	}))
	return l, sess, report, err
}

func (svc *service) DeleteSession(ctx context.Context, studentID string, expected int64, courseID, sessionID string) (List, error) {
	return svc.mutate(ctx, studentID, expected, actionDeleteSession, withCourse(courseID, func(c *Course) (string, error) {
		s, err := c.DeleteSession(ctx, sessionID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("session of %s deleted", s.Date), nil
	}))
}

func (svc *service) Wipe(ctx context.Context, studentID string, expected int64, courseID string) (List, WipeResult, error) {
	var result WipeResult
	l, err := svc.mutate(ctx, studentID, expected, actionWipe, func(l *List) (string, error) {
		r, err := l.Wipe(ctx, courseID)
		if err != nil {
			return "", err
		}
		result = r
		if r == WipedInPlace {
			return "last course kept, attendance reset", nil
		}
		return "course removed", nil
	})
	return l, result, err
}

func (svc *service) Finish(ctx context.Context, studentID string, expected int64, courseID string) (List, Course, error) {
	var finished Course
	l, err := svc.mutate(ctx, studentID, expected, actionFinish, func(l *List) (string, error) {
		c, err := l.Finish(ctx, courseID)
		if err != nil {
			return "", err
		}
		finished = c.Clone()
		return fmt.Sprintf("%s course finished", c.Category), nil
	})
	return l, finished, err
}

func (svc *service) Summary(ctx context.Context, studentID, courseID string) (CourseSummary, error) {
	c, _, err := svc.Course(ctx, studentID, courseID)
	if err != nil {
		return CourseSummary{}, err
	}
	return c.CourseSummary(), nil
}

func (svc *service) Dashboard(ctx context.Context, studentID string) (Dashboard, error) {
	key := dashboardKey(studentID)
	if cached, ok := svc.cache.Get(key); ok {
		if d, ok := cached.(Dashboard); ok {
			return d, nil
		}
	}

	l, err := svc.load(ctx, studentID)
	if err != nil {
		return Dashboard{}, err
	}
	d := l.Dashboard()
	svc.cacheDashboard(d)
	return d, nil
}
