package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hajerbook/backend/core/course"
	"github.com/hajerbook/backend/core/grid"
)

type courseApi struct {
	svc      course.Service
	validate *validator.Validate
}

func registerCourseAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	auth *authenticator,
	svc course.Service,
	validate *validator.Validate,
) {
	api := courseApi{
		svc:      svc,
		validate: validate,
	}

	// the student can read their own book, staff can read and write any
	sg := g.Group("/students/:id", jwt, ctxAccountOrStaffMiddleware(auth, false))
	sg.GET("/courses", api.list)
	sg.GET("/summary", api.dashboard)
	sg.GET("/courses/:course", api.retrieve)

	wg := sg.Group("", staffMiddleware())
	wg.PUT("/courses", api.replace)
	wg.POST("/courses", api.create)
	wg.DELETE("/courses/:course", api.wipe)
	wg.PATCH("/courses/:course/dimensions", api.setDimensions)
	wg.POST("/courses/:course/cells", api.cycleCell)
	wg.POST("/courses/:course/sessions", api.quickEntry)
	wg.DELETE("/courses/:course/sessions/:session", api.deleteSession)
	wg.POST("/courses/:course/finish", api.finish)
}

type (
	ReplaceCoursesRequest struct {
		Version *int64          `json:"version"`
		Courses []course.Course `json:"courses"`
	}

	CourseResponse struct {
		Course  course.Course `json:"course"`
		Version int64         `json:"version"`
	}

	CellResponse struct {
		Row     int         `json:"row"`
		Col     int         `json:"col"`
		Status  grid.Status `json:"status"`
		Version int64       `json:"version"`
	}

	SessionResponse struct {
		Session course.Session    `json:"session"`
		Fill    course.FillReport `json:"fill"`
		Version int64             `json:"version"`
	}

	WipeResponse struct {
		Result  course.WipeResult `json:"result"`
		Version int64             `json:"version"`
	}
)

func studentID(ctx echo.Context) (string, error) {
	acc, err := contextObject(ctx)
	if err != nil {
		return "", err
	}
	return acc.ID, nil
}

// mutation reads the student ID and the If-Match version of a write request.
func mutation(ctx echo.Context) (string, int64, error) {
	sid, err := studentID(ctx)
	if err != nil {
		return "", 0, err
	}
	version, err := expectedVersion(ctx)
	if err != nil {
		return "", 0, err
	}
	return sid, version, nil
}

func (api *courseApi) list(ctx echo.Context) error {
	sid, err := studentID(ctx)
	if err != nil {
		return err
	}
	l, err := api.svc.Courses(ctx.Request().Context(), sid)
	if err != nil {
		return errors.Wrap(err, "loading courses")
	}
	return jsonWithVersion(ctx, http.StatusOK, l.Version, l)
}

func (api *courseApi) dashboard(ctx echo.Context) error {
	sid, err := studentID(ctx)
	if err != nil {
		return err
	}
	d, err := api.svc.Dashboard(ctx.Request().Context(), sid)
	if err != nil {
		return errors.Wrap(err, "summarizing courses")
	}
	return jsonWithVersion(ctx, http.StatusOK, d.Version, d)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	sid, err := studentID(ctx)
	if err != nil {
		return err
	}
	c, version, err := api.svc.Course(ctx.Request().Context(), sid, ctx.Param("course"))
	if err != nil {
		return errors.Wrap(err, "loading course")
	}
	return jsonWithVersion(ctx, http.StatusOK, version, CourseResponse{Course: c, Version: version})
}

func (api *courseApi) replace(ctx echo.Context) error {
	sid, version, err := mutation(ctx)
	if err != nil {
		return err
	}
	var data ReplaceCoursesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReplaceCoursesRequest")
	}
	if data.Version != nil && version == course.AnyVersion {
		version = *data.Version
	}

	l, err := api.svc.Replace(ctx.Request().Context(), sid, version, data.Courses)
	if err != nil {
		return errors.Wrap(err, "replacing courses")
	}
	return jsonWithVersion(ctx, http.StatusOK, l.Version, l)
}

func (api *courseApi) create(ctx echo.Context) error {
	sid, version, err := mutation(ctx)
	if err != nil {
		return err
	}
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	l, c, err := api.svc.AddCourse(ctx.Request().Context(), sid, version, data)
	if err != nil {
		return errors.Wrap(err, "adding course")
	}
	return jsonWithVersion(ctx, http.StatusCreated, l.Version, CourseResponse{Course: c, Version: l.Version})
}

func (api *courseApi) wipe(ctx echo.Context) error {
	sid, version, err := mutation(ctx)
	if err != nil {
		return err
	}
	l, res, err := api.svc.Wipe(ctx.Request().Context(), sid, version, ctx.Param("course"))
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return jsonWithVersion(ctx, http.StatusOK, l.Version, WipeResponse{Result: res, Version: l.Version})
}

func (api *courseApi) setDimensions(ctx echo.Context) error {
	sid, version, err := mutation(ctx)
	if err != nil {
		return err
	}
	var data course.Dimensions
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Dimensions")
	}

	l, c, err := api.svc.SetDimensions(ctx.Request().Context(), sid, version, ctx.Param("course"), data)
	if err != nil {
		return errors.Wrap(err, "resizing grid")
	}
	return jsonWithVersion(ctx, http.StatusOK, l.Version, CourseResponse{Course: c, Version: l.Version})
}

func (api *courseApi) cycleCell(ctx echo.Context) error {
	sid, version, err := mutation(ctx)
	if err != nil {
		return err
	}
	var data course.Cell
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Cell")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	l, s, err := api.svc.CycleCell(ctx.Request().Context(), sid, version, ctx.Param("course"), *data.Row, *data.Col)
	if err != nil {
		return errors.Wrap(err, "cycling cell")
	}
	return jsonWithVersion(ctx, http.StatusOK, l.Version, CellResponse{Row: *data.Row, Col: *data.Col, Status: s, Version: l.Version})
}

func (api *courseApi) quickEntry(ctx echo.Context) error {
	sid, version, err := mutation(ctx)
	if err != nil {
		return err
	}
	var data course.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	l, sess, report, err := api.svc.QuickEntry(ctx.Request().Context(), sid, version, ctx.Param("course"), data)
	if err != nil {
		return errors.Wrap(err, "logging session")
	}
	return jsonWithVersion(ctx, http.StatusCreated, l.Version, SessionResponse{Session: sess, Fill: report, Version: l.Version})
}

func (api *courseApi) deleteSession(ctx echo.Context) error {
	sid, version, err := mutation(ctx)
	if err != nil {
		return err
	}
	l, err := api.svc.DeleteSession(ctx.Request().Context(), sid, version, ctx.Param("course"), ctx.Param("session"))
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	setETag(ctx, l.Version)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) finish(ctx echo.Context) error {
	sid, version, err := mutation(ctx)
	if err != nil {
		return err
	}
	l, c, err := api.svc.Finish(ctx.Request().Context(), sid, version, ctx.Param("course"))
	if err != nil {
		return errors.Wrap(err, "finishing course")
	}
	return jsonWithVersion(ctx, http.StatusOK, l.Version, CourseResponse{Course: c, Version: l.Version})
}
