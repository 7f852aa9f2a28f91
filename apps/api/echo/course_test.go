package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/account"
	"github.com/hajerbook/backend/core/course"
	"github.com/hajerbook/backend/core/grid"
	"github.com/hajerbook/backend/testutil"
)

type courseFixture struct {
	testApp
	student    account.Account
	instructor account.Account
	base       string // /v1/students/<id>
}

func setupCourses(t *testing.T, conf ...*core.Config) courseFixture {
	app := setup(t, conf...)
	f := courseFixture{
		testApp:    app,
		student:    testutil.CreateAccount(t, app.accRepo, "Amine", "amine", "amine@test.tn", "", []string{account.RoleStudent}, true),
		instructor: testutil.CreateAccount(t, app.accRepo, "Karim", "karim", "karim@test.tn", "", []string{account.RoleInstructor}, true),
	}
	f.base = "/v1/students/" + f.student.ID
	return f
}

// addCourse creates a course through the API and returns it.
func (f courseFixture) addCourse(t *testing.T, vt course.VehicleType) course.Course {
	t.Helper()
	rec := f.do(t, httpTest{
		method: http.MethodPost, path: f.base + "/courses", token: f.token(t, f.instructor),
		body: course.NewCourse{VehicleType: vt},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res CourseResponse
	decode(t, rec, &res)
	return res.Course
}

func Test_courseApi_access(t *testing.T) {
	f := setupCourses(t)
	other := testutil.CreateAccount(t, f.accRepo, "Sonia", "sonia", "sonia@test.tn", "", []string{account.RoleStudent}, true)
	studentToken := f.token(t, f.student)

	f.run(t, []httpTest{
		{name: "auth required", path: f.base + "/courses", wantCode: http.StatusUnauthorized, wantData: errMissingToken},
		{name: "own empty book", path: f.base + "/courses", token: studentToken, wantCode: http.StatusOK,
			wantData: course.List{StudentID: f.student.ID, Courses: []course.Course{}}, wantETag: `"0"`},
		{name: "other student book is hidden", path: "/v1/students/" + other.ID + "/courses", token: studentToken,
			wantCode: http.StatusNotFound, wantData: httpErr{Error: "not found"}},
		{name: "students cannot write", method: http.MethodPost, path: f.base + "/courses", token: studentToken,
			body: course.NewCourse{VehicleType: course.TwoWheeler}, wantCode: http.StatusForbidden, wantData: httpErr{Error: "permission denied"}},
		{name: "invalid vehicle type", method: http.MethodPost, path: f.base + "/courses", token: f.token(t, f.instructor),
			body: course.NewCourse{VehicleType: course.Finished}, wantCode: http.StatusBadRequest},
		{name: "unknown course", path: f.base + "/courses/nope", token: studentToken,
			wantCode: http.StatusNotFound, wantData: httpErr{Error: course.ErrNotFound.Error()}},
	})
}

func Test_courseApi_quickEntry(t *testing.T) {
	f := setupCourses(t)
	c := f.addCourse(t, course.FourWheeler)
	assert.Equal(t, grid.DefaultRows, c.GridRows)
	assert.Equal(t, grid.DefaultCols, c.GridCols)

	token := f.token(t, f.instructor)
	sessions := f.base + "/courses/" + c.ID + "/sessions"
	entry := course.NewSession{Date: "2024-03-01", Simulation: 5, Ground: 3, Road: 2}

	f.run(t, []httpTest{
		{name: "invalid date", method: http.MethodPost, path: sessions, token: token,
			body: course.NewSession{Date: "01/03/2024"}, wantCode: http.StatusBadRequest},
		{name: "bad If-Match", method: http.MethodPost, path: sessions, token: token, ifMatch: "abc",
			body: entry, wantCode: http.StatusBadRequest, wantData: httpErr{Error: "invalid If-Match header"}},
		{name: "stale If-Match", method: http.MethodPost, path: sessions, token: token, ifMatch: `"7"`,
			body: entry, wantCode: http.StatusConflict, wantData: httpErr{Error: course.ErrConflict.Error()}},
	})

	rec := f.do(t, httpTest{method: http.MethodPost, path: sessions, token: token, ifMatch: `"1"`, body: entry})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, `"2"`, rec.Header().Get("ETag"))
	var res SessionResponse
	decode(t, rec, &res)
	assert.Equal(t, int64(2), res.Version)
	assert.Equal(t, grid.Summary{Simulation: 5, Ground: 3, Road: 2, Total: 10}, res.Fill.Painted)
	assert.Equal(t, res.Fill.Requested, res.Fill.Painted)
	assert.NotEmpty(t, res.Session.ID)

	// the student reads the totals
	rec = f.do(t, httpTest{path: f.base + "/summary", token: f.token(t, f.student)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dash course.Dashboard
	decode(t, rec, &dash)
	assert.Equal(t, grid.Summary{Simulation: 5, Ground: 3, Road: 2, Total: 10}, dash.Total)
	require.Len(t, dash.Courses, 1)
	assert.Equal(t, course.StateActive, dash.Courses[0].State)

	f.run(t, []httpTest{
		{name: "reusing the old version conflicts", method: http.MethodPost, path: sessions, token: token, ifMatch: `"1"`,
			body: entry, wantCode: http.StatusConflict},
		{name: "delete session", method: http.MethodDelete, path: sessions + "/" + res.Session.ID, token: token, ifMatch: `W/"2"`,
			wantCode: http.StatusNoContent, wantETag: `"3"`},
		{name: "delete unknown session", method: http.MethodDelete, path: sessions + "/" + res.Session.ID, token: token,
			wantCode: http.StatusNotFound, wantData: httpErr{Error: course.ErrSessionNotFound.Error()}},
	})

	// deleting the log entry keeps the painted cells
	rec = f.do(t, httpTest{path: f.base + "/summary", token: token})
	decode(t, rec, &dash)
	assert.Equal(t, 10, dash.Total.Total)
	assert.Equal(t, 0, dash.Courses[0].Logged.Total)
}

func Test_courseApi_quickEntry_strict(t *testing.T) {
	conf := core.NewTestConfig()
	conf.FillMode = "strict"
	f := setupCourses(t, conf)
	c := f.addCourse(t, course.TwoWheeler)
	token := f.token(t, f.instructor)

	rows := 3
	rec := f.do(t, httpTest{
		method: http.MethodPatch, path: f.base + "/courses/" + c.ID + "/dimensions", token: token,
		body: course.Dimensions{GridRows: &rows},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, httpTest{
		method: http.MethodPost, path: f.base + "/courses/" + c.ID + "/sessions", token: token,
		body: course.NewSession{Date: "2024-03-01", Road: 51},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	var body struct {
		Phase     string `json:"phase"`
		Requested int    `json:"requested"`
		Available int    `json:"available"`
	}
	decode(t, rec, &body)
	assert.Equal(t, grid.Road.String(), body.Phase)
	assert.Equal(t, 51, body.Requested)
	assert.Equal(t, 50, body.Available)

	// nothing was saved
	rec = f.do(t, httpTest{path: f.base + "/courses", token: token})
	assert.Equal(t, `"2"`, rec.Header().Get("ETag"))
	last, ok := f.recorder.Last()
	require.True(t, ok)
	assert.Error(t, last.Err)
}

func Test_courseApi_cells(t *testing.T) {
	f := setupCourses(t)
	c := f.addCourse(t, course.HeavyVehicle)
	token := f.token(t, f.instructor)
	cells := f.base + "/courses/" + c.ID + "/cells"
	row, col, far := 4, 7, 60

	for _, want := range []grid.Status{grid.Attended, grid.Absent, grid.Empty} {
		rec := f.do(t, httpTest{method: http.MethodPost, path: cells, token: token, body: course.Cell{Row: &row, Col: &col}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res CellResponse
		decode(t, rec, &res)
		assert.Equal(t, want, res.Status)
	}

	f.run(t, []httpTest{
		{name: "missing col", method: http.MethodPost, path: cells, token: token, body: course.Cell{Row: &row}, wantCode: http.StatusBadRequest},
		{name: "outside the grid", method: http.MethodPost, path: cells, token: token, body: course.Cell{Row: &row, Col: &far},
			wantCode: http.StatusBadRequest, wantData: httpErr{Error: course.ErrCellOutOfRange.Error()}},
	})
}

func Test_courseApi_finishAndWipe(t *testing.T) {
	f := setupCourses(t)
	moto := f.addCourse(t, course.TwoWheeler)
	car := f.addCourse(t, course.FourWheeler)
	token := f.token(t, f.instructor)
	row, col := 0, 0

	rec := f.do(t, httpTest{method: http.MethodPost, path: f.base + "/courses/" + moto.ID + "/finish", token: token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res CourseResponse
	decode(t, rec, &res)
	assert.Equal(t, course.Finished, res.Course.VehicleType)
	assert.Equal(t, course.TwoWheeler, res.Course.Category)

	f.run(t, []httpTest{
		{name: "finished is read-only", method: http.MethodPost, path: f.base + "/courses/" + moto.ID + "/cells", token: token,
			body: course.Cell{Row: &row, Col: &col}, wantCode: http.StatusBadRequest, wantData: httpErr{Error: course.ErrFinished.Error()}},
		{name: "finished frees the category", method: http.MethodPost, path: f.base + "/courses", token: token,
			body: course.NewCourse{VehicleType: course.TwoWheeler}, wantCode: http.StatusCreated},
		{name: "remove a course", method: http.MethodDelete, path: f.base + "/courses/" + car.ID, token: token,
			wantCode: http.StatusOK, wantData: WipeResponse{Result: course.Removed, Version: 5}, wantETag: `"5"`},
	})
}

func Test_courseApi_wipeSoleCourse(t *testing.T) {
	f := setupCourses(t)
	c := f.addCourse(t, course.FourWheeler)
	token := f.token(t, f.instructor)

	rec := f.do(t, httpTest{
		method: http.MethodPost, path: f.base + "/courses/" + c.ID + "/sessions", token: token,
		body: course.NewSession{Date: "2024-03-01", Ground: 4},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	f.run(t, []httpTest{
		{name: "wipe in place", method: http.MethodDelete, path: f.base + "/courses/" + c.ID, token: token,
			wantCode: http.StatusOK, wantData: WipeResponse{Result: course.WipedInPlace, Version: 3}},
	})

	rec = f.do(t, httpTest{path: f.base + "/courses/" + c.ID, token: token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res CourseResponse
	decode(t, rec, &res)
	assert.Equal(t, 0, res.Course.Summary().Total)
}

func Test_courseApi_replace(t *testing.T) {
	f := setupCourses(t)
	c := f.addCourse(t, course.FourWheeler)
	token := f.token(t, f.instructor)
	stale := int64(0)
	current := int64(1)

	f.run(t, []httpTest{
		{name: "stale body version", method: http.MethodPut, path: f.base + "/courses", token: token,
			body: ReplaceCoursesRequest{Version: &stale, Courses: []course.Course{c}}, wantCode: http.StatusConflict},
		{name: "invalid list", method: http.MethodPut, path: f.base + "/courses", token: token,
			body: ReplaceCoursesRequest{Version: &current, Courses: []course.Course{c, c}}, wantCode: http.StatusBadRequest},
		{name: "ok", method: http.MethodPut, path: f.base + "/courses", token: token,
			body: ReplaceCoursesRequest{Version: &current, Courses: []course.Course{c}}, wantCode: http.StatusOK, wantETag: `"2"`},
		{name: "the last course cannot go", method: http.MethodPut, path: f.base + "/courses", token: token,
			body: ReplaceCoursesRequest{Courses: []course.Course{}}, wantCode: http.StatusBadRequest},
	})
}

func Test_courseApi_replaceFinished(t *testing.T) {
	f := setupCourses(t)
	moto := f.addCourse(t, course.TwoWheeler)
	car := f.addCourse(t, course.FourWheeler)
	token := f.token(t, f.instructor)

	rec := f.do(t, httpTest{method: http.MethodPost, path: f.base + "/courses/" + moto.ID + "/finish", token: token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res CourseResponse
	decode(t, rec, &res)
	finished := res.Course
	reopened := finished.Clone()
	reopened.VehicleType = course.TwoWheeler
	painted := finished.Clone()
	painted.Attendance[0] = grid.Attended
	version := int64(3)

	f.run(t, []httpTest{
		{name: "reopen a finished course", method: http.MethodPut, path: f.base + "/courses", token: token,
			body:     ReplaceCoursesRequest{Version: &version, Courses: []course.Course{reopened, car}},
			wantCode: http.StatusBadRequest, wantData: httpErr{Error: course.ErrFinished.Error()}},
		{name: "paint a finished course", method: http.MethodPut, path: f.base + "/courses", token: token,
			body:     ReplaceCoursesRequest{Version: &version, Courses: []course.Course{painted, car}},
			wantCode: http.StatusBadRequest, wantData: httpErr{Error: course.ErrFinished.Error()}},
		{name: "keep it as is", method: http.MethodPut, path: f.base + "/courses", token: token,
			body:     ReplaceCoursesRequest{Version: &version, Courses: []course.Course{finished, car}},
			wantCode: http.StatusOK, wantETag: `"4"`},
	})

	rec = f.do(t, httpTest{path: f.base + "/courses/" + moto.ID, token: token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &res)
	assert.Equal(t, course.Finished, res.Course.VehicleType)
	assert.Equal(t, grid.Empty, res.Course.Attendance[0])
}
