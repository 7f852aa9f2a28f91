package echoapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/course"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// expectedVersion reads the If-Match header: `"3"`, `3`, `W/"3"` or `*`.
// A missing header or `*` skips the version check.
func expectedVersion(ctx echo.Context) (int64, error) {
	h := strings.TrimSpace(ctx.Request().Header.Get("If-Match"))
	if h == "" || h == "*" {
		return course.AnyVersion, nil
	}
	h = strings.TrimPrefix(h, "W/")
	v, err := strconv.ParseInt(strings.Trim(h, `"`), 10, 64)
	if err != nil || v < 0 {
		return 0, errBadVersion
	}
	return v, nil
}

func setETag(ctx echo.Context, version int64) {
	ctx.Response().Header().Set("ETag", `"`+strconv.FormatInt(version, 10)+`"`)
}

// jsonWithVersion sends data with the list version as ETag.
func jsonWithVersion(ctx echo.Context, code int, version int64, data interface{}) error {
	setETag(ctx, version)
	if code == 0 {
		code = http.StatusOK
	}
	return ctx.JSON(code, data)
}
