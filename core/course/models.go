package course

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/grid"
)

// VehicleType is the category a course trains for.
// Finished is a terminal marker, not a vehicle.
type VehicleType string

const (
	TwoWheeler   VehicleType = "two-wheeler"
	FourWheeler  VehicleType = "four-wheeler"
	HeavyVehicle VehicleType = "heavy-vehicle"
	Finished     VehicleType = "finished"
)

var (
	VehicleTypes = []VehicleType{TwoWheeler, FourWheeler, HeavyVehicle}

	// nowFunc is mockable in tests
	nowFunc = time.Now
)

func (vt VehicleType) IsVehicle() bool {
	for _, v := range VehicleTypes {
		if vt == v {
			return true
		}
	}
	return false
}

func (vt VehicleType) Valid() bool {
	return vt == Finished || vt.IsVehicle()
}

// Course is one vehicle-category training track of a student.
type Course struct {
	ID          string          `json:"id"`
	VehicleType VehicleType     `json:"vehicle_type"`
	Category    VehicleType     `json:"category"` // vehicle the course trains for, kept once finished
	GridRows    int             `json:"grid_rows"`
	GridCols    int             `json:"grid_cols"` // active window only, addressing always uses grid.StorageStride
	Attendance  grid.Attendance `json:"attendance"`
	Sessions    []Session       `json:"sessions"`
	CreatedAt   time.Time       `json:"created_at"` // UTC
	UpdatedAt   time.Time       `json:"updated_at"` // UTC
}

// Session is a logged sitting with per-phase hour counts.
type Session struct {
	ID          string      `json:"id"`
	Date        string      `json:"date"` // YYYY-MM-DD
	Simulation  int         `json:"simulation"`
	Ground      int         `json:"ground"`
	Road        int         `json:"road"`
	VehicleType VehicleType `json:"vehicle_type"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
}

// Hours returns the session counts as a summary.
func (s Session) Hours() grid.Summary {
	return grid.Summary{
		Simulation: s.Simulation,
		Ground:     s.Ground,
		Road:       s.Road,
		Total:      s.Simulation + s.Ground + s.Road,
	}
}

// List is the whole course list of a student, as persisted.
// Version is bumped on every save and is 0 for a student that never saved.
type List struct {
	StudentID string   `json:"student_id"`
	Version   int64    `json:"version"`
	Courses   []Course `json:"courses"`
}

// FillReport compares what a quick entry asked for with what got painted.
type FillReport struct {
	Requested grid.Summary `json:"requested"`
	Painted   grid.Summary `json:"painted"`
}

func (r FillReport) Partial() bool {
	return r.Painted.Total < r.Requested.Total
}

type CourseSummary struct {
	CourseID    string       `json:"course_id"`
	VehicleType VehicleType  `json:"vehicle_type"`
	Category    VehicleType  `json:"category"`
	State       State        `json:"state"`
	GridRows    int          `json:"grid_rows"`
	GridCols    int          `json:"grid_cols"`
	Sessions    int          `json:"sessions"`
	Summary     grid.Summary `json:"summary"`
	Logged      grid.Summary `json:"logged"` // session log totals, may diverge from the grid
}

type Dashboard struct {
	StudentID string          `json:"student_id"`
	Version   int64           `json:"version"`
	Courses   []CourseSummary `json:"courses"`
	Total     grid.Summary    `json:"total"`
}

// NewCourse contains information needed to add a course to a student.
type NewCourse struct {
	VehicleType VehicleType `json:"vehicle_type" validate:"required,vehicletype"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.VehicleType = VehicleType(core.CleanString(string(nc.VehicleType), true /* lower */))
	return validate.Struct(nc)
}

// Dimensions changes the active window of a course; nil fields are kept.
// Values are clamped, never rejected.
type Dimensions struct {
	GridRows *int `json:"grid_rows"`
	GridCols *int `json:"grid_cols"`
}

// Cell addresses one cell of the active window.
type Cell struct {
	Row *int `json:"row" validate:"required,min=0"`
	Col *int `json:"col" validate:"required,min=0"`
}

func (c *Cell) Validate(validate *validator.Validate) error {
	return validate.Struct(c)
}

// NewSession is a quick entry: a logged sitting that also paints the grid.
type NewSession struct {
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Simulation int    `json:"simulation" validate:"min=0,max=1500"`
	Ground     int    `json:"ground" validate:"min=0,max=1500"`
	Road       int    `json:"road" validate:"min=0,max=1500"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Date = strings.TrimSpace(ns.Date)
	return validate.Struct(ns)
}

func (ns NewSession) Hours() grid.Summary {
	return Session{Simulation: ns.Simulation, Ground: ns.Ground, Road: ns.Road}.Hours()
}
