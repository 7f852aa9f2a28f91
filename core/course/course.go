package course

import (
	"context"

	"github.com/google/uuid"

	"github.com/hajerbook/backend/core/grid"
)

// New returns an empty course with the full default window.
func New(vt VehicleType) Course {
	now := nowFunc().UTC()
	return Course{
		ID:          uuid.New().String(),
		VehicleType: vt,
		Category:    vt,
		GridRows:    grid.DefaultRows,
		GridCols:    grid.DefaultCols,
		Sessions:    []Session{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Normalize fills defaults on a course coming from the outside or from storage.
// Missing dimensions take the defaults, others are clamped.
func (c *Course) Normalize() {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.VehicleType.IsVehicle() {
		c.Category = c.VehicleType
	}
	if c.GridRows == 0 {
		c.GridRows = grid.DefaultRows
	}
	if c.GridCols == 0 {
		c.GridCols = grid.DefaultCols
	}
	c.GridRows = grid.ClampRows(c.GridRows)
	c.GridCols = grid.ClampCols(c.GridCols)
	c.Attendance.Normalize()
	if c.Sessions == nil {
		c.Sessions = []Session{}
	}
	for i := range c.Sessions {
		if c.Sessions[i].ID == "" {
			c.Sessions[i].ID = uuid.New().String()
		}
		if c.Sessions[i].VehicleType == "" {
			c.Sessions[i].VehicleType = c.VehicleType
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = nowFunc().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
}

// Clone returns a deep copy of the course.
func (c Course) Clone() Course {
	clone := c
	if c.Sessions != nil {
		clone.Sessions = make([]Session, len(c.Sessions))
		copy(clone.Sessions, c.Sessions)
	}
	return clone
}

// sameRecord reports whether o holds the same data as c, UpdatedAt aside.
func (c *Course) sameRecord(o *Course) bool {
	if c.ID != o.ID ||
		c.VehicleType != o.VehicleType ||
		c.Category != o.Category ||
		c.GridRows != o.GridRows ||
		c.GridCols != o.GridCols ||
		c.Attendance != o.Attendance ||
		!c.CreatedAt.Equal(o.CreatedAt) ||
		len(c.Sessions) != len(o.Sessions) {
		return false
	}
	for i, s := range c.Sessions {
		t := o.Sessions[i]
		if s.ID != t.ID || s.Date != t.Date || s.VehicleType != t.VehicleType || s.Hours() != t.Hours() || !s.CreatedAt.Equal(t.CreatedAt) {
			return false
		}
	}
	return true
}

func (c *Course) touch() {
	c.UpdatedAt = nowFunc().UTC()
}

// Summary aggregates the attended cells of the active rows.
// It is available in every state, finished courses included.
func (c *Course) Summary() grid.Summary {
	return grid.Aggregate(&c.Attendance, c.GridRows)
}

// Logged sums the hour counts of the session log.
func (c *Course) Logged() grid.Summary {
	var sum grid.Summary
	for _, s := range c.Sessions {
		sum = sum.Add(s.Hours())
	}
	return sum
}

func (c *Course) Bands() [3]grid.Band {
	return grid.Bands(c.GridRows)
}

func (c *Course) CourseSummary() CourseSummary {
	return CourseSummary{
		CourseID:    c.ID,
		VehicleType: c.VehicleType,
		Category:    c.Category,
		State:       c.State(),
		GridRows:    c.GridRows,
		GridCols:    c.GridCols,
		Sessions:    len(c.Sessions),
		Summary:     c.Summary(),
		Logged:      c.Logged(),
	}
}

// SetDimensions changes the active window. Values are clamped and the
// attendance array is never resized nor reindexed.
func (c *Course) SetDimensions(ctx context.Context, dims Dimensions) error {
	if err := c.transition(ctx, eventAmend); err != nil {
		return err
	}
	if dims.GridRows != nil {
		c.GridRows = grid.ClampRows(*dims.GridRows)
	}
	if dims.GridCols != nil {
		c.GridCols = grid.ClampCols(*dims.GridCols)
	}
	c.touch()
	return nil
}

// CycleCell advances a cell of the active window to its next status.
func (c *Course) CycleCell(ctx context.Context, row, col int) (grid.Status, error) {
	if err := c.transition(ctx, eventRecord); err != nil {
		return grid.Empty, err
	}
	if row < 0 || row >= c.GridRows || col < 0 || col >= c.GridCols {
		return grid.Empty, ErrCellOutOfRange
	}
	s, err := c.Attendance.Cycle(row, col)
	if err != nil {
		return grid.Empty, ErrCellOutOfRange
	}
	c.touch()
	return s, nil
}

// QuickEntry logs a session and paints its hours, each phase from its first row.
// In strict mode a phase without enough room fails the whole entry and the
// course is left untouched.
func (c *Course) QuickEntry(ctx context.Context, ns NewSession, mode grid.FillMode) (Session, FillReport, error) {
	if err := c.transition(ctx, eventRecord); err != nil {
		return Session{}, FillReport{}, err
	}

	report := FillReport{Requested: ns.Hours()}
	att := c.Attendance // work on a copy
	for _, p := range grid.Phases {
		n, err := att.FillPhase(p, report.Requested.Of(p), c.GridRows, mode)
		if err != nil {
			return Session{}, FillReport{}, err
		}
		switch p {
		case grid.Simulation:
			report.Painted.Simulation = n
		case grid.Ground:
			report.Painted.Ground = n
		case grid.Road:
			report.Painted.Road = n
		}
		report.Painted.Total += n
	}

	sess := Session{
		ID:          uuid.New().String(),
		Date:        ns.Date,
		Simulation:  ns.Simulation,
		Ground:      ns.Ground,
		Road:        ns.Road,
		VehicleType: c.VehicleType,
		CreatedAt:   nowFunc().UTC(),
	}
	c.Attendance = att
	c.Sessions = append(c.Sessions, sess)
	c.touch()
	return sess, report, nil
}

// DeleteSession removes a session from the log. Painted cells stay as they
// are, so grid totals and log totals can diverge afterwards.
func (c *Course) DeleteSession(ctx context.Context, id string) (Session, error) {
	if err := c.transition(ctx, eventAmend); err != nil {
		return Session{}, err
	}
	for i, s := range c.Sessions {
		if s.ID == id {
			c.Sessions = append(c.Sessions[:i:i], c.Sessions[i+1:]...)
			c.touch()
			return s, nil
		}
	}
	return Session{}, ErrSessionNotFound
}

// Reset empties the attendance grid, keeping the course and its log.
func (c *Course) Reset(ctx context.Context) error {
	if err := c.transition(ctx, eventReset); err != nil {
		return err
	}
	c.Attendance.Reset()
	c.touch()
	return nil
}

// Finish locks the course. There is no way back. Category keeps the vehicle.
func (c *Course) Finish(ctx context.Context) error {
	if err := c.transition(ctx, eventFinish); err != nil {
		return err
	}
	c.VehicleType = Finished
	c.touch()
	return nil
}
