package grid

import (
	"fmt"
	"strings"
)

// FillMode decides what happens when a phase lacks room for a fill request.
type FillMode int

const (
	// Lenient paints what fits and silently drops the rest.
	Lenient FillMode = iota
	// Strict refuses the request and paints nothing.
	Strict
)

func (m FillMode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// ParseFillMode accepts "strict" or "lenient" (default for empty input).
func ParseFillMode(s string) (FillMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unknown fill mode %q", s)
	}
}

// CapacityError is returned by strict fills that cannot be fully painted.
type CapacityError struct {
	Phase     Phase
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s phase has room for %d more cells, %d requested", e.Phase, e.Available, e.Requested)
}

// Fill paints up to count empty cells as attended, scanning rows [startRow, gridRows)
// and the full storage width of each row. Attended and absent cells are skipped.
// It returns the number of cells painted.
func (a *Attendance) Fill(startRow, count, gridRows int) int {
	if count <= 0 {
		return 0
	}
	if startRow < 0 {
		startRow = 0
	}
	gridRows = ClampRows(gridRows)

	var filled int
	for row := startRow; row < gridRows && filled < count; row++ {
		for col := 0; col < StorageStride && filled < count; col++ {
			i := Encode(row, col)
			if a[i] == Empty {
				a[i] = Attended
				filled++
			}
		}
	}
	return filled
}

// Capacity returns how many cells Fill(startRow, n, gridRows) could paint at most.
func (a *Attendance) Capacity(startRow, gridRows int) int {
	if startRow < 0 {
		startRow = 0
	}
	gridRows = ClampRows(gridRows)

	var n int
	for row := startRow; row < gridRows; row++ {
		for col := 0; col < StorageStride; col++ {
			if a[Encode(row, col)] == Empty {
				n++
			}
		}
	}
	return n
}

// FillPhase fills count cells starting at the first row of phase p.
func (a *Attendance) FillPhase(p Phase, count, gridRows int, mode FillMode) (int, error) {
	start := Bands(gridRows)[p].Start
	if mode == Strict && count > 0 {
		if avail := a.Capacity(start, gridRows); avail < count {
			return 0, &CapacityError{Phase: p, Requested: count, Available: avail}
		}
	}
	return a.Fill(start, count, gridRows), nil
}
