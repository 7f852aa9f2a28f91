// Package grid implements the Hajer Book attendance grid: a fixed 30x50 block
// of cells stored as a flat array, split in three training phases by row.
package grid

import (
	"github.com/pkg/errors"
)

const (
	// StorageStride is the column stride of the flat attendance array.
	// It never follows the configurable active column count.
	StorageStride = 50

	MaxRows   = 30
	MaxCols   = StorageStride
	CellCount = MaxRows * StorageStride

	DefaultRows = MaxRows
	DefaultCols = MaxCols
)

var ErrOutOfRange = errors.New("cell out of range")

// Encode maps a storage (row, col) position to its flat index.
func Encode(row, col int) int {
	return row*StorageStride + col
}

// Decode maps a flat index back to its storage (row, col) position.
func Decode(index int) (row, col int) {
	return index / StorageStride, index % StorageStride
}

// InStorage reports whether (row, col) addresses an allocated cell.
func InStorage(row, col int) bool {
	return row >= 0 && row < MaxRows && col >= 0 && col < StorageStride
}

// ClampRows bounds an active row count to [1, MaxRows].
func ClampRows(rows int) int {
	return clamp(rows, 1, MaxRows)
}

// ClampCols bounds an active column count to [1, MaxCols].
func ClampCols(cols int) int {
	return clamp(cols, 1, MaxCols)
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Status is the state of a single cell.
type Status uint8

const (
	Empty Status = iota
	Attended
	Absent

	statusCount = 3
)

// Next returns the status a cell takes when cycled.
func (s Status) Next() Status {
	return (s + 1) % statusCount
}

func (s Status) Valid() bool {
	return s < statusCount
}

func (s Status) String() string {
	switch s {
	case Empty:
		return "empty"
	case Attended:
		return "attended"
	case Absent:
		return "absent"
	default:
		return "unknown"
	}
}
