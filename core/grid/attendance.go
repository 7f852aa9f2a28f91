package grid

// Attendance is the flat cell array of one course, always CellCount long.
// Cells outside the active rows/cols window are allocated but unused.
type Attendance [CellCount]Status

// At returns the status at a flat index, Empty when the index is out of range.
func (a *Attendance) At(index int) Status {
	if index < 0 || index >= CellCount {
		return Empty
	}
	return a[index]
}

func (a *Attendance) Cell(row, col int) (Status, error) {
	if !InStorage(row, col) {
		return Empty, ErrOutOfRange
	}
	return a[Encode(row, col)], nil
}

func (a *Attendance) Set(row, col int, s Status) error {
	if !InStorage(row, col) || !s.Valid() {
		return ErrOutOfRange
	}
	a[Encode(row, col)] = s
	return nil
}

// Cycle advances a cell to its next status and returns it.
func (a *Attendance) Cycle(row, col int) (Status, error) {
	if !InStorage(row, col) {
		return Empty, ErrOutOfRange
	}
	i := Encode(row, col)
	a[i] = a[i].Next()
	return a[i], nil
}

// Reset empties every cell.
func (a *Attendance) Reset() {
	*a = Attendance{}
}

// Marked reports whether any cell is not empty.
func (a *Attendance) Marked() bool {
	for _, s := range a {
		if s != Empty {
			return true
		}
	}
	return false
}

// Count returns the number of cells holding s, active or not.
func (a *Attendance) Count(s Status) int {
	var n int
	for _, v := range a {
		if v == s {
			n++
		}
	}
	return n
}

// Normalize resets cells holding an unknown status code.
func (a *Attendance) Normalize() {
	for i, s := range a {
		if !s.Valid() {
			a[i] = Empty
		}
	}
}
