package grid

// Summary holds attended cell counts per phase.
type Summary struct {
	Simulation int `json:"simulation"`
	Ground     int `json:"ground"`
	Road       int `json:"road"`
	Total      int `json:"total"`
}

// Add returns the sum of two summaries.
func (s Summary) Add(o Summary) Summary {
	return Summary{
		Simulation: s.Simulation + o.Simulation,
		Ground:     s.Ground + o.Ground,
		Road:       s.Road + o.Road,
		Total:      s.Total + o.Total,
	}
}

// Of returns the count of one phase.
func (s Summary) Of(p Phase) int {
	switch p {
	case Simulation:
		return s.Simulation
	case Ground:
		return s.Ground
	case Road:
		return s.Road
	default:
		return 0
	}
}

// Aggregate counts attended cells per phase band of the active rows.
// Absent cells and rows >= gridRows are never counted.
// It only reads att and is safe to call concurrently.
func Aggregate(att *Attendance, gridRows int) Summary {
	var sum Summary
	if att == nil {
		return sum
	}
	gridRows = ClampRows(gridRows)
	size := gridRows / 3

	for i, s := range att {
		row, _ := Decode(i)
		if row >= gridRows {
			break // rows are stored in order, nothing active past this point
		}
		if s != Attended {
			continue
		}
		switch {
		case row < size:
			sum.Simulation++
		case row < 2*size:
			sum.Ground++
		default:
			sum.Road++
		}
	}
	sum.Total = sum.Simulation + sum.Ground + sum.Road
	return sum
}
