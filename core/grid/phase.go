package grid

import (
	"fmt"
	"strings"
)

// Phase is a training phase, derived from a row's position within the active rows.
type Phase int

const (
	Simulation Phase = iota
	Ground
	Road
)

var Phases = [...]Phase{Simulation, Ground, Road}

func (p Phase) String() string {
	switch p {
	case Simulation:
		return "simulation"
	case Ground:
		return "ground"
	case Road:
		return "road"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	ph, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = ph
	return nil
}

func ParsePhase(s string) (Phase, error) {
	for _, p := range Phases {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// Band is the half-open row range [Start, End) of a phase.
type Band struct {
	Phase Phase `json:"phase"`
	Start int   `json:"start"`
	End   int   `json:"end"`
}

func (b Band) Contains(row int) bool {
	return row >= b.Start && row < b.End
}

func (b Band) Len() int {
	return b.End - b.Start
}

// Bands splits [0, gridRows) in three contiguous bands of gridRows/3 rows.
// Road absorbs the remainder.
func Bands(gridRows int) [3]Band {
	gridRows = ClampRows(gridRows)
	size := gridRows / 3
	return [3]Band{
		{Phase: Simulation, Start: 0, End: size},
		{Phase: Ground, Start: size, End: 2 * size},
		{Phase: Road, Start: 2 * size, End: gridRows},
	}
}

// PhaseOf returns the phase of an active row; ok is false for rows outside [0, gridRows).
func PhaseOf(row, gridRows int) (p Phase, ok bool) {
	gridRows = ClampRows(gridRows)
	if row < 0 || row >= gridRows {
		return 0, false
	}
	size := gridRows / 3
	switch {
	case row < size:
		return Simulation, true
	case row < 2*size:
		return Ground, true
	default:
		return Road, true
	}
}
