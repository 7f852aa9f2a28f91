package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBands_partition(t *testing.T) {
	for rows := 1; rows <= MaxRows; rows++ {
		bands := Bands(rows)

		assert.Equal(t, 0, bands[0].Start, "rows=%d", rows)
		assert.Equal(t, bands[0].End, bands[1].Start, "rows=%d", rows)
		assert.Equal(t, bands[1].End, bands[2].Start, "rows=%d", rows)
		assert.Equal(t, rows, bands[2].End, "rows=%d", rows)

		for row := 0; row < rows; row++ {
			var hits int
			for _, b := range bands {
				if b.Contains(row) {
					hits++
				}
			}
			if hits != 1 {
				t.Fatalf("rows=%d: row %d is in %d bands", rows, row, hits)
			}
			p, ok := PhaseOf(row, rows)
			assert.True(t, ok)
			assert.True(t, bands[p].Contains(row), "rows=%d row=%d phase=%s", rows, row, p)
		}
	}
}

func TestBands(t *testing.T) {
	tests := []struct {
		name string
		rows int
		want [3]Band
	}{
		{
			name: "default", rows: 30,
			want: [3]Band{{Simulation, 0, 10}, {Ground, 10, 20}, {Road, 20, 30}},
		},
		{
			name: "road absorbs remainder", rows: 11,
			want: [3]Band{{Simulation, 0, 3}, {Ground, 3, 6}, {Road, 6, 11}},
		},
		{
			name: "less than 3 rows", rows: 2,
			want: [3]Band{{Simulation, 0, 0}, {Ground, 0, 0}, {Road, 0, 2}},
		},
		{
			name: "clamped", rows: 45,
			want: [3]Band{{Simulation, 0, 10}, {Ground, 10, 20}, {Road, 20, 30}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bands(tt.rows))
		})
	}
}

func TestPhaseOf_outside(t *testing.T) {
	_, ok := PhaseOf(12, 12)
	assert.False(t, ok)
	_, ok = PhaseOf(-1, 12)
	assert.False(t, ok)
}

func TestParsePhase(t *testing.T) {
	p, err := ParsePhase("Ground")
	assert.NoError(t, err)
	assert.Equal(t, Ground, p)

	_, err = ParsePhase("air")
	assert.Error(t, err)
}
